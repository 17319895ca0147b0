package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"tradelink/internal/config"
	"tradelink/internal/database"
	"tradelink/internal/domain"
	"tradelink/internal/domain/auth"
	"tradelink/internal/pkg/logger"
)

const demoPassword = "password123"

type companySeed struct {
	name     string
	kind     domain.CompanyType
	location string
	domain   string
}

type productSeed struct {
	name      string
	unit      string
	stock     int
	retail    int64
	threshold int
	bulk      int64
	minimum   int
}

var companies = []companySeed{
	{name: "Steppe Foods Supply", kind: domain.CompanySupplier, location: "Almaty", domain: "steppefoods.kz"},
	{name: "Cafe Baursak", kind: domain.CompanyConsumer, location: "Astana", domain: "baursak.kz"},
}

var catalog = []productSeed{
	{name: "Wheat flour", unit: "kg", stock: 500, retail: 450, threshold: 50, bulk: 380, minimum: 5},
	{name: "Sunflower oil", unit: "l", stock: 300, retail: 900, threshold: 20, bulk: 780, minimum: 2},
	{name: "Black tea", unit: "pack", stock: 200, retail: 1200, threshold: 10, bulk: 1000, minimum: 1},
	{name: "Sugar", unit: "kg", stock: 400, retail: 520, threshold: 25, bulk: 470, minimum: 5},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log.Logger = logger.New(cfg.LogLevel, cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := clean(tx); err != nil {
			return err
		}

		staffByCompany := map[domain.CompanyType][]domain.User{}
		companyIDs := map[domain.CompanyType]int64{}
		for i, cs := range companies {
			company := domain.Company{
				Name:     cs.name,
				Type:     cs.kind,
				Status:   domain.CompanyActive,
				Location: cs.location,
			}
			if err := tx.Create(&company).Error; err != nil {
				return fmt.Errorf("create company %s: %w", cs.name, err)
			}
			companyIDs[cs.kind] = company.ID

			users, err := seedUsers(tx, company.ID, cs, hash, i)
			if err != nil {
				return err
			}
			staffByCompany[cs.kind] = users
		}

		for _, ps := range catalog {
			threshold, bulk := ps.threshold, ps.bulk
			product := domain.Product{
				CompanyID:     companyIDs[domain.CompanySupplier],
				Name:          ps.name,
				StockQuantity: ps.stock,
				RetailPrice:   ps.retail,
				Threshold:     &threshold,
				BulkPrice:     &bulk,
				MinimumOrder:  ps.minimum,
				Unit:          ps.unit,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("create product %s: %w", ps.name, err)
			}
		}

		// supplier staff #1 answers the request and becomes the salesman
		consumerStaff := staffByCompany[domain.CompanyConsumer][2]
		salesman := staffByCompany[domain.CompanySupplier][2].ID
		l := domain.Linking{
			ConsumerCompanyID:  companyIDs[domain.CompanyConsumer],
			SupplierCompanyID:  companyIDs[domain.CompanySupplier],
			RequestedByUserID:  consumerStaff.ID,
			RespondedByUserID:  &salesman,
			AssignedSalesmanID: &salesman,
			Status:             domain.LinkingAccepted,
			Message:            "We'd like to order weekly.",
		}
		if err := tx.Create(&l).Error; err != nil {
			return fmt.Errorf("create linking: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	log.Info().Str("password", demoPassword).Msg("seed complete, every demo user shares this password")
}

func clean(tx *gorm.DB) error {
	models := domain.Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("clean %T: %w", models[i], err)
		}
	}
	return nil
}

func seedUsers(tx *gorm.DB, companyID int64, cs companySeed, hash string, companyIndex int) ([]domain.User, error) {
	roles := []struct {
		role  domain.UserRole
		first string
		login string
	}{
		{domain.RoleOwner, "Owner", "owner"},
		{domain.RoleManager, "Manager", "manager"},
		{domain.RoleStaff, "Staff", "staff1"},
		{domain.RoleStaff, "Staff", "staff2"},
	}

	users := make([]domain.User, 0, len(roles))
	for i, r := range roles {
		u := domain.User{
			CompanyID:    companyID,
			Role:         r.role,
			Status:       domain.UserActive,
			FirstName:    r.first,
			LastName:     strings.Fields(cs.name)[0],
			Email:        fmt.Sprintf("%s@%s", r.login, cs.domain),
			PhoneNumber:  fmt.Sprintf("+7700%d00%04d", companyIndex, i+1),
			PasswordHash: hash,
		}
		if err := tx.Create(&u).Error; err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		log.Info().Str("email", u.Email).Str("role", string(u.Role)).Msg("user created")
		users = append(users, u)
	}
	return users, nil
}
