// Package testutil builds in-memory databases and a small trading world
// for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradelink/internal/database"
	"tradelink/internal/domain"
)

// DB opens a private in-memory SQLite database with the full schema.
// A single connection serializes transactions like row locks would.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// World is one supplier and one consumer company linked together, with
// SupplierStaff as the assigned salesman.
type World struct {
	Supplier *domain.Company
	Consumer *domain.Company

	SupplierOwner   *domain.User
	SupplierManager *domain.User
	SupplierStaff   *domain.User
	SupplierStaff2  *domain.User

	ConsumerOwner  *domain.User
	ConsumerStaff  *domain.User
	ConsumerStaff2 *domain.User

	Outsider *domain.User

	Linking *domain.Linking
	Widget  *domain.Product
	Bolt    *domain.Product
}

func Seed(t *testing.T, db *gorm.DB) *World {
	t.Helper()
	w := &World{}

	w.Supplier = Company(t, db, "Acme Supply", domain.CompanySupplier)
	w.Consumer = Company(t, db, "Corner Shop", domain.CompanyConsumer)
	other := Company(t, db, "Elsewhere Ltd", domain.CompanyConsumer)

	w.SupplierOwner = User(t, db, w.Supplier.ID, domain.RoleOwner, "s-owner")
	w.SupplierManager = User(t, db, w.Supplier.ID, domain.RoleManager, "s-manager")
	w.SupplierStaff = User(t, db, w.Supplier.ID, domain.RoleStaff, "s-staff")
	w.SupplierStaff2 = User(t, db, w.Supplier.ID, domain.RoleStaff, "s-staff2")
	w.ConsumerOwner = User(t, db, w.Consumer.ID, domain.RoleOwner, "c-owner")
	w.ConsumerStaff = User(t, db, w.Consumer.ID, domain.RoleStaff, "c-staff")
	w.ConsumerStaff2 = User(t, db, w.Consumer.ID, domain.RoleStaff, "c-staff2")
	w.Outsider = User(t, db, other.ID, domain.RoleOwner, "outsider")

	salesman := w.SupplierStaff.ID
	w.Linking = &domain.Linking{
		ConsumerCompanyID:  w.Consumer.ID,
		SupplierCompanyID:  w.Supplier.ID,
		RequestedByUserID:  w.ConsumerStaff.ID,
		RespondedByUserID:  &salesman,
		AssignedSalesmanID: &salesman,
		Status:             domain.LinkingAccepted,
	}
	require.NoError(t, db.Create(w.Linking).Error)

	w.Widget = Product(t, db, w.Supplier.ID, "Widget", 100, 50, 10, 40)
	w.Bolt = Product(t, db, w.Supplier.ID, "Bolt", 5, 1000, 0, 0)
	return w
}

func Company(t *testing.T, db *gorm.DB, name string, kind domain.CompanyType) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name, Type: kind, Status: domain.CompanyActive}
	require.NoError(t, db.Create(c).Error)
	return c
}

var phoneSeq int

func User(t *testing.T, db *gorm.DB, companyID int64, role domain.UserRole, login string) *domain.User {
	t.Helper()
	phoneSeq++
	u := &domain.User{
		CompanyID:    companyID,
		Role:         role,
		Status:       domain.UserActive,
		FirstName:    login,
		LastName:     "Test",
		Email:        login + "@example.com",
		PhoneNumber:  fmt.Sprintf("+1555%07d", phoneSeq),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Product creates a catalog entry. A zero threshold means retail-only.
func Product(t *testing.T, db *gorm.DB, companyID int64, name string, retail int64, stock, threshold int, bulk int64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		CompanyID:     companyID,
		Name:          name,
		StockQuantity: stock,
		RetailPrice:   retail,
		MinimumOrder:  1,
		Unit:          "pcs",
	}
	if threshold > 0 {
		p.Threshold = &threshold
		p.BulkPrice = &bulk
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
