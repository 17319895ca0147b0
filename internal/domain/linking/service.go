package linking

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tradelink/internal/database"
	"tradelink/internal/domain"
	"tradelink/internal/domain/access"
	"tradelink/internal/repository"
)

type Service struct {
	db    *gorm.DB
	store *repository.Store
	log   zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{
		db:    db,
		store: repository.New(db),
		log:   log.With().Str("component", "linking").Logger(),
	}
}

// Request asks a supplier to trade with the caller's consumer company.
func (s *Service) Request(ctx context.Context, actorID, supplierCompanyID int64, message string) (*domain.Linking, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	own, err := s.store.Company(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	if own.Type != domain.CompanyConsumer || user.Status == domain.UserSuspended {
		return nil, ErrNotConsumer
	}
	supplier, err := s.store.Company(ctx, supplierCompanyID)
	if err != nil {
		return nil, err
	}
	if supplier.Type != domain.CompanySupplier {
		return nil, ErrNotSupplier
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&domain.Linking{}).
		Where("consumer_company_id = ? AND supplier_company_id = ?", own.ID, supplier.ID).
		Where("status IN ?", []domain.LinkingStatus{domain.LinkingPending, domain.LinkingAccepted}).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrLinkingExists
	}

	linking := &domain.Linking{
		ConsumerCompanyID: own.ID,
		SupplierCompanyID: supplier.ID,
		RequestedByUserID: user.ID,
		Status:            domain.LinkingPending,
		Message:           strings.TrimSpace(message),
	}
	if err := s.db.WithContext(ctx).Create(linking).Error; err != nil {
		return nil, err
	}
	s.log.Info().Int64("linking_id", linking.ID).Int64("supplier_company_id", supplier.ID).Msg("linking requested")
	return linking, nil
}

// Respond accepts or rejects a pending linking. The responder becomes the
// assigned salesman. A second accepted linking for the same pair is
// refused by ux_linkings_accepted_pair.
func (s *Service) Respond(ctx context.Context, actorID, linkingID int64, accept bool) (*domain.Linking, error) {
	var linking *domain.Linking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		user, err := store.User(ctx, actorID)
		if err != nil {
			return err
		}
		linking, err = store.ForUpdate().Linking(ctx, linkingID)
		if err != nil {
			return err
		}
		if !access.CanRespondToLinking(user, linking) {
			return ErrLinkingAccessDenied
		}
		if linking.Status != domain.LinkingPending {
			return ErrNotPending
		}

		next := domain.LinkingRejected
		if accept {
			next = domain.LinkingAccepted
		}
		now := time.Now().UTC()
		res := tx.Model(&domain.Linking{}).
			Where("id = ? AND status = ?", linking.ID, domain.LinkingPending).
			Updates(map[string]any{
				"status":                    next,
				"responded_by_user_id":      user.ID,
				"assigned_salesman_user_id": user.ID,
				"updated_at":                now,
			})
		if res.Error != nil {
			if database.IsUniqueViolation(res.Error) {
				return ErrAlreadyLinked
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		responder := user.ID
		linking.Status = next
		linking.RespondedByUserID = &responder
		linking.AssignedSalesmanID = &responder
		linking.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("linking_id", linking.ID).Int64("actor_id", actorID).Str("status", string(linking.Status)).Msg("linking answered")
	return linking, nil
}

func (s *Service) Get(ctx context.Context, actorID, linkingID int64) (*domain.Linking, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	linking, err := s.store.Linking(ctx, linkingID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewLinking(user, linking) {
		return nil, ErrLinkingAccessDenied
	}
	return linking, nil
}

// ListForCompany returns every linking the caller's company is part of.
func (s *Service) ListForCompany(ctx context.Context, actorID int64) ([]domain.Linking, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	var linkings []domain.Linking
	err = s.db.WithContext(ctx).
		Where("consumer_company_id = ? OR supplier_company_id = ?", user.CompanyID, user.CompanyID).
		Order("created_at DESC").
		Find(&linkings).Error
	if err != nil {
		return nil, err
	}
	return linkings, nil
}
