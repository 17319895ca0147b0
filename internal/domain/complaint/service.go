package complaint

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tradelink/internal/domain"
	"tradelink/internal/domain/access"
	"tradelink/internal/domain/chat"
	"tradelink/internal/pkg/metrics"
	"tradelink/internal/repository"
)

type Service struct {
	db          *gorm.DB
	store       *repository.Store
	composer    *chat.Composer
	broadcaster chat.Broadcaster
	log         zerolog.Logger
}

func NewService(db *gorm.DB, composer *chat.Composer, broadcaster chat.Broadcaster, log zerolog.Logger) *Service {
	return &Service{
		db:          db,
		store:       repository.New(db),
		composer:    composer,
		broadcaster: broadcaster,
		log:         log.With().Str("component", "complaint").Logger(),
	}
}

// Create files a complaint against an order. Only the consumer staff who
// placed the order may do so; the linking's salesman is assigned.
func (s *Service) Create(ctx context.Context, actorID, orderID int64, description string) (*domain.Complaint, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	var complaint domain.Complaint
	var msg *domain.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		user, err := store.User(ctx, actorID)
		if err != nil {
			return err
		}
		scope, err := store.OrderScope(ctx, orderID)
		if err != nil {
			return err
		}
		if !access.CanFileComplaint(user, scope.Order) {
			return ErrComplaintAccessDenied
		}
		if scope.Linking.AssignedSalesmanID == nil {
			return ErrNoAssignedSalesman
		}

		complaint = domain.Complaint{
			OrderID:            scope.Order.ID,
			AssignedSalesmanID: *scope.Linking.AssignedSalesmanID,
			Status:             domain.ComplaintOpen,
			Description:        description,
		}
		if err := tx.Create(&complaint).Error; err != nil {
			return err
		}
		if err := tx.Create(&domain.ComplaintHistory{
			ComplaintID:     complaint.ID,
			ChangedByUserID: user.ID,
			NewStatus:       domain.ComplaintOpen,
			Notes:           "Complaint created",
		}).Error; err != nil {
			return err
		}

		msg, err = s.composer.Compose(ctx, tx, chat.Transition{
			Entity:    chat.EntityComplaint,
			EntityID:  complaint.ID,
			OrderID:   scope.Order.ID,
			ActorID:   user.ID,
			NewStatus: string(domain.ComplaintOpen),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitionsTotal.WithLabelValues(chat.EntityComplaint, string(complaint.Status)).Inc()
	s.log.Info().Int64("complaint_id", complaint.ID).Int64("order_id", orderID).Msg("complaint created")
	chat.Announce(s.broadcaster, complaint.OrderID, msg)
	return &complaint, nil
}

func (s *Service) Escalate(ctx context.Context, actorID, complaintID int64, notes string) (*domain.Complaint, error) {
	return s.apply(ctx, actorID, complaintID, ActionEscalate, Input{Notes: notes})
}

// Claim assigns the complaint to the calling manager. Of several concurrent
// claims exactly one succeeds; the others get ErrAlreadyClaimed or
// ErrConcurrentUpdate, both conflicts.
func (s *Service) Claim(ctx context.Context, actorID, complaintID int64) (*domain.Complaint, error) {
	return s.apply(ctx, actorID, complaintID, ActionClaim, Input{})
}

func (s *Service) Resolve(ctx context.Context, actorID, complaintID int64, in Input) (*domain.Complaint, error) {
	return s.apply(ctx, actorID, complaintID, ActionResolve, in)
}

func (s *Service) Close(ctx context.Context, actorID, complaintID int64, in Input) (*domain.Complaint, error) {
	return s.apply(ctx, actorID, complaintID, ActionClose, in)
}

// apply re-reads the complaint under a row lock, decides, and writes the
// status, the history row, the optional order rejection and the system
// message in one transaction. The status update is conditional on the
// status read, so a racing writer turns into a conflict instead of a
// silent overwrite.
func (s *Service) apply(ctx context.Context, actorID, complaintID int64, action Action, in Input) (*domain.Complaint, error) {
	var complaint *domain.Complaint
	var plan *Plan
	var msg *domain.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		user, err := store.User(ctx, actorID)
		if err != nil {
			return err
		}
		complaint, err = store.ForUpdate().Complaint(ctx, complaintID)
		if err != nil {
			return err
		}
		scope, err := store.OrderScope(ctx, complaint.OrderID)
		if err != nil {
			return err
		}

		plan, err = Decide(complaint, scope.Linking, user, action, in)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": plan.To, "updated_at": now}
		q := tx.Model(&domain.Complaint{}).Where("id = ? AND status = ?", complaint.ID, plan.From)
		if plan.ClaimManager {
			updates["escalated_to_manager_id"] = user.ID
			q = q.Where("escalated_to_manager_id IS NULL")
		}
		if plan.ResolutionNotes != nil {
			updates["resolution_notes"] = *plan.ResolutionNotes
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if plan.ClaimManager {
				return ErrAlreadyClaimed
			}
			return ErrConcurrentUpdate
		}

		complaint.Status = plan.To
		complaint.UpdatedAt = now
		if plan.ClaimManager {
			managerID := user.ID
			complaint.EscalatedToManagerID = &managerID
		}
		if plan.ResolutionNotes != nil {
			complaint.ResolutionNotes = plan.ResolutionNotes
		}

		if err := tx.Create(&domain.ComplaintHistory{
			ComplaintID:     complaint.ID,
			ChangedByUserID: user.ID,
			NewStatus:       plan.To,
			Notes:           plan.HistoryNotes,
		}).Error; err != nil {
			return err
		}

		if plan.CancelOrder {
			err := tx.Model(&domain.Order{}).
				Where("id = ?", scope.Order.ID).
				Updates(map[string]any{"status": domain.OrderRejected, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}

		msg, err = s.composer.Compose(ctx, tx, chat.Transition{
			Entity:    chat.EntityComplaint,
			EntityID:  complaint.ID,
			OrderID:   scope.Order.ID,
			ActorID:   user.ID,
			OldStatus: chat.StatusPtr(plan.From),
			NewStatus: string(plan.To),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitionsTotal.WithLabelValues(chat.EntityComplaint, string(plan.To)).Inc()
	if plan.CancelOrder {
		metrics.WorkflowTransitionsTotal.WithLabelValues(chat.EntityOrder, string(domain.OrderRejected)).Inc()
	}
	s.log.Info().
		Int64("complaint_id", complaint.ID).
		Int64("actor_id", actorID).
		Str("action", string(action)).
		Str("old_status", string(plan.From)).
		Str("new_status", string(plan.To)).
		Bool("order_cancelled", plan.CancelOrder).
		Msg("complaint transition")
	chat.Announce(s.broadcaster, complaint.OrderID, msg)
	return complaint, nil
}

// Get returns a complaint the caller may see.
func (s *Service) Get(ctx context.Context, actorID, complaintID int64) (*domain.Complaint, error) {
	complaint, _, err := s.guarded(ctx, actorID, complaintID)
	return complaint, err
}

// History lists the transitions of a complaint oldest first.
func (s *Service) History(ctx context.Context, actorID, complaintID int64) ([]domain.ComplaintHistory, error) {
	if _, _, err := s.guarded(ctx, actorID, complaintID); err != nil {
		return nil, err
	}
	var entries []domain.ComplaintHistory
	err := s.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) guarded(ctx context.Context, actorID, complaintID int64) (*domain.Complaint, *domain.User, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	complaint, err := s.store.Complaint(ctx, complaintID)
	if err != nil {
		return nil, nil, err
	}
	scope, err := s.store.OrderScope(ctx, complaint.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAccessComplaint(user, complaint, scope.Order, scope.Linking) {
		return nil, nil, ErrComplaintAccessDenied
	}
	return complaint, user, nil
}

// Mine lists complaints on orders the caller placed.
func (s *Service) Mine(ctx context.Context, actorID int64) ([]domain.Complaint, error) {
	return s.list(s.joined(ctx).Where("orders.consumer_staff_id = ?", actorID))
}

// AssignedToMe lists open complaints waiting on the caller as salesman.
func (s *Service) AssignedToMe(ctx context.Context, actorID int64) ([]domain.Complaint, error) {
	return s.list(s.db.WithContext(ctx).
		Where("assigned_to_salesman_id = ? AND status = ?", actorID, domain.ComplaintOpen))
}

// EscalatedPool lists unclaimed escalated complaints of the caller's
// supplier company. Managers and owners only.
func (s *Service) EscalatedPool(ctx context.Context, actorID int64) ([]domain.Complaint, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !user.IsManagerOrOwner() || user.Status == domain.UserSuspended {
		return nil, ErrComplaintAccessDenied
	}
	return s.list(s.joined(ctx).
		Where("linkings.supplier_company_id = ?", user.CompanyID).
		Where("complaints.status = ? AND complaints.escalated_to_manager_id IS NULL", domain.ComplaintEscalated))
}

// Managed lists in-progress complaints the caller claimed.
func (s *Service) Managed(ctx context.Context, actorID int64) ([]domain.Complaint, error) {
	return s.list(s.db.WithContext(ctx).
		Where("escalated_to_manager_id = ? AND status = ?", actorID, domain.ComplaintInProgress))
}

// Company lists every complaint touching the owner's company.
func (s *Service) Company(ctx context.Context, actorID int64) ([]domain.Complaint, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleOwner || user.Status == domain.UserSuspended {
		return nil, ErrComplaintAccessDenied
	}
	return s.list(s.joined(ctx).
		Where("linkings.consumer_company_id = ? OR linkings.supplier_company_id = ?", user.CompanyID, user.CompanyID))
}

func (s *Service) joined(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = complaints.order_id").
		Joins("JOIN linkings ON linkings.id = orders.linking_id")
}

func (s *Service) list(q *gorm.DB) ([]domain.Complaint, error) {
	var complaints []domain.Complaint
	if err := q.Order("complaints.created_at DESC").Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}
