package order

import (
	"context"
	"errors"
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
	directory   *chat.Directory
	composer    *chat.Composer
	broadcaster chat.Broadcaster
	log         zerolog.Logger
}

func NewService(db *gorm.DB, directory *chat.Directory, composer *chat.Composer, broadcaster chat.Broadcaster, log zerolog.Logger) *Service {
	return &Service{
		db:          db,
		store:       repository.New(db),
		directory:   directory,
		composer:    composer,
		broadcaster: broadcaster,
		log:         log.With().Str("component", "order").Logger(),
	}
}

// Create places an order under a linking. Stock, prices, line items, the
// order chat and its first system message are written in one transaction.
func (s *Service) Create(ctx context.Context, actorID, linkingID int64, lines []LineRequest) (*domain.Order, error) {
	var order domain.Order
	var created *domain.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		user, err := store.User(ctx, actorID)
		if err != nil {
			return err
		}
		linking, err := store.Linking(ctx, linkingID)
		if err != nil {
			return err
		}
		if !access.CanPlaceOrder(user, linking) {
			return ErrOrderAccessDenied
		}

		products := make(map[int64]*domain.Product, len(lines))
		for _, line := range lines {
			if _, dup := products[line.ProductID]; dup {
				continue
			}
			p, err := store.ForUpdate().Product(ctx, line.ProductID)
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			products[p.ID] = p
		}

		priced, total, err := Price(linking.SupplierCompanyID, products, lines)
		if err != nil {
			return err
		}

		order = domain.Order{
			LinkingID:       linking.ID,
			ConsumerStaffID: user.ID,
			TotalPrice:      total,
			Status:          domain.OrderCreated,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := make([]domain.OrderLineItem, 0, len(priced))
		for _, line := range priced {
			items = append(items, domain.OrderLineItem{
				OrderID:   order.ID,
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})

			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock_quantity >= ?", line.Product.ID, line.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.LineItems = items

		if _, err := s.directory.WithTx(tx).CreateOrderChat(ctx, linking.ID, order.ID); err != nil {
			return err
		}

		created, err = s.composer.Compose(ctx, tx, chat.Transition{
			Entity:    chat.EntityOrder,
			EntityID:  order.ID,
			OrderID:   order.ID,
			ActorID:   user.ID,
			NewStatus: string(domain.OrderCreated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitionsTotal.WithLabelValues(chat.EntityOrder, string(order.Status)).Inc()
	s.log.Info().Int64("order_id", order.ID).Int64("linking_id", linkingID).Int64("total_price", order.TotalPrice).Msg("order created")
	chat.Announce(s.broadcaster, order.ID, created)
	return &order, nil
}

// UpdateStatus moves an order to any supplier-settable status. Only users of
// the linking's supplier company may do so.
func (s *Service) UpdateStatus(ctx context.Context, actorID, orderID int64, status string) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var order *domain.Order
	var announced *domain.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		user, err := store.User(ctx, actorID)
		if err != nil {
			return err
		}
		order, err = store.ForUpdate().Order(ctx, orderID)
		if err != nil {
			return err
		}
		linking, err := store.Linking(ctx, order.LinkingID)
		if err != nil {
			return err
		}
		if !access.CanChangeOrderStatus(user, order, linking) {
			return ErrOrderAccessDenied
		}
		if order.Status == domain.OrderRejected {
			return ErrOrderRejected
		}

		old := order.Status
		if old == next {
			return nil
		}

		now := time.Now().UTC()
		err = tx.Model(&domain.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{"status": next, "updated_at": now}).Error
		if err != nil {
			return err
		}
		order.Status = next
		order.UpdatedAt = now

		announced, err = s.composer.Compose(ctx, tx, chat.Transition{
			Entity:    chat.EntityOrder,
			EntityID:  order.ID,
			OrderID:   order.ID,
			ActorID:   user.ID,
			OldStatus: chat.StatusPtr(old),
			NewStatus: string(next),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if announced != nil {
		metrics.WorkflowTransitionsTotal.WithLabelValues(chat.EntityOrder, string(next)).Inc()
		s.log.Info().Int64("order_id", order.ID).Int64("actor_id", actorID).Str("new_status", string(next)).Msg("order status changed")
		chat.Announce(s.broadcaster, order.ID, announced)
	}
	return order, nil
}

// Get returns an order with its line items to users of either company.
func (s *Service) Get(ctx context.Context, actorID, orderID int64) (*domain.Order, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}
	scope, err := s.store.OrderScope(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewOrder(user, scope.Order, scope.Linking) {
		return nil, ErrOrderAccessDenied
	}
	return s.store.OrderWithItems(ctx, orderID)
}

// List returns every order of linkings the caller's company is part of.
func (s *Service) List(ctx context.Context, actorID int64) ([]domain.Order, error) {
	user, err := s.store.User(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	err = s.db.WithContext(ctx).
		Joins("JOIN linkings ON linkings.id = orders.linking_id").
		Where("linkings.consumer_company_id = ? OR linkings.supplier_company_id = ?", user.CompanyID, user.CompanyID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
