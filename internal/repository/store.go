package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradelink/internal/domain"
)

var (
	ErrUserNotFound      = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrCompanyNotFound   = fmt.Errorf("company %w", domain.ErrNotFound)
	ErrLinkingNotFound   = fmt.Errorf("linking %w", domain.ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrProductNotFound   = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrComplaintNotFound = fmt.Errorf("complaint %w", domain.ErrNotFound)
)

// Store reads authoritative entity rows. Every workflow operation re-reads
// through it instead of trusting state carried between requests.
type Store struct {
	db     *gorm.DB
	locked bool
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx binds the store to an open transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, locked: s.locked}
}

// ForUpdate makes subsequent reads take row locks (no-op on SQLite).
func (s *Store) ForUpdate() *Store {
	return &Store{db: s.db, locked: true}
}

func (s *Store) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.locked {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *Store) first(ctx context.Context, dst any, id int64, notFound error) error {
	if err := s.query(ctx).First(dst, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return err
	}
	return nil
}

func (s *Store) User(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := s.first(ctx, &u, id, ErrUserNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) Company(ctx context.Context, id int64) (*domain.Company, error) {
	var c domain.Company
	if err := s.first(ctx, &c, id, ErrCompanyNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Linking(ctx context.Context, id int64) (*domain.Linking, error) {
	var l domain.Linking
	if err := s.first(ctx, &l, id, ErrLinkingNotFound); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) Order(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := s.first(ctx, &o, id, ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderWithItems loads an order and its frozen line items.
func (s *Store) OrderWithItems(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := s.db.WithContext(ctx).Preload("LineItems").First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := s.first(ctx, &p, id, ErrProductNotFound); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Complaint(ctx context.Context, id int64) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := s.first(ctx, &c, id, ErrComplaintNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

// UserByEmail matches case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// OrderScope is an order together with the linking it belongs to,
// the pair every order and complaint guard needs.
type OrderScope struct {
	Order   *domain.Order
	Linking *domain.Linking
}

func (s *Store) OrderScope(ctx context.Context, orderID int64) (*OrderScope, error) {
	order, err := s.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	linking, err := s.Linking(ctx, order.LinkingID)
	if err != nil {
		return nil, err
	}
	return &OrderScope{Order: order, Linking: linking}, nil
}
