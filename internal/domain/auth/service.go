package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tradelink/internal/domain"
	"tradelink/internal/repository"
)

type tokenIssuer interface {
	GenerateToken(userID, companyID int64, role string) (string, error)
	TTL() time.Duration
}

// Service signs users in. Accounts are provisioned by company owners or the
// seeder; there is no self-registration.
type Service struct {
	store *repository.Store
	jwt   tokenIssuer
	log   zerolog.Logger
}

type SignInResult struct {
	User        *domain.User
	Company     *domain.Company
	AccessToken string
	ExpiresIn   time.Duration
}

func NewService(store *repository.Store, jwt tokenIssuer, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		jwt:   jwt,
		log:   log.With().Str("component", "auth").Logger(),
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.log.Debug().Int64("user_id", user.ID).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountSuspended
	}

	company, err := s.store.Company(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.GenerateToken(user.ID, user.CompanyID, string(user.Role))
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", user.ID).Msg("user signed in")
	return &SignInResult{User: user, Company: company, AccessToken: token, ExpiresIn: s.jwt.TTL()}, nil
}

// CurrentUser returns the caller and their company.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, *domain.Company, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	company, err := s.store.Company(ctx, user.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	return user, company, nil
}
