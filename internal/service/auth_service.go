package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-gateway/internal/auth"
	"github.com/spec-kit/marketplace-gateway/internal/domain"
	"github.com/spec-kit/marketplace-gateway/internal/events"
	"github.com/spec-kit/marketplace-gateway/internal/observability"
	"github.com/spec-kit/marketplace-gateway/internal/ratelimit"
	"github.com/spec-kit/marketplace-gateway/internal/repository"
	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

const invalidCredentials = "invalid email or password"

// AuthService coordinates registration, login and refresh for users and vendors.
type AuthService struct {
	users     repository.UserRepository
	vendors   repository.VendorRepository
	tokens    *auth.TokenManager
	hasher    *auth.PasswordHasher
	limiter   *ratelimit.LoginLimiter
	events    events.Dispatcher
	metrics   *observability.Metrics
	logger    *zap.Logger
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	VendorRepo   repository.VendorRepository
	Tokens       *auth.TokenManager
	Hasher       *auth.PasswordHasher
	LoginLimiter *ratelimit.LoginLimiter
	Events       events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewAuthService builds the service. It hashes a throwaway password once so
// logins for unknown emails cost the same as logins with a wrong password.
func NewAuthService(deps AuthDependencies) (*AuthService, error) {
	if deps.Tokens == nil || deps.Hasher == nil {
		return nil, errors.New("auth service requires a token manager and a password hasher")
	}
	dummy, err := deps.Hasher.Hash("timing-equalizer")
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Events
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &AuthService{
		users:     deps.UserRepo,
		vendors:   deps.VendorRepo,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		limiter:   deps.LoginLimiter,
		events:    dispatcher,
		metrics:   deps.Metrics,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// RegisterUserInput carries validated registration fields.
type RegisterUserInput struct {
	Email    string
	Password string
	Name     *string
}

// RegisterUser creates a USER account and issues its first token pair.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterUserInput) (*domain.User, domain.TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		s.metrics.RecordAuth(string(domain.ActorUser), "register", "conflict")
		return nil, domain.TokenPair{}, emailTaken()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordAuth(string(domain.ActorUser), "register", "conflict")
			return nil, domain.TokenPair{}, emailTaken()
		}
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	pair, err := s.issue(domain.ActorUser, user.ID, string(user.Role))
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.metrics.RecordAuth(string(domain.ActorUser), "register", "success")
	s.publish(ctx, events.EventUserRegistered, userActor(user), nil)
	return user, pair, nil
}

// LoginUser authenticates a user. Unknown email and wrong password produce the same error.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	if err := s.checkThrottle(ctx, domain.ActorUser, email); err != nil {
		return nil, domain.TokenPair{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return nil, domain.TokenPair{}, s.loginFailed(ctx, domain.ActorUser, email, "unknown_email")
	case err != nil:
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.TokenPair{}, s.loginFailed(ctx, domain.ActorUser, email, "bad_password")
	}

	pair, err := s.issue(domain.ActorUser, user.ID, string(user.Role))
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.loginSucceeded(ctx, domain.ActorUser, email)
	s.publish(ctx, events.EventUserLoggedIn, userActor(user), nil)
	return user, pair, nil
}

// GetUser loads the record behind an authenticated identity.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// RefreshUser exchanges a user refresh token for a new pair. The role is
// re-read from storage, never from the refresh token.
func (s *AuthService) RefreshUser(ctx context.Context, refreshToken string) (*domain.User, domain.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(domain.ActorUser, refreshToken)
	if err != nil {
		s.metrics.RecordAuth(string(domain.ActorUser), "refresh", "failure")
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.RecordAuth(string(domain.ActorUser), "refresh", "failure")
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}
	if err != nil {
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	pair, err := s.issue(domain.ActorUser, user.ID, string(user.Role))
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.metrics.RecordAuth(string(domain.ActorUser), "refresh", "success")
	return user, pair, nil
}

// ListUsers returns a page of users for administrators.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// hashPassword reports plaintexts bcrypt cannot take as a field error.
func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong), errors.Is(err, auth.ErrEmptyPassword):
		return "", apperrors.NewValidationError("invalid input", map[string]any{"password": err.Error()})
	case err != nil:
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

func (s *AuthService) issue(actor domain.ActorClass, id, role string) (domain.TokenPair, error) {
	pair, err := s.tokens.Issue(actor, id, role)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	return pair, nil
}

// checkThrottle fails open when the limiter backend is down so that a Redis
// outage does not lock everyone out.
func (s *AuthService) checkThrottle(ctx context.Context, actor domain.ActorClass, email string) error {
	err := s.limiter.Check(ctx, string(actor), email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ratelimit.ErrLoginThrottled):
		s.metrics.RecordAuth(string(actor), "login", "throttled")
		return apperrors.NewTooManyRequests("too many failed login attempts; try again later")
	default:
		s.logger.Warn("login limiter check failed", zap.String("actor", string(actor)), zap.Error(err))
		return nil
	}
}

func (s *AuthService) loginFailed(ctx context.Context, actor domain.ActorClass, email, reason string) error {
	if err := s.limiter.RecordFailure(ctx, string(actor), email); err != nil {
		s.logger.Warn("login limiter record failed", zap.String("actor", string(actor)), zap.Error(err))
	}
	s.metrics.RecordAuth(string(actor), "login", "failure")
	s.publish(ctx, events.EventLoginFailed, events.Actor{Class: actor}, events.LoginFailedPayload{Email: email, Reason: reason})
	return apperrors.NewUnauthorized(invalidCredentials)
}

func (s *AuthService) loginSucceeded(ctx context.Context, actor domain.ActorClass, email string) {
	if err := s.limiter.Reset(ctx, string(actor), email); err != nil {
		s.logger.Warn("login limiter reset failed", zap.String("actor", string(actor)), zap.Error(err))
	}
	s.metrics.RecordAuth(string(actor), "login", "success")
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload interface{}) {
	if err := s.events.Publish(ctx, events.New(eventType, actor, payload)); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func emailTaken() error {
	return apperrors.NewConflict("email already in use", map[string]any{"email": "already registered"})
}

func userActor(user *domain.User) events.Actor {
	return events.Actor{Class: domain.ActorUser, ID: user.ID, Role: string(user.Role)}
}

func vendorActor(vendor *domain.Vendor) events.Actor {
	return events.Actor{Class: domain.ActorVendor, ID: vendor.ID, Role: string(vendor.Role)}
}
