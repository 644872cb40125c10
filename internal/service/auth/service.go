package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"sweetshop/internal/domain"
	"sweetshop/internal/logging"
	userrepo "sweetshop/internal/repository/user"
)

// Service handles registration, login and token verification.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenIssuer
	logger      logrus.FieldLogger
	passwordMin int
	cost        int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for token issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.tokens = newTokenIssuer(string(s.tokens.secret), s.tokens.ttl, now) }
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger sets the service logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = logging.OrDiscard(logger) }
}

// New creates a Service signing HS256 tokens with secret that live for ttl.
func New(repo userrepo.Repository, secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		tokens:      newTokenIssuer(secret, ttl, time.Now),
		logger:      logging.Discard(),
		passwordMin: 6,
		cost:        bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account with the user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u, err := s.newUser(in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, *u)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("user with this email %w", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// EnsureAdmin creates an admin account unless the email is already registered.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if existing, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	u, err := s.newUser(in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, *u)
}

func (s *Service) newUser(in RegisterInput, role string) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := in.Password
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, domain.Invalid("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalid("email is not valid")
	}
	if len(password) < s.passwordMin {
		return nil, domain.Invalid(fmt.Sprintf("password must be at least %d characters", s.passwordMin))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	return &domain.User{Username: username, Email: email, PasswordHash: string(hashed), Role: role}, nil
}

// Login validates credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", err
	}
	s.logger.WithField("user_id", u.ID).Debug("token issued")
	return token, nil
}

// Authenticate verifies a bearer token and returns the identity it carries.
func (s *Service) Authenticate(token string) (*domain.Identity, error) {
	return s.tokens.Validate(token)
}
