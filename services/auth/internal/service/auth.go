package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkghash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
	"github.com/Skotchmaster/storefront/services/auth/internal/transport"
)

const DefaultAccessTTL = 24 * time.Hour

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = repo.ErrInvalidCredentials
	ErrUserAlreadyExist   = repo.ErrUserAlreadyExist
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
}

func validate(email, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is empty", ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req transport.Credentials) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	if err := validate(req.Email, req.Password); err != nil {
		return nil, err
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
		} else {
			l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		}
		return nil, err
	}
	return user, nil
}

// EnsureUser registers the account unless it already exists.
func (s *AuthService) EnsureUser(ctx context.Context, req transport.Credentials) error {
	_, err := s.Register(ctx, req)
	if errors.Is(err, ErrUserAlreadyExist) {
		return nil
	}
	return err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	if err := validate(email, password); err != nil {
		return nil, err
	}

	user, err := s.Repo.CheckCredentials(ctx, email, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			l.Error("login_error", "status", 500, "error", err)
		}
		return nil, err
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	exp := time.Now().Add(ttl)
	token, err := tokens.NewAccessToken(user.ID.String(), user.Email, exp, s.JWTSecret)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	return &transport.LoginResult{
		AccessToken: token,
		AccessExp:   exp,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
	}, nil
}
