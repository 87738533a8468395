package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog/log"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// ErrInvalidCredentials is the single answer to every failed login: unknown
// user, wrong password and inactive account are indistinguishable.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// Transactor runs a function inside a fresh unit of work.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow *database.UnitOfWork) error) error
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in RegisterInput) Validate() error {
	return apperrors.Validation(validation.ValidateStruct(&in,
		validation.Field(&in.Username,
			validation.Required.Error("username is required"),
			validation.Match(usernamePattern).Error("username must be 3-64 characters, alphanumeric and underscore/hyphen only"),
		),
		validation.Field(&in.Email,
			validation.Required.Error("email is required"),
			validation.Length(0, 254).Error("email is too long"),
			is.EmailFormat.Error("invalid email format"),
		),
		validation.Field(&in.Password,
			validation.Required.Error("password is required"),
			validation.Length(MinPasswordLength, MaxPasswordLength).Error(
				fmt.Sprintf("password must be %d-%d characters", MinPasswordLength, MaxPasswordLength)),
		),
	))
}

// Service handles registration and authentication.
type Service struct {
	tx        Transactor
	tokens    *TokenIssuer
	config    config.Auth
	now       func() time.Time
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(tx Transactor, tokens *TokenIssuer, cfg config.Auth) (*Service, error) {
	// Compared against when the user does not exist, so both paths cost one
	// bcrypt comparison.
	dummy, err := HashPassword("dummy-password-for-timing", cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}
	return &Service{
		tx:        tx,
		tokens:    tokens,
		config:    cfg,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Register creates an active account. Username is checked before email;
// either conflict is a ConstraintViolation naming the field.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *entities.User
	err = s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		if err := ensureAbsent(uow.Users().RetrieveByUsername(ctx, in.Username)); err != nil {
			return conflictOr(err, "username")
		}
		if err := ensureAbsent(uow.Users().RetrieveByEmail(ctx, in.Email)); err != nil {
			return conflictOr(err, "email")
		}

		user, err = uow.Users().Create(ctx, &entities.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: passwordHash,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate verifies credentials, records the login time and issues a
// token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Token, error) {
	var token Token
	err := s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		user, err := uow.Users().RetrieveByUsername(ctx, strings.TrimSpace(username))
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = CheckPassword(password, s.dummyHash)
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if err := CheckPassword(password, user.PasswordHash); err != nil {
			return ErrInvalidCredentials
		}
		if !user.IsActive {
			return ErrInvalidCredentials
		}

		now := s.now().UTC()
		if _, err := uow.Users().Update(ctx, user.ID, entities.UserPatch{LastLogin: &now}); err != nil {
			return err
		}

		token, err = s.tokens.Issue(user.Username)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Debug().Msg("authentication failed")
		}
		return Token{}, err
	}
	return token, nil
}

// CurrentUser resolves a bearer token to an active user.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*entities.User, error) {
	username, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	var user *entities.User
	err = s.tx.Run(ctx, func(ctx context.Context, uow *database.UnitOfWork) error {
		user, err = uow.Users().RetrieveByUsername(ctx, username)
		return err
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// errExists marks a lookup that found a row.
var errExists = errors.New("exists")

// ensureAbsent turns a natural-key lookup into nil when the row is missing
// and errExists when it is present.
func ensureAbsent(_ *entities.User, err error) error {
	if err == nil {
		return errExists
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func conflictOr(err error, field string) error {
	if errors.Is(err, errExists) {
		return apperrors.Conflict("user", field)
	}
	return err
}
