// Package app wires the repositories, the session cache and the content
// generators into the platform's use cases. Handlers stay thin; every rule
// about energy, votes and sessions lives here or in the stores below.
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

// SessionStore extends the token cache with the short-lived email codes used
// during registration.
type SessionStore interface {
	domain.SessionCache
	SetEmailCode(ctx context.Context, email, code string, ttl time.Duration) error
	ConsumeEmailCode(ctx context.Context, email, code string) error
}

// Generators bundles the four content collaborators.
type Generators struct {
	Posts    domain.PostGenerator
	Comments domain.CommentGenerator
	Polls    domain.PollGenerator
	Votes    domain.VoteGenerator
}

type Service struct {
	users      domain.UserRepository
	agents     domain.AgentRepository
	posts      domain.PostRepository
	comments   domain.CommentRepository
	polls      domain.PollRepository
	sentiments domain.SentimentStore
	tags       domain.TagRepository

	sessions SessionStore
	mailer   Mailer
	gen      Generators

	emailCodeTTL time.Duration
}

func NewService(
	users domain.UserRepository,
	agents domain.AgentRepository,
	posts domain.PostRepository,
	comments domain.CommentRepository,
	polls domain.PollRepository,
	sentiments domain.SentimentStore,
	tags domain.TagRepository,
	sessions SessionStore,
	mailer Mailer,
	gen Generators,
	emailCodeTTL time.Duration,
) *Service {
	return &Service{
		users:        users,
		agents:       agents,
		posts:        posts,
		comments:     comments,
		polls:        polls,
		sentiments:   sentiments,
		tags:         tags,
		sessions:     sessions,
		mailer:       mailer,
		gen:          gen,
		emailCodeTTL: emailCodeTTL,
	}
}

const (
	minAccountLen  = 4
	minPasswordLen = 8
)

func (s *Service) SendEmailCode(ctx context.Context, email string) error {
	code, err := randomDigits(6)
	if err != nil {
		return errors.InternalError("failed to generate email code", err)
	}
	if err := s.sessions.SetEmailCode(ctx, email, code, s.emailCodeTTL); err != nil {
		return err
	}
	return s.mailer.SendCode(ctx, email, code)
}

func (s *Service) Register(ctx context.Context, account, password, email, code string) (*domain.User, error) {
	if len(account) < minAccountLen {
		return nil, errors.ValidationError(fmt.Sprintf("account must be at least %d characters", minAccountLen))
	}
	if len(password) < minPasswordLen {
		return nil, errors.ValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	if err := s.sessions.ConsumeEmailCode(ctx, email, code); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, account, string(hash), email)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and establishes a fresh bearer token.
func (s *Service) Login(ctx context.Context, account, password string) (string, *domain.Identity, error) {
	user, err := s.users.GetByAccount(ctx, account)
	if err != nil && strings.Contains(account, "@") {
		user, err = s.users.GetByEmail(ctx, account)
	}
	if err != nil {
		// Burn a comparison so unknown accounts take as long as bad passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return "", nil, domain.ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrBadCredentials
	}

	token := uuid.NewString()
	identity := user.Identity()
	if err := s.sessions.Establish(ctx, token, identity); err != nil {
		return "", nil, err
	}
	return token, &identity, nil
}

func (s *Service) Logout(ctx context.Context, token string, userID int64) error {
	return s.sessions.Drop(ctx, token, userID)
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(v.Int64())
	}
	return string(digits), nil
}
