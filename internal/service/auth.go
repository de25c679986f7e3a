package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/guard"
	"github.com/sidebet/platform/internal/ledger"
	"github.com/sidebet/platform/internal/repository"
)

// SeedBalance is the starting balance for every new member, in cents.
const SeedBalance int64 = 100_000

// AuthService handles member signup and login.
type AuthService struct {
	pool    *pgxpool.Pool
	users   repository.AuthUserRepository
	members repository.MemberRepository
	outbox  repository.OutboxRepository
	engine  *ledger.Engine
	jwtMgr  *auth.JWTManager
	logger  *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.AuthUserRepository,
	members repository.MemberRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	jwtMgr *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		pool:    pool,
		users:   users,
		members: members,
		outbox:  outbox,
		engine:  engine,
		jwtMgr:  jwtMgr,
		logger:  logger,
	}
}

// SignupInput holds member registration fields.
type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// AuthResult is the response to a successful signup or login.
type AuthResult struct {
	Token    string    `json:"token"`
	MemberID uuid.UUID `json:"member_id"`
	Email    string    `json:"email"`
	Balance  int64     `json:"balance"`
}

// Signup registers a member, seeds the starting balance and returns a
// session token. Credentials, member row and seed entry commit together.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if input.DisplayName == "" {
		return nil, domain.ErrValidation("display_name is required")
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("lookup email", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	memberID := uuid.New()
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.users.Create(ctx, tx, &domain.AuthUser{
		ID:           memberID,
		Email:        input.Email,
		PasswordHash: string(hash),
	}); err != nil {
		return nil, domain.ErrInternal("create auth user", err)
	}

	member := &domain.Member{
		ID:          memberID,
		DisplayName: input.DisplayName,
		Balance:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.members.Create(ctx, tx, member); err != nil {
		return nil, domain.ErrInternal("create member", err)
	}

	_, seeded, err := s.engine.ExecuteSeed(ctx, tx, memberID, SeedBalance)
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewMemberCreatedEvent(seeded)); err != nil {
		return nil, domain.ErrInternal("member created event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("member signed up", "member_id", memberID, "display_name", input.DisplayName)

	token, err := s.jwtMgr.GenerateToken(memberID, input.Email, input.DisplayName)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, MemberID: memberID, Email: input.Email, Balance: seeded.Balance}, nil
}

// LoginInput holds member login fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a member. clientIP is recorded with each attempt,
// and accounts with too many recent failures are locked out.
func (s *AuthService) Login(ctx context.Context, input LoginInput, clientIP string) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("lookup email", err)
	}
	if user == nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, clientIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, clientIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	guard.RecordAttempt(ctx, s.pool, input.Email, clientIP, true)

	member, err := s.members.FindByID(ctx, s.pool, user.ID)
	if err != nil {
		return nil, domain.ErrInternal("lookup member", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	token, err := s.jwtMgr.GenerateToken(member.ID, user.Email, member.DisplayName)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, MemberID: member.ID, Email: user.Email, Balance: member.Balance}, nil
}
