package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sidebet/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// MemberRepository provides access to members.
type MemberRepository interface {
	// FindByID returns a member by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Member, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and
	// returns the member.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Member, error)

	// Create inserts a new member.
	Create(ctx context.Context, db DBTX, member *domain.Member) error

	// ApplyBalanceDelta atomically adjusts the balance using server-side
	// arithmetic and returns the updated member.
	ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, memberID uuid.UUID, delta int64) (*domain.Member, error)

	// ListByLeagueRanked returns league members ordered by balance
	// descending (the leaderboard order).
	ListByLeagueRanked(ctx context.Context, db DBTX, leagueID uuid.UUID) ([]domain.Member, error)
}

// BetRepository provides access to bets.
type BetRepository interface {
	Create(ctx context.Context, db DBTX, bet *domain.Bet) error

	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bet, error)

	// LockForUpdate pins the bet row so wager creation can re-check the
	// status inside its own transaction.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bet, error)

	// MarkResolved is the settlement mutual-exclusion gate: a single
	// compare-and-set on the status column. It returns the updated bet,
	// or nil when another request already moved the bet out of
	// open/closed.
	MarkResolved(ctx context.Context, tx pgx.Tx, betID uuid.UUID, res domain.ResolutionMode, winner *string, didHit *bool, resolvedBy uuid.UUID) (*domain.Bet, error)

	// TransitionStatus moves the bet between non-terminal states
	// (open->closed, open|closed->disputed) with the same compare-and-set
	// shape. Returns nil when the bet was not in any of the from states.
	TransitionStatus(ctx context.Context, db DBTX, betID uuid.UUID, from []domain.BetStatus, to domain.BetStatus) (*domain.Bet, error)

	// ListByLeague returns a league's bets, newest first.
	ListByLeague(ctx context.Context, db DBTX, leagueID uuid.UUID, activeOnly bool) ([]domain.Bet, error)

	// ListOpenSportsBets returns unresolved bets tied to sports events,
	// for the automatic-resolution worker.
	ListOpenSportsBets(ctx context.Context, db DBTX) ([]domain.Bet, error)
}

// WagerRepository provides access to wagers.
type WagerRepository interface {
	// Insert creates a wager. The unique (bet_id, member_id) index backs
	// the at-most-one-wager-per-member-per-bet rule.
	Insert(ctx context.Context, db DBTX, wager *domain.Wager) error

	// ListByBet returns all wagers on a bet, oldest first.
	ListByBet(ctx context.Context, db DBTX, betID uuid.UUID) ([]domain.Wager, error)

	// ListByMember returns a member's wagers, newest first.
	ListByMember(ctx context.Context, db DBTX, memberID uuid.UUID, limit int) ([]domain.Wager, error)

	// FindByBetAndMember locates one member's wager on a bet, or nil.
	FindByBetAndMember(ctx context.Context, db DBTX, betID, memberID uuid.UUID) (*domain.Wager, error)

	// MarkSettled applies the terminal (status, payout) pair. The
	// WHERE status='pending' guard makes the transition single-shot.
	MarkSettled(ctx context.Context, tx pgx.Tx, wagerID uuid.UUID, status domain.WagerStatus, payout int64) error
}

// LedgerRepository provides access to ledger_entries.
type LedgerRepository interface {
	// Insert creates an append-only entry carrying the post-update
	// balance snapshot. Returns the inserted row.
	Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.LedgerEntry, error)

	// ListByMember returns entries for a member, newest first.
	ListByMember(ctx context.Context, db DBTX, memberID uuid.UUID, limit int) ([]domain.LedgerEntry, error)

	// ListAllByMember returns every entry for a member, oldest first,
	// the order ledger replay folds them in.
	ListAllByMember(ctx context.Context, db DBTX, memberID uuid.UUID) ([]domain.LedgerEntry, error)

	// DailyStakeTotal returns the total amount the member has staked
	// since the given time, as a positive number of cents.
	DailyStakeTotal(ctx context.Context, db DBTX, memberID uuid.UUID, since time.Time) (int64, error)
}

// StatsRepository provides access to member_stats.
type StatsRepository interface {
	// ApplyResult folds one settled wager into the member's running
	// stats, creating the row on first use. Runs inside the settlement
	// transaction.
	ApplyResult(ctx context.Context, tx pgx.Tx, memberID uuid.UUID, stake, pnl int64, won bool) error

	// FindByMemberID returns stats for one member, or nil.
	FindByMemberID(ctx context.Context, db DBTX, memberID uuid.UUID) (*domain.MemberStats, error)

	// ListByLeague returns stats for all members of a league.
	ListByLeague(ctx context.Context, db DBTX, leagueID uuid.UUID) ([]domain.MemberStats, error)
}

// LeagueRepository provides access to leagues and membership.
type LeagueRepository interface {
	Create(ctx context.Context, db DBTX, league *domain.League) error

	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.League, error)

	AddMember(ctx context.Context, db DBTX, leagueID, memberID uuid.UUID) error

	IsMember(ctx context.Context, db DBTX, leagueID, memberID uuid.UUID) (bool, error)

	// CommissionerOver reports whether the requester is the commissioner
	// of at least one league the member belongs to.
	CommissionerOver(ctx context.Context, db DBTX, requesterID, memberID uuid.UUID) (bool, error)
}

// EventRepository provides access to events (read-mostly; the result feed
// is the writer).
type EventRepository interface {
	Create(ctx context.Context, db DBTX, event *domain.Event) error

	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error)

	// RecordResult marks an event finished with its observed result.
	RecordResult(ctx context.Context, db DBTX, eventID uuid.UUID, result string) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}

// AuthUserRepository provides access to auth_users.
type AuthUserRepository interface {
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error)

	Create(ctx context.Context, db DBTX, user *domain.AuthUser) error
}
