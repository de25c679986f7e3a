// Package app assembles repositories, services and the HTTP router so
// the api and resolver-worker binaries share one wiring.
package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/guard"
	"github.com/sidebet/platform/internal/handler"
	"github.com/sidebet/platform/internal/infra"
	"github.com/sidebet/platform/internal/ledger"
	"github.com/sidebet/platform/internal/policy"
	"github.com/sidebet/platform/internal/projection"
	"github.com/sidebet/platform/internal/repository"
	"github.com/sidebet/platform/internal/service"
	"github.com/sidebet/platform/internal/settlement"
)

// Deps holds the externally constructed dependencies the wiring needs.
type Deps struct {
	Pool   *pgxpool.Pool
	Cache  projection.Store
	JWTMgr *auth.JWTManager
	Cfg    *infra.Config
	Logger *slog.Logger
}

// Services groups the wired service layer plus the repositories the
// handlers use directly.
type Services struct {
	Auth    *service.AuthService
	Betting *service.BettingService
	Members *service.MemberService
	Leagues *service.LeagueService

	Bets   repository.BetRepository
	Events repository.EventRepository
}

// PotPolicyFromConfig maps the POT_POLICY setting to a settlement policy.
func PotPolicyFromConfig(cfg *infra.Config) settlement.PotPolicy {
	if cfg.PotPolicy == "return_to_creator" {
		return settlement.ReturnToCreator{}
	}
	return settlement.HoldPot{}
}

// LimitsFromConfig maps the stake limit settings to a LimitPolicy.
func LimitsFromConfig(cfg *infra.Config) policy.LimitPolicy {
	return policy.LimitPolicy{
		SingleWagerMax: cfg.MaxStake,
		DailyStakeMax:  cfg.DailyStakeMax,
	}
}

// BuildServices wires repositories, the ledger engine and the service
// layer.
func BuildServices(deps Deps) *Services {
	memberRepo := repository.NewMemberRepository()
	betRepo := repository.NewBetRepository()
	wagerRepo := repository.NewWagerRepository()
	ledgerRepo := repository.NewLedgerRepository()
	statsRepo := repository.NewStatsRepository()
	leagueRepo := repository.NewLeagueRepository()
	eventRepo := repository.NewEventRepository()
	outboxRepo := repository.NewOutboxRepository()
	authUserRepo := repository.NewAuthUserRepository()

	engine := ledger.NewEngine(memberRepo, ledgerRepo, outboxRepo)
	applier := ledger.NewApplier(engine, wagerRepo, statsRepo, outboxRepo)
	settler := settlement.NewEngine(PotPolicyFromConfig(deps.Cfg))

	return &Services{
		Auth: service.NewAuthService(deps.Pool, authUserRepo, memberRepo, outboxRepo, engine, deps.JWTMgr, deps.Logger),
		Betting: service.NewBettingService(deps.Pool, betRepo, wagerRepo, leagueRepo, eventRepo, ledgerRepo,
			outboxRepo, engine, applier, settler, LimitsFromConfig(deps.Cfg), deps.Cache, deps.Logger),
		Members: service.NewMemberService(deps.Pool, memberRepo, wagerRepo, ledgerRepo, statsRepo, leagueRepo, engine, deps.Logger),
		Leagues: service.NewLeagueService(deps.Pool, leagueRepo, memberRepo, statsRepo, deps.Cache,
			deps.Cfg.LeaderboardTTL, deps.Logger),
		Bets:   betRepo,
		Events: eventRepo,
	}
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps Deps) chi.Router {
	svcs := BuildServices(deps)

	authHandler := handler.NewAuthHandler(svcs.Auth)
	betHandler := handler.NewBetHandler(svcs.Betting)
	memberHandler := handler.NewMemberHandler(svcs.Members)
	leagueHandler := handler.NewLeagueHandler(svcs.Leagues, svcs.Betting)
	eventHandler := handler.NewEventHandler(svcs.Events, deps.Pool)

	writeLimit := handler.RateLimit(guard.NewRateLimiter(deps.Cfg.WagerRateLimit, time.Minute))
	idem := handler.Idempotency(guard.NewIdempotencyGuard())

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(deps.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(deps.Logger))
	r.Use(handler.CORS(deps.Cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(deps.Pool))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateMember(deps.JWTMgr))

		r.Route("/members/me", func(r chi.Router) {
			r.Get("/", memberHandler.GetMe)
			r.Get("/ledger", memberHandler.ListLedger)
			r.Get("/wagers", memberHandler.ListWagers)
		})
		r.With(writeLimit).Post("/members/{memberID}/adjust", memberHandler.Adjust)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.Create)
			r.Get("/{eventID}", eventHandler.Get)
		})

		r.Route("/bets", func(r chi.Router) {
			r.With(writeLimit, idem).Post("/", betHandler.Create)
			r.Get("/{betID}", betHandler.Get)
			r.With(writeLimit, idem).Post("/{betID}/wagers", betHandler.PlaceWager)
			r.With(writeLimit).Post("/{betID}/close", betHandler.Close)
			r.With(writeLimit).Post("/{betID}/dispute", betHandler.Dispute)
			r.With(writeLimit, idem).Post("/{betID}/resolve", betHandler.Resolve)
		})

		r.Route("/leagues", func(r chi.Router) {
			r.Post("/", leagueHandler.Create)
			r.Post("/{leagueID}/join", leagueHandler.Join)
			r.Get("/{leagueID}/leaderboard", leagueHandler.Leaderboard)
			r.Get("/{leagueID}/bets", leagueHandler.ListBets)
		})
	})

	return r
}
