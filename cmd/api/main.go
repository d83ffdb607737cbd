package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-engine/internal/api/http"
	"github.com/spec-kit/complaint-engine/internal/api/http/handlers"
	"github.com/spec-kit/complaint-engine/internal/auth"
	"github.com/spec-kit/complaint-engine/internal/config"
	"github.com/spec-kit/complaint-engine/internal/events"
	"github.com/spec-kit/complaint-engine/internal/identifier"
	"github.com/spec-kit/complaint-engine/internal/observability"
	"github.com/spec-kit/complaint-engine/internal/persistence"
	"github.com/spec-kit/complaint-engine/internal/repository"
	"github.com/spec-kit/complaint-engine/internal/service"
	"github.com/spec-kit/complaint-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	redisAvailable := redis.Ping(ctx) == nil

	pool := pg.PoolHandle()

	var (
		ticketRepo     repository.TicketRepository
		suggestionRepo repository.SuggestionRepository
		voteLedger     repository.VoteLedger
		staffRepo      repository.StaffRepository
	)
	if pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		suggestionRepo = repository.NewSuggestionRepository(pool)
		voteLedger = repository.NewVoteRepository(pool)
		staffRepo = repository.NewStaffRepository(pool)
	} else {
		logger.Warn("running with in-memory stores; state is lost on restart")
		ticketRepo = repository.NewMemoryTicketRepository()
		suggestionRepo = repository.NewMemorySuggestionRepository()
		staffRepo = repository.NewMemoryStaffRepository()
		if redisAvailable {
			voteLedger = repository.NewRedisVoteLedger(redis.Client, "votes")
		} else {
			voteLedger = repository.NewMemoryVoteLedger()
		}
	}

	var seq identifier.Sequence
	if redisAvailable {
		seq = identifier.NewRedisSequence(redis.Client, "seq")
	} else {
		memSeq := identifier.NewMemorySequence()
		seedSequences(ctx, memSeq, ticketRepo, suggestionRepo, logger)
		seq = memSeq
	}
	minter := identifier.NewMinter(seq)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	clock := service.SystemClock{}
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		TicketRepo: ticketRepo,
		Minter:     minter,
		SLA:        service.NewSLAPolicy(cfg.SLA),
		Policy:     cfg.Policy,
		Clock:      clock,
		Dispatcher: dispatcher,
	})
	suggestionService := service.NewSuggestionService(service.SuggestionDependencies{
		SuggestionRepo: suggestionRepo,
		VoteLedger:     voteLedger,
		Minter:         minter,
		Policy:         cfg.Policy,
		Clock:          clock,
		Dispatcher:     dispatcher,
	})
	engine := service.NewLifecycleEngine(complaintService, suggestionService)

	authService := service.NewAuthService(cfg.Auth, staffRepo)
	if err := authService.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)
	voters := auth.NewVoterIdentityDeriver(cfg.Auth.VoterIdentitySecret)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Complaints:     handlers.NewComplaintsHandler(engine, clock),
		Suggestions:    handlers.NewSuggestionsHandler(engine, voters, clock),
		Staff:          handlers.NewStaffHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func seedSequences(ctx context.Context, seq *identifier.MemorySequence, tickets repository.TicketRepository, suggestions repository.SuggestionRepository, logger *zap.Logger) {
	year := time.Now().Year()
	if last, err := tickets.LastSequence(ctx, year); err == nil {
		seq.Seed(identifier.PrefixComplaint+"-"+strconv.Itoa(year), last)
	} else {
		logger.Warn("could not seed ticket sequence", zap.Error(err))
	}
	if last, err := suggestions.LastSequence(ctx, year); err == nil {
		seq.Seed(identifier.PrefixSuggestion+"-"+strconv.Itoa(year), last)
	} else {
		logger.Warn("could not seed suggestion sequence", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
