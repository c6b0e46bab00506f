package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"workcheck/internal/auth/revocation"
	"workcheck/internal/employee"
	"workcheck/internal/evidence"
	jwttoken "workcheck/internal/jwt_token"
	"workcheck/internal/payment"
	"workcheck/internal/platform/config"
	"workcheck/internal/platform/httpserver"
	"workcheck/internal/platform/logger"
	"workcheck/internal/platform/metrics"
	platformpg "workcheck/internal/platform/postgres"
	platformredis "workcheck/internal/platform/redis"
	"workcheck/internal/report"
	"workcheck/internal/searchlog"
	"workcheck/internal/subscription"
	"workcheck/internal/user"
	id "workcheck/pkg/domain"
	dErrors "workcheck/pkg/domain-errors"
	"workcheck/pkg/platform/httputil"
	authmw "workcheck/pkg/platform/middleware/auth"
	"workcheck/pkg/platform/middleware/logging"
	"workcheck/pkg/platform/middleware/metadata"
	"workcheck/pkg/platform/middleware/request"
	"workcheck/pkg/platform/middleware/requesttime"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	var (
		userStore     user.Store
		employeeStore employee.Store
		reportStore   report.Store
		subStore      subscription.Store
		payStore      payment.Store
		logStore      searchlog.Store
		reportTx      report.TxRunner
	)

	if cfg.DatabaseURL != "" {
		db, err := platformpg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()

		userStore = user.NewPostgres(db)
		employeeStore = employee.NewPostgres(db)
		reportStore = report.NewPostgres(db)
		subStore = subscription.NewPostgres(db)
		payStore = payment.NewPostgres(db)
		logStore = searchlog.NewPostgres(db)
		reportTx = newReportPostgresTx(db)
		log.Info("using postgres stores")
	} else {
		userStore = user.NewInMemoryStore()
		employeeStore = employee.NewInMemoryStore()
		reportStore = report.NewInMemoryStore(submitterSource(userStore), employeeStore)
		subStore = subscription.NewInMemoryStore()
		payStore = payment.NewInMemoryStore()
		logStore = searchlog.NewInMemoryStore(userStore, employeeStore)
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var trl revocation.TokenRevocationList = revocation.NewMemoryTRL()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
		log.Info("using redis token revocation list")
	}

	evidenceStore, err := evidence.NewDiskStore(cfg.EvidenceDir)
	if err != nil {
		log.Error("failed to prepare evidence directory", "error", err.Error())
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	var mirror *searchlog.KafkaMirror
	publisherOpts := []searchlog.PublisherOption{searchlog.WithPublisherLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		mirror, err = searchlog.NewKafkaMirror(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err.Error())
			os.Exit(1)
		}
		defer mirror.Close()
		publisherOpts = append(publisherOpts, searchlog.WithMirror(mirror))
		log.Info("mirroring search events to kafka", "topic", cfg.KafkaTopic)
	}
	publisher := searchlog.NewPublisher(logStore, publisherOpts...)
	defer publisher.Close()

	employeeSvc := employee.NewService(employeeStore,
		employee.WithLogger(log),
		employee.WithMetrics(m),
	)
	reportOpts := []report.Option{
		report.WithLogger(log),
		report.WithMetrics(m),
	}
	if reportTx != nil {
		reportOpts = append(reportOpts, report.WithTxRunner(reportTx))
	}
	reportSvc := report.NewService(reportStore, employeeSvc, evidenceStore, reportOpts...)
	userSvc := user.NewService(userStore, jwtService, cfg.TokenTTL,
		user.WithLogger(log),
		user.WithMetrics(m),
		user.WithRevocationList(trl),
	)
	subSvc := subscription.NewService(subStore, cfg.FreeSearchLimit,
		subscription.WithLogger(log),
	)
	paySvc := payment.NewService(payStore, payment.WithLogger(log))

	userHandler := user.NewHandler(userSvc, log)
	reportHandler := report.NewHandler(reportSvc, log,
		meteredGate{inner: subSvc, metrics: m},
		meteredRecorder{inner: publisher, metrics: m},
	)
	subHandler := subscription.NewHandler(subSvc, log)
	payHandler := payment.NewHandler(paySvc, log)
	logHandler := searchlog.NewHandler(logStore, log)

	r := chi.NewRouter()
	r.Use(logging.Recovery(log))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(logging.Logger(log))

	r.Get("/health", healthHandler(redisClient))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.EvidenceDir))))

	userHandler.RegisterPublic(r)

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireAuth(validator, trl, log))
		userHandler.RegisterProtected(pr)
		reportHandler.Register(pr)
		subHandler.Register(pr)
		payHandler.Register(pr)

		pr.Group(func(ar chi.Router) {
			ar.Use(authmw.RequireRole(user.RoleAdmin, log))
			userHandler.RegisterAdmin(ar)
			logHandler.Register(ar)
		})
	})

	srv := httpserver.New(cfg.Addr, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting workcheck", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// submitterSource adapts the user store to the projection the report
// listings join on in memory mode.
func submitterSource(users user.Store) report.SubmitterSource {
	return report.SubmitterSourceFunc(func(ctx context.Context, userID id.UserID) (*report.Submitter, error) {
		u, err := users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &report.Submitter{
			ID:             u.ID,
			Email:          u.Email,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			DocumentNumber: u.DocumentNumber,
		}, nil
	})
}

// meteredGate counts quota denials on top of the subscription gate.
type meteredGate struct {
	inner   report.SearchGate
	metrics *metrics.Metrics
}

func (g meteredGate) ConsumeSearch(ctx context.Context, userID id.UserID) error {
	err := g.inner.ConsumeSearch(ctx, userID)
	if err != nil && dErrors.Is(err, dErrors.CodeForbidden) {
		g.metrics.IncrementSearch("denied")
	}
	return err
}

// meteredRecorder counts search outcomes on top of the audit publisher.
type meteredRecorder struct {
	inner   report.SearchRecorder
	metrics *metrics.Metrics
}

func (r meteredRecorder) Record(ctx context.Context, userID id.UserID, employeeID *id.EmployeeID, query string) {
	if employeeID != nil {
		r.metrics.IncrementSearch("found")
	} else {
		r.metrics.IncrementSearch("not_found")
	}
	r.inner.Record(ctx, userID, employeeID, query)
}

func healthHandler(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["redis"] = "ok"
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
