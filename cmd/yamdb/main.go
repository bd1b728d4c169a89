package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/PaulSssar/yamdb-final/internal/auth"
	"github.com/PaulSssar/yamdb-final/internal/config"
	"github.com/PaulSssar/yamdb-final/internal/handler/api"
	"github.com/PaulSssar/yamdb-final/internal/logging"
	"github.com/PaulSssar/yamdb-final/internal/mail"
	"github.com/PaulSssar/yamdb-final/internal/middleware"
	"github.com/PaulSssar/yamdb-final/internal/model"
	"github.com/PaulSssar/yamdb-final/internal/scheduler"
	"github.com/PaulSssar/yamdb-final/internal/store"
	"github.com/PaulSssar/yamdb-final/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "yamdb - content review platform API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YAMDB_SECRET            Signing key for tokens and codes (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YAMDB_DB_PATH           SQLite database path (default: ./data/yamdb.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YAMDB_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YAMDB_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YAMDB_SMTP_HOST         SMTP relay; codes are logged when unset\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YAMDB_ADMIN_USERNAME    Superuser seeded at startup (with YAMDB_ADMIN_EMAIL)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("yamdb %s\n", buildInfo().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Setup(cfg.LogLevel, cfg.IsDevelopment())

	info := buildInfo()
	slog.Info("starting yamdb", "version", info.Version, "commit", info.GitCommit, "env", cfg.Env)

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := bootstrapSuperuser(context.Background(), db, cfg); err != nil {
		return fmt.Errorf("seeding superuser: %w", err)
	}

	var mailer mail.Mailer
	if cfg.MailEnabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
	} else {
		slog.Warn("SMTP not configured, confirmation codes will be logged")
		mailer = mail.NewLogMailer(slog.Default())
	}

	codes := auth.NewCodeGenerator(cfg.Secret, cfg.CodeTTL)
	tokens := auth.NewTokenIssuer(cfg.Secret, cfg.TokenTTL)
	apiHandler := api.NewHandler(db, codes, tokens, mailer)

	var sched *scheduler.Scheduler
	if cfg.StaleRegistrationTTL > 0 {
		sched = scheduler.New(db, slog.Default(), cfg.StaleRegistrationTTL)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Global API rate limit, plus a tighter per-IP budget on signup so
	// the mailer cannot be used as a spam relay.
	apiLimiter := middleware.NewRateLimiter(100, 200)
	signupLimiter := middleware.NewRateLimiter(1, 5)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiLimiter.Middleware())
		r.With(signupLimiter.Middleware()).Post("/auth/signup", apiHandler.Signup)
		r.Mount("/", apiHandler.Routes(middleware.Authenticate(tokens, db)))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// bootstrapSuperuser seeds the configured admin account if it does not
// exist yet. The account still authenticates with the normal signup and
// token flow.
func bootstrapSuperuser(ctx context.Context, db *sql.DB, cfg *config.Config) error {
	if cfg.AdminUsername == "" {
		return nil
	}

	queries := store.New(db)
	if _, err := queries.GetUserByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	user, err := queries.CreateUser(ctx, store.CreateUserParams{
		Username:    cfg.AdminUsername,
		Email:       cfg.AdminEmail,
		Role:        model.RoleAdmin,
		IsSuperuser: true,
	})
	if err != nil {
		return err
	}

	slog.Info("seeded superuser", "username", user.Username)
	return nil
}
