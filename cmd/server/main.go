package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"medical-intake/internal/config"
	"medical-intake/internal/consultation"
	"medical-intake/internal/intake"
	"medical-intake/internal/platform/telegram"
	"medical-intake/internal/report"
	"medical-intake/internal/speech"
	"medical-intake/migrations"
)

func main() {
	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// 1. Infrastructure
	db, err := connect(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(cfg.DatabaseURL); err != nil {
		return err
	}
	logger.Info("migrations applied")

	catalog, err := intake.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return err
	}
	logger.Info("intake catalog loaded", "topics", catalog.Len(), "file", cfg.CatalogFile)

	// 2. Clients
	tgClient := telegram.NewClient(cfg.TelegramToken)
	if cfg.DoctorChatID == 0 {
		logger.Warn("DOCTOR_CHAT_ID is not set or invalid; reports will not be delivered correctly")
	}

	// 3. Services
	reportSvc := report.NewService(tgClient, cfg.DoctorChatID, cfg.ReportFontPaths, logger)
	consultationSvc := consultation.NewService(
		consultation.NewRepository(db),
		intake.NewPool(catalog),
		consultation.Options{
			Transcriber: speech.NewWhisperClient(cfg.STTURL, cfg.STTLanguage),
			Synthesizer: speech.NewElevenLabsClient(cfg.TTSAPIKey, cfg.TTSURL),
			Reports:     reportSvc,
			VoiceID:     cfg.TTSVoiceID,
			Logger:      logger,
		},
	)
	consultationHandler := consultation.NewHandler(consultationSvc, logger)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Route("/api", func(r chi.Router) {
		consultation.RegisterRoutes(r, consultationHandler)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// connect opens the database, retrying while it starts up.
func connect(dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			logger.Info("connected to database")
			return db, nil
		}
		logger.Info("waiting for database", "attempt", i, "error", err)
		time.Sleep(2 * time.Second)
	}
	db.Close()
	return nil, err
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
