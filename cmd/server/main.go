// P.A.L. - Personal Assistant with Logic, single-user conversational gateway.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/Lucifer12122001/PAL/internal/alert"
	"github.com/Lucifer12122001/PAL/internal/api"
	"github.com/Lucifer12122001/PAL/internal/assistant"
	"github.com/Lucifer12122001/PAL/internal/config"
	"github.com/Lucifer12122001/PAL/internal/domain"
	"github.com/Lucifer12122001/PAL/internal/middleware"
	"github.com/Lucifer12122001/PAL/internal/nlu"
	"github.com/Lucifer12122001/PAL/internal/session"
	"github.com/Lucifer12122001/PAL/internal/store"
	"github.com/Lucifer12122001/PAL/internal/update"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting P.A.L. gateway", "port", cfg.Port, "session_duration", cfg.SessionDuration)

	// Startup interaction: device class and the initial security
	// handshake both happen before any network traffic is accepted.
	prompts := bufio.NewScanner(os.Stdin)

	device := promptDeviceClass(prompts, os.Stdout)
	fmt.Printf("\nP.A.L.: Device Type set to %s. Initiating Security Check.\n", device)

	dispatcher := alert.NewDispatcher(
		device,
		alert.NewEmailNotifier(cfg.Alert),
		alert.NewSMSNotifier(cfg.Alert.SMSGatewayURL, cfg.Alert.MasterPhone, logger),
		cfg.Alert.Timeout,
		logger,
	)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	classifier := nlu.NewBayesClassifier()
	supervisor := update.NewSupervisor(cfg.Update.UpdaterPath, logger)
	engine := assistant.NewEngine(classifier, repo, supervisor, assistant.BrowserOpener{}, logger)
	guard := session.NewGuard(cfg.SecretName, cfg.SessionDuration, dispatcher, engine.ResetContext, logger)

	promptSecret(prompts, os.Stdout, guard)
	fmt.Println("\nP.A.L.: Access Granted. Welcome, Master. Starting API.")

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(corsOrigins(cfg)))

	api.NewHandler(guard, engine, cfg.SessionMinutes()).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// promptDeviceClass repeats the device question until a valid answer
// arrives. The choice is fixed for the lifetime of the process.
func promptDeviceClass(in *bufio.Scanner, out io.Writer) domain.DeviceClass {
	for {
		fmt.Fprint(out, "P.A.L.: Is this instance running on a [Mobile] or [Laptop]? ")
		if !in.Scan() {
			slog.Error("Input closed during device selection")
			os.Exit(1)
		}
		device, err := domain.ParseDeviceClass(in.Text())
		if err != nil {
			fmt.Fprintln(out, "P.A.L.: Invalid input. Please type 'Mobile' or 'Laptop'.")
			continue
		}
		return device
	}
}

// promptSecret repeats the security handshake until the guard grants a
// session. Every failure alerts through the dispatcher inside the guard.
func promptSecret(in *bufio.Scanner, out io.Writer, guard *session.Guard) {
	for {
		fmt.Fprint(out, "P.A.L.: What was your Secret Name? ")
		if !in.Scan() {
			slog.Error("Input closed during security handshake")
			os.Exit(1)
		}
		if guard.Authenticate(in.Text()) {
			return
		}
		fmt.Fprintln(out, "P.A.L.: Security failure. Please try again.")
	}
}

// corsOrigins keeps the browser origin open in development and pins it
// to the configured frontend in production.
func corsOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
