package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evolvetech/opsdash/api"
	"github.com/evolvetech/opsdash/auth"
	"github.com/evolvetech/opsdash/datastore"
	"github.com/evolvetech/opsdash/mailer"
	"github.com/evolvetech/opsdash/migrations"
	"github.com/evolvetech/opsdash/qa"
	rh "github.com/evolvetech/opsdash/route-handlers"
	"github.com/evolvetech/opsdash/storage"
	"github.com/evolvetech/opsdash/transcription"
	_ "github.com/lib/pq"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "user=postgres password=password dbname=opsdash host=localhost port=5432 sslmode=disable"
	defaultFromEmail   = "support@ihealthinsurances.com"
	dbPingTimeout      = 5 * time.Second
	shutdownTimeout    = 15 * time.Second
	dbMaxOpenConns     = 25
	dbMaxIdleConns     = 25
	dbConnMaxLifetime  = 5 * time.Minute
)

type config struct {
	port            string
	databaseURL     string
	sessionSecret   string
	deepgramAPIKey  string
	resendAPIKey    string
	resendFromEmail string
	mediaDir        string
}

func main() {
	cfg := loadConfig()

	db, err := setupDatabase(cfg.databaseURL)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(context.Background(), db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	userRepo := datastore.NewUserRepository(db)
	recordingRepo := datastore.NewRecordingRepository(db)

	mediaStore := storage.NewLocalMediaStore(cfg.mediaDir)
	transcriptionClient := transcription.NewClient(cfg.deepgramAPIKey)
	otpMailer := mailer.NewResendMailer(cfg.resendAPIKey, cfg.resendFromEmail)
	authenticator := auth.NewCredentialsAuthenticator(userRepo)

	uploadOrchestrator := qa.NewOrchestrator(transcriptionClient, recordingRepo, mediaStore)

	userHandler := rh.NewUserHandler(userRepo)
	sessionHandler := rh.NewSessionHandler(authenticator, []byte(cfg.sessionSecret))
	resetHandler := rh.NewPasswordResetHandler(userRepo, otpMailer)
	uploadHandler := rh.NewUploadHandler(uploadOrchestrator)
	recordingHandler := rh.NewRecordingHandler(recordingRepo, mediaStore)

	router := api.SetupRoutes(
		userHandler,
		sessionHandler,
		resetHandler,
		uploadHandler,
		recordingHandler,
		[]byte(cfg.sessionSecret),
	)

	startServer(cfg.port, router)
}

func loadConfig() config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		dbURL = defaultDatabaseURL
		log.Println("WARNING: DB_CONNECTION_STRING not set, using default local connection string.")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET not set. Sessions will not survive restarts.")
		sessionSecret = fmt.Sprintf("dev-secret-%d", time.Now().UnixNano())
	}

	deepgramAPIKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramAPIKey == "" {
		log.Println("WARNING: DEEPGRAM_API_KEY not set. Uploads will fail at runtime.")
	}

	resendAPIKey := os.Getenv("RESEND_API_KEY")
	if resendAPIKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. OTP email will fail at runtime.")
	}

	fromEmail := os.Getenv("RESEND_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = defaultFromEmail
	}

	return config{
		port:            port,
		databaseURL:     dbURL,
		sessionSecret:   sessionSecret,
		deepgramAPIKey:  deepgramAPIKey,
		resendAPIKey:    resendAPIKey,
		resendFromEmail: fromEmail,
		mediaDir:        os.Getenv("MEDIA_DIR"),
	}
}

func setupDatabase(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close unusable connection pool
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
