// main.go - Entry point for the plasticity web server

package main // Declares the package name

import ( // Import required packages
	"context"   // Shutdown deadlines
	"errors"    // Server closed check
	"net/http"  // HTTP server
	"os"        // Hostname for the MQTT client id
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"plasticity-backend/auth"      // Sessions, gateway and reset tokens
	"plasticity-backend/bids"      // Bid Listing Service
	"plasticity-backend/config"    // Project config management
	"plasticity-backend/database"  // Database connection and directories
	"plasticity-backend/handlers"  // HTTP handlers and routes
	"plasticity-backend/jobs"      // Expired session/token purge
	"plasticity-backend/mailer"    // Password reset mail
	"plasticity-backend/mqtt"      // Upload events
	"plasticity-backend/payment"   // Checkout gateway
	"plasticity-backend/pricing"   // Price Resolver
	"plasticity-backend/storage"   // Durable upload storage
	"plasticity-backend/templates" // HTML views

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

func main() { // Main function, program entry point
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// STEP 1: Load configuration and establish connections
	cfg := config.Load() // Load configuration from env and .env
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration") // Missing DATABASE_URL or SESSION_SECRET
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if level := log.GetLevel(); level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseURL, log) // Connect to the database and migrate
	if err != nil {
		log.WithError(err).Fatal("DB connection error")
	}
	defer database.Close(db)

	store, err := newStorage(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("storage setup error")
	}
	events := newPublisher(cfg, log)
	if c, ok := events.(*mqtt.Client); ok {
		defer c.Close()
	}

	// STEP 2: Build the services
	users := database.NewUserDirectory(db)
	sessions := auth.NewDBStore(db, cfg.SessionMaxAge, []byte(cfg.SessionSecret))
	sessions.Options.Secure = cfg.SecureCookies

	h := handlers.New(handlers.Deps{
		Config:   cfg,
		Log:      log,
		Users:    users,
		Files:    database.NewFileStore(users),
		Gateway:  auth.NewGateway(sessions, users, log),
		Tokens:   auth.NewResetTokens(cfg.SessionSecret, cfg.ResetTokenTTL),
		Storage:  store,
		Bids:     bids.NewService(newCatalog(cfg, users), newResolver(cfg, log), log),
		Events:   events,
		Mailer:   newMailer(cfg, log),
		Payments: payment.Offline{Log: log},
	})

	views, err := templates.Parse()
	if err != nil {
		log.WithError(err).Fatal("template error")
	}

	scheduler, err := jobs.Start(cfg.PurgeSchedule, &jobs.Purge{Sessions: sessions, Tokens: users, Log: log}, log)
	if err != nil {
		log.WithError(err).Fatal("scheduler error")
	}

	// STEP 3: Start the web server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, views),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			stop()
		}
	}()

	// STEP 4: Shut down on SIGINT/SIGTERM
	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	scheduler.Stop(shutdownCtx)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend != "s3" {
		return storage.Local{Dir: cfg.UploadDir}, nil
	}
	s3, err := storage.NewS3(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return s3, nil
}

// newPublisher connects to the broker, falling back to dropping events
// when none is configured or reachable.
func newPublisher(cfg *config.Config, log *logrus.Logger) mqtt.Publisher {
	if cfg.MQTTBroker == "" {
		return mqtt.Noop{}
	}
	host, _ := os.Hostname()
	client, err := mqtt.Connect(cfg.MQTTBroker, "plasticity-"+host)
	if err != nil {
		log.WithError(err).Warn("MQTT connection error, upload events disabled")
		return mqtt.Noop{}
	}
	return client
}

func newMailer(cfg *config.Config, log *logrus.Logger) mailer.Mailer {
	if cfg.SMTPHost == "" {
		return mailer.Log{Logger: log}
	}
	return mailer.NewSMTP(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, log)
}

func newResolver(cfg *config.Config, log *logrus.Logger) pricing.Resolver {
	if cfg.PriceFeedURL != "" {
		return pricing.NewFeed(cfg.PriceFeedURL, log)
	}
	return pricing.Fixed{Price: cfg.BasePrice}
}

func newCatalog(cfg *config.Config, users *database.UserDirectory) bids.Catalog {
	if cfg.CandidateSrc == "users" {
		return bids.DirectoryCatalog{Users: users}
	}
	return bids.FileCatalog{Path: cfg.SellersFile}
}
