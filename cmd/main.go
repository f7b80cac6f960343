package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"weatherbot/clients/openweather"
	slackclient "weatherbot/clients/slack"
	"weatherbot/config"
	"weatherbot/db"
	"weatherbot/handlers"
	"weatherbot/middleware"
	"weatherbot/services/installations"
	"weatherbot/services/weather"
	weatherusecase "weatherbot/usecases/weather"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackAlertConfig.WebhookURL,
		Environment: cfg.Environment,
		AppName:     "weatherbot",
		LogsURL:     cfg.SlackAlertConfig.LogsURL,
	})

	// Installations are persisted only when a database is configured
	var installationsRepo installations.InstallationsRepository = db.NewOptionalInstallationsRepository()
	if cfg.DatabaseConfig.IsConfigured() {
		dbConn, err := db.NewConnection(ctx, cfg.DatabaseConfig.URL)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		postgresRepo := db.NewPostgresInstallationsRepository(dbConn, cfg.DatabaseConfig.Schema)
		if err := postgresRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		installationsRepo = postgresRepo
	}

	var readingsCache weather.ReadingsCache = weather.NewOptionalReadingsCache()
	if cfg.CacheConfig.IsConfigured() {
		redisCache, err := weather.NewRedisReadingsCache(ctx, cfg.CacheConfig.RedisURL, cfg.CacheConfig.TTL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		readingsCache = redisCache
	}

	slackClientFactory := slackclient.NewSlackClientFactory(cfg.SlackConfig.APIURL)
	slackOAuthClient := slackclient.NewSlackOAuthClient(cfg.SlackConfig.APIURL)
	weatherClient := openweather.NewOpenWeatherClient(
		cfg.WeatherConfig.APIURL,
		cfg.WeatherConfig.APIKey,
		cfg.WeatherConfig.CountryCode,
		cfg.WeatherConfig.Timeout,
	)

	weatherService := weather.NewWeatherService(weatherClient, readingsCache)
	installationsService := installations.NewInstallationsService(
		installationsRepo,
		slackOAuthClient,
		cfg.SlackOAuthConfig.ClientID,
		cfg.SlackOAuthConfig.ClientSecret,
		cfg.SlackOAuthConfig.RedirectURL,
	)
	weatherUseCase := weatherusecase.NewWeatherUseCase(
		weatherService,
		installationsService,
		slackClientFactory,
		cfg.SlackConfig.BotToken,
		alertMiddleware,
	)

	verifier := handlers.NewSignatureVerifier(cfg.SlackConfig.SigningSecret, cfg.SlackConfig.SignatureMaxAge)
	slackEventsHandler := handlers.NewSlackEventsHandler(verifier, weatherUseCase)
	slackCommandsHandler := handlers.NewSlackCommandsHandler(verifier, weatherUseCase)

	router := mux.NewRouter()

	slackEventsHandler.SetupEndpoints(router)
	slackCommandsHandler.SetupEndpoints(router)
	if cfg.SlackOAuthConfig.IsConfigured() {
		handlers.NewSlackOAuthHandler(installationsService, slackClientFactory).SetupEndpoints(router)
	}

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte("hello world")); err != nil {
			log.Printf("❌ Failed to write index response: %v", err)
		}
	}).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.RequestIDMiddleware(alertMiddleware.HTTPMiddleware(c.Handler(router))),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Printf("❌ Server error: %v", err)
		return err
	case <-stop:
		log.Printf("🛑 Shutdown signal received, cleaning up...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
