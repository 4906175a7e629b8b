package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servimarket/internal/app"
	"servimarket/internal/category"
	"servimarket/internal/enrichment"
	handlersCategory "servimarket/internal/handlers/category"
	handlersOffer "servimarket/internal/handlers/offer"
	eventsKafka "servimarket/internal/kafka"
	"servimarket/internal/images"
	"servimarket/internal/middleware"
	"servimarket/internal/offer"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

const cfgPath = "config/config.yaml"

func main() {
	// init logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	logger := zapLogger.Sugar()
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			logger.Warnf("error to sync logger: %v", err)
		}
	}()

	c, err := app.NewConfig(cfgPath)
	if err != nil {
		logger.Fatalf("error to parsing config: %v", err)
	}

	// init db
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s "+"password=%s dbname=%s sslmode=disable",
		c.CfgDB.Host, c.CfgDB.Port, c.CfgDB.Login, c.CfgDB.Password, c.CfgDB.Database,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatalf("error to database start: %v", err)
	}

	db.SetMaxOpenConns(c.MaxOpenConns)
	if err := db.Ping(); err != nil {
		logger.Infof("Failed to get response to ping: %v", err)
	}

	// init redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: c.RedisAddr,
	})

	// init kafka producer
	producer := eventsKafka.NewProducer(c.CfgKafka.Brokers, c.CfgKafka.Topic, logger)

	if err := os.MkdirAll(c.ImagesDir, 0o755); err != nil {
		logger.Fatalf("error to create images dir: %v", err)
	}

	// init repositories and clients
	offerRepository := offer.NewOfferDBRepository(db, logger)
	categoryRepository := category.NewCategoryDBRepository(db, logger)
	imageStore := images.NewStore(c.ImagesDir, logger)

	usersClient := enrichment.NewClient(c.UsersServiceURL, c.UsersTimeout, logger)
	profiles := enrichment.NewCachedFetcher(usersClient, redisClient, logger, c.ReputationCacheTTL)

	// init router
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	// init handlers
	offerHandlers := handlersOffer.NewOfferHandler(
		logger,
		offerRepository,
		categoryRepository,
		imageStore,
		profiles,
		producer,
	)
	categoryHandlers := handlersCategory.NewCategoryHandler(logger, categoryRepository)

	r.HandleFunc("/ofertas", offerHandlers.Create).Methods("POST")
	r.HandleFunc("/ofertas", offerHandlers.List).Methods("GET")
	r.HandleFunc("/ofertas", offerHandlers.Update).Methods("PUT")
	r.HandleFunc("/ofertas", offerHandlers.Delete).Methods("DELETE")
	r.HandleFunc("/ofertas/cliente/{cliente_id}", offerHandlers.ListByClient).Methods("GET")
	r.HandleFunc("/ofertas/{id}", offerHandlers.GetByID).Methods("GET")
	r.HandleFunc("/ofertas/{id}/visibility", offerHandlers.ChangeVisibility).Methods("PATCH")

	r.HandleFunc("/categorias", categoryHandlers.Create).Methods("POST")
	r.HandleFunc("/categorias", categoryHandlers.List).Methods("GET")
	r.HandleFunc("/categorias/{id}", categoryHandlers.Delete).Methods("DELETE")

	r.HandleFunc("/", statusHandler).Methods("GET")
	r.HandleFunc("/status", statusHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// uploaded images are served back as static files
	r.PathPrefix(images.URLPrefix).Handler(
		http.StripPrefix(images.URLPrefix, http.FileServer(http.Dir(c.ImagesDir))),
	)

	logger.Infow("starting server",
		"type", "START",
		"addr", c.ServerPort,
	)

	srv := &http.Server{
		Addr:         c.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("can't start server: %v", err)
		}
	}()

	// release everything on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infow("shutting down", "type", "STOP")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnf("error to shutdown server: %v", err)
	}
	if err := producer.Close(); err != nil {
		logger.Warnf("error to close kafka producer: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Warnf("error to close redis client: %v", err)
	}
	if err := db.Close(); err != nil {
		logger.Warnf("error to close database: %v", err)
	}
}

func statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}
