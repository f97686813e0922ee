package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"golang.org/x/sync/errgroup"

	"github.com/steph-crown/movie-moments/config"
	httpSvc "github.com/steph-crown/movie-moments/internal/delivery/http"
	"github.com/steph-crown/movie-moments/internal/delivery/kafka/consumer"
	"github.com/steph-crown/movie-moments/internal/delivery/kafka/producer"
	"github.com/steph-crown/movie-moments/internal/delivery/ws"
	repo "github.com/steph-crown/movie-moments/internal/repository/redis"
	"github.com/steph-crown/movie-moments/internal/service"
	pkgKafka "github.com/steph-crown/movie-moments/pkg/kafka"
	pkgLog "github.com/steph-crown/movie-moments/pkg/logger"
	pkgRedis "github.com/steph-crown/movie-moments/pkg/redis"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := pkgRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer pkgRedis.Disconnect(redisCli)

	roomRepo := repo.NewRedisRoomRepository(redisCli, l)
	pRepo := repo.NewRedisParticipantRepository(redisCli, l)
	mRepo := repo.NewRedisMessageRepository(redisCli, l)

	// Kafka is optional; without it the service still runs, it just stops
	// emitting lifecycle events and ingesting player progress.
	var prod producer.Producer
	var kafkaConsGr sarama.ConsumerGroup
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}
		defer kafkaSyncProd.Close()

		kafkaConsGr, err = pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		prod = producer.NewProducer(kafkaSyncProd, l)
	}

	// Initialize services
	idSvc := service.NewIdentityService(cfg.JWT)
	rmSvc := service.NewRoomService(roomRepo, pRepo, prod, l)

	// Playback progress consumer
	if kafkaConsGr != nil {
		cons := consumer.NewConsumer(kafkaConsGr, rmSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
		defer cons.Close()
	}

	// HTTP + websocket delivery
	httpHandler := httpSvc.NewHTTPHandler(idSvc, rmSvc, l)
	wsHandler := ws.NewHandler(idSvc, rmSvc, mRepo, pRepo, prod, cfg.Room, l)

	mux := http.NewServeMux()
	httpHandler.Register(mux)
	mux.HandleFunc("GET /ws/rooms/{roomId}", wsHandler.ServeRoom)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:     mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-quit:
			l.Info(gctx, "Server shutting down...")
		case <-gctx.Done():
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Errorf(ctx, "Server error: %v", err)
	}

	l.Info(ctx, "Server exited")
}
