package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialink/internal/config"
	"socialink/internal/database"
	"socialink/internal/handler"
	"socialink/internal/queue"
	"socialink/internal/realtime"
	"socialink/internal/redis"
	"socialink/internal/repository"
	"socialink/internal/service"
	transporthttp "socialink/internal/transport/http"
	"socialink/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// 2. Postgres
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// 3. Redis (streams for counter reconciliation, pub/sub for live pushes)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return err
	}

	// 4. Repositories
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 5. Queue + realtime plumbing
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)
	push := realtime.NewNotifier(redisClient.Client)

	// 6. Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	authService.StartTokenCleanup(ctx, time.Hour, 24*time.Hour)
	profileService := service.NewProfileService(profileRepo, followRepo, cfg.DefaultAvatarURL)
	notifService := service.NewNotificationService(notifRepo, profileRepo, push)
	followService := service.NewFollowService(followRepo, profileRepo, db, notifService, publisher)
	postService := service.NewPostService(postRepo, profileRepo, followRepo, db, notifService, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo, profileRepo, db, notifService, publisher)
	feedService := service.NewFeedService(postRepo, followRepo, profileRepo)
	adminService := service.NewAdminService(profileRepo, postRepo, authService, db, publisher)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return err
	}

	// 7. Websocket hub wired to the Redis notification channels
	hub := realtime.NewHub()
	if err := hub.StartWiring(ctx, push); err != nil {
		return err
	}

	// 8. Counter reconciliation workers
	workerHandler := worker.NewHandler(postRepo, profileRepo)
	workerCfg := worker.DefaultManagerConfig()
	workerCfg.WorkerCount = cfg.WorkerCount
	manager := worker.NewManager(consumer, workerHandler, workerCfg)
	if err := manager.Start(ctx); err != nil {
		return err
	}

	// 9. HTTP router + server
	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		AuthHandler:         handler.NewAuthHandler(profileService, authService),
		ProfileHandler:      handler.NewProfileHandler(profileService),
		FollowHandler:       handler.NewFollowHandler(followService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		PostHandler:         handler.NewPostHandler(postService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notifService),
		MediaHandler:        handler.NewMediaHandler(mediaService),
		AdminHandler:        handler.NewAdminHandler(adminService),
		RealtimeHandler:     handler.NewRealtimeHandler(hub),
		JWTSecret:           cfg.JWTSecret,
	})

	server := transporthttp.NewServer(":"+cfg.ServerPort, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 10. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	manager.Stop()
	cancel()

	log.Println("Shutdown complete")
	return nil
}
