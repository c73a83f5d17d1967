package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/config"
	"github.com/berea-app/berea-api/internal/database"
	"github.com/berea-app/berea-api/internal/handler"
	"github.com/berea-app/berea-api/internal/middleware"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/repository"
	"github.com/berea-app/berea-api/internal/router"
	"github.com/berea-app/berea-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Series{},
		&models.Session{},
		&models.SessionParticipant{},
		&models.JoinRequest{},
		&models.ScripturePassage{},
		&models.SessionResource{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupSession{},
		&models.GroupSeries{},
		&models.Comment{},
		&models.ChatMessage{},
		&models.GroupChatMessage{},
		&models.Notification{},
		&models.PrayerRequest{},
		&models.PrayerReaction{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	brokerCtx, stopBroker := context.WithCancel(context.Background())
	defer stopBroker()
	broker := realtime.NewBroker(redisClient, cfg.EventChannelBase, natsConn, logger)
	broker.Start(brokerCtx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	passageRepo := repository.NewPassageRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	prayerRepo := repository.NewPrayerRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, broker, logger)
	sessionService := service.NewSessionService(sessionRepo, participantRepo, seriesRepo, passageRepo, resourceRepo, userRepo, validate, logger)
	seriesService := service.NewSeriesService(seriesRepo, sessionRepo, userRepo, validate, logger)
	membershipService := service.NewMembershipService(sessionRepo, participantRepo, seriesRepo, userRepo, notificationService, logger)
	contentService := service.NewContentService(sessionRepo, participantRepo, passageRepo, resourceRepo, sessionService, validate, logger)
	commentService := service.NewCommentService(commentRepo, passageRepo, sessionRepo, userRepo, sessionService, notificationService, broker, validate, logger)
	chatService := service.NewChatService(chatRepo, sessionRepo, participantRepo, groupRepo, broker, validate, logger)
	groupService := service.NewGroupService(groupRepo, sessionRepo, participantRepo, seriesRepo, userRepo, notificationService, validate, logger)
	prayerService := service.NewPrayerService(prayerRepo, validate, logger)
	adminService := service.NewAdminService(userRepo, sessionRepo, groupRepo, seriesRepo, commentRepo, redisClient, cfg.AdminStatsTTL, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		SessionHandler:      handler.NewSessionHandler(sessionService, logger),
		SeriesHandler:       handler.NewSeriesHandler(seriesService, logger),
		MembershipHandler:   handler.NewMembershipHandler(membershipService, logger),
		ContentHandler:      handler.NewContentHandler(contentService, logger),
		CommentHandler:      handler.NewCommentHandler(commentService, logger),
		ChatHandler:         handler.NewChatHandler(chatService, logger),
		StreamHandler:       handler.NewStreamHandler(broker, chatService, commentService, logger),
		GroupHandler:        handler.NewGroupHandler(groupService, logger),
		PrayerHandler:       handler.NewPrayerHandler(prayerService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		AdminHandler:        handler.NewAdminHandler(adminService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
