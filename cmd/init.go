package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sitehatch/sitehatch-backend/internal/application"
	authCmd "github.com/sitehatch/sitehatch-backend/internal/application/commands/auth"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/debug"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/generate"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/payment"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/publish"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/sendmail"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/submission"
	"github.com/sitehatch/sitehatch-backend/internal/application/query"
	"github.com/sitehatch/sitehatch-backend/internal/application/ratelimit"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/client/colors"
	ai "github.com/sitehatch/sitehatch-backend/internal/infra/client/openai"
	"github.com/sitehatch/sitehatch-backend/internal/infra/client/payments"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/deploy"
	"github.com/sitehatch/sitehatch-backend/internal/infra/mail"
	"github.com/sitehatch/sitehatch-backend/internal/infra/render"
	"github.com/sitehatch/sitehatch-backend/internal/infra/storage"
	"github.com/sitehatch/sitehatch-backend/internal/presentation/rest"
	"github.com/sitehatch/sitehatch-backend/internal/presentation/scheduler"
	"github.com/sitehatch/sitehatch-backend/pkg/db"
	"github.com/sitehatch/sitehatch-backend/pkg/env"
)

func Init() {
	// DB
	dbConfig := db.NewConfig()
	pool, err := pgxpool.New(context.Background(), dbConfig.GetDSN())
	if err != nil {
		log.Panicf("failed to create pool: %v", err)
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Panicf("failed to connect to db: %v", err)
	}
	uowFactory := db.NewUoWFactory(pool)

	// Configs
	appConfig := config.NewAppConfig()
	mailConfig := mail.NewMailConfig()
	deployConfig := deploy.NewDeployConfig()
	paymentConfig := payment.NewPaymentConfig()
	outboxConfig := scheduler.NewOutboxConfig()

	mailServer := mail.NewMailServer(mailConfig)
	identity := auth.NewIdentityProvider(appConfig.JWTSecret, appConfig.SessionLifetimeHours)

	// AWS
	cfg, err := awsConfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Panic("can't load aws config", err)
	}
	s3 := storage.NewStorage(cfg)

	// Collaborators
	contentClient := ai.NewOpenAIClient(ai.NewOpenAIConfig())
	colorExtractor := colors.NewExtractor()
	renderer := render.NewRenderer()
	deployer := deploy.NewClient(deployConfig)

	publisher := publish.NewPublish(appConfig, uowFactory, s3, deployer)
	commands := &application.Collection{
		CreateSubmission: submission.NewCreateSubmission(uowFactory),
		ResetSubmission:  submission.NewResetSubmission(uowFactory),
		Generate:         generate.NewGenerate(appConfig, uowFactory, contentClient, colorExtractor, renderer, s3),
		Publish:          publisher,
		ApproveWebsite:   publish.NewApproveWebsite(uowFactory),
		Payment:          payment.NewPayment(uowFactory, paymentConfig, appConfig, publisher, payments.NewStripe()),
		Login:            authCmd.NewLogin(uowFactory, identity),
		Debug:            debug.NewDebug(appConfig, uowFactory),
		GetStatus:        query.NewGetStatus(uowFactory),
		GetPreview:       query.NewGetPreview(s3),
		ListWebsites:     query.NewListWebsites(uowFactory),
		AdminStats:       query.NewAdminStats(uowFactory),
	}

	limiterStore := ratelimit.NewMemoryStore()
	limiter := ratelimit.NewLimiter(limiterStore)

	handler := rest.NewServer(commands)
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ORIGINS", "http://localhost:3000"),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Admin-Secret",
		AllowCredentials: true,
	}))
	rest.RegisterHandlers(app, handler, appConfig, limiter, identity)

	processors := &application.Processors{
		SendMail: sendmail.NewSendMail(mailServer, uowFactory, appConfig),
	}
	outboxPoller := scheduler.NewOutboxPoller(processors, uowFactory, outboxConfig)
	go outboxPoller.Start()

	go func() {
		if err := app.Listen(":" + env.GetEnv("PORT", "8080")); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	outboxPoller.Stop()
	limiterStore.Stop()

	fmt.Println("Running cleanup tasks...")

	uowFactory.Pool.Close()
	fmt.Println("Fiber was successfully shutdown.")
}
