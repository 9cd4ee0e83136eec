package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/config"
	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/auth"
	"github.com/edicionpersuasiva/crm/internal/infra/database"
	"github.com/edicionpersuasiva/crm/internal/infra/http/handlers"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/infra/mail"
	"github.com/edicionpersuasiva/crm/internal/infra/memory"
	"github.com/edicionpersuasiva/crm/internal/infra/queue"
	"github.com/edicionpersuasiva/crm/internal/infra/storage"
	"github.com/edicionpersuasiva/crm/internal/infra/worker"
	"github.com/edicionpersuasiva/crm/internal/logger"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

type repositories struct {
	leads       entity.LeadRepositoryInterface
	sales       entity.SaleRepositoryInterface
	users       entity.UserRepositoryInterface
	credentials entity.CredentialRepositoryInterface
	adLinks     entity.AdLinkRepositoryInterface
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Repositorios
	var db *sql.DB
	var repos repositories
	if cfg.DatabaseURL != "" {
		db, err = database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			logg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logg.Fatal("failed to migrate database", zap.Error(err))
		}
		repos = repositories{
			leads:       database.NewLeadRepository(db),
			sales:       database.NewSaleRepository(db),
			users:       database.NewUserRepository(db),
			credentials: database.NewCredentialRepository(db),
			adLinks:     database.NewAdLinkRepository(db),
		}
	} else {
		logg.Warn("DATABASE_URL not set, using in-memory store")
		store := memory.NewStore()
		repos = repositories{
			leads:       store.Leads(),
			sales:       store.Sales(),
			users:       store.Users(),
			credentials: store.Credentials(),
			adLinks:     store.AdLinks(),
		}
	}

	// 2. Notificaciones de leads
	mailSender := mail.NewEmailSender(cfg.SMTP.Service, cfg.SMTP.Host, cfg.SMTP.Port,
		cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	notifyUC := usecase.NewNotifyLeadUseCase(repos.leads, mailSender,
		cfg.AdminEmail, cfg.AppURL, cfg.WhatsAppNumber, logg)

	var publisher usecase.LeadEventPublisher
	var rabbitMQ *queue.RabbitMQ
	var inline *queue.InlineDispatcher
	if cfg.AMQPURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logg.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitMQ.Close()
		publisher = queue.NewProducer(rabbitMQ.Ch)

		consumer := queue.NewWorker(rabbitMQ.Ch, notifyUC, logg)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				logg.Error("queue worker exited", zap.Error(err))
			}
		}()
	} else {
		logg.Warn("AMQP_URL not set, lead notifications run in-process")
		inline = queue.NewInlineDispatcher(notifyUC, logg)
		publisher = inline
	}

	// 3. Almacenamiento de comprobantes
	var receipts handlers.ReceiptUploader
	if cfg.S3.Enabled() {
		store, err := storage.NewReceiptStore(ctx, storage.Config{
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			logg.Fatal("failed to configure receipt storage", zap.Error(err))
		}
		receipts = store
	}

	// 4. UseCases
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	captureUC := usecase.NewCaptureLeadUseCase(repos.leads, publisher, cfg.WhatsAppNumber, logg)
	updateLeadUC := usecase.NewUpdateLeadUseCase(repos.leads)
	agentUC := usecase.NewUpdateLeadFromAgentUseCase(repos.leads)
	queryUC := usecase.NewCRMQueryUseCase(repos.leads, repos.sales)
	createSaleUC := usecase.NewCreateSaleUseCase(repos.leads, repos.sales)
	paymentUC := usecase.NewAddPaymentProofUseCase(repos.sales)
	exemptionUC := usecase.NewGrantPaymentExemptionUseCase(repos.sales)
	accessUC := usecase.NewCourseAccessUseCase(repos.sales)
	createUserUC := usecase.NewCreateUserUseCase(repos.users, repos.credentials, hasher, logg)
	manageUsersUC := usecase.NewManageUsersUseCase(repos.users, repos.credentials)
	loginUC := usecase.NewLoginUseCase(repos.users, repos.credentials, hasher, tokens)
	adLinkUC := usecase.NewAdLinkUseCase(repos.adLinks)

	created, err := usecase.BootstrapSuperAdmin(ctx, createUserUC, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	if err != nil {
		logg.Fatal("failed to bootstrap super admin", zap.Error(err))
	}
	if created {
		logg.Info("super admin created", zap.String("email", cfg.BootstrapAdminEmail))
	}

	// 5. Worker de expiración de accesos
	sweeper := worker.NewAccessExpirationWorker(repos.sales, cfg.AccessSweepInterval, logg)
	go sweeper.Start(ctx)

	// 6. Handlers y router
	var amqpConn *amqp.Connection
	if rabbitMQ != nil {
		amqpConn = rabbitMQ.Conn
	}
	router := newRouter(routerDeps{
		CORSOrigins: cfg.CORSOrigins,
		Auth:        middleware.NewAuthenticator(tokens, repos.users),
		Intake:      middleware.NewRateLimiter(cfg.IntakeRatePerMinute, cfg.IntakeRatePerMinute),
		Health:      handlers.NewHealthHandler(db, amqpConn, receipts != nil),
		Leads:       handlers.NewLeadHandler(captureUC, logg),
		Callbacks:   handlers.NewCallbackHandler(cfg.APIKey, updateLeadUC, agentUC, logg),
		Admin:       handlers.NewAdminLeadHandler(queryUC, updateLeadUC, createSaleUC, logg),
		Sales:       handlers.NewAdminSaleHandler(queryUC, paymentUC, exemptionUC, accessUC, receipts, logg),
		Users:       handlers.NewAdminUserHandler(createUserUC, manageUsersUC, loginUC, logg),
		AdLinks:     handlers.NewAdLinkHandler(adLinkUC, logg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logg.Info("CRM API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
	if inline != nil {
		inline.Wait()
	}
}
