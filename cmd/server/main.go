package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"channelinvites/config"
	_ "channelinvites/docs"
	authadapter "channelinvites/internal/adapters/auth"
	emailadapter "channelinvites/internal/adapters/email"
	"channelinvites/internal/adapters/notify"
	delivery "channelinvites/internal/delivery/http"
	"channelinvites/internal/delivery/http/controllers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/repository/postgres"
	"channelinvites/internal/services"
)

// @title Channel Invites API
// @version 1.0
// @description Channel invitation lifecycle and member approval service.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("connected to database")

	// Adapters
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}
	notifier := notify.New(logger)

	// Repositories
	policyRepo := postgres.NewInvitePolicyRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	requestRepo := postgres.NewMembershipRequestRepository(db)

	// Services
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	policyService := services.NewPolicyService(policyRepo, notifier, cfg.RequestTimeout)
	inviteService := services.NewInviteService(inviteRepo, policyService, emailService, notifier, cfg.InviteLinkBase, time.Now, cfg.RequestTimeout)
	approvalService := services.NewApprovalService(requestRepo, inviteRepo, notifier, emailService, time.Now, cfg.RequestTimeout)
	membershipService := services.NewMembershipService(inviteService, approvalService, notifier, cfg.RequestTimeout)

	// Controllers
	policyController := controllers.NewPolicyController(logger, policyService)
	inviteController := controllers.NewInviteController(logger, inviteService, time.Now)
	approvalController := controllers.NewApprovalController(logger, approvalService)
	membershipController := controllers.NewMembershipController(logger, membershipService)

	mux := delivery.NewRouter(policyController, inviteController, approvalController, membershipController, verifier, logger)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
