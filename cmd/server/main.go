package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	auditrepo "orghub/backend/internal/audit/repository"
	causerepo "orghub/backend/internal/cause/repository"
	"orghub/backend/internal/config"
	"orghub/backend/internal/db"
	documentrepo "orghub/backend/internal/document/repository"
	"orghub/backend/internal/events"
	identityrepo "orghub/backend/internal/identity/repository"
	identityservice "orghub/backend/internal/identity/service"
	lecturerepo "orghub/backend/internal/lecture/repository"
	membershiprepo "orghub/backend/internal/membership/repository"
	membershipservice "orghub/backend/internal/membership/service"
	organizationrepo "orghub/backend/internal/organization/repository"
	policyengine "orghub/backend/internal/policy/engine"
	policyrepo "orghub/backend/internal/policy/repository"
	"orghub/backend/internal/security"
	"orghub/backend/internal/server"
	"orghub/backend/internal/server/guard"
	sessionrepo "orghub/backend/internal/session/repository"
	telemetryotel "orghub/backend/internal/telemetry/otel"
	userrepo "orghub/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "orghub-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience,
		cfg.AccessTTL(), cfg.RefreshTTL(), cfg.ExpiryGrace())

	users := userrepo.NewPostgresRepository(database)
	identities := identityrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	memberships := membershiprepo.NewPostgresRepository(database)
	orgs := organizationrepo.NewPostgresRepository(database)
	causes := causerepo.NewPostgresRepository(database)
	lectures := lecturerepo.NewPostgresRepository(database)
	documents := documentrepo.NewPostgresRepository(database)
	audits := auditrepo.NewPostgresRepository(database)
	policies := policyrepo.NewPostgresRepository(database)

	var producer events.Producer = events.NoopProducer{}
	if kp := events.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.MembershipEventsTopic); kp != nil {
		producer = kp
		defer kp.Close()
	}

	var limiter guard.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		limiter = guard.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateWindow())
	} else {
		wl := guard.NewWindowLimiter(cfg.RateLimitRequests, cfg.RateWindow())
		wl.StartCleanup(ctx)
		limiter = wl
	}

	evaluator := policyengine.NewOPAEvaluator(policies)
	pipeline := guard.NewPipeline(tokens, limiter, cfg.RateLimitFailClosed, evaluator, cfg.CredentialAgeLimit())

	auth := identityservice.NewAuthService(users, identities, sessions, memberships,
		security.NewHasher(cfg.BcryptCost), tokens, cfg.RefreshTTL(), cfg.ClaimCap)
	membershipSvc := membershipservice.NewMembershipService(orgs, memberships, producer)

	handler := server.NewRouter(server.Deps{
		Pipeline:            pipeline,
		Auth:                auth,
		Memberships:         membershipSvc,
		OrgRepo:             orgs,
		MembershipRepo:      memberships,
		CauseRepo:           causes,
		LectureRepo:         lectures,
		DocumentRepo:        documents,
		AuditRepo:           audits,
		Producer:            producer,
		Emitter:             telemetryotel.NewEventEmitter(providers.LoggerProvider),
		HealthPinger:        database,
		HealthPolicyChecker: evaluator,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
