// Worker consumes membership change events from Kafka and records them in
// the audit trail. Set KAFKA_BROKERS, MEMBERSHIP_EVENTS_TOPIC, KAFKA_GROUP_ID,
// and DATABASE_URL.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	auditdomain "orghub/backend/internal/audit/domain"
	auditrepo "orghub/backend/internal/audit/repository"
	"orghub/backend/internal/config"
	"orghub/backend/internal/db"
	"orghub/backend/internal/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: db: %v", err)
	}
	defer database.Close()
	audits := auditrepo.NewPostgresRepository(database)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.MembershipEventsTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker: consuming from %s (group %s)", cfg.MembershipEventsTopic, cfg.KafkaGroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var event events.MembershipChanged
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("worker: skipping undecodable event at offset %d: %v", msg.Offset, err)
			continue
		}

		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = audits.Create(writeCtx, &auditdomain.AuditLog{
			ID:        uuid.New().String(),
			OrgID:     event.OrgID,
			UserID:    event.ActorID,
			Action:    "membership." + event.Kind,
			Resource:  event.UserID,
			Reason:    event.Role,
			CreatedAt: event.OccurredAt,
		})
		cancel()
		if err != nil {
			log.Printf("worker: audit write failed: %v", err)
		}
	}
}
