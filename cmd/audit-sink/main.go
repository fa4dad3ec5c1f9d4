package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gestao-licitacoes/tracker/internal/app/auditsink"
	"github.com/gestao-licitacoes/tracker/internal/messaging"
	"github.com/gestao-licitacoes/tracker/internal/platform/dbpool"
	"github.com/gestao-licitacoes/tracker/internal/platform/env"
	"github.com/gestao-licitacoes/tracker/internal/platform/natsutil"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/nats-io/nats.go"
)

func main() {
	ctx := context.Background()

	natsURL := env.String("NATS_URL", env.DefaultNATSURL)
	pgURL := env.String("DATABASE_URL", env.DefaultDatabaseURL)

	pool, err := dbpool.New(ctx, pgURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repository := auditsink.NewEventRepository(pool)
	if err := waitForPostgres(ctx, pool, repository, 30*time.Second); err != nil {
		log.Fatal(err)
	}
	service := auditsink.NewService(repository)

	client, err := natsutil.ConnectJetStreamWithRetry(natsURL, 20*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if err := messaging.EnsureStreams(client.JS); err != nil {
		log.Fatal(err)
	}

	sub, err := client.JS.QueueSubscribe(messaging.EventsSubject, "audit-sink", func(msg *nats.Msg) {
		insertCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := service.Handle(insertCtx, msg.Data); err != nil {
			if errors.Is(err, auditsink.ErrInvalidEventPayload) || errors.Is(err, auditsink.ErrUnsupportedAction) {
				log.Printf("discarding event: %v", err)
				_ = msg.Term()
				return
			}
			log.Printf("audit persistence failed: %v", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.ManualAck())
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Audit sink listening on subject:", sub.Subject)

	select {}
}

func waitForPostgres(ctx context.Context, pool *pgxpool.Pool, repository *auditsink.EventRepository, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = pool.Ping(attemptCtx)
		if lastErr == nil {
			lastErr = repository.EnsureSchema(attemptCtx)
		}
		cancel()
		if lastErr == nil {
			return nil
		}
		log.Printf("waiting for postgres readiness: %v", lastErr)
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
