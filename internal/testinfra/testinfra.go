package testinfra

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var Pool *pgxpool.Pool

func init() {
	Pool = SetupDB()
}

func SetupDB() *pgxpool.Pool {

	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:17.2-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	if err != nil {
		log.Panicf("start postgres: %v", err)
	}

	pgHostPort, err := pgC.Endpoint(ctx, "")
	if err != nil {
		log.Panicf("postgres endpoint: %v", err)
	}
	pgDSN := fmt.Sprintf("postgres://postgres:password@%s/testdb?sslmode=disable", pgHostPort)

	pool, err := pgxpool.New(ctx, pgDSN)
	if err != nil {
		log.Panicf("pgxpool connect: %v", err)
	}

	ok := false
	for i := 0; i < 20; i++ {
		slog.Info("ping db", "try", i)
		ctxPing, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		err = pool.Ping(ctxPing)
		cancel()
		if err == nil {
			ok = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ok {
		log.Panic("db did not respond after 20 attempts")
	}

	_, err = pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS hatch;
		CREATE TABLE IF NOT EXISTS hatch.submissions (
			id UUID PRIMARY KEY,
			status VARCHAR(40) NOT NULL,
			fields JSONB NOT NULL,
			staged_username TEXT,
			staged_password TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS hatch.users (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS hatch.websites (
			id UUID PRIMARY KEY,
			submission_id UUID UNIQUE NOT NULL REFERENCES hatch.submissions(id),
			user_id UUID NOT NULL REFERENCES hatch.users(id),
			status VARCHAR(40) NOT NULL,
			payment_status VARCHAR(40) NOT NULL,
			color_primary VARCHAR(10) NOT NULL,
			color_secondary VARCHAR(10) NOT NULL,
			color_accent VARCHAR(10) NOT NULL,
			preview_url TEXT NOT NULL,
			publish_approved BOOLEAN NOT NULL DEFAULT FALSE,
			approved_by TEXT,
			approved_at TIMESTAMPTZ,
			publish_requested_at TIMESTAMPTZ,
			deployment_url TEXT,
			deployment_provider TEXT,
			deployed_at TIMESTAMPTZ,
			payment_session_id TEXT,
			amount_cents BIGINT,
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS hatch.outbox (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			event VARCHAR(60) NOT NULL,
			status SMALLINT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS hatch.mails (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			type VARCHAR(60) NOT NULL,
			recipients TEXT NOT NULL,
			subject TEXT NOT NULL,
			content TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		log.Panicf("create tables: %v", err)
	}

	return pool
}
