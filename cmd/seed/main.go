// seed inserts a batch of demo jobs into the local dev database.
// Run: DATABASE_URL=... go run ./cmd/seed
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hookq/hookq/internal/infrastructure/postgres"
	"github.com/hookq/hookq/internal/usecase"
)

type jobSpec struct {
	url    string
	method string
	body   string
	cron   string
	delay  time.Duration
}

var jobs = []jobSpec{
	// Happy path — should settle as Success
	{url: "https://httpbin.org/post", method: "POST", body: `{"n":1}`},
	{url: "https://httpbin.org/post", method: "POST", body: `{"n":2}`},
	{url: "https://httpbin.org/get", method: "GET"},

	// Scheduled in the future — stays Pending until eligible
	{url: "https://httpbin.org/get", method: "GET", delay: 2 * time.Minute},

	// Server errors — exercises backoff up to max attempts
	{url: "https://httpbin.org/status/500", method: "POST", body: `{"n":3}`},
	{url: "https://httpbin.org/status/503", method: "GET"},

	// Timeout — httpbin delays longer than the 30s request timeout
	{url: "https://httpbin.org/delay/35", method: "GET"},

	// Recurring — rearms on every five-minute boundary
	{url: "https://httpbin.org/get", method: "GET", cron: "0 */5 * * * *"},

	// Mixed methods
	{url: "https://httpbin.org/put", method: "PUT", body: `{"n":4}`},
	{url: "https://httpbin.org/delete", method: "DELETE"},
}

func main() {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	if err := postgres.Migrate(ctx, databaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	jobUsecase := usecase.NewJobUsecase(postgres.NewJobRepository(pool))

	for i, spec := range jobs {
		input := usecase.SubmitJobInput{
			URL:    spec.url,
			Method: spec.method,
		}
		if spec.body != "" {
			input.Body = json.RawMessage(spec.body)
		}
		if spec.cron != "" {
			cron := spec.cron
			input.Cron = &cron
		}
		if spec.delay > 0 {
			runAt := time.Now().UTC().Add(spec.delay)
			input.RunAt = &runAt
		}

		id, err := jobUsecase.Submit(ctx, input)
		if err != nil {
			log.Fatalf("seed job %d: %v", i+1, err)
		}
		fmt.Printf("%-7s %-40s %s\n", spec.method, spec.url, id)
	}

	fmt.Printf("seeded %d jobs\n", len(jobs))
}
