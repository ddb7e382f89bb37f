//go:build integration

package archive

import (
	"context"
	"testing"

	"github.com/Sternrassler/quote-fetcher/pkg/quote"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_ArchiveRoundTrip(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	a := New(client, 2)

	if err := a.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	batches := []quote.Batch{
		{quote.Success("I'll be back")},
		{quote.Failure("server exploded"), quote.Success("Get to the choppa!")},
		{},
	}
	for _, b := range batches {
		urls := make([]string, len(b))
		if err := a.Save(ctx, NewRecord(urls, b)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	records, err := a.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Recent returned %d records, want 2 after trim", len(records))
	}
	if len(records[0].Results) != 0 {
		t.Errorf("Newest record should be the empty batch, got %v", records[0].Results)
	}
	if records[1].Failures != 1 {
		t.Errorf("Failures = %d, want 1", records[1].Failures)
	}
}
