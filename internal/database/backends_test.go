package database_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redweb-backend/internal/database"
)

// exerciseBackend checks the Backend contract shared by every adapter.
func exerciseBackend(t *testing.T, b database.Backend, name string) {
	t.Helper()
	ctx := context.Background()

	data, err := b.Read(ctx, name)
	if err != nil {
		t.Fatalf("Read missing failed: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for missing collection, got %q", data)
	}

	if err := b.Write(ctx, name, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := b.Write(ctx, name, []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	store := database.NewStore(b, zap.NewNop())
	got, err := database.NewCollection[item](store, name).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("expected last write to win, got %#v", got)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, database.NewMemoryBackend(), "items")
}

func TestFileBackend(t *testing.T) {
	b, err := database.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseBackend(t, b, "items")
}

func TestPostgresBackend(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	b, err := database.NewPostgresBackend(url, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgresBackend failed: %v", err)
	}
	defer b.Close()
	exerciseBackend(t, b, "test-"+uuid.New().String())
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	b, err := database.NewRedisBackend(context.Background(), database.RedisOptions{
		Addr:   addr,
		Prefix: "redweb-test:" + uuid.New().String() + ":",
	})
	if err != nil {
		t.Fatalf("NewRedisBackend failed: %v", err)
	}
	defer b.Close()
	exerciseBackend(t, b, "items")
}
