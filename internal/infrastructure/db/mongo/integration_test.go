package mongo

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/playground/userstats/internal/core/ports"
	"github.com/playground/userstats/internal/infrastructure/db/dbtest"
)

// Runs only when USERSTATS_TEST_MONGO_URI points at a reachable server.
func TestRecordRepository_Contract(t *testing.T) {
	uri := os.Getenv("USERSTATS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("USERSTATS_TEST_MONGO_URI not set")
	}

	dbtest.RunRecordRepositoryContract(t, func(t *testing.T) ports.RecordRepository {
		ctx := context.Background()
		name := "userstats_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

		client, db, err := Connect(ctx, Config{URI: uri, Database: name})
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		t.Cleanup(func() {
			_ = db.Drop(ctx)
			_ = client.Disconnect(ctx)
		})

		repo := NewRecordRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			t.Fatalf("ensure indexes: %v", err)
		}
		return repo
	})
}
