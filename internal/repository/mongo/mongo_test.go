package mongo_test

import (
	"alcyxob/hyrox-trainer/internal/repository"
	repomongo "alcyxob/hyrox-trainer/internal/repository/mongo"
	"alcyxob/hyrox-trainer/internal/repository/repotest"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// The suite needs a reachable server, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/repository/mongo/
func TestMongo_Contract(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	client, err := repomongo.ConnectDB(uri)
	if err != nil {
		t.Fatalf("ConnectDB() error = %v", err)
	}
	t.Cleanup(func() {
		if err := repomongo.DisconnectDB(client); err != nil {
			t.Errorf("disconnect: %v", err)
		}
	})

	repotest.Run(t, func(t *testing.T) (repository.ProgramRepository, repository.CompletionRepository) {
		name := "hyrox_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		db := client.Database(name)
		if err := repomongo.EnsureIndexes(t.Context(), db); err != nil {
			t.Fatalf("EnsureIndexes() error = %v", err)
		}
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := db.Drop(ctx); err != nil {
				t.Errorf("drop database %s: %v", name, err)
			}
		})
		return repomongo.NewMongoProgramRepository(db), repomongo.NewMongoCompletionRepository(db)
	})
}
