package persist

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/glade/glade/internal/config"
	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/scene"
	"go.uber.org/zap/zaptest"
)

func TestNewDBWithoutDSN(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{}, zaptest.NewLogger(t))
	if !errors.Is(err, ErrNoDSN) {
		t.Errorf("err = %v, want ErrNoDSN", err)
	}
}

func TestNewDBBadDSN(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{DSN: "postgres://%zz"}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("NewDB succeeded with a malformed dsn")
	}
}

// openTestDB connects to GLADE_TEST_DATABASE_DSN and migrates it, or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("GLADE_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("GLADE_TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(db.Close)
	version, err := RunMigrations(ctx, db)
	if err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if version < 1 {
		t.Fatalf("schema version = %d", version)
	}
	return db
}

func TestSceneStateRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewSceneStateRepo(db)
	ctx := context.Background()
	name := "test-" + t.Name()
	t.Cleanup(func() { _ = repo.DeleteScene(ctx, name) })

	if _, ok, err := repo.LoadScene(ctx, name); err != nil || ok {
		t.Fatalf("LoadScene before save = %v, %v", ok, err)
	}

	saved := scene.State{
		Scene:       name,
		Camera:      scene.CameraPose{Position: graphics.V(1, 2, 3), Yaw: -45, Pitch: 10},
		Period:      scene.Night,
		DaySkybox:   "sky",
		NightSkybox: "stars",
		SavedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.SaveScene(ctx, saved); err != nil {
		t.Fatalf("SaveScene: %v", err)
	}
	saved.Period = scene.Day
	saved.SavedAt = saved.SavedAt.Add(time.Second)
	if err := repo.SaveScene(ctx, saved); err != nil {
		t.Fatalf("SaveScene upsert: %v", err)
	}

	got, ok, err := repo.LoadScene(ctx, name)
	if err != nil || !ok {
		t.Fatalf("LoadScene = %v, %v", ok, err)
	}
	if got.Period != scene.Day || got.Camera != saved.Camera || got.NightSkybox != "stars" {
		t.Errorf("loaded %+v, want %+v", got, saved)
	}
	if !got.SavedAt.Equal(saved.SavedAt) {
		t.Errorf("saved_at = %v, want %v", got.SavedAt, saved.SavedAt)
	}

	hist, err := repo.History(ctx, name, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].Period != scene.Day || hist[1].Period != scene.Night {
		t.Errorf("history = %+v", hist)
	}
}
