package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenSessionDatabase(shared.SessionConfig{Path: shared.MemoryDatabase})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsRepository(t *testing.T) {
	t.Run("Get Missing", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		_, err := repo.Get("nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Set And Overwrite", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		if err := repo.Set("theme", "dark"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := repo.Set("theme", "light"); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		got, err := repo.Get("theme")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got != "light" {
			t.Errorf("expected 'light', got %q", got)
		}

		if ts, err := repo.UpdatedAt("theme"); err != nil || ts.IsZero() {
			t.Errorf("expected update time, got %v (%v)", ts, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		repo.Set("theme", "dark")
		if err := repo.Delete("theme"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get("theme"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete("theme"); err != nil {
			t.Errorf("expected deleting a missing key to succeed, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Load Without Session", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		s, err := repo.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s != nil {
			t.Errorf("expected nil session, got %+v", s)
		}
	})

	t.Run("Save Load Clear", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		want := models.Session{ID: 7, Name: "Ann", Email: "a@x.com", Token: "tok"}

		if err := repo.Save(want); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if got == nil || *got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}

		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if got, _ := repo.Load(); got != nil {
			t.Errorf("expected nil session after clear, got %+v", got)
		}
	})

	t.Run("SavedAt", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if _, err := repo.SavedAt(); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound before login, got %v", err)
		}

		before := time.Now().UTC().Add(-time.Minute)
		repo.Save(models.Session{ID: 7, Name: "Ann", Token: "tok"})

		ts, err := repo.SavedAt()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ts.Before(before) {
			t.Errorf("expected a recent save time, got %v", ts)
		}
	})

	t.Run("Corrupt Value", func(t *testing.T) {
		db := setupTestDB(t)
		NewSettingsRepository(db).Set(SessionKey, "{not json")

		_, err := NewSessionRepository(db).Load()
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
