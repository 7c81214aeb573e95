package session

import (
	"errors"
	"testing"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/repositories"
	"github.com/desertthunder/catalogctl/internal/shared"
)

type memoryStore struct {
	saved   *models.Session
	saveErr error
	cleared bool
}

func (m *memoryStore) Load() (*models.Session, error) { return m.saved, nil }
func (m *memoryStore) Save(s models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &s
	return nil
}
func (m *memoryStore) Clear() error {
	m.saved = nil
	m.cleared = true
	return nil
}

func TestContext(t *testing.T) {
	ann := models.Session{ID: 7, Name: "Ann", Email: "a@x.com", Token: "tok"}

	t.Run("New Loads Persisted Session", func(t *testing.T) {
		store := &memoryStore{saved: &ann}
		c, err := New(store, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, ok := c.Current()
		if !ok || got != ann {
			t.Errorf("expected %+v, got %+v", ann, got)
		}
		if !c.IsSelf(7) || c.IsSelf(8) {
			t.Error("unexpected IsSelf result")
		}
	})

	t.Run("Login And Logout", func(t *testing.T) {
		store := &memoryStore{}
		c, _ := New(store, nil)

		if c.LoggedIn() {
			t.Fatal("expected no session")
		}
		if err := c.Login(ann); err != nil {
			t.Fatalf("failed to login: %v", err)
		}
		if store.saved == nil || *store.saved != ann {
			t.Errorf("expected session to be persisted, got %+v", store.saved)
		}

		if err := c.Logout(); err != nil {
			t.Fatalf("failed to logout: %v", err)
		}
		if c.LoggedIn() || !store.cleared {
			t.Error("expected session to be cleared")
		}
	})

	t.Run("Failed Save Keeps Previous Session", func(t *testing.T) {
		store := &memoryStore{saveErr: errors.New("disk full")}
		c, _ := New(store, nil)

		if err := c.Login(ann); err == nil {
			t.Fatal("expected error")
		}
		if c.LoggedIn() {
			t.Error("expected no session after failed save")
		}
	})

	t.Run("Update Propagates Profile And Keeps Token", func(t *testing.T) {
		store := &memoryStore{saved: &ann}
		c, _ := New(store, nil)

		if err := c.Update(models.User{ID: 7, Name: "Ann", Email: "b@x.com"}); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, _ := c.Current()
		if got.Email != "b@x.com" || got.Token != "tok" {
			t.Errorf("unexpected session %+v", got)
		}
		if store.saved.Email != "b@x.com" {
			t.Errorf("expected persisted email to change, got %+v", store.saved)
		}
	})

	t.Run("Update For Another User Fails", func(t *testing.T) {
		c, _ := New(&memoryStore{saved: &ann}, nil)

		err := c.Update(models.User{ID: 8, Name: "Bob"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Token", func(t *testing.T) {
		c, _ := New(nil, nil)
		if _, err := c.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		c.Login(ann)
		tok, err := c.Token()
		if err != nil {
			t.Fatalf("expected token, got %v", err)
		}
		if tok.AccessToken != "tok" || !tok.Valid() {
			t.Errorf("unexpected token %+v", tok)
		}
	})

	t.Run("With SQLite Repository", func(t *testing.T) {
		db, err := shared.OpenSessionDatabase(shared.SessionConfig{Path: shared.MemoryDatabase})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		c, err := New(repositories.NewSessionRepository(db), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := c.Login(ann); err != nil {
			t.Fatalf("failed to login: %v", err)
		}

		reopened, err := New(repositories.NewSessionRepository(db), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got, ok := reopened.Current(); !ok || got != ann {
			t.Errorf("expected session to survive reopen, got %+v", got)
		}
		if ts, ok := reopened.SavedAt(); !ok || ts.IsZero() {
			t.Errorf("expected the save time of the stored session, got %v", ts)
		}
	})

	t.Run("SavedAt Without Stamper", func(t *testing.T) {
		c, _ := New(&memoryStore{saved: &ann}, nil)
		if _, ok := c.SavedAt(); ok {
			t.Error("expected no save time from a store that does not record one")
		}

		inMemory, _ := New(nil, nil)
		inMemory.Login(ann)
		if _, ok := inMemory.SavedAt(); ok {
			t.Error("expected no save time for an in-memory session")
		}
	})
}
