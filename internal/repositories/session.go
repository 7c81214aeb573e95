package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
)

// SessionKey is the settings key holding the logged-in user.
const SessionKey = "user"

// SessionRepository persists the single login session as JSON under [SessionKey].
type SessionRepository struct {
	settings *SettingsRepository
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{settings: NewSettingsRepository(db)}
}

// Load returns the stored session, or nil when nobody is logged in.
func (r *SessionRepository) Load() (*models.Session, error) {
	raw, err := r.settings.Get(SessionKey)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: stored session is corrupt: %v", shared.ErrInvalidConfig, err)
	}
	return &s, nil
}

// Save replaces the stored session.
func (r *SessionRepository) Save(s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.settings.Set(SessionKey, string(data))
}

// Clear removes the stored session.
func (r *SessionRepository) Clear() error {
	return r.settings.Delete(SessionKey)
}

// SavedAt returns when the stored session was last written, wrapping [shared.ErrNotFound] when nobody is logged in.
func (r *SessionRepository) SavedAt() (time.Time, error) {
	return r.settings.UpdatedAt(SessionKey)
}
