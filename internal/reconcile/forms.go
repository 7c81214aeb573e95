package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/catalogctl/internal/shared"
)

// TrackForm is the editable state of a track. AlbumID is zero when no album is selected.
type TrackForm struct {
	Name     string
	Duration int
	AlbumID  int64
	GenreIDs []int64
}

// AlbumForm is the editable state of an album.
type AlbumForm struct {
	Name      string
	ArtistIDs []int64
	TrackIDs  []int64
}

// ArtistForm is the editable state of an artist.
type ArtistForm struct {
	Name     string
	AlbumIDs []int64
}

// GenreForm is the editable state of a genre.
type GenreForm struct {
	Name string
}

// PlaylistForm is the editable state of a playlist. AuthorID is zero when unset.
type PlaylistForm struct {
	Name     string
	AuthorID int64
	TrackIDs []int64
}

// UserForm is the editable state of a user. A blank Password keeps the current one on update.
type UserForm struct {
	Name     string
	Email    string
	Password string
}

const (
	passwordMin = 4
	passwordMax = 20
)

// FormError collects client-side form violations keyed by payload field, shaped like a 400 response.
type FormError struct {
	Fields  map[string][]string
	unknown bool
}

func (e *FormError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Lines returns "field: message" lines sorted by field.
func (e *FormError) Lines() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, msg := range e.Fields[k] {
			lines = append(lines, k+": "+msg)
		}
	}
	return lines
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%v: %s", shared.ErrInvalidInput, strings.Join(e.Lines(), "; "))
}

func (e *FormError) Unwrap() []error {
	if e.unknown {
		return []error{shared.ErrInvalidInput, shared.ErrUnknownReference}
	}
	return []error{shared.ErrInvalidInput}
}

func (e *FormError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *FormError) requireName(name string) {
	if strings.TrimSpace(name) == "" {
		e.add("name", "must not be blank")
	}
}

func (e *FormError) checkEmail(email string) {
	if !strings.Contains(email, "@") {
		e.add("email", "must be a valid email")
	}
}

func (e *FormError) checkPassword(password string) {
	if n := len([]rune(password)); n < passwordMin || n > passwordMax {
		e.add("password", fmt.Sprintf("must be between %d and %d characters", passwordMin, passwordMax))
	}
}
