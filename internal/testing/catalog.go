package testing

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/desertthunder/catalogctl/internal/models"
)

// Call records one request made against a [FakeCatalog].
type Call struct {
	Method string
	Type   models.EntityType
	ID     int64
	Query  string
	Body   json.RawMessage
}

// FakeCatalog is an in-memory test double for the catalog service.
//
// Collections are served as configured; writes are recorded but do not change them unless OnWrite does.
type FakeCatalog struct {
	mu          sync.Mutex
	Collections map[models.EntityType][]models.Entity
	ByAuthor    map[int64][]models.Entity
	ByArtist    map[string][]models.Entity
	ByGenre     map[string][]models.Entity
	Calls       []Call

	// ListErr and WriteErr fail the matching calls when set.
	ListErr  map[models.EntityType]error
	WriteErr error

	// Response is returned from Create and Update; the request body is echoed when nil.
	Response json.RawMessage

	// OnWrite runs after a successful write, before the response is returned.
	OnWrite func(c Call)
}

// NewFakeCatalog creates a fake serving the given collections.
func NewFakeCatalog(collections map[models.EntityType][]models.Entity) *FakeCatalog {
	if collections == nil {
		collections = map[models.EntityType][]models.Entity{}
	}
	return &FakeCatalog{
		Collections: collections,
		ByAuthor:    map[int64][]models.Entity{},
		ByArtist:    map[string][]models.Entity{},
		ByGenre:     map[string][]models.Entity{},
		ListErr:     map[models.EntityType]error{},
	}
}

func (f *FakeCatalog) List(ctx context.Context, t models.EntityType) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "GET", Type: t})
	if err := f.ListErr[t]; err != nil {
		return nil, err
	}
	return append([]models.Entity(nil), f.Collections[t]...), nil
}

func (f *FakeCatalog) ListPlaylistsByAuthor(ctx context.Context, authorID int64) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "GET", Type: models.Playlists, ID: authorID, Query: "authorId=" + strconv.FormatInt(authorID, 10)})
	if err := f.ListErr[models.Playlists]; err != nil {
		return nil, err
	}
	return append([]models.Entity(nil), f.ByAuthor[authorID]...), nil
}

func (f *FakeCatalog) ListTracksByArtist(ctx context.Context, artistName string) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "GET", Type: models.Tracks, Query: "artistName=" + artistName})
	if err := f.ListErr[models.Tracks]; err != nil {
		return nil, err
	}
	return append([]models.Entity{}, f.ByArtist[artistName]...), nil
}

func (f *FakeCatalog) ListAlbumsByGenre(ctx context.Context, genreName string) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "GET", Type: models.Albums, Query: "genreName=" + genreName})
	if err := f.ListErr[models.Albums]; err != nil {
		return nil, err
	}
	return append([]models.Entity{}, f.ByGenre[genreName]...), nil
}

// FindByName serves the records of t whose display name equals name.
func (f *FakeCatalog) FindByName(ctx context.Context, t models.EntityType, name string) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "GET", Type: t, Query: "name=" + name})
	if err := f.ListErr[t]; err != nil {
		return nil, err
	}
	out := []models.Entity{}
	for _, e := range f.Collections[t] {
		if e.DisplayName() == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeCatalog) Create(ctx context.Context, t models.EntityType, body any) (json.RawMessage, error) {
	return f.write("POST", t, 0, body)
}

func (f *FakeCatalog) Update(ctx context.Context, t models.EntityType, id int64, body any) (json.RawMessage, error) {
	return f.write("PATCH", t, id, body)
}

func (f *FakeCatalog) Delete(ctx context.Context, t models.EntityType, id int64) error {
	_, err := f.write("DELETE", t, id, nil)
	return err
}

func (f *FakeCatalog) write(method string, t models.EntityType, id int64, body any) (json.RawMessage, error) {
	var raw json.RawMessage
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	f.mu.Lock()
	call := Call{Method: method, Type: t, ID: id, Body: raw}
	f.Calls = append(f.Calls, call)
	err, hook, resp := f.WriteErr, f.OnWrite, f.Response
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hook != nil {
		hook(call)
	}
	if resp != nil {
		return resp, nil
	}
	return raw, nil
}

// SetCollection replaces the collection served for t.
func (f *FakeCatalog) SetCollection(t models.EntityType, items []models.Entity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Collections[t] = items
}

// CallsFor returns the recorded calls with the given method.
func (f *FakeCatalog) CallsFor(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recorded calls.
func (f *FakeCatalog) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
