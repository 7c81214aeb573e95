package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Lister fetches complete collections from the catalog service.
type Lister interface {
	List(ctx context.Context, t models.EntityType) ([]models.Entity, error)
	ListPlaylistsByAuthor(ctx context.Context, authorID int64) ([]models.Entity, error)
	ListTracksByArtist(ctx context.Context, artistName string) ([]models.Entity, error)
	ListAlbumsByGenre(ctx context.Context, genreName string) ([]models.Entity, error)
	FindByName(ctx context.Context, t models.EntityType, name string) ([]models.Entity, error)
}

// Query parameters of the filtered collection views.
const (
	ParamAuthorID   = "authorId"
	ParamArtistName = "artistName"
	ParamGenreName  = "genreName"
	ParamName       = "name"
)

// Filter narrows a collection to a server-side view. The zero Filter is the full collection.
type Filter struct {
	Param string
	Value string
}

// AuthorFilter scopes playlists to one author.
func AuthorFilter(authorID int64) Filter {
	return Filter{Param: ParamAuthorID, Value: strconv.FormatInt(authorID, 10)}
}

// ArtistFilter scopes tracks to one artist, matched by name.
func ArtistFilter(name string) Filter { return Filter{Param: ParamArtistName, Value: name} }

// GenreFilter scopes albums to one genre, matched by name.
func GenreFilter(name string) Filter { return Filter{Param: ParamGenreName, Value: name} }

// NameFilter keeps the records whose name equals name exactly.
func NameFilter(name string) Filter { return Filter{Param: ParamName, Value: name} }

// IsZero reports the unfiltered view.
func (f Filter) IsZero() bool { return f.Param == "" }

func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Param + "=" + f.Value
}

func (f Filter) key(t models.EntityType) string {
	if f.IsZero() {
		return t.String()
	}
	return t.String() + "?" + f.String()
}

// supports reports whether the service offers f on t.
func (f Filter) supports(t models.EntityType) bool {
	switch f.Param {
	case "", ParamName:
		return true
	case ParamAuthorID:
		return t == models.Playlists
	case ParamArtistName:
		return t == models.Tracks
	case ParamGenreName:
		return t == models.Albums
	default:
		return false
	}
}

// FetchFailure reports a failed collection load. The previously cached collection is left as it was.
type FetchFailure struct {
	Type models.EntityType
	Err  error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("failed to load %s: %v", f.Type, f.Err)
}

func (f *FetchFailure) Unwrap() []error {
	return []error{shared.ErrFetchFailed, f.Err}
}

// collection is one applied load result.
type collection struct {
	items    []models.Entity
	version  uint64
	loadedAt time.Time
	filter   Filter
	stale    bool
}

// Store caches the last fetched collection per entity type.
//
// Collections are only ever replaced wholesale by a load. Each load takes a ticket when issued;
// a result whose ticket is older than the applied version is dropped so a slow response never overwrites fresher state.
type Store struct {
	source Lister
	logger *log.Logger

	mu          sync.RWMutex
	collections map[models.EntityType]*collection
	issued      map[models.EntityType]uint64
	applied     map[models.EntityType]uint64

	flights singleflight.Group
}

// New creates an empty store backed by source.
func New(source Lister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		source:      source,
		logger:      logger,
		collections: make(map[models.EntityType]*collection),
		issued:      make(map[models.EntityType]uint64),
		applied:     make(map[models.EntityType]uint64),
	}
}

// Load replaces the cached collection for t with the full remote collection.
//
// Concurrent loads of the same type share one request until [Store.Invalidate] is called.
func (s *Store) Load(ctx context.Context, t models.EntityType) ([]models.Entity, error) {
	return s.load(ctx, t, Filter{}, func(ctx context.Context) ([]models.Entity, error) {
		return s.source.List(ctx, t)
	})
}

// LoadPlaylistsByAuthor replaces the playlists collection with the author-scoped view.
func (s *Store) LoadPlaylistsByAuthor(ctx context.Context, authorID int64) ([]models.Entity, error) {
	return s.LoadFiltered(ctx, models.Playlists, AuthorFilter(authorID))
}

// LoadTracksByArtist replaces the tracks collection with the tracks of one artist.
func (s *Store) LoadTracksByArtist(ctx context.Context, artistName string) ([]models.Entity, error) {
	return s.LoadFiltered(ctx, models.Tracks, ArtistFilter(artistName))
}

// LoadAlbumsByGenre replaces the albums collection with the albums of one genre.
func (s *Store) LoadAlbumsByGenre(ctx context.Context, genreName string) ([]models.Entity, error) {
	return s.LoadFiltered(ctx, models.Albums, GenreFilter(genreName))
}

// LoadFiltered replaces the cached collection for t with the server-side view f.
// The view stays in place, and is what a reload refreshes, until an unfiltered [Store.Load].
func (s *Store) LoadFiltered(ctx context.Context, t models.EntityType, f Filter) ([]models.Entity, error) {
	if f.IsZero() {
		return s.Load(ctx, t)
	}
	if !f.supports(t) {
		return nil, fmt.Errorf("%w: %s cannot be filtered by %s", shared.ErrInvalidArgument, t, f.Param)
	}

	return s.load(ctx, t, f, func(ctx context.Context) ([]models.Entity, error) {
		switch f.Param {
		case ParamAuthorID:
			id, err := strconv.ParseInt(f.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: author id %q", shared.ErrInvalidArgument, f.Value)
			}
			return s.source.ListPlaylistsByAuthor(ctx, id)
		case ParamArtistName:
			return s.source.ListTracksByArtist(ctx, f.Value)
		case ParamGenreName:
			return s.source.ListAlbumsByGenre(ctx, f.Value)
		default:
			return s.source.FindByName(ctx, t, f.Value)
		}
	})
}

func (s *Store) load(ctx context.Context, t models.EntityType, f Filter, fetch func(context.Context) ([]models.Entity, error)) ([]models.Entity, error) {
	v, err, joined := s.flights.Do(f.key(t), func() (any, error) {
		ticket := s.issue(t)

		items, err := fetch(ctx)
		if err != nil {
			return nil, &FetchFailure{Type: t, Err: err}
		}
		return s.apply(t, ticket, f, items), nil
	})
	if joined {
		s.logger.Debug("joined in-flight load", "type", t, "filter", f)
	}
	if err != nil {
		s.logger.Warn("load failed", "type", t, "err", err)
		return nil, err
	}
	return clone(v.([]models.Entity)), nil
}

func (s *Store) issue(t models.EntityType) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[t]++
	return s.issued[t]
}

// apply installs items unless a newer load has already been applied, and returns the collection now cached.
func (s *Store) apply(t models.EntityType, ticket uint64, f Filter, items []models.Entity) []models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket < s.applied[t] {
		s.logger.Debug("discarding out-of-date load", "type", t, "ticket", ticket, "applied", s.applied[t])
		if c, ok := s.collections[t]; ok {
			return c.items
		}
		return nil
	}

	s.applied[t] = ticket
	s.collections[t] = &collection{
		items:    items,
		version:  ticket,
		loadedAt: time.Now(),
		filter:   f,
	}
	s.logger.Debug("collection loaded", "type", t, "count", len(items), "version", ticket)
	return items
}

// LoadAll loads every type concurrently. Loads are independent: successes are kept and every failure is returned, joined.
func (s *Store) LoadAll(ctx context.Context, types ...models.EntityType) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, t := range types {
		g.Go(func() error {
			if _, err := s.Load(ctx, t); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Entities returns a copy of the cached collection for t, nil when nothing is loaded.
func (s *Store) Entities(t models.EntityType) []models.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[t]; ok {
		return clone(c.items)
	}
	return nil
}

// Find looks up a cached record by id.
func (s *Store) Find(t models.EntityType, id int64) (models.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[t]
	if !ok {
		return nil, false
	}
	for _, e := range c.items {
		if e.EntityID() == id {
			return e, true
		}
	}
	return nil, false
}

// Loaded reports whether a collection for t is cached.
func (s *Store) Loaded(t models.EntityType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[t]
	return ok
}

// Stale reports whether t was invalidated since its last load.
func (s *Store) Stale(t models.EntityType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[t]
	return ok && c.stale
}

// Version returns the ticket of the applied collection for t.
func (s *Store) Version(t models.EntityType) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied[t]
}

// LoadedAt returns when the cached collection for t was applied.
func (s *Store) LoadedAt(t models.EntityType) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[t]; ok {
		return c.loadedAt
	}
	return time.Time{}
}

// Filter returns the view the cached collection for t was loaded with.
func (s *Store) Filter(t models.EntityType) Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[t]; ok {
		return c.filter
	}
	return Filter{}
}

// Invalidate marks t stale after a mutation. The cached items stay readable until the next load replaces them,
// and in-flight loads started before the call are no longer joined.
func (s *Store) Invalidate(t models.EntityType) {
	s.mu.Lock()
	if c, ok := s.collections[t]; ok {
		c.stale = true
	}
	s.mu.Unlock()

	s.flights.Forget(t.String())
	if f := s.Filter(t); !f.IsZero() {
		s.flights.Forget(f.key(t))
	}
}

// Discard drops the cached collection for t. Loads already in flight are ignored when they resolve.
func (s *Store) Discard(t models.EntityType) {
	if f := s.Filter(t); !f.IsZero() {
		s.flights.Forget(f.key(t))
	}

	s.mu.Lock()
	delete(s.collections, t)
	s.applied[t] = s.issued[t] + 1
	s.issued[t] = s.applied[t]
	s.mu.Unlock()

	s.flights.Forget(t.String())
}

// Items returns the cached collection for t as concrete records.
func Items[T models.Entity](s *Store, t models.EntityType) []T {
	entities := s.Entities(t)
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func clone(items []models.Entity) []models.Entity {
	if items == nil {
		return nil
	}
	return append([]models.Entity(nil), items...)
}
