// package models defines the data model for the catalog admin client
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityType names a catalog collection. The value doubles as the URL segment.
type EntityType string

const (
	Tracks    EntityType = "tracks"
	Albums    EntityType = "albums"
	Artists   EntityType = "artists"
	Genres    EntityType = "genres"
	Playlists EntityType = "playlists"
	Users     EntityType = "users"
)

// AllEntityTypes lists every collection in menu order.
var AllEntityTypes = []EntityType{Tracks, Albums, Artists, Genres, Playlists, Users}

func (t EntityType) String() string { return string(t) }

// Singular returns the human label for one record ("track").
func (t EntityType) Singular() string { return strings.TrimSuffix(string(t), "s") }

// Title returns the capitalized singular label ("Track").
func (t EntityType) Title() string {
	s := t.Singular()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether t is one of [AllEntityTypes].
func (t EntityType) Valid() bool {
	for _, et := range AllEntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// ParseEntityType accepts plural or singular, any case.
func ParseEntityType(s string) (EntityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, et := range AllEntityTypes {
		if s == string(et) || s == et.Singular() {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Entity is the minimal view of a record shared by every type.
type Entity interface {
	EntityID() int64
	DisplayName() string
}

// Track is a song. Album is optional on read.
type Track struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Duration  int      `json:"duration"`
	AlbumName string   `json:"albumName,omitempty"`
	AlbumID   *int64   `json:"albumId,omitempty"`
	Genres    []string `json:"genres"`
	GenreIDs  []int64  `json:"genresIds,omitempty"`
	Artists   []string `json:"artists"`
}

// Album groups tracks and has at least one artist.
type Album struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Artists   []string `json:"artists"`
	ArtistIDs []int64  `json:"artistsIds,omitempty"`
	Tracks    []string `json:"tracks,omitempty"`
	TrackIDs  []int64  `json:"tracksIds,omitempty"`
}

// Artist performs on albums.
type Artist struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Albums   []string `json:"albums,omitempty"`
	AlbumIDs []int64  `json:"albumsIds,omitempty"`
}

// Genre carries only a derived track count.
type Genre struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TracksCount int    `json:"tracksCount"`
}

// Playlist has exactly one author.
type Playlist struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Author   string   `json:"author"`
	AuthorID *int64   `json:"authorId,omitempty"`
	Tracks   []string `json:"tracks,omitempty"`
	TrackIDs []int64  `json:"tracksIds,omitempty"`
}

// User is a catalog account. The password is write-only and never decoded.
type User struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Playlists []string `json:"playlists,omitempty"`

	LikedArtistsCount int `json:"likedArtistsCount"`
	LikedTracksCount  int `json:"likedTracksCount"`
}

var (
	_ Entity = Track{}
	_ Entity = Album{}
	_ Entity = Artist{}
	_ Entity = Genre{}
	_ Entity = Playlist{}
	_ Entity = User{}
)

func (t Track) EntityID() int64        { return t.ID }
func (t Track) DisplayName() string    { return t.Name }
func (a Album) EntityID() int64        { return a.ID }
func (a Album) DisplayName() string    { return a.Name }
func (a Artist) EntityID() int64       { return a.ID }
func (a Artist) DisplayName() string   { return a.Name }
func (g Genre) EntityID() int64        { return g.ID }
func (g Genre) DisplayName() string    { return g.Name }
func (p Playlist) EntityID() int64     { return p.ID }
func (p Playlist) DisplayName() string { return p.Name }
func (u User) EntityID() int64         { return u.ID }
func (u User) DisplayName() string     { return u.Name }

// DecodeCollection unmarshals a full collection response for t.
func DecodeCollection(t EntityType, data []byte) ([]Entity, error) {
	switch t {
	case Tracks:
		return decodeAs[Track](data)
	case Albums:
		return decodeAs[Album](data)
	case Artists:
		return decodeAs[Artist](data)
	case Genres:
		return decodeAs[Genre](data)
	case Playlists:
		return decodeAs[Playlist](data)
	case Users:
		return decodeAs[User](data)
	default:
		return nil, fmt.Errorf("unknown entity type %q", t)
	}
}

// DecodeEntity unmarshals a single record response for t.
func DecodeEntity(t EntityType, data []byte) (Entity, error) {
	switch t {
	case Tracks:
		return decodeOne[Track](data)
	case Albums:
		return decodeOne[Album](data)
	case Artists:
		return decodeOne[Artist](data)
	case Genres:
		return decodeOne[Genre](data)
	case Playlists:
		return decodeOne[Playlist](data)
	case Users:
		return decodeOne[User](data)
	default:
		return nil, fmt.Errorf("unknown entity type %q", t)
	}
}

func decodeAs[T Entity](data []byte) ([]Entity, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	out := make([]Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

func decodeOne[T Entity](data []byte) (Entity, error) {
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return item, nil
}
