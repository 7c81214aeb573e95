package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
)

// Catalog is the read side of the entity store the resolver works against.
type Catalog interface {
	Entities(t models.EntityType) []models.Entity
}

// Resolution is the outcome of mapping relation names (or server ids) to cached identifiers.
type Resolution struct {
	// Type is the related entity type, when known.
	Type models.EntityType
	// IDs in first-match order, without duplicates.
	IDs []int64
	// Missing lists names with no cached match. They are dropped from IDs.
	Missing []string
	// Unknown lists server-provided ids absent from the cache.
	Unknown []int64
	// Ambiguous maps a name to every id sharing it.
	Ambiguous map[string][]int64
}

// First returns the first resolved id.
func (r Resolution) First() (int64, bool) {
	if len(r.IDs) == 0 {
		return 0, false
	}
	return r.IDs[0], true
}

// Err reports ambiguous names as an [*AmbiguousResolutionError]. Missing names are not an error.
func (r Resolution) Err() error {
	if len(r.Ambiguous) == 0 {
		return nil
	}
	return &AmbiguousResolutionError{Type: r.Type, Names: r.Ambiguous}
}

// AmbiguousResolutionError reports display names shared by more than one cached record.
type AmbiguousResolutionError struct {
	Type  models.EntityType
	Names map[string][]int64
}

func (e *AmbiguousResolutionError) Error() string {
	names := make([]string, 0, len(e.Names))
	for n := range e.Names {
		names = append(names, n)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%q matches ids %v", n, e.Names[n])
	}

	subject := "name"
	if e.Type != "" {
		subject = e.Type.Singular() + " name"
	}
	return fmt.Sprintf("%v: %s %s", shared.ErrAmbiguousResolution, subject, strings.Join(parts, ", "))
}

func (e *AmbiguousResolutionError) Unwrap() error { return shared.ErrAmbiguousResolution }

// ResolveNames maps each name to the ids of every candidate whose display name equals it exactly.
func ResolveNames(names []string, candidates []models.Entity) Resolution {
	var res Resolution
	seen := make(map[int64]bool)

	for _, name := range names {
		var matched []int64
		for _, c := range candidates {
			if c.DisplayName() == name {
				matched = append(matched, c.EntityID())
			}
		}

		switch len(matched) {
		case 0:
			res.Missing = append(res.Missing, name)
			continue
		case 1:
		default:
			if res.Ambiguous == nil {
				res.Ambiguous = make(map[string][]int64)
			}
			res.Ambiguous[name] = matched
		}

		for _, id := range matched {
			if !seen[id] {
				seen[id] = true
				res.IDs = append(res.IDs, id)
			}
		}
	}
	return res
}

// ResolveName resolves a singular relation: the first match wins, ambiguity is still recorded.
func ResolveName(name string, candidates []models.Entity) Resolution {
	if name == "" {
		return Resolution{}
	}
	res := ResolveNames([]string{name}, candidates)
	if len(res.IDs) > 1 {
		res.IDs = res.IDs[:1]
	}
	return res
}

// ResolveIDs keeps the server-provided ids that are present among candidates.
func ResolveIDs(ids []int64, candidates []models.Entity) Resolution {
	known := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		known[c.EntityID()] = true
	}

	res := Resolution{IDs: []int64{}}
	seen := make(map[int64]bool)
	for _, id := range ids {
		switch {
		case seen[id]:
		case known[id]:
			seen[id] = true
			res.IDs = append(res.IDs, id)
		default:
			res.Unknown = append(res.Unknown, id)
		}
	}
	return res
}

// Resolutions records the resolution of each relation field of a seeded form, keyed by payload field.
type Resolutions map[string]Resolution

// Err joins every ambiguous relation.
func (rs Resolutions) Err() error {
	var errs []error
	for _, field := range rs.fields() {
		if err := rs[field].Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	return errors.Join(errs...)
}

// Missing lists the dropped names and unknown ids per field.
func (rs Resolutions) Missing() map[string][]string {
	out := make(map[string][]string)
	for field, r := range rs {
		lost := append([]string(nil), r.Missing...)
		for _, id := range r.Unknown {
			lost = append(lost, fmt.Sprintf("#%d", id))
		}
		if len(lost) > 0 {
			out[field] = lost
		}
	}
	return out
}

func (rs Resolutions) fields() []string {
	keys := make([]string, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// relation resolves a plural relation, preferring server ids when the record carries them.
func relation(c Catalog, t models.EntityType, ids []int64, names []string) Resolution {
	candidates := c.Entities(t)
	var res Resolution
	if ids != nil {
		res = ResolveIDs(ids, candidates)
	} else {
		res = ResolveNames(names, candidates)
	}
	if res.IDs == nil {
		res.IDs = []int64{}
	}
	res.Type = t
	return res
}

// single resolves a singular relation, preferring the server id.
func single(c Catalog, t models.EntityType, id *int64, name string) Resolution {
	candidates := c.Entities(t)
	var res Resolution
	if id != nil {
		res = ResolveIDs([]int64{*id}, candidates)
	} else {
		res = ResolveName(name, candidates)
	}
	res.Type = t
	return res
}

// SeedTrackForm derives edit state for track from the cached albums and genres.
func SeedTrackForm(c Catalog, track models.Track) (TrackForm, Resolutions) {
	album := single(c, models.Albums, track.AlbumID, track.AlbumName)
	genres := relation(c, models.Genres, track.GenreIDs, track.Genres)

	form := TrackForm{Name: track.Name, Duration: track.Duration, GenreIDs: genres.IDs}
	form.AlbumID, _ = album.First()
	return form, Resolutions{"albumId": album, "genresIds": genres}
}

// SeedAlbumForm derives edit state for album from the cached artists and tracks.
func SeedAlbumForm(c Catalog, album models.Album) (AlbumForm, Resolutions) {
	artists := relation(c, models.Artists, album.ArtistIDs, album.Artists)
	tracks := relation(c, models.Tracks, album.TrackIDs, album.Tracks)

	form := AlbumForm{Name: album.Name, ArtistIDs: artists.IDs, TrackIDs: tracks.IDs}
	return form, Resolutions{"artistsIds": artists, "tracksIds": tracks}
}

// SeedArtistForm derives edit state for artist from the cached albums.
func SeedArtistForm(c Catalog, artist models.Artist) (ArtistForm, Resolutions) {
	albums := relation(c, models.Albums, artist.AlbumIDs, artist.Albums)
	return ArtistForm{Name: artist.Name, AlbumIDs: albums.IDs}, Resolutions{"albumsIds": albums}
}

// SeedGenreForm has no relations to resolve.
func SeedGenreForm(genre models.Genre) GenreForm {
	return GenreForm{Name: genre.Name}
}

// SeedPlaylistForm derives edit state for playlist from the cached users and tracks.
func SeedPlaylistForm(c Catalog, playlist models.Playlist) (PlaylistForm, Resolutions) {
	author := single(c, models.Users, playlist.AuthorID, playlist.Author)
	tracks := relation(c, models.Tracks, playlist.TrackIDs, playlist.Tracks)

	form := PlaylistForm{Name: playlist.Name, TrackIDs: tracks.IDs}
	form.AuthorID, _ = author.First()
	return form, Resolutions{"authorId": author, "tracksIds": tracks}
}

// SeedUserForm copies the editable profile fields. The password always starts blank.
func SeedUserForm(user models.User) UserForm {
	return UserForm{Name: user.Name, Email: user.Email}
}
