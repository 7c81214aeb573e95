package reconcile

import (
	"fmt"
	"strings"

	"github.com/desertthunder/catalogctl/internal/models"
)

// TrackCreatePayload is the body of POST /tracks. Genres cannot be set at creation.
type TrackCreatePayload struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	AlbumID  int64  `json:"albumId"`
}

// TrackUpdatePayload is the body of PATCH /tracks/{id}. GenreIDs replaces the genre set.
type TrackUpdatePayload struct {
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	AlbumID  *int64  `json:"albumId,omitempty"`
	GenreIDs []int64 `json:"genresIds"`
}

// AlbumCreatePayload is the body of POST /albums.
type AlbumCreatePayload struct {
	Name      string  `json:"name"`
	ArtistIDs []int64 `json:"artistsIds"`
}

// AlbumUpdatePayload is the body of PATCH /albums/{id}.
type AlbumUpdatePayload struct {
	Name      string  `json:"name"`
	ArtistIDs []int64 `json:"artistsIds"`
	TrackIDs  []int64 `json:"tracksIds"`
}

// ArtistCreatePayload is the body of POST /artists.
type ArtistCreatePayload struct {
	Name string `json:"name"`
}

// ArtistUpdatePayload is the body of PATCH /artists/{id}.
type ArtistUpdatePayload struct {
	Name     string  `json:"name"`
	AlbumIDs []int64 `json:"albumsIds"`
}

// GenrePayload is the body of both POST /genres and PATCH /genres/{id}.
type GenrePayload struct {
	Name string `json:"name"`
}

// PlaylistPayload is the body of both POST /playlists and PATCH /playlists/{id}.
type PlaylistPayload struct {
	Name     string  `json:"name"`
	AuthorID int64   `json:"authorId"`
	TrackIDs []int64 `json:"tracksIds"`
}

// UserCreatePayload is the body of POST /users.
type UserCreatePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdatePayload is a sparse diff: only changed fields are set.
type UserUpdatePayload struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Empty reports a diff with no changed field.
func (p UserUpdatePayload) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil
}

// Builder turns form state into mutation bodies, checking every identifier against the cache.
type Builder struct {
	catalog Catalog
}

// NewBuilder creates a builder validating identifiers against c.
func NewBuilder(c Catalog) *Builder {
	return &Builder{catalog: c}
}

// TrackCreate builds a create body. An album is required.
func (b *Builder) TrackCreate(f TrackForm) (TrackCreatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	b.checkDuration(&fe, f.Duration)
	if f.AlbumID == 0 {
		fe.add("albumId", "an album is required")
	} else {
		b.checkIDs(&fe, "albumId", models.Albums, []int64{f.AlbumID})
	}
	if err := fe.err(); err != nil {
		return TrackCreatePayload{}, err
	}
	return TrackCreatePayload{Name: f.Name, Duration: f.Duration, AlbumID: f.AlbumID}, nil
}

// TrackUpdate builds an update body. A track without an album leaves albumId out.
func (b *Builder) TrackUpdate(f TrackForm) (TrackUpdatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	b.checkDuration(&fe, f.Duration)

	p := TrackUpdatePayload{Name: f.Name, Duration: f.Duration}
	if f.AlbumID != 0 {
		b.checkIDs(&fe, "albumId", models.Albums, []int64{f.AlbumID})
		id := f.AlbumID
		p.AlbumID = &id
	}
	p.GenreIDs = b.checkIDs(&fe, "genresIds", models.Genres, f.GenreIDs)

	if err := fe.err(); err != nil {
		return TrackUpdatePayload{}, err
	}
	return p, nil
}

// AlbumCreate builds a create body. At least one artist is required.
func (b *Builder) AlbumCreate(f AlbumForm) (AlbumCreatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	artists := b.requireArtists(&fe, f.ArtistIDs)
	if err := fe.err(); err != nil {
		return AlbumCreatePayload{}, err
	}
	return AlbumCreatePayload{Name: f.Name, ArtistIDs: artists}, nil
}

// AlbumUpdate builds an update body carrying both relation sets.
func (b *Builder) AlbumUpdate(f AlbumForm) (AlbumUpdatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	artists := b.requireArtists(&fe, f.ArtistIDs)
	tracks := b.checkIDs(&fe, "tracksIds", models.Tracks, f.TrackIDs)
	if err := fe.err(); err != nil {
		return AlbumUpdatePayload{}, err
	}
	return AlbumUpdatePayload{Name: f.Name, ArtistIDs: artists, TrackIDs: tracks}, nil
}

// ArtistCreate builds a create body. Relations are not accepted at creation.
func (b *Builder) ArtistCreate(f ArtistForm) (ArtistCreatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	if err := fe.err(); err != nil {
		return ArtistCreatePayload{}, err
	}
	return ArtistCreatePayload{Name: f.Name}, nil
}

// ArtistUpdate builds an update body.
func (b *Builder) ArtistUpdate(f ArtistForm) (ArtistUpdatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	albums := b.checkIDs(&fe, "albumsIds", models.Albums, f.AlbumIDs)
	if err := fe.err(); err != nil {
		return ArtistUpdatePayload{}, err
	}
	return ArtistUpdatePayload{Name: f.Name, AlbumIDs: albums}, nil
}

// GenreCreate builds a create body.
func (b *Builder) GenreCreate(f GenreForm) (GenrePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	if err := fe.err(); err != nil {
		return GenrePayload{}, err
	}
	return GenrePayload{Name: f.Name}, nil
}

// GenreUpdate builds an update body. changed is false when the name equals orig's; such an update must not be sent.
func (b *Builder) GenreUpdate(orig models.Genre, f GenreForm) (p GenrePayload, changed bool, err error) {
	var fe FormError
	fe.requireName(f.Name)
	if err := fe.err(); err != nil {
		return GenrePayload{}, false, err
	}
	if f.Name == orig.Name {
		return GenrePayload{Name: f.Name}, false, nil
	}
	return GenrePayload{Name: f.Name}, true, nil
}

// PlaylistCreate builds a create body.
func (b *Builder) PlaylistCreate(f PlaylistForm) (PlaylistPayload, error) {
	return b.playlist(f)
}

// PlaylistUpdate builds an update body, identical in shape to create.
func (b *Builder) PlaylistUpdate(f PlaylistForm) (PlaylistPayload, error) {
	return b.playlist(f)
}

func (b *Builder) playlist(f PlaylistForm) (PlaylistPayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	if f.AuthorID == 0 {
		fe.add("authorId", "an author is required")
	} else {
		b.checkIDs(&fe, "authorId", models.Users, []int64{f.AuthorID})
	}
	tracks := b.checkIDs(&fe, "tracksIds", models.Tracks, f.TrackIDs)
	if err := fe.err(); err != nil {
		return PlaylistPayload{}, err
	}
	return PlaylistPayload{Name: f.Name, AuthorID: f.AuthorID, TrackIDs: tracks}, nil
}

// UserCreate builds a create body. Every field is required.
func (b *Builder) UserCreate(f UserForm) (UserCreatePayload, error) {
	var fe FormError
	fe.requireName(f.Name)
	fe.checkEmail(f.Email)
	if f.Password == "" {
		fe.add("password", "must not be blank")
	} else {
		fe.checkPassword(f.Password)
	}
	if err := fe.err(); err != nil {
		return UserCreatePayload{}, err
	}
	return UserCreatePayload{Name: f.Name, Email: f.Email, Password: f.Password}, nil
}

// UserUpdate builds a sparse diff against orig. The password is included only when non-blank.
// An [UserUpdatePayload.Empty] result must not be submitted.
func (b *Builder) UserUpdate(orig models.User, f UserForm) (UserUpdatePayload, error) {
	var (
		fe FormError
		p  UserUpdatePayload
	)

	if f.Name != orig.Name {
		fe.requireName(f.Name)
		name := f.Name
		p.Name = &name
	}
	if f.Email != orig.Email {
		fe.checkEmail(f.Email)
		email := f.Email
		p.Email = &email
	}
	if strings.TrimSpace(f.Password) != "" {
		fe.checkPassword(f.Password)
		password := f.Password
		p.Password = &password
	}

	if err := fe.err(); err != nil {
		return UserUpdatePayload{}, err
	}
	return p, nil
}

func (b *Builder) checkDuration(fe *FormError, d int) {
	if d <= 0 {
		fe.add("duration", "must be positive")
	}
}

func (b *Builder) requireArtists(fe *FormError, ids []int64) []int64 {
	if len(ids) == 0 {
		fe.add("artistsIds", "at least one artist is required")
		return []int64{}
	}
	return b.checkIDs(fe, "artistsIds", models.Artists, ids)
}

// checkIDs returns ids de-duplicated and never nil, recording any id absent from the cache.
func (b *Builder) checkIDs(fe *FormError, field string, t models.EntityType, ids []int64) []int64 {
	known := make(map[int64]bool)
	for _, e := range b.catalog.Entities(t) {
		known[e.EntityID()] = true
	}

	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !known[id] {
			fe.add(field, fmt.Sprintf("unknown %s id %d", t.Singular(), id))
			fe.unknown = true
			continue
		}
		out = append(out, id)
	}
	return out
}
