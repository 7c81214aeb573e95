package reconcile

import (
	"testing"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot map[models.EntityType][]models.Entity

func (s snapshot) Entities(t models.EntityType) []models.Entity { return s[t] }

func ptr[T any](v T) *T { return &v }

func TestResolveNames(t *testing.T) {
	artists := []models.Entity{
		models.Artist{ID: 1, Name: "Abba"},
		models.Artist{ID: 2, Name: "Queen"},
		models.Artist{ID: 3, Name: "Blur"},
	}

	t.Run("Unique Names Resolve Once In Order", func(t *testing.T) {
		res := ResolveNames([]string{"Blur", "Abba", "Blur"}, artists)
		assert.Equal(t, []int64{3, 1}, res.IDs)
		assert.Empty(t, res.Missing)
		assert.NoError(t, res.Err())
	})

	t.Run("Match Is Case Sensitive", func(t *testing.T) {
		res := ResolveNames([]string{"abba"}, artists)
		assert.Empty(t, res.IDs)
		assert.Equal(t, []string{"abba"}, res.Missing)
	})

	t.Run("Unmatched Names Are Dropped", func(t *testing.T) {
		res := ResolveNames([]string{"Abba", "Nobody"}, artists)
		assert.Equal(t, []int64{1}, res.IDs)
		assert.Equal(t, []string{"Nobody"}, res.Missing)
		assert.NoError(t, res.Err())
	})

	t.Run("Duplicate Names Are Ambiguous", func(t *testing.T) {
		dup := append(append([]models.Entity{}, artists...), models.Artist{ID: 9, Name: "Abba"})
		res := ResolveNames([]string{"Abba"}, dup)

		assert.Equal(t, []int64{1, 9}, res.IDs)
		assert.Equal(t, map[string][]int64{"Abba": {1, 9}}, res.Ambiguous)

		err := res.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAmbiguousResolution)
		var ambiguous *AmbiguousResolutionError
		require.ErrorAs(t, err, &ambiguous)
		assert.Contains(t, ambiguous.Error(), `"Abba" matches ids [1 9]`)
	})

	t.Run("Empty Candidates", func(t *testing.T) {
		res := ResolveNames([]string{"Abba"}, nil)
		assert.Empty(t, res.IDs)
		assert.Equal(t, []string{"Abba"}, res.Missing)
	})
}

func TestResolveName(t *testing.T) {
	albums := []models.Entity{
		models.Album{ID: 5, Name: "Arrival"},
		models.Album{ID: 6, Name: "Arrival"},
	}

	res := ResolveName("Arrival", albums)
	id, ok := res.First()
	require.True(t, ok)
	assert.Equal(t, int64(5), id)
	assert.Len(t, res.IDs, 1)
	assert.Error(t, res.Err())

	_, ok = ResolveName("", albums).First()
	assert.False(t, ok)
}

func TestResolveIDs(t *testing.T) {
	genres := []models.Entity{models.Genre{ID: 1, Name: "Pop"}, models.Genre{ID: 2, Name: "Rock"}}

	res := ResolveIDs([]int64{2, 7, 2, 1}, genres)
	assert.Equal(t, []int64{2, 1}, res.IDs)
	assert.Equal(t, []int64{7}, res.Unknown)

	assert.Equal(t, []int64{}, ResolveIDs(nil, genres).IDs)
}

func TestSeed(t *testing.T) {
	catalog := snapshot{
		models.Artists: {models.Artist{ID: 1, Name: "Abba"}, models.Artist{ID: 2, Name: "Queen"}},
		models.Albums:  {models.Album{ID: 5, Name: "Arrival"}, models.Album{ID: 6, Name: "Jazz"}},
		models.Genres:  {models.Genre{ID: 10, Name: "Pop"}, models.Genre{ID: 11, Name: "Disco"}},
		models.Tracks:  {models.Track{ID: 20, Name: "Dancing Queen"}, models.Track{ID: 21, Name: "Mustang"}},
		models.Users:   {models.User{ID: 7, Name: "Ann", Email: "a@x.com"}},
	}

	t.Run("Album Artists By Name", func(t *testing.T) {
		form, res := SeedAlbumForm(catalog, models.Album{ID: 5, Name: "Arrival", Artists: []string{"Abba"}})

		assert.Equal(t, "Arrival", form.Name)
		assert.Equal(t, []int64{1}, form.ArtistIDs)
		assert.Equal(t, []int64{}, form.TrackIDs)
		assert.NoError(t, res.Err())
	})

	t.Run("Server Ids Are Preferred Over Names", func(t *testing.T) {
		album := models.Album{ID: 5, Name: "Arrival", Artists: []string{"Abba"}, ArtistIDs: []int64{2, 99}}
		form, res := SeedAlbumForm(catalog, album)

		assert.Equal(t, []int64{2}, form.ArtistIDs)
		assert.Equal(t, map[string][]string{"artistsIds": {"#99"}}, res.Missing())
	})

	t.Run("Track Album And Genres", func(t *testing.T) {
		track := models.Track{ID: 20, Name: "Dancing Queen", Duration: 231, AlbumName: "Arrival", Genres: []string{"Disco", "Pop", "Gone"}}
		form, res := SeedTrackForm(catalog, track)

		assert.Equal(t, int64(5), form.AlbumID)
		assert.Equal(t, []int64{11, 10}, form.GenreIDs)
		assert.Equal(t, 231, form.Duration)
		assert.Equal(t, map[string][]string{"genresIds": {"Gone"}}, res.Missing())
	})

	t.Run("Track Without Album", func(t *testing.T) {
		form, _ := SeedTrackForm(catalog, models.Track{ID: 21, Name: "Mustang"})
		assert.Zero(t, form.AlbumID)
		assert.Equal(t, []int64{}, form.GenreIDs)
	})

	t.Run("Track Album By Server Id", func(t *testing.T) {
		form, _ := SeedTrackForm(catalog, models.Track{ID: 21, AlbumName: "Arrival", AlbumID: ptr(int64(6))})
		assert.Equal(t, int64(6), form.AlbumID)
	})

	t.Run("Artist Albums", func(t *testing.T) {
		form, _ := SeedArtistForm(catalog, models.Artist{ID: 2, Name: "Queen", Albums: []string{"Jazz"}})
		assert.Equal(t, []int64{6}, form.AlbumIDs)
	})

	t.Run("Playlist Author And Tracks", func(t *testing.T) {
		pl := models.Playlist{ID: 1, Name: "Mix", Author: "Ann", Tracks: []string{"Mustang", "Dancing Queen"}}
		form, _ := SeedPlaylistForm(catalog, pl)

		assert.Equal(t, int64(7), form.AuthorID)
		assert.Equal(t, []int64{21, 20}, form.TrackIDs)
	})

	t.Run("Ambiguous Relation Is Reported Per Field", func(t *testing.T) {
		dup := snapshot{models.Artists: {models.Artist{ID: 1, Name: "Abba"}, models.Artist{ID: 3, Name: "Abba"}}}
		form, res := SeedAlbumForm(dup, models.Album{Name: "Arrival", Artists: []string{"Abba"}})

		assert.Equal(t, []int64{1, 3}, form.ArtistIDs)
		err := res.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAmbiguousResolution)
		assert.Contains(t, err.Error(), "artistsIds")
		assert.Contains(t, err.Error(), "artist name")
	})

	t.Run("User And Genre Copy Fields", func(t *testing.T) {
		u := SeedUserForm(models.User{ID: 7, Name: "Ann", Email: "a@x.com"})
		assert.Equal(t, UserForm{Name: "Ann", Email: "a@x.com"}, u)
		assert.Equal(t, GenreForm{Name: "Pop"}, SeedGenreForm(models.Genre{ID: 10, Name: "Pop"}))
	})
}
