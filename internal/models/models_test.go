package models

import "testing"

func TestEntityType(t *testing.T) {
	t.Run("ParseEntityType", func(t *testing.T) {
		tc := []struct {
			in   string
			want EntityType
		}{
			{"tracks", Tracks},
			{"Album", Albums},
			{" GENRE ", Genres},
			{"users", Users},
		}
		for _, tt := range tc {
			got, err := ParseEntityType(tt.in)
			if err != nil {
				t.Fatalf("ParseEntityType(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseEntityType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}

		if _, err := ParseEntityType("labels"); err == nil {
			t.Error("expected error for unknown type")
		}
	})

	t.Run("Labels", func(t *testing.T) {
		if Playlists.Singular() != "playlist" {
			t.Errorf("unexpected singular %s", Playlists.Singular())
		}
		if Artists.Title() != "Artist" {
			t.Errorf("unexpected title %s", Artists.Title())
		}
		if EntityType("nope").Valid() {
			t.Error("expected invalid type")
		}
	})
}

func TestDecodeCollection(t *testing.T) {
	t.Run("Albums", func(t *testing.T) {
		data := []byte(`[{"id":1,"name":"Arrival","artists":["Abba"],"tracks":["Dancing Queen"]}]`)

		items, err := DecodeCollection(Albums, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}

		album, ok := items[0].(Album)
		if !ok {
			t.Fatalf("expected Album, got %T", items[0])
		}
		if album.DisplayName() != "Arrival" || album.EntityID() != 1 {
			t.Errorf("unexpected album %+v", album)
		}
		if len(album.Artists) != 1 || album.Artists[0] != "Abba" {
			t.Errorf("unexpected artists %v", album.Artists)
		}
	})

	t.Run("Track With Server Identifiers", func(t *testing.T) {
		data := []byte(`[{"id":4,"name":"Song","duration":180,"albumName":"A","albumId":5,"genres":["Pop"],"genresIds":[2]}]`)

		items, err := DecodeCollection(Tracks, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		track := items[0].(Track)
		if track.AlbumID == nil || *track.AlbumID != 5 {
			t.Errorf("expected album id 5, got %v", track.AlbumID)
		}
		if len(track.GenreIDs) != 1 || track.GenreIDs[0] != 2 {
			t.Errorf("unexpected genre ids %v", track.GenreIDs)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		if _, err := DecodeCollection(Genres, []byte(`{"not":"a list"}`)); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Unknown Type", func(t *testing.T) {
		if _, err := DecodeCollection(EntityType("labels"), []byte(`[]`)); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}

func TestSession(t *testing.T) {
	auth := AuthResponse{UserID: 7, Username: "ann", Email: "a@x.com", Token: "tok"}
	s := auth.Session()

	if s.ID != 7 || s.Name != "ann" || s.Token != "tok" {
		t.Errorf("unexpected session %+v", s)
	}

	updated := s.WithUser(User{ID: 7, Name: "ann", Email: "b@x.com"})
	if updated.Email != "b@x.com" {
		t.Errorf("expected email to change, got %s", updated.Email)
	}
	if updated.Token != "tok" {
		t.Error("expected token to be kept")
	}
}

func TestDecodeUser(t *testing.T) {
	data := []byte(`{"id":7,"name":"Ann","playlists":["Mix"],"likedArtistsCount":2,"likedTracksCount":5}`)

	e, err := DecodeEntity(Users, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, ok := e.(User)
	if !ok {
		t.Fatalf("expected User, got %T", e)
	}
	if u.LikedArtistsCount != 2 || u.LikedTracksCount != 5 {
		t.Errorf("unexpected liked counts %+v", u)
	}
	if u.Email != "" {
		t.Errorf("expected no email, got %q", u.Email)
	}
}
