package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
	tu "github.com/desertthunder/catalogctl/internal/testing"
)

func ptr(id int64) *int64 { return &id }

func catalogFixture() *tu.FakeCatalog {
	return tu.NewFakeCatalog(map[models.EntityType][]models.Entity{
		models.Tracks: {
			models.Track{ID: 1, Name: "Dancing Queen", Duration: 231, AlbumName: "Arrival", AlbumID: ptr(1), Genres: []string{"Pop"}, Artists: []string{"Abba"}},
		},
		models.Albums: {
			models.Album{ID: 1, Name: "Arrival", Artists: []string{"Abba"}, Tracks: []string{"Dancing Queen"}},
		},
		models.Artists: {
			models.Artist{ID: 1, Name: "Abba", Albums: []string{"Arrival"}},
		},
		models.Genres: {
			models.Genre{ID: 1, Name: "Pop", TracksCount: 1},
			models.Genre{ID: 2, Name: "Disco"},
		},
		models.Users: {
			models.User{ID: 7, Name: "Ann", Email: "ann@example.com"},
		},
	})
}

func newEntityRunner(input string) (*Runner, *tu.FakeCatalog, *bytes.Buffer) {
	fake := catalogFixture()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Catalog: fake,
		Output:  output,
		Input:   strings.NewReader(input),
	})
	return runner, fake, output
}

func TestEntityCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		t.Run("renders a table with the count", func(t *testing.T) {
			runner, _, output := newEntityRunner("")

			if err := run(runner, "tracks", "list"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			out := output.String()
			for _, want := range []string{"Dancing Queen", "3:51", "Arrival", "1 tracks"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
		})

		t.Run("json output", func(t *testing.T) {
			runner, _, output := newEntityRunner("")

			if err := run(runner, "genres", "list", "--json", "--pretty=false"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			var got []models.Genre
			if err := json.Unmarshal(output.Bytes(), &got); err != nil {
				t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
			}
			if len(got) != 2 || got[0].TracksCount != 1 {
				t.Errorf("unexpected genres %+v", got)
			}
		})

		t.Run("author scoped playlists failure", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")
			fake.ListErr[models.Playlists] = errors.New("boom")

			if err := run(runner, "playlists", "list", "--author-id", "7"); err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(output.String(), "✗ Not found author's playlists") {
				t.Errorf("unexpected output %q", output.String())
			}
			calls := fake.CallsFor("GET")
			if len(calls) != 1 || calls[0].ID != 7 {
				t.Errorf("expected one author-scoped GET, got %+v", calls)
			}
		})

		t.Run("tracks by artist", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")
			fake.ByArtist["Abba"] = []models.Entity{fake.Collections[models.Tracks][0]}

			if err := run(runner, "tracks", "list", "--artist", "Abba"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			gets := fake.CallsFor("GET")
			if len(gets) != 1 || gets[0].Query != "artistName=Abba" {
				t.Errorf("expected one artist-filtered GET, got %+v", gets)
			}
			if !strings.Contains(output.String(), "Dancing Queen") || !strings.Contains(output.String(), "1 tracks") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("albums by genre with no match", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")

			if err := run(runner, "albums", "list", "--genre", "Polka"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gets := fake.CallsFor("GET"); len(gets) != 1 || gets[0].Query != "genreName=Polka" {
				t.Errorf("expected one genre-filtered GET, got %+v", gets)
			}
			out := output.String()
			if !strings.Contains(out, "No albums match genreName=Polka") || !strings.Contains(out, "0 albums") {
				t.Errorf("unexpected output %q", out)
			}
		})

		t.Run("by exact name", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")

			if err := run(runner, "genres", "list", "--json", "--pretty=false", "--name", "Disco"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gets := fake.CallsFor("GET"); len(gets) != 1 || gets[0].Query != "name=Disco" {
				t.Errorf("expected one name lookup, got %+v", gets)
			}
			var got []models.Genre
			if err := json.Unmarshal(output.Bytes(), &got); err != nil {
				t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
			}
			if len(got) != 1 || got[0].ID != 2 {
				t.Errorf("unexpected genres %+v", got)
			}
		})

		t.Run("users show liked counts", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")
			fake.SetCollection(models.Users, []models.Entity{
				models.User{ID: 7, Name: "Ann", LikedArtistsCount: 2, LikedTracksCount: 5},
			})

			if err := run(runner, "users", "list"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			out := output.String()
			if !strings.Contains(out, "Liked Artists") || !strings.Contains(out, "Liked Tracks") {
				t.Errorf("expected liked columns in output:\n%s", out)
			}
		})

		t.Run("one filter at a time", func(t *testing.T) {
			runner, fake, _ := newEntityRunner("")

			err := run(runner, "playlists", "list", "--author-id", "7", "--name", "Mix")
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
			if len(fake.Calls) != 0 {
				t.Errorf("expected no requests, got %+v", fake.Calls)
			}
		})
	})

	t.Run("show prints the seeded form", func(t *testing.T) {
		runner, _, output := newEntityRunner("")

		if err := run(runner, "tracks", "show", "--json", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got struct {
			Form struct {
				AlbumID  int64
				GenreIDs []int64
			} `json:"form"`
		}
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if got.Form.AlbumID != 1 {
			t.Errorf("expected album 1, got %d", got.Form.AlbumID)
		}
		if len(got.Form.GenreIDs) != 1 || got.Form.GenreIDs[0] != 1 {
			t.Errorf("expected genre 1 resolved from its name, got %v", got.Form.GenreIDs)
		}
	})

	t.Run("show unknown id", func(t *testing.T) {
		runner, _, _ := newEntityRunner("")

		if err := run(runner, "tracks", "show", "99"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := run(runner, "tracks", "show", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("create", func(t *testing.T) {
		t.Run("resolves the album by name", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")

			err := run(runner, "tracks", "create", "--name", "Money, Money, Money", "--duration", "185", "--album", "Arrival")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			posts := fake.CallsFor("POST")
			if len(posts) != 1 {
				t.Fatalf("expected one POST, got %d", len(posts))
			}
			if got := string(posts[0].Body); got != `{"name":"Money, Money, Money","duration":185,"albumId":1}` {
				t.Errorf("unexpected body %s", got)
			}
			if !strings.Contains(output.String(), "✓ Track created successfully") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("unknown album name", func(t *testing.T) {
			runner, fake, _ := newEntityRunner("")

			err := run(runner, "tracks", "create", "--name", "X", "--duration", "100", "--album", "Nope")
			if !errors.Is(err, shared.ErrUnknownReference) {
				t.Errorf("expected ErrUnknownReference, got %v", err)
			}
			if len(fake.CallsFor("POST")) != 0 {
				t.Error("expected no POST")
			}
		})

		t.Run("form errors block submission", func(t *testing.T) {
			runner, fake, _ := newEntityRunner("")

			if err := run(runner, "albums", "create", "--name", "Solo"); err == nil {
				t.Fatal("expected a form error without artists")
			}
			if len(fake.CallsFor("POST")) != 0 {
				t.Error("expected no POST")
			}
		})

		t.Run("playlist author defaults to the session user", func(t *testing.T) {
			runner, fake, _ := newEntityRunner("")
			runner.session.Login(models.Session{ID: 7, Name: "Ann", Token: "tok"})

			if err := run(runner, "playlists", "create", "--name", "Mix", "--track", "Dancing Queen"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			posts := fake.CallsFor("POST")
			if len(posts) != 1 {
				t.Fatalf("expected one POST, got %d", len(posts))
			}
			if got := string(posts[0].Body); got != `{"name":"Mix","authorId":7,"tracksIds":[1]}` {
				t.Errorf("unexpected body %s", got)
			}
		})
	})

	t.Run("update", func(t *testing.T) {
		t.Run("replaces genres by name and keeps the album", func(t *testing.T) {
			runner, fake, _ := newEntityRunner("")

			if err := run(runner, "tracks", "update", "--genre", "Disco", "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			patches := fake.CallsFor("PATCH")
			if len(patches) != 1 {
				t.Fatalf("expected one PATCH, got %d", len(patches))
			}
			if got := string(patches[0].Body); got != `{"name":"Dancing Queen","duration":231,"albumId":1,"genresIds":[2]}` {
				t.Errorf("unexpected body %s", got)
			}
		})

		t.Run("unchanged genre is skipped", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")

			if err := run(runner, "genres", "update", "--name", "Pop", "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(fake.CallsFor("PATCH")) != 0 {
				t.Error("expected no PATCH")
			}
			if !strings.Contains(output.String(), "No changes detected") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("user update sends only changed fields", func(t *testing.T) {
			runner, fake, _ := newEntityRunner("")

			if err := run(runner, "users", "update", "--email", "ann@new.example", "7"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			patches := fake.CallsFor("PATCH")
			if len(patches) != 1 {
				t.Fatalf("expected one PATCH, got %d", len(patches))
			}
			if got := string(patches[0].Body); got != `{"email":"ann@new.example"}` {
				t.Errorf("unexpected body %s", got)
			}
		})
	})

	t.Run("delete", func(t *testing.T) {
		t.Run("declined prompt sends nothing", func(t *testing.T) {
			runner, fake, output := newEntityRunner("n\n")

			if err := run(runner, "albums", "delete", "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(fake.CallsFor("DELETE")) != 0 {
				t.Error("expected no DELETE")
			}
			out := output.String()
			if !strings.Contains(out, "Delete album 'Arrival' (#1)? [y/N]: ") {
				t.Errorf("expected prompt, got %q", out)
			}
			if !strings.Contains(out, "Delete cancelled") {
				t.Errorf("expected cancellation, got %q", out)
			}
		})

		t.Run("confirmed prompt deletes", func(t *testing.T) {
			runner, fake, output := newEntityRunner("y\n")

			if err := run(runner, "albums", "delete", "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			deletes := fake.CallsFor("DELETE")
			if len(deletes) != 1 || deletes[0].ID != 1 {
				t.Errorf("expected DELETE of album 1, got %+v", deletes)
			}
			if !strings.Contains(output.String(), "✓ Album deleted successfully") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("yes flag skips the prompt", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")

			if err := run(runner, "genres", "delete", "--yes", "2"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(fake.CallsFor("DELETE")) != 1 {
				t.Error("expected one DELETE")
			}
			if strings.Contains(output.String(), "[y/N]") {
				t.Error("expected no prompt")
			}
		})

		t.Run("server failure is reported", func(t *testing.T) {
			runner, fake, output := newEntityRunner("")
			fake.WriteErr = errors.New("connection reset")

			if err := run(runner, "artists", "delete", "-y", "1"); err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(output.String(), "✗ Failed to delete artist") {
				t.Errorf("unexpected output %q", output.String())
			}
		})
	})
}
