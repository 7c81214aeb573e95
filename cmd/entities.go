package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/catalogctl/internal/formatter"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/reconcile"
	"github.com/desertthunder/catalogctl/internal/services"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/desertthunder/catalogctl/internal/store"
	"github.com/desertthunder/catalogctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// entityActions binds the command actions of one collection.
type entityActions struct {
	r *Runner
	t models.EntityType
}

// dependencies lists the collections a write to t resolves names and ids against, t first.
func dependencies(t models.EntityType) []models.EntityType {
	switch t {
	case models.Tracks:
		return []models.EntityType{models.Tracks, models.Albums, models.Genres}
	case models.Albums:
		return []models.EntityType{models.Albums, models.Artists, models.Tracks}
	case models.Artists:
		return []models.EntityType{models.Artists, models.Albums}
	case models.Playlists:
		return []models.EntityType{models.Playlists, models.Users, models.Tracks}
	default:
		return []models.EntityType{t}
	}
}

// load fetches the collections t depends on. Only a failure of t itself is fatal.
func (e *entityActions) load(ctx context.Context) error {
	if err := e.r.ready(); err != nil {
		return err
	}
	if err := e.r.store.LoadAll(ctx, dependencies(e.t)...); err != nil {
		e.r.logger.Warn("some collections failed to load", "err", err)
		if !e.r.store.Loaded(e.t) {
			e.r.notify(tasks.LevelError, services.Describe(err, fmt.Sprintf("Failed to load %s", e.t)))
			return err
		}
	}
	return nil
}

func (e *entityActions) find(id int64) (models.Entity, error) {
	rec, ok := e.r.store.Find(e.t, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s %d", shared.ErrNotFound, e.t.Singular(), id)
	}
	return rec, nil
}

func parseID(cmd *cli.Command) (int64, error) {
	raw := strings.TrimSpace(cmd.StringArg("id"))
	if raw == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// List prints the full collection as a table, or as JSON. At most one filter flag narrows it to a server-side view.
func (e *entityActions) List(ctx context.Context, cmd *cli.Command) error {
	if err := e.r.ready(); err != nil {
		return err
	}

	filter, err := listFilter(cmd, e.t)
	if err != nil {
		return err
	}

	items, err := e.r.store.LoadFiltered(ctx, e.t, filter)
	if err != nil {
		e.r.notify(tasks.LevelError, services.Describe(err, filterFailure(e.t, filter)))
		return err
	}

	if cmd.Bool("json") {
		if items == nil {
			items = []models.Entity{}
		}
		return e.r.writeJSON(items, cmd.Bool("pretty"))
	}
	if !filter.IsZero() && len(items) == 0 {
		e.r.notify(tasks.LevelInfo, fmt.Sprintf("No %s match %s", e.t, filter))
	}

	limit := cmd.Int("tags")
	if limit <= 0 {
		limit = e.r.config.Display.TagLimit
	}
	e.r.writePlain("%s\n", formatter.RenderTable(e.t, items, limit))
	return e.r.writePlain("%d %s\n", len(items), e.t)
}

// listFilter reads the filter flags of a list command.
func listFilter(cmd *cli.Command, t models.EntityType) (store.Filter, error) {
	var filters []store.Filter
	if cmd.IsSet("author-id") {
		filters = append(filters, store.AuthorFilter(cmd.Int64("author-id")))
	}
	if cmd.IsSet("artist") {
		filters = append(filters, store.ArtistFilter(cmd.String("artist")))
	}
	if cmd.IsSet("genre") {
		filters = append(filters, store.GenreFilter(cmd.String("genre")))
	}
	if cmd.IsSet("name") {
		filters = append(filters, store.NameFilter(cmd.String("name")))
	}

	switch len(filters) {
	case 0:
		return store.Filter{}, nil
	case 1:
		return filters[0], nil
	default:
		return store.Filter{}, fmt.Errorf("%w: %s can be filtered by one flag at a time", shared.ErrInvalidFlag, t)
	}
}

func filterFailure(t models.EntityType, f store.Filter) string {
	switch f.Param {
	case store.ParamAuthorID:
		return "Not found author's playlists"
	case store.ParamArtistName:
		return fmt.Sprintf("Failed to load tracks by %q", f.Value)
	case store.ParamGenreName:
		return fmt.Sprintf("Failed to load %s albums", f.Value)
	default:
		return fmt.Sprintf("Failed to load %s", t)
	}
}

// Show prints one record next to its seeded edit form.
func (e *entityActions) Show(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := e.load(ctx); err != nil {
		return err
	}
	rec, err := e.find(id)
	if err != nil {
		return err
	}

	form, res := e.seed(rec)
	e.warnUnresolved(res)

	if cmd.Bool("json") {
		return e.r.writeJSON(map[string]any{
			"record":     rec,
			"form":       form,
			"unresolved": res.Missing(),
		}, true)
	}

	e.r.writePlainHeader(fmt.Sprintf("%s #%d", e.t.Title(), id))
	e.r.writePlain("%s\n", formatter.RenderTable(e.t, []models.Entity{rec}, 0))
	e.r.writePlainln("Edit form:")
	return e.r.writeJSON(form, true)
}

func (e *entityActions) seed(rec models.Entity) (any, reconcile.Resolutions) {
	switch v := rec.(type) {
	case models.Track:
		return reconcile.SeedTrackForm(e.r.store, v)
	case models.Album:
		return reconcile.SeedAlbumForm(e.r.store, v)
	case models.Artist:
		return reconcile.SeedArtistForm(e.r.store, v)
	case models.Genre:
		return reconcile.SeedGenreForm(v), nil
	case models.Playlist:
		return reconcile.SeedPlaylistForm(e.r.store, v)
	case models.User:
		return reconcile.SeedUserForm(v), nil
	default:
		return nil, nil
	}
}

func (e *entityActions) warnUnresolved(res reconcile.Resolutions) {
	if err := res.Err(); err != nil {
		e.r.logger.Warn("ambiguous relation names", "err", err)
	}
	missing := res.Missing()
	fields := make([]string, 0, len(missing))
	for f := range missing {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		e.r.logger.Warn("relation could not be resolved", "field", f, "values", missing[f])
	}
}

// Create builds a create payload from flags and submits it.
func (e *entityActions) Create(ctx context.Context, cmd *cli.Command) error {
	if err := e.load(ctx); err != nil {
		return err
	}

	body, err := e.createBody(cmd)
	if err != nil {
		return err
	}

	o := e.r.coordinator(false).Submit(ctx, tasks.Mutation{Type: e.t, Kind: tasks.Create, Body: body}, nil)
	return e.finish(o)
}

func (e *entityActions) createBody(cmd *cli.Command) (any, error) {
	b := reconcile.NewBuilder(e.r.store)
	name := cmd.String("name")

	switch e.t {
	case models.Tracks:
		album, _, err := e.single(cmd, "album-id", "album", models.Albums)
		if err != nil {
			return nil, err
		}
		return b.TrackCreate(reconcile.TrackForm{Name: name, Duration: cmd.Int("duration"), AlbumID: album})
	case models.Albums:
		artists, _, err := e.relation(cmd, "artist-id", "artist", models.Artists)
		if err != nil {
			return nil, err
		}
		return b.AlbumCreate(reconcile.AlbumForm{Name: name, ArtistIDs: artists})
	case models.Artists:
		return b.ArtistCreate(reconcile.ArtistForm{Name: name})
	case models.Genres:
		return b.GenreCreate(reconcile.GenreForm{Name: name})
	case models.Playlists:
		author, set, err := e.single(cmd, "author-id", "author", models.Users)
		if err != nil {
			return nil, err
		}
		if !set {
			if s, ok := e.r.session.Current(); ok {
				author = s.ID
			}
		}
		tracks, _, err := e.relation(cmd, "track-id", "track", models.Tracks)
		if err != nil {
			return nil, err
		}
		return b.PlaylistCreate(reconcile.PlaylistForm{Name: name, AuthorID: author, TrackIDs: tracks})
	case models.Users:
		return b.UserCreate(reconcile.UserForm{Name: name, Email: cmd.String("email"), Password: cmd.String("password")})
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidArgument, e.t)
	}
}

// Update seeds the edit form from the cached record, applies the flags that were set and submits the payload.
func (e *entityActions) Update(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := e.load(ctx); err != nil {
		return err
	}
	rec, err := e.find(id)
	if err != nil {
		return err
	}

	m := tasks.Mutation{Type: e.t, Kind: tasks.Update, ID: id, Label: rec.DisplayName()}
	if m.Body, m.Skip, err = e.updateBody(cmd, rec); err != nil {
		return err
	}

	o := e.r.coordinator(false).Submit(ctx, m, nil)
	return e.finish(o)
}

func (e *entityActions) updateBody(cmd *cli.Command, rec models.Entity) (body any, skip bool, err error) {
	b := reconcile.NewBuilder(e.r.store)
	name := func(current string) string {
		if cmd.IsSet("name") {
			return cmd.String("name")
		}
		return current
	}

	switch v := rec.(type) {
	case models.Track:
		form, res := reconcile.SeedTrackForm(e.r.store, v)
		e.warnUnresolved(res)
		form.Name = name(form.Name)
		if cmd.IsSet("duration") {
			form.Duration = cmd.Int("duration")
		}
		if id, set, err := e.single(cmd, "album-id", "album", models.Albums); err != nil {
			return nil, false, err
		} else if set {
			form.AlbumID = id
		}
		if ids, set, err := e.relation(cmd, "genre-id", "genre", models.Genres); err != nil {
			return nil, false, err
		} else if set {
			form.GenreIDs = ids
		}
		body, err = b.TrackUpdate(form)

	case models.Album:
		form, res := reconcile.SeedAlbumForm(e.r.store, v)
		e.warnUnresolved(res)
		form.Name = name(form.Name)
		if ids, set, err := e.relation(cmd, "artist-id", "artist", models.Artists); err != nil {
			return nil, false, err
		} else if set {
			form.ArtistIDs = ids
		}
		if ids, set, err := e.relation(cmd, "track-id", "track", models.Tracks); err != nil {
			return nil, false, err
		} else if set {
			form.TrackIDs = ids
		}
		body, err = b.AlbumUpdate(form)

	case models.Artist:
		form, res := reconcile.SeedArtistForm(e.r.store, v)
		e.warnUnresolved(res)
		form.Name = name(form.Name)
		if ids, set, err := e.relation(cmd, "album-id", "album", models.Albums); err != nil {
			return nil, false, err
		} else if set {
			form.AlbumIDs = ids
		}
		body, err = b.ArtistUpdate(form)

	case models.Genre:
		form := reconcile.SeedGenreForm(v)
		form.Name = name(form.Name)
		var changed bool
		body, changed, err = b.GenreUpdate(v, form)
		skip = !changed

	case models.Playlist:
		form, res := reconcile.SeedPlaylistForm(e.r.store, v)
		e.warnUnresolved(res)
		form.Name = name(form.Name)
		if id, set, err := e.single(cmd, "author-id", "author", models.Users); err != nil {
			return nil, false, err
		} else if set {
			form.AuthorID = id
		}
		if ids, set, err := e.relation(cmd, "track-id", "track", models.Tracks); err != nil {
			return nil, false, err
		} else if set {
			form.TrackIDs = ids
		}
		body, err = b.PlaylistUpdate(form)

	case models.User:
		form := reconcile.SeedUserForm(v)
		form.Name = name(form.Name)
		if cmd.IsSet("email") {
			form.Email = cmd.String("email")
		}
		if cmd.IsSet("password") {
			form.Password = cmd.String("password")
		}
		var p reconcile.UserUpdatePayload
		p, err = b.UserUpdate(v, form)
		body, skip = p, p.Empty()

	default:
		err = fmt.Errorf("%w: %s", shared.ErrInvalidArgument, e.t)
	}
	return body, skip, err
}

// Delete asks for confirmation (unless --yes) and removes the record.
func (e *entityActions) Delete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	if err := e.r.ready(); err != nil {
		return err
	}
	if _, err := e.r.store.Load(ctx, e.t); err != nil {
		e.r.notify(tasks.LevelError, services.Describe(err, fmt.Sprintf("Failed to load %s", e.t)))
		return err
	}
	rec, err := e.find(id)
	if err != nil {
		return err
	}

	m := tasks.Mutation{Type: e.t, Kind: tasks.Delete, ID: id, Label: rec.DisplayName()}
	o := e.r.coordinator(cmd.Bool("yes")).Delete(ctx, m, nil)
	if o.State == tasks.Idle && o.Err == nil {
		return e.r.writePlain("Delete cancelled\n")
	}
	return e.finish(o)
}

func (e *entityActions) finish(o tasks.Outcome) error {
	if o.State == tasks.Failed {
		return o.Err
	}
	return nil
}

// relation reads an id/name flag pair. Names resolve against the cached collection of related;
// a name with no match is an error, a name shared by several records contributes every id.
func (e *entityActions) relation(cmd *cli.Command, idFlag, nameFlag string, related models.EntityType) ([]int64, bool, error) {
	if !cmd.IsSet(idFlag) && !cmd.IsSet(nameFlag) {
		return nil, false, nil
	}

	ids := append([]int64{}, cmd.Int64Slice(idFlag)...)
	if names := cmd.StringSlice(nameFlag); len(names) > 0 {
		res := reconcile.ResolveNames(names, e.r.store.Entities(related))
		res.Type = related
		if err := e.checkResolution(res, related); err != nil {
			return nil, true, err
		}
		ids = append(ids, res.IDs...)
	}
	return ids, true, nil
}

// single reads an id/name flag pair for a to-one relation.
func (e *entityActions) single(cmd *cli.Command, idFlag, nameFlag string, related models.EntityType) (int64, bool, error) {
	if cmd.IsSet(idFlag) {
		return cmd.Int64(idFlag), true, nil
	}
	if !cmd.IsSet(nameFlag) {
		return 0, false, nil
	}

	res := reconcile.ResolveName(cmd.String(nameFlag), e.r.store.Entities(related))
	res.Type = related
	if err := e.checkResolution(res, related); err != nil {
		return 0, true, err
	}
	id, _ := res.First()
	return id, true, nil
}

func (e *entityActions) checkResolution(res reconcile.Resolution, related models.EntityType) error {
	if len(res.Missing) > 0 {
		return fmt.Errorf("%w: no %s named %s", shared.ErrUnknownReference, related.Singular(), strings.Join(quote(res.Missing), ", "))
	}
	if err := res.Err(); err != nil {
		e.r.logger.Warn("name matches several records, using every match", "err", err)
	}
	return nil
}

func quote(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strconv.Quote(n)
	}
	return out
}
