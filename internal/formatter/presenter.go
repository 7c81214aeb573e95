package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
)

// Placeholder is shown for an empty or absent relation.
const Placeholder = "—"

// DefaultTagLimit bounds the labels shown per relation cell.
const DefaultTagLimit = 5

// Tags returns at most limit labels, followed by a "+N more" label when names were cut. A limit of zero or less keeps every name.
func Tags(names []string, limit int) []string {
	if limit <= 0 || len(names) <= limit {
		return append([]string(nil), names...)
	}
	out := append([]string(nil), names[:limit]...)
	return append(out, fmt.Sprintf("+%d more", len(names)-limit))
}

// RenderTags joins the bounded tag set, or returns [Placeholder] for an empty list.
func RenderTags(names []string, limit int) string {
	if len(names) == 0 {
		return Placeholder
	}
	return strings.Join(Tags(names, limit), ", ")
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// Columns returns the table headers for t.
func Columns(t models.EntityType) []string {
	switch t {
	case models.Tracks:
		return []string{"ID", "Name", "Duration", "Album", "Genres", "Artists"}
	case models.Albums:
		return []string{"ID", "Name", "Artists", "Tracks"}
	case models.Artists:
		return []string{"ID", "Name", "Albums"}
	case models.Genres:
		return []string{"ID", "Name", "Tracks"}
	case models.Playlists:
		return []string{"ID", "Name", "Author", "Tracks"}
	case models.Users:
		return []string{"ID", "Name", "Email", "Playlists", "Liked Artists", "Liked Tracks"}
	default:
		return []string{"ID", "Name"}
	}
}

// Row projects one record into table cells, relation cells bounded by limit.
func Row(e models.Entity, limit int) []string {
	id := strconv.FormatInt(e.EntityID(), 10)

	switch v := e.(type) {
	case models.Track:
		return []string{id, v.Name, shared.FormatDuration(v.Duration), orPlaceholder(v.AlbumName), RenderTags(v.Genres, limit), RenderTags(v.Artists, limit)}
	case models.Album:
		return []string{id, v.Name, RenderTags(v.Artists, limit), RenderTags(v.Tracks, limit)}
	case models.Artist:
		return []string{id, v.Name, RenderTags(v.Albums, limit)}
	case models.Genre:
		return []string{id, v.Name, strconv.Itoa(v.TracksCount)}
	case models.Playlist:
		return []string{id, v.Name, orPlaceholder(v.Author), RenderTags(v.Tracks, limit)}
	case models.User:
		return []string{id, v.Name, orPlaceholder(v.Email), RenderTags(v.Playlists, limit),
			strconv.Itoa(v.LikedArtistsCount), strconv.Itoa(v.LikedTracksCount)}
	default:
		return []string{id, e.DisplayName()}
	}
}

// Rows projects a collection into table rows.
func Rows(items []models.Entity, limit int) [][]string {
	rows := make([][]string, len(items))
	for i, e := range items {
		rows[i] = Row(e, limit)
	}
	return rows
}

// Summary is a one-line description of a record's relations, used as a list item description.
func Summary(e models.Entity, limit int) string {
	cells := Row(e, limit)
	cols := Columns(typeOf(e))
	parts := make([]string, 0, len(cells))
	for i := 2; i < len(cells) && i < len(cols); i++ {
		parts = append(parts, cols[i]+": "+cells[i])
	}
	return strings.Join(parts, " · ")
}

func typeOf(e models.Entity) models.EntityType {
	switch e.(type) {
	case models.Track:
		return models.Tracks
	case models.Album:
		return models.Albums
	case models.Artist:
		return models.Artists
	case models.Genre:
		return models.Genres
	case models.Playlist:
		return models.Playlists
	case models.User:
		return models.Users
	default:
		return ""
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderTable renders a collection of t as a bordered table.
func RenderTable(t models.EntityType, items []models.Entity, limit int) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(Columns(t)...).
		Rows(Rows(items, limit)...)
	return tbl.String()
}
