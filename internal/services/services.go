// package services defines the catalog service client
package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/catalogctl/internal/models"
)

// Catalog is the remote collaborator consumed by the store and the mutation coordinator.
//
// [CatalogClient] implements it over HTTP.
type Catalog interface {
	// List fetches the complete collection for t.
	List(ctx context.Context, t models.EntityType) ([]models.Entity, error)

	// ListPlaylistsByAuthor fetches the playlists authored by one user.
	ListPlaylistsByAuthor(ctx context.Context, authorID int64) ([]models.Entity, error)

	// ListTracksByArtist fetches the tracks of the artist with that name.
	ListTracksByArtist(ctx context.Context, artistName string) ([]models.Entity, error)

	// ListAlbumsByGenre fetches the albums of the genre with that name.
	ListAlbumsByGenre(ctx context.Context, genreName string) ([]models.Entity, error)

	// FindByName fetches the records of t whose name matches exactly. No match is an empty result.
	FindByName(ctx context.Context, t models.EntityType, name string) ([]models.Entity, error)

	// Create submits a create body and returns the created record.
	Create(ctx context.Context, t models.EntityType, body any) (json.RawMessage, error)

	// Update submits a partial update body and returns the updated record.
	Update(ctx context.Context, t models.EntityType, id int64, body any) (json.RawMessage, error)

	// Delete removes a record.
	Delete(ctx context.Context, t models.EntityType, id int64) error
}

var _ Catalog = (*CatalogClient)(nil)
