package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
)

// CatalogClient speaks the catalog REST contract on top of [APIService].
type CatalogClient struct {
	api *APIService
}

// NewCatalogClient wraps api.
func NewCatalogClient(api *APIService) *CatalogClient {
	return &CatalogClient{api: api}
}

// API exposes the raw transport.
func (c *CatalogClient) API() *APIService { return c.api }

// List fetches the full collection of t via GET /{type}/all.
func (c *CatalogClient) List(ctx context.Context, t models.EntityType) ([]models.Entity, error) {
	data, err := c.get(ctx, "/"+t.String()+"/all")
	if err != nil {
		return nil, err
	}
	return models.DecodeCollection(t, data)
}

// ListPlaylistsByAuthor fetches the author-scoped playlist view.
func (c *CatalogClient) ListPlaylistsByAuthor(ctx context.Context, authorID int64) ([]models.Entity, error) {
	q := url.Values{"authorId": {strconv.FormatInt(authorID, 10)}}
	data, err := c.get(ctx, "/"+models.Playlists.String()+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return models.DecodeCollection(models.Playlists, data)
}

// ListTracksByArtist fetches the tracks of one artist via GET /tracks/filter?artistName=.
func (c *CatalogClient) ListTracksByArtist(ctx context.Context, artistName string) ([]models.Entity, error) {
	q := url.Values{"artistName": {artistName}}
	return c.query(ctx, models.Tracks, "/"+models.Tracks.String()+"/filter?"+q.Encode())
}

// ListAlbumsByGenre fetches the albums of one genre via GET /albums/filter?genreName=.
func (c *CatalogClient) ListAlbumsByGenre(ctx context.Context, genreName string) ([]models.Entity, error) {
	q := url.Values{"genreName": {genreName}}
	return c.query(ctx, models.Albums, "/"+models.Albums.String()+"/filter?"+q.Encode())
}

// FindByName fetches the records of t named exactly name via GET /{type}?name=.
// Users come back as a single record, every other type as a list.
func (c *CatalogClient) FindByName(ctx context.Context, t models.EntityType, name string) ([]models.Entity, error) {
	q := url.Values{"name": {name}}
	return c.query(ctx, t, "/"+t.String()+"?"+q.Encode())
}

// query runs a filtered read. The service answers 404 when nothing matches, which is an empty result here.
func (c *CatalogClient) query(ctx context.Context, t models.EntityType, path string) ([]models.Entity, error) {
	data, err := c.get(ctx, path)
	if errors.Is(err, shared.ErrNotFound) {
		return []models.Entity{}, nil
	}
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		e, err := models.DecodeEntity(t, trimmed)
		if err != nil {
			return nil, err
		}
		return []models.Entity{e}, nil
	}
	return models.DecodeCollection(t, data)
}

// Create posts body to /{type} and returns the created record as sent by the service.
func (c *CatalogClient) Create(ctx context.Context, t models.EntityType, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s: %v", shared.ErrInvalidInput, t.Singular(), err)
	}

	resp, err := c.api.Post(ctx, "/"+t.String(), data)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, NewAPIError(resp)
	}
	return json.RawMessage(resp.Body), nil
}

// Update patches /{type}/{id} with body and returns the updated record.
func (c *CatalogClient) Update(ctx context.Context, t models.EntityType, id int64, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s: %v", shared.ErrInvalidInput, t.Singular(), err)
	}

	resp, err := c.api.Patch(ctx, entityPath(t, id), data)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, NewAPIError(resp)
	}
	return json.RawMessage(resp.Body), nil
}

// Delete removes /{type}/{id}.
func (c *CatalogClient) Delete(ctx context.Context, t models.EntityType, id int64) error {
	resp, err := c.api.Delete(ctx, entityPath(t, id))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return NewAPIError(resp)
	}
	return nil
}

// Login exchanges credentials for a token via POST /auth/login.
func (c *CatalogClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	data, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Post(ctx, "/auth/login", data)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, NewAPIError(resp))
	}

	var auth models.AuthResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return nil, fmt.Errorf("%w: invalid login response: %v", shared.ErrAuthFailed, err)
	}
	if auth.Token == "" {
		return nil, fmt.Errorf("%w: login response carried no token", shared.ErrAuthFailed)
	}
	return &auth, nil
}

func (c *CatalogClient) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, NewAPIError(resp)
	}
	return resp.Body, nil
}

func entityPath(t models.EntityType, id int64) string {
	return "/" + t.String() + "/" + strconv.FormatInt(id, 10)
}
