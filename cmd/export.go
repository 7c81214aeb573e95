package main

import (
	"context"

	"github.com/desertthunder/catalogctl/internal/formatter"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes the selected collections to one file each, with a manifest.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var types []models.EntityType
	for _, raw := range cmd.StringSlice("type") {
		t, err := models.ParseEntityType(raw)
		if err != nil {
			return err
		}
		types = append(types, t)
	}

	opts := tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		Types:      types,
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.API.RateLimit,
	}
	if r.api != nil {
		opts.BaseURL = r.api.BaseURL()
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := tasks.Export(ctx, progress, r.store, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d collections to %s", result.Successful, len(result.Results), result.OutputDirectory)
	if result.Failed > 0 {
		r.logger.Warn("some collections were not exported", "failed", result.Failed)
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}
