// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/urfave/cli/v3"
)

// entityCommand returns the list/show/create/update/delete tree for one collection.
func entityCommand(r *Runner, t models.EntityType) *cli.Command {
	e := &entityActions{r: r, t: t}

	listFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.IntFlag{
			Name:  "tags",
			Usage: "Maximum relation labels per cell (0 uses the configured limit)",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Only list " + t.String() + " with exactly this name",
		},
	}
	switch t {
	case models.Playlists:
		listFlags = append(listFlags, &cli.Int64Flag{
			Name:  "author-id",
			Usage: "Only list playlists authored by this user",
		})
	case models.Tracks:
		listFlags = append(listFlags, &cli.StringFlag{
			Name:  "artist",
			Usage: "Only list tracks by the artist with this name",
		})
	case models.Albums:
		listFlags = append(listFlags, &cli.StringFlag{
			Name:  "genre",
			Usage: "Only list albums of the genre with this name",
		})
	}

	return &cli.Command{
		Name:    t.String(),
		Aliases: []string{t.Singular()},
		Usage:   "Manage " + t.String(),
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List every " + t.Singular(),
				Flags:   listFlags,
				Action:  e.List,
			},
			{
				Name:      "show",
				Usage:     "Show one " + t.Singular() + " with its resolved edit form",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: e.Show,
			},
			{
				Name:   "create",
				Usage:  "Create a " + t.Singular(),
				Flags:  writeFlags(t, false),
				Action: e.Create,
			},
			{
				Name:      "update",
				Usage:     "Update a " + t.Singular() + "; unset flags keep their current values",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     writeFlags(t, true),
				Action:    e.Update,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a " + t.Singular() + " after confirmation",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: e.Delete,
			},
		},
	}
}

// writeFlags returns the create or update flags for t. Relation flags come in pairs: ids or display names.
func writeFlags(t models.EntityType, update bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "Display name",
		},
	}

	switch t {
	case models.Tracks:
		flags = append(flags,
			&cli.IntFlag{Name: "duration", Usage: "Duration in seconds"},
			&cli.Int64Flag{Name: "album-id", Usage: "Album id"},
			&cli.StringFlag{Name: "album", Usage: "Album name"},
		)
		if update {
			flags = append(flags,
				&cli.Int64SliceFlag{Name: "genre-id", Usage: "Genre id (repeatable)"},
				&cli.StringSliceFlag{Name: "genre", Usage: "Genre name (repeatable)"},
			)
		}
	case models.Albums:
		flags = append(flags,
			&cli.Int64SliceFlag{Name: "artist-id", Usage: "Artist id (repeatable)"},
			&cli.StringSliceFlag{Name: "artist", Usage: "Artist name (repeatable)"},
		)
		if update {
			flags = append(flags,
				&cli.Int64SliceFlag{Name: "track-id", Usage: "Track id (repeatable)"},
				&cli.StringSliceFlag{Name: "track", Usage: "Track name (repeatable)"},
			)
		}
	case models.Artists:
		if update {
			flags = append(flags,
				&cli.Int64SliceFlag{Name: "album-id", Usage: "Album id (repeatable)"},
				&cli.StringSliceFlag{Name: "album", Usage: "Album name (repeatable)"},
			)
		}
	case models.Playlists:
		flags = append(flags,
			&cli.Int64Flag{Name: "author-id", Usage: "Author user id (defaults to the logged-in user on create)"},
			&cli.StringFlag{Name: "author", Usage: "Author user name"},
			&cli.Int64SliceFlag{Name: "track-id", Usage: "Track id (repeatable)"},
			&cli.StringSliceFlag{Name: "track", Usage: "Track name (repeatable)"},
		)
	case models.Users:
		flags = append(flags,
			&cli.StringFlag{Name: "email", Usage: "Email address"},
			&cli.StringFlag{Name: "password", Usage: "Password (4 to 20 characters)"},
		)
	}
	return flags
}

// exportCommand writes every collection to disk.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export catalog collections to CSV, Markdown or JSON files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, json",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: catalog_export_{epoch})",
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Collection to export (repeatable, default: all)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent collection fetches",
				Value: 3,
			},
		},
		Action: r.Export,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the catalog service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the catalog service, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// setupCommand writes the config file and initializes the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the session database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in to the catalog service and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Account password",
				Required: true,
			},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the stored session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged-in user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.WhoAmI,
	}
}

// tuiCommand returns the top-level TUI command for interactive catalog browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where TUI logs are written",
				Value: "./tmp/catalogctl-tui.log",
			},
		},
		Action: r.TUI,
	}
}
