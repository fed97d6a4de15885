package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheList prints the media details cached by 'mrx media show'.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: set database.path and run 'mrx setup'", shared.ErrMissingConfig)
	}

	var mediaType models.MediaType
	if t := cmd.String("type"); t != "" {
		parsed, err := models.ParseMediaType(t)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		mediaType = parsed
	}

	entries, err := r.cache.List(mediaType)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	r.writePlain("Found %d cached items:\n\n", len(entries))
	for _, e := range entries {
		r.writePlain("%s [%s]\n", e.Item.Title, e.Item.Type)
		r.writePlain("   ID: %s\n", e.Item.ID)
		r.writePlain("   Fetched: %s\n", e.FetchedAt.Local().Format(time.RFC1123))
	}
	return nil
}

// CachePrune deletes cached media older than --older-than.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: set database.path and run 'mrx setup'", shared.ErrMissingConfig)
	}
	age := cmd.Duration("older-than")
	if age <= 0 {
		return fmt.Errorf("%w: --older-than must be positive", shared.ErrInvalidFlag)
	}

	removed, err := r.cache.Prune(time.Now().Add(-age))
	if err != nil {
		return err
	}
	r.logger.Info("media cache pruned", "removed", removed, "older_than", age)
	return r.writePlain("✓ Removed %d cached items\n", removed)
}

// cacheCommand inspects the local media cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local media cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached media",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Media type: movie, game or manga"},
					jsonFlag(),
				},
				Action: r.CacheList,
			},
			{
				Name:  "prune",
				Usage: "Delete cached media older than a duration",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "older-than", Usage: "Age threshold", Value: 7 * 24 * time.Hour},
				},
				Action: r.CachePrune,
			},
		},
	}
}
