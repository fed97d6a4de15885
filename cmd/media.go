package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// MediaList browses the catalogue with the given filters.
func (r *Runner) MediaList(ctx context.Context, cmd *cli.Command) error {
	filters := models.MediaFilters{
		Page:      cmd.Int("page"),
		Limit:     cmd.Int("limit"),
		Genre:     cmd.String("genre"),
		Search:    cmd.String("search"),
		SortBy:    cmd.String("sort"),
		SortOrder: cmd.String("order"),
	}
	if t := cmd.String("type"); t != "" {
		mediaType, err := models.ParseMediaType(t)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		filters.Type = mediaType
	}

	r.engine.SetFilters(filters)
	page, err := r.engine.FetchMedia(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	p := page.Pagination
	r.writePlain("Page %d of %d (%d items)\n\n", p.CurrentPage, p.TotalPages, p.TotalItems)
	r.writeMediaRows(page.Items)
	return nil
}

// MediaShow prints one media item, from the API or the local cache.
func (r *Runner) MediaShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}

	var (
		item      *models.MediaItem
		fetchedAt time.Time
		err       error
	)
	if cmd.Bool("cached") {
		item, fetchedAt, err = r.engine.CachedMediaDetail(id)
	} else {
		item, err = r.engine.FetchMediaDetail(ctx, id)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(item, cmd.Bool("pretty"))
	}

	r.writePlainHeader(item.Title)
	r.writePlain("ID: %s\n", item.ID)
	r.writePlain("Type: %s\n", item.Type)
	if item.ReleaseDate != "" {
		r.writePlain("Released: %s\n", item.ReleaseDate)
	}
	if len(item.Genres) > 0 {
		r.writePlain("Genres: %s\n", strings.Join(item.Genres, ", "))
	}
	r.writePlain("Rating: %.1f (%d ratings)\n", item.AverageRating, item.RatingsCount)
	if !fetchedAt.IsZero() {
		r.writePlain("Cached: %s\n", fetchedAt.Local().Format(time.RFC1123))
	}
	if item.Description != "" {
		r.writePlainln("%s", item.Description)
	}
	return nil
}

// GenresList prints one page of genres.
func (r *Runner) GenresList(ctx context.Context, cmd *cli.Command) error {
	filters := models.GenreFilters{
		Page:  cmd.Int("page"),
		Limit: cmd.Int("limit"),
		Name:  cmd.String("name"),
	}
	if t := cmd.String("type"); t != "" {
		mediaType, err := models.ParseMediaType(t)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		filters.MediaType = mediaType
	}

	page, err := r.engine.FetchGenres(ctx, filters)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d genres:\n\n", page.Pagination.TotalItems)
	for _, g := range page.Items {
		r.writePlain("%-24s %s\n", g.Name, g.ID)
	}
	return nil
}

// RecsPersonalized prints recommendations for the signed-in user.
func (r *Runner) RecsPersonalized(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	items, err := r.engine.FetchPersonalized(ctx)
	if err != nil {
		return err
	}
	return r.writeMediaResult(cmd, "Recommended for you", items)
}

func (r *Runner) RecsTrending(ctx context.Context, cmd *cli.Command) error {
	items, err := r.engine.FetchTrending(ctx)
	if err != nil {
		return err
	}
	return r.writeMediaResult(cmd, "Trending", items)
}

func (r *Runner) RecsSimilar(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("media")
	if id == "" {
		return fmt.Errorf("%w: media id", shared.ErrMissingArgument)
	}
	items, err := r.engine.FetchSimilar(ctx, id)
	if err != nil {
		return err
	}
	return r.writeMediaResult(cmd, "Similar to "+id, items)
}

// RecsPreferences replaces the recommendation preferences of the signed-in user.
func (r *Runner) RecsPreferences(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	prefs := models.Preferences{GenreIDs: cmd.StringSlice("genre")}
	for _, raw := range cmd.StringSlice("type") {
		pref, err := parseTypePreference(raw)
		if err != nil {
			return err
		}
		prefs.MediaTypePreferences = append(prefs.MediaTypePreferences, pref)
	}

	saved, err := r.engine.UpdatePreferences(ctx, prefs)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(saved, true)
	}
	r.writePlain("✓ Preferences saved: %d genres, %d media types\n", len(saved.GenreIDs), len(saved.MediaTypePreferences))
	return nil
}

// parseTypePreference reads "type=strength", strength 1 to 5.
func parseTypePreference(raw string) (models.MediaTypePreference, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return models.MediaTypePreference{}, fmt.Errorf("%w: media type preference %q must be type=strength", shared.ErrInvalidArgument, raw)
	}
	mediaType, err := models.ParseMediaType(name)
	if err != nil {
		return models.MediaTypePreference{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	strength, err := strconv.Atoi(value)
	if err != nil || strength < 1 || strength > 5 {
		return models.MediaTypePreference{}, fmt.Errorf("%w: strength %q must be 1 to 5", shared.ErrInvalidArgument, value)
	}
	return models.MediaTypePreference{Type: mediaType, Strength: strength}, nil
}

func (r *Runner) writeMediaResult(cmd *cli.Command, title string, items []models.MediaItem) error {
	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	r.writePlainHeader(title)
	if len(items) == 0 {
		r.writePlain("Nothing here yet\n")
		return nil
	}
	r.writeMediaRows(items)
	return nil
}

func (r *Runner) writeMediaRows(items []models.MediaItem) {
	for i, m := range items {
		r.writePlain("%d. %s", i+1, m.Title)
		if year := m.Year(); year != "" {
			r.writePlain(" (%s)", year)
		}
		r.writePlain(" [%s]\n", m.Type)
		r.writePlain("   ID: %s\n", m.ID)
		if m.RatingsCount > 0 {
			r.writePlain("   Rating: %.1f (%d)\n", m.AverageRating, m.RatingsCount)
		}
	}
}
