package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mrx/internal/formatter"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/tasks"
	"github.com/sahilm/fuzzy"
	"github.com/urfave/cli/v3"
)

// listLookupLimit bounds how many lists are fetched to resolve a name.
const listLookupLimit = 100

// listNames implements fuzzy.Source over list names.
type listNames []models.MediaList

func (l listNames) String(i int) string { return strings.ToLower(l[i].Name) }
func (l listNames) Len() int            { return len(l) }

// ListsList prints one page of the signed-in user's lists.
func (r *Runner) ListsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	page, err := r.engine.FetchLists(ctx, models.Page{Page: cmd.Int("page"), Limit: cmd.Int("limit")})
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d lists:\n\n", page.Pagination.TotalItems)
	for i, l := range page.Items {
		r.writePlain("%d. %s\n", i+1, l.Name)
		if l.Description != "" {
			r.writePlain("   Description: %s\n", l.Description)
		}
		r.writePlain("   ID: %s\n", l.ID)
		r.writePlain("   Items: %d\n", l.ItemCount)
		r.writePlain("   Visibility: %s\n", formatter.Visibility(l.IsPublic))
		r.writePlain("\n")
	}
	return nil
}

// ListsShow prints a list and its items in order.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := r.resolveList(ctx, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	list, err := r.engine.FetchList(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}
	r.writeListDetails(list)
	return nil
}

func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	list, err := r.engine.CreateList(ctx, models.ListInput{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		IsPublic:    cmd.Bool("public"),
	})
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}
	return r.writePlain("✓ Created list %s (%s)\n", list.Name, list.ID)
}

// ListsUpdate changes the fields given on the command line and keeps the rest.
func (r *Runner) ListsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := r.resolveList(ctx, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	if cmd.Bool("public") && cmd.Bool("private") {
		return fmt.Errorf("%w: --public and --private are exclusive", shared.ErrInvalidArgument)
	}

	cur, err := r.engine.FetchList(ctx, id)
	if err != nil {
		return err
	}
	input := models.ListInput{Name: cur.Name, Description: cur.Description, IsPublic: cur.IsPublic}
	if cmd.IsSet("name") {
		input.Name = cmd.String("name")
	}
	if cmd.IsSet("description") {
		input.Description = cmd.String("description")
	}
	switch {
	case cmd.Bool("public"):
		input.IsPublic = true
	case cmd.Bool("private"):
		input.IsPublic = false
	}

	list, err := r.engine.UpdateList(ctx, id, input)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated list %s (%s)\n", list.Name, formatter.Visibility(list.IsPublic))
}

func (r *Runner) ListsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := r.resolveList(ctx, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	if err := r.engine.DeleteList(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted list %s\n", id)
}

func (r *Runner) ListsAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := r.resolveList(ctx, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	item, err := r.engine.AddListItem(ctx, id, cmd.StringArg("media"), cmd.String("notes"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added %s at position %d (item %s)\n", item.Title(), item.Order+1, item.ID)
}

func (r *Runner) ListsRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := r.resolveList(ctx, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	itemID := cmd.StringArg("item")
	if itemID == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}
	if err := r.engine.RemoveListItem(ctx, id, itemID); err != nil {
		return err
	}
	return r.writePlain("✓ Removed item %s\n", itemID)
}

func (r *Runner) ListsNotes(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	itemID := cmd.StringArg("item")
	if itemID == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}
	item, err := r.engine.UpdateItemNotes(ctx, itemID, cmd.StringArg("notes"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Notes updated for %s\n", item.Title())
}

// ListsMove moves one item. Positions are 1-based on the command line.
func (r *Runner) ListsMove(ctx context.Context, cmd *cli.Command) error {
	id, err := r.resolveList(ctx, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	from, to := cmd.IntArg("from"), cmd.IntArg("to")
	if from < 1 || to < 1 {
		return fmt.Errorf("%w: positions start at 1", shared.ErrInvalidArgument)
	}

	if err := r.engine.MoveListItem(ctx, id, from-1, to-1); err != nil {
		return err
	}
	r.writePlain("✓ Moved item %d to position %d\n\n", from, to)
	if list := r.store.State().CurrentList(id); list != nil {
		r.writeListItems(list.Items)
	}
	return nil
}

// ListsReorder sends a complete order: every item id of the list, once each.
func (r *Runner) ListsReorder(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: usage: mrx lists reorder <list> <item-id>...", shared.ErrMissingArgument)
	}
	id, err := r.resolveList(ctx, args.First())
	if err != nil {
		return err
	}

	if err := r.engine.ReorderListItems(ctx, id, args.Tail()); err != nil {
		return err
	}
	r.writePlain("✓ Reordered %d items\n\n", args.Len()-1)
	if list := r.store.State().CurrentList(id); list != nil {
		r.writeListItems(list.Items)
	}
	return nil
}

// ListsExport writes lists to files. With no arguments every list is exported.
func (r *Runner) ListsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	format := cmd.String("format")
	switch format {
	case formatter.FormatJSON, formatter.FormatCSV, formatter.FormatMarkdown, formatter.FormatText:
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	var ids []string
	for _, ref := range cmd.Args().Slice() {
		id, err := r.resolveList(ctx, ref)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		page, err := r.engine.FetchLists(ctx, models.Page{Page: 1, Limit: listLookupLimit})
		if err != nil {
			return err
		}
		for _, l := range page.Items {
			ids = append(ids, l.ID)
		}
	}
	if len(ids) == 0 {
		return r.writePlain("No lists to export\n")
	}

	r.logger.Info("starting export", "lists", len(ids), "format", format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchLists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportList:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.ExportLists(ctx, progressCh, ids, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalLists)
	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d lists:\n", result.FailedExports)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.ListName, res.Error)
			}
		}
	}
	return nil
}

// resolveList turns a list id or name into an id. Names are matched exactly
// first, then fuzzily; a reference matching nothing is passed through as an id.
func (r *Runner) resolveList(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: list id or name", shared.ErrMissingArgument)
	}
	if err := r.requireSession(); err != nil {
		return "", err
	}
	if _, ok := r.store.State().ListByID(ref); ok {
		return ref, nil
	}

	page, err := r.engine.FetchLists(ctx, models.Page{Page: 1, Limit: listLookupLimit})
	if err != nil {
		return "", err
	}
	return matchList(page.Items, ref), nil
}

func matchList(lists []models.MediaList, ref string) string {
	for _, l := range lists {
		if l.ID == ref || strings.EqualFold(l.Name, ref) {
			return l.ID
		}
	}
	matches := fuzzy.FindFrom(strings.ToLower(ref), listNames(lists))
	if len(matches) == 0 {
		return ref
	}
	return lists[matches[0].Index].ID
}

func (r *Runner) writeListDetails(list *models.ListDetails) {
	r.writePlainHeader(list.Name)
	if list.Description != "" {
		r.writePlain("%s\n", list.Description)
	}
	r.writePlain("ID: %s\n", list.ID)
	r.writePlain("Visibility: %s\n", formatter.Visibility(list.IsPublic))
	r.writePlain("Items: %d\n\n", len(list.Items))
	r.writeListItems(list.Items)
}

func (r *Runner) writeListItems(items []models.ListItem) {
	for _, item := range items {
		r.writePlain("%d. %s\n", item.Order+1, item.Title())
		r.writePlain("   Item: %s  Media: %s\n", item.ID, item.MediaID)
		if item.Notes != "" {
			r.writePlain("   Notes: %s\n", item.Notes)
		}
	}
}
