// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func prettyFlag() *cli.BoolFlag {
	return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"}
}

func pageFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Items per page", Value: limit},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{jsonFlag(), prettyFlag()}
}

func stringArgs(names ...string) []cli.Argument {
	args := make([]cli.Argument, 0, len(names))
	for _, name := range names {
		args = append(args, &cli.StringArg{Name: name})
	}
	return args
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

func mediaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "media",
		Aliases: []string{"m"},
		Usage:   "Browse the media catalogue",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List media with optional filters",
				Flags: withFlags(pageFlags(20), []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Media type: movie, game or manga"},
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre ID"},
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Title search"},
					&cli.StringFlag{Name: "sort", Usage: "Sort field"},
					&cli.StringFlag{Name: "order", Usage: "Sort order: asc or desc"},
				}, outputFlags()),
				Action: r.MediaList,
			},
			{
				Name:      "show",
				Usage:     "Show a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("id"),
				Flags: withFlags([]cli.Flag{
					&cli.BoolFlag{Name: "cached", Usage: "Read from the local cache without calling the API"},
				}, outputFlags()),
				Action: r.MediaShow,
			},
		},
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List genres",
		Flags: withFlags(pageFlags(50), []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Filter by name"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Media type: movie, game or manga"},
		}, outputFlags()),
		Action: r.GenresList,
	}
}

func listsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"l"},
		Usage:   "Manage your media lists",
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List your lists",
				Flags:  withFlags(pageFlags(20), outputFlags()),
				Action: r.ListsList,
			},
			{
				Name:      "show",
				Usage:     "Show a list and its items (by ID or name)",
				ArgsUsage: "<list>",
				Arguments: stringArgs("list"),
				Flags:     outputFlags(),
				Action:    r.ListsShow,
			},
			{
				Name:  "create",
				Usage: "Create a list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "List name", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "List description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the list public"},
					jsonFlag(),
				},
				Action: r.ListsCreate,
			},
			{
				Name:      "update",
				Usage:     "Rename or describe a list",
				ArgsUsage: "<list>",
				Arguments: stringArgs("list"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the list public"},
					&cli.BoolFlag{Name: "private", Usage: "Make the list private"},
				},
				Action: r.ListsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a list",
				ArgsUsage: "<list>",
				Arguments: stringArgs("list"),
				Action:    r.ListsDelete,
			},
			{
				Name:      "add",
				Usage:     "Add a media item to a list",
				ArgsUsage: "<list> <media-id>",
				Arguments: stringArgs("list", "media"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "notes", Usage: "Notes for the item"},
				},
				Action: r.ListsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove an item from a list",
				ArgsUsage: "<list> <item-id>",
				Arguments: stringArgs("list", "item"),
				Action:    r.ListsRemove,
			},
			{
				Name:      "notes",
				Usage:     "Replace the notes of a list item",
				ArgsUsage: "<item-id> <notes>",
				Arguments: stringArgs("item", "notes"),
				Action:    r.ListsNotes,
			},
			{
				Name:      "move",
				Usage:     "Move an item from one position to another (1-based)",
				ArgsUsage: "<list> <from> <to>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "list"},
					&cli.IntArg{Name: "from"},
					&cli.IntArg{Name: "to"},
				},
				Action: r.ListsMove,
			},
			{
				Name:      "reorder",
				Usage:     "Set the complete item order",
				ArgsUsage: "<list> <item-id>...",
				Action:    r.ListsReorder,
			},
			{
				Name:      "export",
				Usage:     "Export lists to files",
				ArgsUsage: "[list]...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: json, csv, markdown or txt", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers (max 10)", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "List fetches per second", Value: 5},
				},
				Action: r.ListsExport,
			},
		},
	}
}

func ratingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ratings",
		Usage: "Rate media",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show your rating of a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.RatingsShow,
			},
			{
				Name:      "rate",
				Usage:     "Rate a media item from 1 to 10",
				ArgsUsage: "<media-id> <rating>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "media"}, &cli.IntArg{Name: "rating"}},
				Action:    r.RatingsRate,
			},
			{
				Name:      "remove",
				Usage:     "Remove your rating of a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Action:    r.RatingsRemove,
			},
		},
	}
}

func reviewsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reviews",
		Usage: "Read and write reviews",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List reviews of a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Flags: withFlags(pageFlags(10), []cli.Flag{
					&cli.StringFlag{Name: "sort", Usage: "Sort field"},
					&cli.BoolFlag{Name: "rated", Usage: "Only reviews with a rating"},
					&cli.BoolFlag{Name: "hide-spoilers", Usage: "Hide reviews with spoilers"},
				}, outputFlags()),
				Action: r.ReviewsList,
			},
			{
				Name:      "show",
				Usage:     "Show your review of a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ReviewsShow,
			},
			{
				Name:      "write",
				Usage:     "Write or replace your review of a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Review text", Required: true},
					&cli.BoolFlag{Name: "spoilers", Usage: "The review contains spoilers"},
					&cli.BoolFlag{Name: "hidden", Usage: "Hide the review from other users"},
				},
				Action: r.ReviewsWrite,
			},
			{
				Name:      "delete",
				Usage:     "Delete your review of a media item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Action:    r.ReviewsDelete,
			},
			{
				Name:      "like",
				Usage:     "Like a review",
				ArgsUsage: "<review-id>",
				Arguments: stringArgs("review"),
				Action:    r.ReviewsLike,
			},
			{
				Name:      "unlike",
				Usage:     "Remove your like from a review",
				ArgsUsage: "<review-id>",
				Arguments: stringArgs("review"),
				Action:    r.ReviewsUnlike,
			},
		},
	}
}

func recsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recs",
		Aliases: []string{"recommendations"},
		Usage:   "Recommendations and preferences",
		Commands: []*cli.Command{
			{
				Name:    "personalized",
				Aliases: []string{"for-you"},
				Usage:   "Personalized recommendations",
				Flags:   outputFlags(),
				Action:  r.RecsPersonalized,
			},
			{
				Name:   "trending",
				Usage:  "Trending media",
				Flags:  outputFlags(),
				Action: r.RecsTrending,
			},
			{
				Name:      "similar",
				Usage:     "Media similar to an item",
				ArgsUsage: "<media-id>",
				Arguments: stringArgs("media"),
				Flags:     outputFlags(),
				Action:    r.RecsSimilar,
			},
			{
				Name:  "prefs",
				Usage: "Replace your recommendation preferences",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Preferred genre ID (repeatable)"},
					&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "Media type preference as type=strength, strength 1 to 5 (repeatable)"},
					jsonFlag(),
				},
				Action: r.RecsPreferences,
			},
		},
	}
}

func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Profiles and follows",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a user profile",
				ArgsUsage: "<user-id>",
				Arguments: stringArgs("user"),
				Flags:     outputFlags(),
				Action:    r.UsersShow,
			},
			{
				Name:      "followers",
				Usage:     "List a user's followers",
				ArgsUsage: "<user-id>",
				Arguments: stringArgs("user"),
				Flags:     outputFlags(),
				Action:    r.UsersFollowers,
			},
			{
				Name:      "following",
				Usage:     "List who a user follows",
				ArgsUsage: "<user-id>",
				Arguments: stringArgs("user"),
				Flags:     outputFlags(),
				Action:    r.UsersFollowing,
			},
			{
				Name:      "follow",
				Usage:     "Follow a user",
				ArgsUsage: "<user-id>",
				Arguments: stringArgs("user"),
				Action:    r.UsersFollow,
			},
			{
				Name:      "unfollow",
				Usage:     "Unfollow a user",
				ArgsUsage: "<user-id>",
				Arguments: stringArgs("user"),
				Action:    r.UsersUnfollow,
			},
		},
	}
}

func notificationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"n"},
		Usage:   "Read notifications",
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List notifications",
				Flags: withFlags(pageFlags(20), []cli.Flag{
					&cli.BoolFlag{Name: "unread", Usage: "Only unread notifications"},
				}, outputFlags()),
				Action: r.NotificationsList,
			},
			{
				Name:      "read",
				Usage:     "Mark a notification read",
				ArgsUsage: "<notification-id>",
				Arguments: stringArgs("id"),
				Action:    r.NotificationsRead,
			},
			{
				Name:   "read-all",
				Usage:  "Mark every notification read",
				Action: r.NotificationsReadAll,
			},
			{
				Name:   "watch",
				Usage:  "Stream notifications as they arrive",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.NotificationsWatch,
			},
		},
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Overview of your profile, lists, recommendations and notifications",
		Flags:  outputFlags(),
		Action: r.Dashboard,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "live", Usage: "Connect the notification channel while the UI runs", Value: true},
		},
		Action: r.TUI,
	}
}
