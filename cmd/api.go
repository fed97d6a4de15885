package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request through the authenticated pipeline.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodGet, "")
}

// APIPost makes a direct POST request with a JSON body
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPost, cmd.String("data"))
}

func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPut, cmd.String("data"))
}

func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodDelete, "")
}

// apiRequest sends method to the path argument and prints the decoded envelope.
// A query string in the path is kept.
func (r *Runner) apiRequest(ctx context.Context, cmd *cli.Command, method, data string) error {
	raw := cmd.StringArg("path")
	if raw == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}

	path, rawQuery, _ := strings.Cut(raw, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("%w: bad query string: %v", shared.ErrInvalidInput, err)
	}

	var body any
	if data != "" {
		var payload json.RawMessage
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
		body = payload
	}

	r.logger.Info("direct request", "method", method, "path", path)

	resp, err := r.client.Do(ctx, method, path, query, body)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	return r.writeJSON(map[string]any{
		"status":  resp.Status,
		"message": resp.Message,
		"data":    resp.Data,
		"meta":    resp.Meta,
	}, !cmd.Bool("compact"))
}

// apiCommand handles direct API calls for debugging
func apiCommand(r *Runner) *cli.Command {
	dataFlag := func(required bool) *cli.StringFlag {
		return &cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON body to send", Required: required}
	}
	compactFlag := func() *cli.BoolFlag {
		return &cli.BoolFlag{Name: "compact", Usage: "Print JSON on one line"}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls with the stored session",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the response envelope",
				ArgsUsage: "<path>",
				Arguments: stringArgs("path"),
				Flags:     []cli.Flag{compactFlag()},
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				ArgsUsage: "<path>",
				Arguments: stringArgs("path"),
				Flags:     []cli.Flag{dataFlag(true), compactFlag()},
				Action:    r.APIPost,
			},
			{
				Name:      "put",
				Usage:     "Direct PUT with JSON body",
				ArgsUsage: "<path>",
				Arguments: stringArgs("path"),
				Flags:     []cli.Flag{dataFlag(true), compactFlag()},
				Action:    r.APIPut,
			},
			{
				Name:      "delete",
				Usage:     "Direct DELETE",
				ArgsUsage: "<path>",
				Arguments: stringArgs("path"),
				Flags:     []cli.Flag{compactFlag()},
				Action:    r.APIDelete,
			},
		},
	}
}
