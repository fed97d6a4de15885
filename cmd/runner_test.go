package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
	tu "github.com/desertthunder/mrx/internal/testing"
	"github.com/urfave/cli/v3"
)

// newTestRunner returns a runner pointed at a fake API, writing to a buffer.
func newTestRunner(t *testing.T) (*Runner, *tu.FakeAPI, *bytes.Buffer) {
	t.Helper()
	api := tu.NewFakeAPI(t)
	config := shared.DefaultConfig()
	config.API.BaseURL = api.URL

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.DiscardLogger(),
		Output: output,
	})
	return runner, api, output
}

func signIn(r *Runner) {
	r.session.Storage().Save("a1", "r1", &models.User{ID: "u1", Username: "ana", Email: "ana@example.com"})
	r.session.Hydrate()
}

func runCommand(r *Runner, args ...string) error {
	app := &cli.Command{Name: "mrx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"mrx"}, args...))
}

func queueList() models.ListDetails {
	return models.ListDetails{
		MediaList: models.MediaList{ID: "l1", Name: "Watch Queue", ItemCount: 3},
		Items: []models.ListItem{
			{ID: "a", ListID: "l1", MediaID: "m-a", Order: 0},
			{ID: "b", ListID: "l1", MediaID: "m-b", Order: 1},
			{ID: "c", ListID: "l1", MediaID: "m-c", Order: 2},
		},
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.engine == nil || runner.session == nil || runner.client == nil {
				t.Error("expected engine, session and client to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("without database has no media cache", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.cache != nil {
				t.Error("expected no media cache without a database")
			}
			if runner.store.State().IsAuthenticated() {
				t.Error("expected a fresh runner to be signed out")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("done")
			if output.String() != "\ndone\n" {
				t.Errorf("expected %q, got %q", "\ndone\n", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		seen := make(map[string]bool)
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if seen[cmd.Name] {
				t.Errorf("command %q registered twice", cmd.Name)
			}
			seen[cmd.Name] = true
		}

		for _, name := range []string{"setup", "auth", "media", "lists", "notifications", "tui"} {
			if !seen[name] {
				t.Errorf("expected %q to be registered", name)
			}
		}
	})

	t.Run("requireSession", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := runCommand(runner, "lists", "ls")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login stores the session", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		api.Handle(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(map[string]any{
				"user":         models.User{ID: "u1", Username: "ana", Email: "ana@example.com"},
				"accessToken":  "a1",
				"refreshToken": "r1",
			}))
		})

		if err := runCommand(runner, "auth", "login", "--email", "ana@example.com", "--password", "pw"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Signed in as ana") {
			t.Errorf("expected sign-in message, got %q", output.String())
		}

		sess := runner.session.Storage().Read()
		if sess.AccessToken != "a1" || sess.RefreshToken != "r1" {
			t.Errorf("expected stored tokens a1/r1, got %q/%q", sess.AccessToken, sess.RefreshToken)
		}
	})

	t.Run("status without a session", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := runCommand(runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not signed in") {
			t.Errorf("expected not signed in, got %q", output.String())
		}
	})

	t.Run("logout clears the session when the server is down", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		signIn(runner)
		api.Handle(http.MethodPost, "/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "down"})
		})

		if err := runCommand(runner, "auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.session.Storage().Read().Valid() {
			t.Error("expected stored session to be cleared")
		}
		if !strings.Contains(output.String(), "Signed out") {
			t.Errorf("expected sign-out message, got %q", output.String())
		}
	})
}

func TestListCommands(t *testing.T) {
	t.Run("move sends the new order", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		signIn(runner)
		runner.store.Dispatch(store.ListsFetched{Items: []models.MediaList{queueList().MediaList}})
		api.Handle(http.MethodGet, "/lists/l1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(queueList()))
		})
		api.Handle(http.MethodPut, "/lists/l1/reorder", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(nil))
		})

		if err := runCommand(runner, "lists", "move", "l1", "1", "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		calls := api.CallsTo(http.MethodPut, "/lists/l1/reorder")
		if len(calls) != 1 {
			t.Fatalf("expected one reorder call, got %d", len(calls))
		}
		want := `{"items":[{"id":"b","order":0},{"id":"c","order":1},{"id":"a","order":2}]}`
		if strings.TrimSpace(calls[0].Body) != want {
			t.Errorf("expected body %s, got %s", want, calls[0].Body)
		}
		if !strings.Contains(output.String(), "Moved item 1 to position 3") {
			t.Errorf("expected move message, got %q", output.String())
		}
	})

	t.Run("failed move restores the previous order", func(t *testing.T) {
		runner, api, _ := newTestRunner(t)
		signIn(runner)
		runner.store.Dispatch(store.ListsFetched{Items: []models.MediaList{queueList().MediaList}})
		api.Handle(http.MethodGet, "/lists/l1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(queueList()))
		})
		api.Handle(http.MethodPut, "/lists/l1/reorder", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Reorder failed"})
		})

		if err := runCommand(runner, "lists", "move", "l1", "1", "3"); err == nil {
			t.Fatal("expected reorder error")
		}

		cur := runner.store.State().CurrentList("l1")
		if cur == nil {
			t.Fatal("expected list l1 to stay loaded")
		}
		var got []string
		for _, item := range cur.Items {
			got = append(got, item.ID)
		}
		if strings.Join(got, ",") != "a,b,c" {
			t.Errorf("expected order a,b,c after rollback, got %v", got)
		}
	})

	t.Run("move rejects zero positions", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		signIn(runner)
		runner.store.Dispatch(store.ListsFetched{Items: []models.MediaList{queueList().MediaList}})

		err := runCommand(runner, "lists", "move", "l1", "0", "2")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("show resolves a list by name", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		signIn(runner)
		api.Handle(http.MethodGet, "/lists", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data([]models.MediaList{
				{ID: "l1", Name: "Watch Queue"},
				{ID: "l2", Name: "Favorites"},
			}))
		})
		api.Handle(http.MethodGet, "/lists/l2", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(models.ListDetails{MediaList: models.MediaList{ID: "l2", Name: "Favorites"}}))
		})

		if err := runCommand(runner, "lists", "show", "favs"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Favorites") {
			t.Errorf("expected list name in output, got %q", output.String())
		}
	})
}

func TestMatchList(t *testing.T) {
	lists := []models.MediaList{
		{ID: "l1", Name: "Watch Queue"},
		{ID: "l2", Name: "Favorites"},
		{ID: "l3", Name: "Games 2024"},
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "id", ref: "l3", want: "l3"},
		{name: "exact name ignoring case", ref: "favorites", want: "l2"},
		{name: "fuzzy name", ref: "wq", want: "l1"},
		{name: "unknown passes through", ref: "zzz", want: "zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchList(lists, tt.ref); got != tt.want {
				t.Errorf("matchList(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestParseTypePreference(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		pref, err := parseTypePreference("manga=4")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pref.Type != models.MediaManga || pref.Strength != 4 {
			t.Errorf("unexpected preference %+v", pref)
		}
	})

	for _, raw := range []string{"manga", "book=3", "game=0", "movie=six"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			if _, err := parseTypePreference(raw); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for %q, got %v", raw, err)
			}
		})
	}
}

func TestAPICommands(t *testing.T) {
	t.Run("get keeps the query and sends the bearer token", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		signIn(runner)
		api.Handle(http.MethodGet, "/media", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data([]models.MediaItem{{ID: "m1", Title: "Heat"}}))
		})

		if err := runCommand(runner, "api", "get", "media?type=movie"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		calls := api.CallsTo(http.MethodGet, "/media")
		if len(calls) != 1 {
			t.Fatalf("expected one call, got %d", len(calls))
		}
		if calls[0].Query != "type=movie" {
			t.Errorf("expected query type=movie, got %q", calls[0].Query)
		}
		if calls[0].Authorization != "Bearer a1" {
			t.Errorf("expected bearer token, got %q", calls[0].Authorization)
		}
		if !strings.Contains(output.String(), `"Heat"`) {
			t.Errorf("expected payload in output, got %q", output.String())
		}
	})

	t.Run("post rejects invalid JSON", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := runCommand(runner, "api", "post", "--data", "{nope", "/lists")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
