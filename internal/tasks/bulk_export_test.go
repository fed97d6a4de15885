package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/mrx/internal/formatter"
	"github.com/desertthunder/mrx/internal/models"
	tu "github.com/desertthunder/mrx/internal/testing"
)

func TestExportLists(t *testing.T) {
	newExportFixture := func(t *testing.T) *engineFixture {
		f := newEngineFixture(t)
		f.signIn("a1", "r1")
		f.api.Handle(http.MethodGet, "/lists/l1", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(listDetail()))
		})
		f.api.Handle(http.MethodGet, "/lists/l2", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, tu.Data(models.ListDetails{MediaList: models.MediaList{ID: "l2", Name: "Backlog"}}))
		})
		return f
	}

	t.Run("Writes Every Format", func(t *testing.T) {
		tc := []struct {
			format string
			files  []string
		}{
			{formatter.FormatJSON, []string{"l1.json"}},
			{formatter.FormatCSV, []string{"l1_items.csv", "l1_metadata.json"}},
			{formatter.FormatText, []string{"l1_items.txt"}},
			{formatter.FormatMarkdown, []string{filepath.Join("l1", "README.md")}},
		}

		for _, tt := range tc {
			t.Run(tt.format, func(t *testing.T) {
				f := newExportFixture(t)
				dir := t.TempDir()

				res, err := f.engine.ExportLists(context.Background(), nil, []string{"l1"}, ExportOpts{
					Format:    tt.format,
					OutputDir: dir,
					RateLimit: 100,
				})
				require.NoError(t, err)
				assert.Equal(t, 1, res.SuccessfulExports)
				for _, name := range tt.files {
					tu.AssertFileExists(t, filepath.Join(dir, name))
				}
			})
		}
	})

	t.Run("Records Fetch Failures And Writes Manifest", func(t *testing.T) {
		f := newExportFixture(t)
		dir := t.TempDir()
		prog := make(chan ProgressUpdate, 32)

		res, err := f.engine.ExportLists(context.Background(), prog, []string{"l1", "missing", "l2"}, ExportOpts{
			OutputDir:  dir,
			NumWorkers: 2,
			RateLimit:  100,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, res.TotalLists)
		assert.Equal(t, 2, res.SuccessfulExports)
		assert.Equal(t, 1, res.FailedExports)
		assert.Equal(t, filepath.Join(dir, "export_manifest.json"), res.ManifestPath)

		var manifest formatter.Manifest
		require.NoError(t, json.Unmarshal([]byte(tu.MustReadFile(t, res.ManifestPath)), &manifest))
		assert.Equal(t, formatter.FormatJSON, manifest.Format)
		assert.Len(t, manifest.Lists, 3)

		statuses := map[string]string{}
		for _, entry := range manifest.Lists {
			statuses[entry.ListID] = entry.Status
		}
		assert.Equal(t, map[string]string{"l1": "success", "missing": "failed", "l2": "success"}, statuses)

		close(prog)
		var phases []Phase
		for u := range prog {
			phases = append(phases, u.Phase)
		}
		require.NotEmpty(t, phases)
		assert.Equal(t, FetchLists, phases[0])
		assert.Equal(t, WriteManifest, phases[len(phases)-1])
	})

	t.Run("Export Leaves Current List Alone", func(t *testing.T) {
		f := newExportFixture(t)
		_, err := f.engine.FetchList(context.Background(), "l2")
		require.NoError(t, err)

		_, err = f.engine.ExportLists(context.Background(), nil, []string{"l1"}, ExportOpts{OutputDir: t.TempDir(), RateLimit: 100})
		require.NoError(t, err)
		assert.NotNil(t, f.state().CurrentList("l2"))
	})

	t.Run("Cancelled", func(t *testing.T) {
		f := newExportFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.engine.ExportLists(ctx, nil, []string{"l1", "l2"}, ExportOpts{OutputDir: t.TempDir()})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPhaseString(t *testing.T) {
	tc := []struct {
		phase Phase
		want  string
	}{
		{FetchLists, "fetch_lists"},
		{ExportList, "export_list"},
		{WriteManifest, "write_manifest"},
		{Phase(99), ""},
	}
	for _, tt := range tc {
		assert.Equal(t, tt.want, tt.phase.String())
	}
}
