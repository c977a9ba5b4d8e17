package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hub-versions/internal/app"
	"hub-versions/internal/types"
)

type hubCollection struct {
	Namespace       string
	Name            string
	Version         string
	RequiresAnsible string
}

// newHubServer serves a minimal galaxy v3 plugin API with one page per
// repository.
func newHubServer(t *testing.T, catalog map[string][]hubCollection) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for content, collections := range catalog {
		content := content
		collections := collections
		base := fmt.Sprintf("/api/automation-hub/v3/plugin/ansible/content/%s/collections/index/", content)
		mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
			rest := r.URL.Path[len(base):]
			if rest == "" {
				data := make([]map[string]any, 0, len(collections))
				for _, c := range collections {
					data = append(data, map[string]any{
						"namespace": c.Namespace,
						"name":      c.Name,
						"highest_version": map[string]any{
							"href": versionHref(content, c),
						},
					})
				}
				writeJSON(t, w, map[string]any{
					"links": map[string]any{"next": nil},
					"data":  data,
				})
				return
			}
			for _, c := range collections {
				if rest == c.Namespace+"/"+c.Name+"/" {
					writeJSON(t, w, map[string]any{
						"namespace": c.Namespace,
						"name":      c.Name,
						"highest_version": map[string]any{
							"href": versionHref(content, c),
						},
					})
					return
				}
			}
			http.NotFound(w, r)
		})
		mux.HandleFunc(fmt.Sprintf("/versions/%s/", content), func(w http.ResponseWriter, r *http.Request) {
			for _, c := range collections {
				if r.URL.Path == versionHref(content, c) {
					writeJSON(t, w, map[string]any{
						"version":          c.Version,
						"requires_ansible": c.RequiresAnsible,
					})
					return
				}
			}
			http.NotFound(w, r)
		})
	}
	return httptest.NewServer(mux)
}

func versionHref(content string, c hubCollection) string {
	return fmt.Sprintf("/versions/%s/%s/%s/%s/", content, c.Namespace, c.Name, c.Version)
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func TestGatherE2EWorkbook(t *testing.T) {
	server := newHubServer(t, map[string][]hubCollection{
		"validated": {
			{Namespace: "ns", Name: "a", Version: "1.2.0", RequiresAnsible: ">=2.12"},
			{Namespace: "ns", Name: "b", Version: "3.0.0"},
		},
		// The certified repository lives under "published" upstream.
		"published": {
			{Namespace: "ns", Name: "c", Version: "0.9.0", RequiresAnsible: ">=2.9,>=2.11"},
		},
	})
	defer server.Close()

	workbookPath := filepath.Join(t.TempDir(), "collections.xlsx")
	service := app.NewService()
	result, err := service.Gather(context.Background(), app.GatherRequest{
		APIURL:     server.URL,
		Format:     "xlsx",
		OutputPath: workbookPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.RowCount)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []types.Repository{types.RepositoryValidated, types.RepositoryCertified}, result.Repositories)

	workbook, err := excelize.OpenFile(workbookPath)
	require.NoError(t, err)
	defer workbook.Close()
	rows, err := workbook.GetRows("Collections Ansible versions")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0][:6]
	assert.Equal(t, []string{
		"Repository", "Namespace", "Name",
		"Latest Version", "Minimal Ansible Core Version", "Status",
	}, header)
	assert.Equal(t, []string{"validated", "ns", "a", "1.2.0", "2.12", "ok"}, rows[1][:6])
	assert.Equal(t, []string{"validated", "ns", "b", "3.0.0", "—", "missing"}, rows[2][:6])
	assert.Equal(t, []string{"certified", "ns", "c", "0.9.0", "2.11", "ok"}, rows[3][:6])
}

func TestGatherE2EPartialHub(t *testing.T) {
	// Only the validated repository exists; the certified walk dies and
	// must not take the validated rows with it.
	server := newHubServer(t, map[string][]hubCollection{
		"validated": {
			{Namespace: "ns", Name: "a", Version: "1.0.0", RequiresAnsible: ">=2.14"},
		},
	})
	defer server.Close()

	workbookPath := filepath.Join(t.TempDir(), "collections.xlsx")
	service := app.NewService()
	result, err := service.Gather(context.Background(), app.GatherRequest{
		APIURL:     server.URL,
		Format:     "xlsx",
		OutputPath: workbookPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, types.RepositoryCertified, result.Warnings[0].Repository)
}
