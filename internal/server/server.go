// Package server serves generated reports for local preview.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New returns an HTTP handler serving the reports directory. The index
// redirects to the workload report and /reports.json lists what is
// available.
func New(reportsDir string) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/reports/speaker_workload_report.html", http.StatusFound)
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Get("/reports.json", func(w http.ResponseWriter, r *http.Request) {
		names, err := listReports(reportsDir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"reports": names})
	})

	fs := http.StripPrefix("/reports/", http.FileServer(http.Dir(reportsDir)))
	router.Get("/reports/*", func(w http.ResponseWriter, r *http.Request) {
		// Keep path traversal out of the reports dir.
		if strings.Contains(r.URL.Path, "..") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})

	return router
}

func listReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".html", ".md", ".csv", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
