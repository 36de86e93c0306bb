package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/server"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv := httptest.NewServer(server.New(dir))
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIndexRedirectsToWorkloadReport(t *testing.T) {
	srv, _ := newTestServer(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp := get(t, client, srv.URL+"/")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/reports/speaker_workload_report.html" {
		t.Errorf("location = %q", loc)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.Client(), srv.URL+"/healthz")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestReportsJSONListsFiles(t *testing.T) {
	srv, dir := newTestServer(t)
	for _, name := range []string{"payment_report.md", "speaker_workload.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	resp := get(t, srv.Client(), srv.URL+"/reports.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Reports []string `json:"reports"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"payment_report.md", "speaker_workload.csv"}
	if len(body.Reports) != len(want) {
		t.Fatalf("reports = %v", body.Reports)
	}
	for i := range want {
		if body.Reports[i] != want[i] {
			t.Errorf("reports[%d] = %q, want %q", i, body.Reports[i], want[i])
		}
	}
}

func TestServesReportFile(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "payment_report.md"), []byte("# Payment"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := get(t, srv.Client(), srv.URL+"/reports/payment_report.md")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "# Payment" {
		t.Errorf("body = %q", data)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/reports/../secret", nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
