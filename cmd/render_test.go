package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRosterSample(t *testing.T) {
	graph, err := loadRoster("", false)
	if err != nil {
		t.Fatalf("loadRoster failed: %v", err)
	}
	if graph.Name != "Sample Roster" {
		t.Errorf("expected name 'Sample Roster', got %q", graph.Name)
	}
	if len(graph.Contributors) == 0 {
		t.Error("sample roster has no contributors")
	}
}

func TestLoadRosterMidnightPalette(t *testing.T) {
	graph, err := loadRoster("", true)
	if err != nil {
		t.Fatalf("loadRoster failed: %v", err)
	}
	// The first cohort takes the first midnight color
	if graph.Contributors[0].Color != "#FF6D00" {
		t.Errorf("expected midnight color #FF6D00, got %q", graph.Contributors[0].Color)
	}
}

func TestLoadRosterFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.json")
	roster := `[{"name": "Solo Dev", "graduationYear": 2020}]`
	if err := os.WriteFile(path, []byte(roster), 0o644); err != nil {
		t.Fatal(err)
	}

	graph, err := loadRoster(path, false)
	if err != nil {
		t.Fatalf("loadRoster failed: %v", err)
	}
	if graph.Name != "team.json" {
		t.Errorf("expected name 'team.json', got %q", graph.Name)
	}
	if graph.Contributors[0].Slug != "solo-dev" {
		t.Errorf("expected slug 'solo-dev', got %q", graph.Contributors[0].Slug)
	}
}

func TestRenderCommandWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")
	rootCmd.SetArgs([]string{"render", "-f", "json", "-o", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var doc struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Nodes) == 0 {
		t.Error("rendered snapshot has no nodes")
	}
}

func TestRenderCommandRejectsUnknownFormat(t *testing.T) {
	rootCmd.SetArgs([]string{"render", "-f", "pdf", "-o", filepath.Join(t.TempDir(), "out.pdf")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderCommandFetchesRemoteRoster(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name": "Remote Ray", "graduationYear": 2019}]`))
	}))
	defer ts.Close()

	out := filepath.Join(t.TempDir(), "remote.json")
	rootCmd.SetArgs([]string{"render", "-f", "json", "-o", out, "--url", ts.URL})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var doc struct {
		Nodes []struct {
			Slug string `json:"slug"`
		} `json:"nodes"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Metadata["name"] != "Remote Roster" {
		t.Errorf("expected name 'Remote Roster', got %v", doc.Metadata["name"])
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Slug != "remote-ray" {
		t.Errorf("unexpected nodes: %+v", doc.Nodes)
	}
}
