package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/cohortviz/cohort"
)

func TestBuildGraphCohortRing(t *testing.T) {
	records := []PersonRecord{
		{Name: "Alice", GraduationYear: "2020"},
		{Name: "Bob", GraduationYear: "2020"},
		{Name: "Cara", GraduationYear: "2020"},
	}

	graph, err := BuildGraph("test", records, nil)
	require.NoError(t, err)

	require.Len(t, graph.Contributors, 3)
	require.Len(t, graph.Edges, 3, "a three-member cohort forms a ring")

	keys := make(map[string]bool)
	for i := range graph.Edges {
		keys[graph.Edges[i].Key()] = true
	}
	assert.True(t, keys["alice|bob"])
	assert.True(t, keys["bob|cara"])
	assert.True(t, keys["alice|cara"])

	// Every ring member has two connections: base size 12 grows to 14.
	for i := range graph.Contributors {
		assert.Equal(t, 14.0, graph.Contributors[i].Size)
	}
}

func TestBuildGraphColorsByCohort(t *testing.T) {
	records := []PersonRecord{
		{Name: "Alice", GraduationYear: "2019"},
		{Name: "Bob", GraduationYear: "2020"},
		{Name: "Cara", GraduationYear: "2019"},
		{Name: "Robin"},
	}

	graph, err := BuildGraph("test", records, DefaultPalette())
	require.NoError(t, err)

	byName := make(map[string]string)
	for i := range graph.Contributors {
		byName[graph.Contributors[i].Slug] = graph.Contributors[i].Color
	}

	assert.Equal(t, byName["alice"], byName["cara"], "cohort mates share a color")
	assert.NotEqual(t, byName["alice"], byName["bob"], "different cohorts get different colors")
	assert.NotEqual(t, byName["alice"], byName["robin"], "the unknown cohort has its own color")
}

func TestBuildGraphEmptyRoster(t *testing.T) {
	_, err := BuildGraph("test", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestGetProcessor(t *testing.T) {
	for format, want := range map[string]string{
		"json":          "JSON Processor",
		"yaml":          "YAML Processor",
		"yml":           "YAML Processor",
		"csv":           "CSV Processor",
		"midnight-json": "JSON Processor",
	} {
		p, err := GetProcessor(format)
		require.NoError(t, err, "format %s", format)
		assert.Equal(t, want, p.GetName())
	}

	_, err := GetProcessor("toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCSVProcessorHeaderMapping(t *testing.T) {
	data := []byte("year,email,name,github\n" +
		"2020,alice@example.com,Alice Zhang,https://github.com/alice\n" +
		"2020,,Bob Tran,\n")

	graph, err := NewCSVProcessor(nil).ProcessData(data)
	require.NoError(t, err)
	require.Len(t, graph.Contributors, 2)

	alice, err := graph.FindBySlug("alice-zhang")
	require.NoError(t, err)
	assert.Equal(t, "2020", alice.GraduationYear)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Equal(t, "https://github.com/alice", alice.GitHub)

	bob, err := graph.FindBySlug("bob-tran")
	require.NoError(t, err)
	assert.Empty(t, bob.Email)

	require.Len(t, graph.Edges, 1, "a two-member cohort forms a single edge")
}

func TestCSVProcessorRequiresNameColumn(t *testing.T) {
	_, err := NewCSVProcessor(nil).ProcessData([]byte("year,email\n2020,x@example.com\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "Alice", "graduationYear": 2020}]`), 0o644))

	graph, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, graph.Contributors, 1)
	assert.Equal(t, "alice", graph.Contributors[0].Slug)

	_, err = LoadFile(filepath.Join(dir, "roster.toml"))
	assert.Error(t, err)
}

func TestSampleGraph(t *testing.T) {
	graph, err := SampleGraph()
	require.NoError(t, err)

	assert.Equal(t, len(SampleRoster()), len(graph.Contributors))
	groups := cohort.Groups(graph.Contributors)
	assert.Len(t, groups, 4, "sample spans three cohorts plus unknown")

	// 3-ring + 3-ring + pair + singleton.
	assert.Len(t, graph.Edges, 7)
}
