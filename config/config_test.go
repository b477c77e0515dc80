package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/cohortviz/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohortviz.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 800.0, cfg.Graph.Width)
	assert.Equal(t, "force", cfg.Graph.Layout)
	assert.Equal(t, "svg", cfg.Render.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[graph]
width = 1200
layout = "cluster"

[physics]
damping = 0.9

[render]
format = "html"
midnight = true

[server]
addr = ":9000"
watch = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, cfg.Graph.Width)
	assert.Equal(t, 600.0, cfg.Graph.Height, "unset keys keep their defaults")
	assert.Equal(t, "cluster", cfg.Graph.Layout)
	assert.Equal(t, 0.9, cfg.Physics.Damping)
	assert.Equal(t, 150.0, cfg.Physics.LinkDistance)
	assert.Equal(t, "html", cfg.Render.Format)
	assert.True(t, cfg.Render.Midnight)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.Watch)
}

func TestLoadMissingImplicitFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "[graph\nwidth = 1200")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero width", "[graph]\nwidth = 0"},
		{"unknown layout", "[graph]\nlayout = \"spiral\""},
		{"damping above one", "[physics]\ndamping = 1.5"},
		{"inverted zoom bounds", "[render]\nmin_zoom = 2.0\nmax_zoom = 0.5"},
		{"empty addr", "[server]\naddr = \"\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestApplyGraph(t *testing.T) {
	cfg := Default()
	cfg.Graph.Width = 1024
	cfg.Graph.Height = 768
	cfg.Graph.MaxIterations = 250
	cfg.Physics.Repulsion = 180

	g := models.NewGraph("roster")
	cfg.ApplyGraph(g)

	assert.Equal(t, 1024.0, g.Width)
	assert.Equal(t, 768.0, g.Height)
	assert.Equal(t, 250, g.MaxIterations)
	assert.Equal(t, 180.0, g.Forces.Repulsion)
	assert.Equal(t, 0.85, g.Forces.Damping)
}
