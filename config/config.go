// Package config layers a TOML file over built-in defaults. Flags and
// environment variables are applied on top by the command layer, so
// precedence is flags > env > file > defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/TFMV/cohortviz/models"
	"github.com/TFMV/cohortviz/physics"
)

// DefaultFile is the config file name looked up in the working directory
// when no explicit path is given.
const DefaultFile = "cohortviz.toml"

// Config holds cohortviz configuration.
type Config struct {
	Graph   GraphConfig   `toml:"graph"`
	Physics PhysicsConfig `toml:"physics"`
	Render  RenderConfig  `toml:"render"`
	Server  ServerConfig  `toml:"server"`
}

// GraphConfig controls the simulation canvas.
type GraphConfig struct {
	Width         float64 `toml:"width"`
	Height        float64 `toml:"height"`
	Layout        string  `toml:"layout"` // "force", "cluster", "drift"
	MaxIterations int     `toml:"max_iterations"`
}

// PhysicsConfig tunes the force simulation.
type PhysicsConfig struct {
	LinkDistance   float64 `toml:"link_distance"`
	SpringConstant float64 `toml:"spring_constant"`
	Repulsion      float64 `toml:"repulsion"`
	Gravity        float64 `toml:"gravity"`
	Damping        float64 `toml:"damping"`
	CollisionPad   float64 `toml:"collision_pad"`
}

// RenderConfig controls static output.
type RenderConfig struct {
	Format     string  `toml:"format"`
	Background string  `toml:"background"`
	Timestamp  bool    `toml:"timestamp"`
	NodeSize   float64 `toml:"node_size"`
	EdgeWidth  float64 `toml:"edge_width"`
	FontSize   float64 `toml:"font_size"`
	ShowLabels bool    `toml:"show_labels"`
	MinZoom    float64 `toml:"min_zoom"`
	MaxZoom    float64 `toml:"max_zoom"`
	Midnight   bool    `toml:"midnight"`
}

// ServerConfig controls the live server.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			Width:         800,
			Height:        600,
			Layout:        "force",
			MaxIterations: 500,
		},
		Physics: PhysicsConfig{
			LinkDistance:   150,
			SpringConstant: 0.015,
			Repulsion:      100,
			Gravity:        0.05,
			Damping:        0.85,
			CollisionPad:   4,
		},
		Render: RenderConfig{
			Format:     "svg",
			Background: "#f8f8f8",
			NodeSize:   12,
			EdgeWidth:  1,
			FontSize:   10,
			ShowLabels: true,
			MinZoom:    0.25,
			MaxZoom:    4.0,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result. With an
// empty path it falls back to DefaultFile in the working directory, and a
// missing file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation or renderers cannot work with.
func (c *Config) Validate() error {
	if c.Graph.Width <= 0 || c.Graph.Height <= 0 {
		return fmt.Errorf("graph dimensions must be positive, got %gx%g", c.Graph.Width, c.Graph.Height)
	}
	if c.Graph.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.Graph.MaxIterations)
	}
	if _, err := physics.GetLayoutAlgorithm(c.Graph.Layout); err != nil {
		return err
	}
	if c.Physics.Damping <= 0 || c.Physics.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %g", c.Physics.Damping)
	}
	if c.Physics.LinkDistance <= 0 {
		return fmt.Errorf("link_distance must be positive, got %g", c.Physics.LinkDistance)
	}
	if c.Render.MinZoom <= 0 || c.Render.MaxZoom <= c.Render.MinZoom {
		return fmt.Errorf("zoom bounds must satisfy 0 < min < max, got %g and %g", c.Render.MinZoom, c.Render.MaxZoom)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	return nil
}

// Forces converts the physics section to simulation parameters.
func (c *Config) Forces() models.Forces {
	return models.Forces{
		LinkDistance:   c.Physics.LinkDistance,
		SpringConstant: c.Physics.SpringConstant,
		Repulsion:      c.Physics.Repulsion,
		Gravity:        c.Physics.Gravity,
		Damping:        c.Physics.Damping,
		CollisionPad:   c.Physics.CollisionPad,
	}
}

// ApplyGraph stamps the configured canvas and physics onto a graph.
func (c *Config) ApplyGraph(g *models.Graph) {
	g.Width = c.Graph.Width
	g.Height = c.Graph.Height
	g.MaxIterations = c.Graph.MaxIterations
	g.Forces = c.Forces()
}
