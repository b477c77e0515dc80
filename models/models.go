// Package models provides the core domain types for cohortviz: contributors,
// the edges that connect them, and the graph that holds both.
package models

import (
	"time"
)

// Contributor represents a single person in the graph. The Slug is the
// derived identifier (lowercased name with whitespace collapsed to hyphens)
// and is unique within a graph. Optional profile fields hold an empty string
// when the source record carried no value, so every field is always present
// in serialized output.
type Contributor struct {
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	Website        string  `json:"website"`
	LinkedIn       string  `json:"linkedIn"`
	GitHub         string  `json:"gitHub"`
	Email          string  `json:"professionalEmail"`
	GraduationYear string  `json:"graduationYear"`
	Ordinal        int     `json:"ordinal"`
	Size           float64 `json:"size"`
	Color          string  `json:"color"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Pinned         bool    `json:"pinned"`
}

// HasLinks reports whether the contributor carries at least one external link.
func (c *Contributor) HasLinks() bool {
	return c.Website != "" || c.LinkedIn != "" || c.GitHub != "" || c.Email != ""
}

// Edge represents an undirected connection between two contributors in the
// same cohort. Source and Target are contributor slugs; their order carries
// no meaning.
type Edge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Cohort string  `json:"cohort"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color"`
}

// Key returns an order-independent identity for the edge's endpoint pair.
func (e *Edge) Key() string {
	if e.Source <= e.Target {
		return e.Source + "|" + e.Target
	}
	return e.Target + "|" + e.Source
}

// Forces holds the tunable parameters of the layout simulation.
type Forces struct {
	LinkDistance   float64 `json:"link_distance"`
	SpringConstant float64 `json:"spring_constant"`
	Repulsion      float64 `json:"repulsion"`
	Gravity        float64 `json:"gravity"`
	Damping        float64 `json:"damping"`
	CollisionPad   float64 `json:"collision_pad"`
}

// DefaultForces returns simulation parameters tuned for rosters in the
// tens-of-contributors range.
func DefaultForces() Forces {
	return Forces{
		LinkDistance:   150,
		SpringConstant: 0.015,
		Repulsion:      100.0,
		Gravity:        0.05,
		Damping:        0.85,
		CollisionPad:   4.0,
	}
}

// Graph is a positioned collection of contributors and cohort edges together
// with the viewport dimensions and simulation parameters used to lay it out.
type Graph struct {
	ID                     string        `json:"id"`
	Name                   string        `json:"name"`
	Contributors           []Contributor `json:"contributors"`
	Edges                  []Edge        `json:"edges"`
	Width                  float64       `json:"width"`
	Height                 float64       `json:"height"`
	Forces                 Forces        `json:"forces"`
	MaxIterations          int           `json:"max_iterations"`
	StabilizationThreshold float64       `json:"stabilization_threshold"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}
