package models

import (
	"fmt"
)

// ContributorFilter is a predicate used to filter contributors in queries.
type ContributorFilter func(c *Contributor) bool

// FindBySlug returns a pointer into the graph's contributor slice for the
// given slug.
func (g *Graph) FindBySlug(slug string) (*Contributor, error) {
	for i := range g.Contributors {
		if g.Contributors[i].Slug == slug {
			return &g.Contributors[i], nil
		}
	}
	return nil, fmt.Errorf("contributor %q not found", slug)
}

// Neighbors returns the slugs of all contributors that share an edge with
// the given contributor.
func (g *Graph) Neighbors(slug string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := range g.Edges {
		e := &g.Edges[i]
		var other string
		switch slug {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			result = append(result, other)
		}
	}
	return result
}

// CohortOf returns all contributors carrying the given raw graduation-year
// label, in roster order.
func (g *Graph) CohortOf(year string) []Contributor {
	var result []Contributor
	for _, c := range g.Contributors {
		if c.GraduationYear == year {
			result = append(result, c)
		}
	}
	return result
}

// FilterContributors returns contributors matching the provided predicate.
func (g *Graph) FilterContributors(filter ContributorFilter) []Contributor {
	var result []Contributor
	for i := range g.Contributors {
		if filter(&g.Contributors[i]) {
			result = append(result, g.Contributors[i])
		}
	}
	return result
}
