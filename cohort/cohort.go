// Package cohort groups contributors by graduation year and synthesizes the
// edges that connect each group.
package cohort

import (
	"github.com/TFMV/cohortviz/models"
)

// Unknown is the group key for contributors without a graduation year.
const Unknown = "unknown"

// Group is an ordered set of contributor slugs sharing one cohort label.
type Group struct {
	Label   string
	Members []string
}

// Key maps a raw graduation-year value to its group key. Labels are compared
// as exact strings, so "2020" and "Class of 2020" form separate cohorts.
func Key(year string) string {
	if year == "" {
		return Unknown
	}
	return year
}

// Groups partitions contributors into cohort groups. Group order follows the
// first appearance of each label in the input, and members keep their
// relative input order.
func Groups(contributors []models.Contributor) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, c := range contributors {
		key := Key(c.GraduationYear)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Label: key})
		}
		groups[i].Members = append(groups[i].Members, c.Slug)
	}
	return groups
}

// RingEdges synthesizes the edge set for a partition of cohort groups. A
// group of one contributor yields no edge, a pair yields a single edge, and
// larger groups yield a ring: each member links to the next and the last
// links back to the first, giving exactly N edges for N members. No edge
// ever spans two groups. Output is deterministic for a fixed input order.
func RingEdges(groups []Group) []models.Edge {
	var edges []models.Edge
	for _, g := range groups {
		n := len(g.Members)
		switch {
		case n < 2:
			continue
		case n == 2:
			edges = append(edges, *models.NewEdge(g.Members[0], g.Members[1], g.Label, 1.0))
		default:
			for i := 0; i < n; i++ {
				next := (i + 1) % n
				edges = append(edges, *models.NewEdge(g.Members[i], g.Members[next], g.Label, 1.0))
			}
		}
	}
	return edges
}

// Build runs the full pipeline: group the contributors, then connect each
// group.
func Build(contributors []models.Contributor) []models.Edge {
	return RingEdges(Groups(contributors))
}
