package ingest

import "github.com/TFMV/cohortviz/models"

// SampleRoster returns a small deterministic roster spanning three cohorts,
// including one member without a graduation year and a mix of link coverage.
// It backs the demo commands and the server's default graph.
func SampleRoster() []PersonRecord {
	return []PersonRecord{
		{
			Name:           "Alice Zhang",
			Website:        "https://alicezhang.dev",
			GitHub:         "https://github.com/alicezhang",
			GraduationYear: "2019",
		},
		{
			Name:           "Marcus Webb",
			LinkedIn:       "https://linkedin.com/in/marcuswebb",
			GraduationYear: "2019",
		},
		{
			Name:           "Priya Natarajan",
			GitHub:         "https://github.com/priyan",
			Email:          "priya@example.com",
			GraduationYear: "2019",
		},
		{
			Name:           "Diego Fuentes",
			Website:        "https://diegof.io",
			GraduationYear: "2020",
		},
		{
			Name:           "Hana Suzuki",
			LinkedIn:       "https://linkedin.com/in/hanasuzuki",
			GitHub:         "https://github.com/hanas",
			GraduationYear: "2020",
		},
		{
			Name:           "Tom OConnell",
			GraduationYear: "2020",
		},
		{
			Name:           "Ling Chen",
			Email:          "ling@example.com",
			GraduationYear: "2021",
		},
		{
			Name:           "Sam Porter",
			GraduationYear: "2021",
		},
		{
			Name: "Robin Okafor",
		},
	}
}

// SampleGraph builds the demo graph from the sample roster.
func SampleGraph() (*models.Graph, error) {
	return BuildGraph("Sample Roster", SampleRoster(), DefaultPalette())
}
