package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/cohortviz/models"
)

// RosterProcessor defines the interface that all roster processors must implement
type RosterProcessor interface {
	// ProcessData takes raw roster bytes and returns a contributor graph
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// Palette provides color schemes for graph visualization. Node colors are
// assigned per cohort in first-appearance order.
type Palette struct {
	NodeColors []string
	EdgeColors []string
	Background string
}

// DefaultPalette is the light theme: saturated node colors on a near-white
// page.
func DefaultPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#4285F4", // Blue
			"#EA4335", // Red
			"#FBBC05", // Yellow
			"#34A853", // Green
			"#673AB7", // Purple
			"#3F51B5", // Indigo
			"#00BCD4", // Cyan
			"#009688", // Teal
			"#FF5722", // Deep Orange
		},
		// Edge grays cycle per cohort, light to lighter
		EdgeColors: []string{
			"#666666",
			"#888888",
			"#AAAAAA",
		},
		Background: "#f8f8f8",
	}
}

// MidnightPalette returns a dark-background palette for night-mode renders
func MidnightPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#FF6D00", // Amber
			"#2979FF", // Blue
			"#00E676", // Green
			"#F50057", // Pink
			"#651FFF", // Deep Purple
			"#C6FF00", // Lime
			"#FF3D00", // Deep Orange
			"#00B0FF", // Light Blue
			"#76FF03", // Light Green
		},
		EdgeColors: []string{
			"#555555", // Dark gray
			"#9C27B0", // Purple
			"#00BFA5", // Teal
		},
		Background: "#212121",
	}
}

// JSONProcessor handles JSON rosters
type JSONProcessor struct {
	palette *Palette
}

// NewJSONProcessor creates a new JSON processor with the specified palette
func NewJSONProcessor(palette *Palette) *JSONProcessor {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &JSONProcessor{palette: palette}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData parses a JSON roster and builds the cohort graph
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	records, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return BuildGraph("JSON Roster", records, p.palette)
}

// YAMLProcessor handles YAML rosters
type YAMLProcessor struct {
	palette *Palette
}

// NewYAMLProcessor creates a new YAML processor with the specified palette
func NewYAMLProcessor(palette *Palette) *YAMLProcessor {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &YAMLProcessor{palette: palette}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData parses a YAML roster and builds the cohort graph
func (p *YAMLProcessor) ProcessData(data []byte) (*models.Graph, error) {
	records, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return BuildGraph("YAML Roster", records, p.palette)
}

// CSVProcessor handles CSV rosters
type CSVProcessor struct {
	palette *Palette
}

// NewCSVProcessor creates a new CSV processor with the specified palette
func NewCSVProcessor(palette *Palette) *CSVProcessor {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &CSVProcessor{palette: palette}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData parses a CSV roster and builds the cohort graph. Columns are
// matched by header name, so order does not matter and unknown columns are
// ignored.
func (p *CSVProcessor) ProcessData(data []byte) (*models.Graph, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV roster: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	nameIdx, websiteIdx, linkedInIdx, gitHubIdx, yearIdx, emailIdx := -1, -1, -1, -1, -1, -1
	for i, col := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameIdx = i
		case "website", "url":
			websiteIdx = i
		case "linkedin":
			linkedInIdx = i
		case "github":
			gitHubIdx = i
		case "graduationyear", "graduation_year", "year", "cohort":
			yearIdx = i
		case "professionalemail", "professional_email", "email":
			emailIdx = i
		}
	}
	if nameIdx == -1 {
		return nil, fmt.Errorf("CSV roster must contain a name column")
	}

	field := func(row []string, idx int) string {
		if idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	records := make([]PersonRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, PersonRecord{
			Name:           field(row, nameIdx),
			Website:        field(row, websiteIdx),
			LinkedIn:       field(row, linkedInIdx),
			GitHub:         field(row, gitHubIdx),
			GraduationYear: YearLabel(field(row, yearIdx)),
			Email:          field(row, emailIdx),
		})
	}

	return BuildGraph("CSV Roster", records, p.palette)
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (RosterProcessor, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONProcessor(DefaultPalette()), nil
	case "yaml", "yml":
		return NewYAMLProcessor(DefaultPalette()), nil
	case "csv":
		return NewCSVProcessor(DefaultPalette()), nil
	case "midnight-json":
		return NewJSONProcessor(MidnightPalette()), nil
	case "midnight-yaml", "midnight-yml":
		return NewYAMLProcessor(MidnightPalette()), nil
	case "midnight-csv":
		return NewCSVProcessor(MidnightPalette()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadFile reads a roster file and processes it with the processor matching
// its extension.
func LoadFile(path string) (*models.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading roster file: %w", err)
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	processor, err := GetProcessor(format)
	if err != nil {
		return nil, err
	}
	return processor.ProcessData(data)
}
