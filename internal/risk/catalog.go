package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChecklistLength is the fixed number of checklist questions. Stored answer
// arrays and the question catalog must both have exactly this length; the
// analytics failure ranking iterates answers by position, so the pairing of
// index and question identity is load-bearing.
const ChecklistLength = 10

// Question pairs a stable identifier with display text. Keeping the id next
// to the text means a reordered or edited catalog is caught at load time
// instead of silently misaligning stored answers.
type Question struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

// DefaultCatalog returns the built-in ten-question safety checklist.
func DefaultCatalog() []Question {
	return []Question{
		{ID: "residual-energy", Text: "Risks and residual energies assessed (use the safety placard)?"},
		{ID: "fall-risks", Text: "Fall risks eliminated?"},
		{ID: "pinch-cut-force", Text: "Pinch, cut and force risks handled?"},
		{ID: "tools-ppe", Text: "Correct tools and PPE available?"},
		{ID: "permits", Text: "Permits in place (hot work, confined spaces)?"},
		{ID: "housekeeping", Text: "Trip hazards, oil and loose objects cleared?"},
		{ID: "barriers-signage", Text: "Barriers, communication and signage in place?"},
		{ID: "lifting-gear", Text: "Equipment in good condition for lifting and load securing?"},
		{ID: "pre-use-check", Text: "Required equipment checked before use?"},
		{ID: "emergency-points", Text: "Emergency stop, evacuation route and eye-wash locations known?"},
	}
}

// LoadCatalog reads a question catalog from a YAML file. An empty path keeps
// the default catalog. The file must contain exactly ChecklistLength entries
// with unique, non-empty ids.
func LoadCatalog(path string) ([]Question, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist catalog: %w", err)
	}
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse checklist catalog: %w", err)
	}
	if err := ValidateCatalog(doc.Questions); err != nil {
		return nil, err
	}
	return doc.Questions, nil
}

func ValidateCatalog(questions []Question) error {
	if len(questions) != ChecklistLength {
		return fmt.Errorf("checklist catalog must have exactly %d questions, got %d", ChecklistLength, len(questions))
	}
	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("checklist question %d has an empty id", i)
		}
		if q.Text == "" {
			return fmt.Errorf("checklist question %q has empty text", q.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate checklist question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
