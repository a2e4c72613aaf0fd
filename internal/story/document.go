package story

// Document is the parsed, typed representation of a user story file.
type Document struct {
	// StoryID is the identifier resolved from the title heading or the
	// source filename (e.g. "Story 2").
	StoryID string

	// AsA, Goal, and SoThat are the labeled User Story fields.
	// Goal (the "I need" field) is required; the others are optional.
	AsA    string
	Goal   string
	SoThat string

	// Criteria holds the acceptance criteria in document order.
	Criteria []Criterion

	// Optional labeled scalar fields. Points is nil when absent.
	Points   *int
	Priority string
	Status   string

	// Raw is the original document text, retained verbatim.
	Raw string

	// SourcePath is the file the document was read from, empty for
	// in-memory text.
	SourcePath string
}

// Criterion is one acceptance-criteria block.
type Criterion struct {
	ID    string
	Title string
	Body  string
}

// CriterionIDs returns the criteria ids in document order.
func (d *Document) CriterionIDs() []string {
	ids := make([]string, len(d.Criteria))
	for i, c := range d.Criteria {
		ids[i] = c.ID
	}
	return ids
}
