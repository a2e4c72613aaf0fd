package story

import (
	"fmt"
	"strings"
)

// Required section names reported by ParseError.
const (
	SectionStoryID            = "story identifier"
	SectionUserStory          = "User Story"
	SectionGoal               = `"I need" field`
	SectionAcceptanceCriteria = "Acceptance Criteria"
)

// ParseError reports every required section found missing or malformed in a
// single validation pass.
type ParseError struct {
	Missing []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("story document is missing required sections: %s",
		strings.Join(e.Missing, ", "))
}
