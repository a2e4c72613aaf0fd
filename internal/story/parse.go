package story

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Patterns for the recognizable story shape. Bold markers and list bullets
// are tolerated because these documents are written by hand (or by a model)
// and the decoration varies.
var (
	// "# Story 2: Reduce duplication" or "## Story 14".
	headingIDRe = regexp.MustCompile(`(?m)^#{1,3}\s*(Story\s+\d+)\b`)

	// "story_2_reduce_duplication.md" or "story-2.md".
	fileIDRe = regexp.MustCompile(`(?i)^story[_-](\d+)`)

	sectionRe = regexp.MustCompile(`(?m)^#{2,3}\s*(.+?)\s*$`)

	// The colon may sit inside or outside bold markers ("**I need:**" or
	// "**I need**:"), so markers are tolerated on both sides of it.
	asARe    = regexp.MustCompile(`(?mi)^\s*(?:[-*]\s+)?\*{0,2}as an?\*{0,2}\s*[:,]\s*\*{0,2}\s*(.+?)\s*$`)
	iNeedRe  = regexp.MustCompile(`(?mi)^\s*(?:[-*]\s+)?\*{0,2}i need\*{0,2}\s*[:,]\s*\*{0,2}\s*(.+?)\s*$`)
	soThatRe = regexp.MustCompile(`(?mi)^\s*(?:[-*]\s+)?\*{0,2}so that\*{0,2}\s*[:,]\s*\*{0,2}\s*(.+?)\s*$`)

	// "### AC1: Shared helper extracted" or "- AC2: Tests pass".
	criterionRe = regexp.MustCompile(`(?m)^\s*(?:#{2,4}\s*|[-*]\s*)?(AC\d+)\s*[:.]\s*(.+?)\s*$`)

	pointsRe   = regexp.MustCompile(`(?mi)^\s*(?:[-*]\s+)?\*{0,2}(?:story\s+)?points?\*{0,2}\s*:\s*\*{0,2}\s*(\d+)\*{0,2}\s*$`)
	priorityRe = regexp.MustCompile(`(?mi)^\s*(?:[-*]\s+)?\*{0,2}priority\*{0,2}\s*:\s*\*{0,2}\s*([A-Za-z0-9_-]+)\*{0,2}\s*$`)
	statusRe   = regexp.MustCompile(`(?mi)^\s*(?:[-*]\s+)?\*{0,2}status\*{0,2}\s*:\s*\*{0,2}\s*([A-Za-z0-9_-]+)\*{0,2}\s*$`)
)

// Parse converts raw story text into a Document.
// Returns *ParseError listing every missing required section when the story
// identifier, the "User Story" section (with its "I need" field), or a
// non-empty "Acceptance Criteria" section is absent.
func Parse(raw string) (*Document, error) {
	return ParseNamed(raw, "")
}

// ParseNamed is Parse with a source path. The path participates in story id
// resolution (filename convention) and is retained on the Document.
func ParseNamed(raw, sourcePath string) (*Document, error) {
	doc := &Document{Raw: raw, SourcePath: sourcePath}
	var missing []string

	doc.StoryID = resolveStoryID(raw, sourcePath)
	if doc.StoryID == "" {
		missing = append(missing, SectionStoryID)
	}

	userStory, hasUserStory := sectionBody(raw, "User Story")
	if !hasUserStory {
		// The goal lives inside the section, so it is missing too.
		missing = append(missing, SectionUserStory, SectionGoal)
	} else {
		if m := asARe.FindStringSubmatch(userStory); m != nil {
			doc.AsA = m[1]
		}
		if m := iNeedRe.FindStringSubmatch(userStory); m != nil {
			doc.Goal = m[1]
		}
		if m := soThatRe.FindStringSubmatch(userStory); m != nil {
			doc.SoThat = m[1]
		}
		if doc.Goal == "" {
			missing = append(missing, SectionGoal)
		}
	}

	criteria, hasCriteria := sectionBody(raw, "Acceptance Criteria")
	if hasCriteria {
		doc.Criteria = parseCriteria(criteria)
	}
	if !hasCriteria || len(doc.Criteria) == 0 {
		missing = append(missing, SectionAcceptanceCriteria)
	}

	if m := pointsRe.FindStringSubmatch(raw); m != nil {
		// \d+ guarantees the digits parse; range overflow is the only
		// possible failure and is treated as field-absent.
		if n, err := strconv.Atoi(m[1]); err == nil {
			doc.Points = &n
		}
	}
	if m := priorityRe.FindStringSubmatch(raw); m != nil {
		doc.Priority = m[1]
	}
	if m := statusRe.FindStringSubmatch(raw); m != nil {
		doc.Status = m[1]
	}

	if len(missing) > 0 {
		return nil, &ParseError{Missing: missing}
	}
	return doc, nil
}

// resolveStoryID extracts the story id from a title heading, falling back to
// the filename convention when the heading carries no id.
func resolveStoryID(raw, sourcePath string) string {
	if m := headingIDRe.FindStringSubmatch(raw); m != nil {
		return normalizeStoryID(m[1])
	}
	if sourcePath != "" {
		base := filepath.Base(sourcePath)
		if m := fileIDRe.FindStringSubmatch(base); m != nil {
			return "Story " + m[1]
		}
	}
	return ""
}

// normalizeStoryID collapses interior whitespace ("Story   2" -> "Story 2").
func normalizeStoryID(id string) string {
	return strings.Join(strings.Fields(id), " ")
}

// sectionBody returns the text between a "## <name>" heading and the next
// same-or-higher-level heading. The second return value reports whether the
// section heading exists at all.
func sectionBody(raw, name string) (string, bool) {
	matches := sectionRe.FindAllStringSubmatchIndex(raw, -1)
	for i, m := range matches {
		title := raw[m[2]:m[3]]
		if !strings.EqualFold(strings.TrimSpace(title), name) {
			continue
		}
		start := m[1]
		end := len(raw)
		// The body runs to the next "## "-level heading; deeper "###"
		// headings (criterion blocks) belong to this section.
		for _, next := range matches[i+1:] {
			line := raw[next[0]:next[1]]
			if !strings.HasPrefix(strings.TrimSpace(line), "###") {
				end = next[0]
				break
			}
		}
		return raw[start:end], true
	}
	return "", false
}

// parseCriteria splits an Acceptance Criteria section into ordered blocks.
// Each block's body is the free text between its header line and the next
// criterion header.
func parseCriteria(section string) []Criterion {
	matches := criterionRe.FindAllStringSubmatchIndex(section, -1)
	criteria := make([]Criterion, 0, len(matches))
	for i, m := range matches {
		c := Criterion{
			ID:    section[m[2]:m[3]],
			Title: section[m[4]:m[5]],
		}
		bodyStart := m[1]
		bodyEnd := len(section)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		c.Body = strings.TrimSpace(trimMetadata(section[bodyStart:bodyEnd]))
		criteria = append(criteria, c)
	}
	return criteria
}

// trimMetadata cuts a criterion body at the first trailing metadata line
// (Points, Priority, Status). Those lines close the criteria section even
// though they are not headings.
func trimMetadata(body string) string {
	end := len(body)
	for _, re := range []*regexp.Regexp{pointsRe, priorityRe, statusRe} {
		if loc := re.FindStringIndex(body); loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	return body[:end]
}
