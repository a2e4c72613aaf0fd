// Package story parses semi-structured user story documents into typed
// records.
//
// A story document is line-oriented markdown with a recognizable shape:
//
//	# Story 2: Reduce duplication
//
//	## User Story
//	As a: maintainer
//	I need: reduce duplication
//	So that: changes land in one place
//
//	## Acceptance Criteria
//	### AC1: Shared helper extracted
//	Both call sites use the helper.
//	### AC2: Tests still pass
//	No behavior change.
//
//	Story Points: 3
//	Priority: High
//	Status: Ready
//
// Parse validates the whole document in one pass and reports every missing
// required section together, not just the first. No partial Document is ever
// returned on failure; the raw text is retained verbatim on success for
// downstream introspection.
package story
