package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func sampleEntries() []Entry {
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return []Entry{
		{Seq: 1, Timestamp: base, Action: ActionLoaded, Keys: []string{"story_id", "goal", "acceptance_criteria"}, ValueType: "mapping", SizeKB: 0.41},
		{Seq: 2, Timestamp: base.Add(time.Second), Action: ActionUpdated, Keys: []string{"status"}, ValueType: "string", SizeKB: 0.43},
		{Seq: 3, Timestamp: base.Add(2 * time.Second), Action: ActionBulkUpdated, Keys: []string{"owner", "sprint"}, ValueType: "mapping", SizeKB: 0.47},
	}
}

func TestLogAppendOrder(t *testing.T) {
	l := NewLog()
	for _, e := range sampleEntries() {
		l.Append(e)
	}

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() returned %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Seq != int64(i+1) {
			t.Errorf("entry %d has seq %d, want %d", i, e.Seq, i+1)
		}
	}
}

func TestLogEntriesReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(sampleEntries()[0])

	got := l.Entries()
	got[0].Action = "tampered"
	got[0].Keys[0] = "tampered"

	fresh := l.Entries()
	if fresh[0].Action != ActionLoaded {
		t.Error("mutating returned entry changed the log")
	}
	if fresh[0].Keys[0] != "story_id" {
		t.Error("mutating returned keys changed the log")
	}
}

func TestExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.json")

	doc := ExportDocument{
		StoryID:    "Story 2",
		SourcePath: "stories/story_2.md",
		ExportedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Entries:    sampleEntries(),
	}

	if err := WriteExport(path, doc); err != nil {
		t.Fatalf("WriteExport() failed: %v", err)
	}

	back, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport() failed: %v", err)
	}

	if back.StoryID != doc.StoryID {
		t.Errorf("story_id = %q, want %q", back.StoryID, doc.StoryID)
	}
	if back.SourcePath != doc.SourcePath {
		t.Errorf("source_path = %q, want %q", back.SourcePath, doc.SourcePath)
	}
	if len(back.Entries) != len(doc.Entries) {
		t.Fatalf("entries = %d, want %d", len(back.Entries), len(doc.Entries))
	}
	last := back.Entries[len(back.Entries)-1]
	if last.Action != ActionBulkUpdated || last.Seq != 3 {
		t.Errorf("last entry = %+v, want bulk_updated seq 3", last)
	}
}

func TestExportEmptyTrail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")

	if err := WriteExport(path, ExportDocument{StoryID: "Story 9"}); err != nil {
		t.Fatalf("WriteExport() failed: %v", err)
	}

	back, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport() failed: %v", err)
	}
	if back.Entries == nil || len(back.Entries) != 0 {
		t.Errorf("entries = %#v, want empty non-nil slice", back.Entries)
	}
}
