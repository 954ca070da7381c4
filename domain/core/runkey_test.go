package core

import (
	"testing"
	"time"
)

func TestComputeRunKeyDeterministic(t *testing.T) {
	notebook := NotebookID("nb-1")
	ids := []NoteID{"n-1", "n-2", "n-3"}
	dateRange := DateRange{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	a := ComputeRunKey(notebook, ids, dateRange, "tpl-1")
	b := ComputeRunKey(notebook, ids, dateRange, "tpl-1")
	if a != b {
		t.Errorf("identical inputs produced different keys: %s vs %s", a, b)
	}
}

func TestComputeRunKeyIgnoresNoteOrder(t *testing.T) {
	notebook := NotebookID("nb-1")
	a := ComputeRunKey(notebook, []NoteID{"n-1", "n-2"}, DateRange{}, "")
	b := ComputeRunKey(notebook, []NoteID{"n-2", "n-1"}, DateRange{}, "")
	if a != b {
		t.Error("note selection order must not change the key")
	}
}

func TestComputeRunKeySensitivity(t *testing.T) {
	notebook := NotebookID("nb-1")
	base := ComputeRunKey(notebook, []NoteID{"n-1"}, DateRange{}, "tpl-1")

	if got := ComputeRunKey(notebook, []NoteID{"n-2"}, DateRange{}, "tpl-1"); got == base {
		t.Error("different note set must change the key")
	}
	if got := ComputeRunKey("nb-2", []NoteID{"n-1"}, DateRange{}, "tpl-1"); got == base {
		t.Error("different notebook must change the key")
	}
	if got := ComputeRunKey(notebook, []NoteID{"n-1"}, DateRange{}, "tpl-2"); got == base {
		t.Error("different prompt template must change the key")
	}
	withRange := DateRange{From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	if got := ComputeRunKey(notebook, []NoteID{"n-1"}, withRange, "tpl-1"); got == base {
		t.Error("different date range must change the key")
	}
}

func TestDateRangeContains(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	r := DateRange{From: from, To: to}

	if !r.Contains(from) || !r.Contains(to) {
		t.Error("bounds are inclusive")
	}
	if r.Contains(from.Add(-time.Hour)) {
		t.Error("before From must be excluded")
	}
	if !(DateRange{}).Contains(time.Now()) {
		t.Error("zero range is unbounded")
	}
}
