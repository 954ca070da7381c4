package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// RunKey is a deterministic fingerprint of the inputs to one analysis
// pass. Two runs with the same key may share results; a response tagged
// with a stale key must be discarded.
type RunKey string

// String returns the string representation
func (k RunKey) String() string {
	return string(k)
}

// IsEmpty checks if the run key is empty
func (k RunKey) IsEmpty() bool {
	return k == ""
}

// ComputeRunKey builds the run fingerprint from a notebook, the selected
// notes, the date range and the prompt template in use. Note IDs are
// sorted so selection order never changes the key.
func ComputeRunKey(notebookID NotebookID, noteIDs []NoteID, dateRange DateRange, promptTemplateID string) RunKey {
	ids := make([]string, len(noteIDs))
	for i, id := range noteIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)

	var data strings.Builder
	data.WriteString(notebookID.String())
	data.WriteString("|")
	data.WriteString(strings.Join(ids, ","))
	data.WriteString("|")
	data.WriteString(dateRange.String())
	data.WriteString("|")
	data.WriteString(promptTemplateID)

	sum := sha256.Sum256([]byte(data.String()))
	return RunKey(hex.EncodeToString(sum[:]))
}
