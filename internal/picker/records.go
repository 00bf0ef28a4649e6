// Package picker implements the built-in interactive history selector. It
// reads the backing process's selector-ready records on standard input,
// filters them as the user types, and writes the chosen record to standard
// output. It is a drop-in alternative to an external fuzzy finder.
package picker

import "strings"

// Record is one history entry as rendered for selection.
type Record struct {
	// ID is the opaque entry id. May be empty for lines the backing
	// process could not identify.
	ID string

	// Line is the command text.
	Line string
}

// String renders the record back into selector output form.
func (r Record) String() string {
	return r.ID + "\t" + r.Line
}

// ParseRecords splits the history rendering into records. The backing
// process emits one record per line (or per NUL byte), each an entry id and
// command text separated by the first tab. Lines without a tab are kept with
// an empty id rather than dropped.
func ParseRecords(input string) []Record {
	if input == "" {
		return nil
	}

	sep := "\n"
	if strings.Contains(input, "\x00") {
		sep = "\x00"
	}

	var records []Record
	for _, raw := range strings.Split(input, sep) {
		raw = strings.TrimSuffix(raw, "\n")
		if raw == "" {
			continue
		}
		id, line, ok := strings.Cut(raw, "\t")
		if !ok {
			records = append(records, Record{Line: raw})
			continue
		}
		records = append(records, Record{ID: id, Line: line})
	}
	return records
}
