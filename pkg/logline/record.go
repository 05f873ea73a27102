// Package logline parses single UI-log records into typed events.
//
// A record is one line of the interleaved log written by the editing
// processes. Every line is tokenized once, up front, so that the rest of the
// pipeline never does string offset arithmetic on raw text.
package logline

// Kind classifies a parsed record.
type Kind int

// Record kinds.
const (
	KindOther Kind = iota
	KindSessionStart
	KindSessionEnd
	KindCommand
	KindUndoCountDelta
)

var kindNames = [...]string{
	KindOther:          "other",
	KindSessionStart:   "session_start",
	KindSessionEnd:     "session_end",
	KindCommand:        "command",
	KindUndoCountDelta: "undo_count_delta",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// File operation verbs.
const (
	VerbLoad     = "load"
	VerbSave     = "save"
	VerbExportAs = "exportas"
)

// FileOp is the load/save/exportas part of a command record.
type FileOp struct {
	Verb    string
	Ext     string
	Size    int64
	HasSize bool
}

// Record is one parsed log line. Records are values and are never mutated
// after Parse returns them.
type Record struct {
	// Payload is the raw command tail: the text after "cmd:" for UI commands,
	// the verb for file operations, the full tail otherwise.
	Payload string
	RawKit  string
	File    *FileOp

	Line        int
	Kit         uint64
	User        int
	Repeat      int
	UndoDelta   int
	Duration    float64
	Kind        Kind
	HasKit      bool
	HasUser     bool
	HasDuration bool
}

// IsFileOp reports whether the record is a load/save/exportas command.
func (r Record) IsFileOp() bool {
	return r.Kind == KindCommand && r.File != nil
}
