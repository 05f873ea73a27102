package logline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Line prefixes and token keys of the UI log grammar.
const (
	prefixStart = "log-start-time:"
	prefixEnd   = "log-end-time:"
	prefixCmd   = "cmd:"
	prefixUndo  = "undo-count-change:"

	keyKit  = "kit"
	keyUser = "user"
	keyRep  = "rep"
	keyDur  = "dur"
	keySize = "size"
	keyExt  = "ext"
)

// ErrInvalidKit is wrapped by ParseError when a kit= value is not hexadecimal.
var ErrInvalidKit = errors.New("kit is not a hexadecimal identifier")

// ParseError reports a structural problem that makes a line impossible to
// assign to a session.
type ParseError struct {
	Err   error
	Field string
	Value string
	Line  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s=%q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse tokenizes a single log line. lineNo is 1-based and only used for
// error reporting. The only error returned is a *ParseError for a malformed
// kit= field; every other irregularity degrades to a weaker record.
func Parse(line string, lineNo int) (Record, error) {
	rec := Record{Line: lineNo}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return rec, nil
	}

	err := rec.scanKit(tokens)
	if err != nil {
		return rec, err
	}

	switch {
	case strings.HasPrefix(tokens[0], prefixStart):
		rec.Kind = KindSessionStart

		return rec, nil
	case strings.HasPrefix(tokens[0], prefixEnd):
		rec.Kind = KindSessionEnd

		return rec, nil
	}

	tail := rec.scanHeader(tokens)
	if len(tail) == 0 {
		return rec, nil
	}

	tail = rec.scanTrailing(tail)

	rec.Payload = strings.Join(tail, " ")

	if !rec.HasUser {
		return rec, nil
	}

	head := tail[0]

	switch {
	case strings.HasPrefix(head, prefixCmd):
		rec.Kind = KindCommand
		rec.Payload = strings.TrimPrefix(rec.Payload, prefixCmd)
	case strings.HasPrefix(head, prefixUndo):
		rec.parseUndo(strings.TrimPrefix(head, prefixUndo))
	case isFileVerb(head):
		rec.parseFileOp(strings.TrimSuffix(head, ":"), tail[1:])
	}

	return rec, nil
}

// scanKit records the first kit= token on the line.
func (r *Record) scanKit(tokens []string) error {
	for _, tok := range tokens {
		val, ok := strings.CutPrefix(tok, keyKit+"=")
		if !ok {
			continue
		}

		kit, err := strconv.ParseUint(val, 16, 64)
		if err != nil {
			return &ParseError{Line: r.Line, Field: keyKit, Value: val, Err: ErrInvalidKit}
		}

		r.Kit = kit
		r.RawKit = val
		r.HasKit = true

		return nil
	}

	return nil
}

// scanHeader consumes the leading key=value header tokens and returns the
// command tail.
func (r *Record) scanHeader(tokens []string) []string {
	for i, tok := range tokens {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			return tokens[i:]
		}

		switch key {
		case keyKit:
		case keyUser, keyRep, keyDur:
			r.setHeaderField(key, val)
		default:
			return tokens[i:]
		}
	}

	return nil
}

// scanTrailing pulls user=, rep= and dur= fields that follow the command
// head out of the tail.
func (r *Record) scanTrailing(tail []string) []string {
	kept := tail[:1:1]

	for _, tok := range tail[1:] {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			kept = append(kept, tok)

			continue
		}

		switch key {
		case keyUser, keyRep, keyDur:
			r.setHeaderField(key, val)
		default:
			kept = append(kept, tok)
		}
	}

	return kept
}

func (r *Record) setHeaderField(key, val string) {
	switch key {
	case keyUser:
		user, err := strconv.Atoi(val)
		if err == nil {
			r.User = user
			r.HasUser = true
		}
	case keyRep:
		rep, err := strconv.Atoi(val)
		if err == nil && rep >= 0 {
			r.Repeat = rep
		}
	case keyDur:
		r.setDuration(val)
	}
}

func (r *Record) setDuration(val string) {
	dur, err := strconv.ParseFloat(val, 64)
	if err != nil || dur < 0 {
		return
	}

	r.Duration = dur
	r.HasDuration = true
}

func (r *Record) parseUndo(delta string) {
	if delta == "" {
		return
	}

	sign := delta[0]
	if sign != '+' && sign != '-' {
		return
	}

	size := r.Repeat

	if digits := delta[1:]; digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			return
		}

		size = n
	}

	if sign == '-' {
		size = -size
	}

	r.Kind = KindUndoCountDelta
	r.UndoDelta = size
}

func (r *Record) parseFileOp(verb string, args []string) {
	op := &FileOp{Verb: verb}

	for _, tok := range args {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}

		switch key {
		case keySize:
			size, err := strconv.ParseInt(val, 10, 64)
			if err == nil && size >= 0 {
				op.Size = size
				op.HasSize = true
			}
		case keyExt:
			op.Ext = strings.ToLower(strings.TrimPrefix(val, "."))
		}
	}

	r.Kind = KindCommand
	r.Payload = verb
	r.File = op
}

func isFileVerb(tok string) bool {
	switch strings.TrimSuffix(tok, ":") {
	case VerbLoad, VerbSave, VerbExportAs:
		return true
	default:
		return false
	}
}
