// Package replay reconstructs per-user, per-document editing sessions from a
// demultiplexed UI log and reports what happened in them.
//
// The Replayer is a single-pass state machine. A document opens on a
// session-start record, accumulates per-user state from command and
// undo-count records, and closes on the session-end record, at which point its
// summary is handed to the Sink and its state is dropped.
package replay

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/uilogstat/pkg/logline"
)

// Sink receives everything the Replayer derives from the log.
type Sink interface {
	// DocumentClosed is called once per closed document.
	DocumentClosed(doc DocumentSummary)
	// UndoAttributed is called once per command charged by an undo.
	UndoAttributed(command string, units int)
	// Transition is called for every command, with the user's previous
	// command (empty for the user's first command in the document).
	Transition(current, previous string)
	// FileOp is called for every load/save/exportas record.
	FileOp(sample FileOpSample)
}

// FileOpSample is one load/save/exportas observation.
type FileOpSample struct {
	Verb        string
	Ext         string
	Size        int64
	Duration    float64
	HasSize     bool
	HasDuration bool
}

// Default option values.
const (
	DefaultTypingCommand  = "textinput"
	DefaultUnknownCommand = "unknown"
)

// DefaultEditCommands are the command prefixes that mark a user as an editor.
var DefaultEditCommands = []string{"textinput", "removetextcontext"}

// Options configures a Replayer.
type Options struct {
	Normalizer     *logline.Normalizer
	Logger         *slog.Logger
	TypingCommand  string
	UnknownCommand string
	EditCommands   []string
}

// Stats counts what the Replayer saw.
type Stats struct {
	Records          int
	Commands         int
	UndoDeltas       int
	Other            int
	Documents        int
	MalformedClosed  int
	Unclosed         int
	UndoUnits        int
	UnknownUndoUnits int
}

// Replayer consumes records in demultiplexed order.
type Replayer struct {
	sink   Sink
	logger *slog.Logger
	open   map[uint64]*DocumentSession
	opts   Options
	stats  Stats
}

// New creates a Replayer that reports to sink.
func New(sink Sink, opts Options) *Replayer {
	if opts.TypingCommand == "" {
		opts.TypingCommand = DefaultTypingCommand
	}

	if opts.UnknownCommand == "" {
		opts.UnknownCommand = DefaultUnknownCommand
	}

	if opts.EditCommands == nil {
		opts.EditCommands = DefaultEditCommands
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Replayer{
		sink:   sink,
		logger: logger,
		open:   make(map[uint64]*DocumentSession),
		opts:   opts,
	}
}

// Feed applies one record.
func (r *Replayer) Feed(ctx context.Context, rec logline.Record) {
	r.stats.Records++

	if !rec.HasKit {
		r.stats.Other++

		return
	}

	switch rec.Kind {
	case logline.KindSessionStart:
		doc := r.document(rec.Kit)
		if !doc.StartSeen {
			doc.StartSeen = true
			doc.StartLine = rec.Line
		}
	case logline.KindSessionEnd:
		r.closeDocument(ctx, rec)
	case logline.KindCommand:
		r.stats.Commands++
		r.command(rec)
	case logline.KindUndoCountDelta:
		r.stats.UndoDeltas++
		r.undo(ctx, rec)
	case logline.KindOther:
		r.stats.Other++
	}
}

// Close finishes the replay. Documents that never saw a session-end marker
// are counted as unclosed and not reported.
func (r *Replayer) Close(ctx context.Context) Stats {
	for kit, doc := range r.open {
		r.logger.DebugContext(ctx, "document never closed",
			slog.Uint64("kit", kit), slog.Int("participants", doc.Participants()))
	}

	r.stats.Unclosed += len(r.open)
	clear(r.open)

	return r.stats
}

// Stats returns the counters so far.
func (r *Replayer) Stats() Stats {
	return r.stats
}

func (r *Replayer) document(kit uint64) *DocumentSession {
	doc, ok := r.open[kit]
	if !ok {
		doc = newDocumentSession(kit)
		r.open[kit] = doc
	}

	return doc
}

func (r *Replayer) closeDocument(ctx context.Context, rec logline.Record) {
	doc := r.document(rec.Kit)
	delete(r.open, rec.Kit)

	// An end marker with neither a start marker nor any participant is an
	// artefact of a truncated log, not a document with zero users.
	if !doc.StartSeen && doc.Participants() == 0 {
		r.stats.MalformedClosed++
		r.logger.DebugContext(ctx, "skipping end marker without document",
			slog.Int("line", rec.Line), slog.String("kit", rec.RawKit))

		return
	}

	r.stats.Documents++
	r.sink.DocumentClosed(doc.summarize())
}

func (r *Replayer) command(rec logline.Record) {
	user := r.document(rec.Kit).User(rec.User)

	name := r.opts.Normalizer.Normalize(rec.Payload)

	r.sink.Transition(name, user.LastCommand)
	user.LastCommand = name

	if r.isEdit(name) {
		user.Edited = true
	}

	// One character per burst is excluded from the sample.
	if r.isTyping(name) && rec.Repeat > 1 && rec.HasDuration && rec.Duration > 0 {
		chars := rec.Repeat - 1
		user.Typing = append(user.Typing, TypingSample{
			CharsPerSecond: float64(chars) / rec.Duration,
			Chars:          chars,
		})
	}

	if rec.IsFileOp() {
		r.sink.FileOp(FileOpSample{
			Verb:        rec.File.Verb,
			Ext:         rec.File.Ext,
			Size:        rec.File.Size,
			HasSize:     rec.File.HasSize,
			Duration:    rec.Duration,
			HasDuration: rec.HasDuration,
		})
	}
}

func (r *Replayer) undo(ctx context.Context, rec logline.Record) {
	user := r.document(rec.Kit).User(rec.User)

	// A push before the user's first command is charged to the empty name.
	if rec.UndoDelta > 0 {
		user.Undo.Push(rec.UndoDelta, user.LastCommand)

		return
	}

	for _, a := range user.Undo.Pop(-rec.UndoDelta, r.opts.UnknownCommand) {
		r.stats.UndoUnits += a.Units

		if a.Command == r.opts.UnknownCommand {
			r.stats.UnknownUndoUnits += a.Units
			r.logger.DebugContext(ctx, "undo without matching frame",
				slog.Int("line", rec.Line), slog.Int("units", a.Units))
		}

		r.sink.UndoAttributed(a.Command, a.Units)
	}
}

// isTyping compares only the command name, so unstripped arguments do not
// hide typing bursts.
func (r *Replayer) isTyping(name string) bool {
	if i := strings.IndexAny(name, " \t?{"); i >= 0 {
		name = name[:i]
	}

	return name == r.opts.TypingCommand
}

func (r *Replayer) isEdit(name string) bool {
	for _, prefix := range r.opts.EditCommands {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

// IssuedCounts is the second, read-only pass over the same reordered records:
// it sums the repeat counts of every command by normalized name.
func IssuedCounts(records []logline.Record, normalizer *logline.Normalizer) map[string]int {
	counts := make(map[string]int)

	for _, rec := range records {
		if rec.Kind != logline.KindCommand {
			continue
		}

		counts[normalizer.Normalize(rec.Payload)] += rec.Repeat
	}

	return counts
}
