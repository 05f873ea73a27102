// Package reorder regroups an interleaved UI log into contiguous
// per-session-instance runs.
//
// Many editing processes append to the same log, so records of unrelated
// documents arrive interleaved. Undo accounting is only correct against a
// stream where each session's records are contiguous and in their original
// relative order; Lines produces exactly that stream.
package reorder

import (
	"fmt"

	"github.com/Sumatoshi-tech/uilogstat/pkg/logline"
)

// Key identifies a session instance: a kit plus the number of session-end
// markers already seen for that kit.
type Key struct {
	Kit      uint64
	Instance int
}

// Options tunes the demultiplexer.
type Options struct {
	// SplitReusedKits starts a new instance after every session-end marker
	// of a kit, so a reused process slot does not merge unrelated documents.
	SplitReusedKits bool
}

// Result is the reordered log plus bookkeeping for the caller.
type Result struct {
	Lines     []string
	Keys      []Key
	Dropped   int
	Instances int
}

type span struct {
	first int
	last  int
}

// Lines demultiplexes lines. Lines without a kit= token are dropped. A
// malformed kit= value aborts with a *logline.ParseError.
func Lines(lines []string, opts Options) (*Result, error) {
	keyed := make([]Key, 0, len(lines))
	kept := make([]string, 0, len(lines))
	spans := make(map[Key]*span)
	order := make([]Key, 0)
	ordinals := make(map[uint64]int)
	dropped := 0

	for i, line := range lines {
		rec, err := logline.Parse(line, i+1)
		if err != nil {
			return nil, fmt.Errorf("reorder: %w", err)
		}

		if !rec.HasKit {
			dropped++

			continue
		}

		key := Key{Kit: rec.Kit}
		if opts.SplitReusedKits {
			key.Instance = ordinals[rec.Kit]

			if rec.Kind == logline.KindSessionEnd {
				ordinals[rec.Kit]++
			}
		}

		idx := len(kept)
		kept = append(kept, line)
		keyed = append(keyed, key)

		sp, ok := spans[key]
		if !ok {
			spans[key] = &span{first: idx, last: idx}
			order = append(order, key)

			continue
		}

		sp.last = idx
	}

	out := make([]string, 0, len(kept))

	for _, key := range order {
		sp := spans[key]

		for i := sp.first; i <= sp.last; i++ {
			if keyed[i] == key {
				out = append(out, kept[i])
			}
		}
	}

	return &Result{
		Lines:     out,
		Keys:      order,
		Dropped:   dropped,
		Instances: len(order),
	}, nil
}
