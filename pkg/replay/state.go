package replay

import (
	"slices"

	"github.com/Sumatoshi-tech/uilogstat/pkg/alg/stats"
)

// TypingSample is one burst of typing.
type TypingSample struct {
	CharsPerSecond float64
	Chars          int
}

// UserState is the per-user, per-document replay state.
type UserState struct {
	LastCommand string
	Typing      []TypingSample
	Undo        UndoStack
	Edited      bool
}

// BestSpeed returns the fastest sample, 0 without samples.
func (u *UserState) BestSpeed() float64 {
	best := 0.0

	for _, s := range u.Typing {
		best = max(best, s.CharsPerSecond)
	}

	return best
}

// MedianSpeed returns the character-weighted median typing speed.
func (u *UserState) MedianSpeed() float64 {
	weighted := make([]stats.Weighted, len(u.Typing))

	for i, s := range u.Typing {
		weighted[i] = stats.Weighted{Value: s.CharsPerSecond, Weight: float64(s.Chars)}
	}

	return stats.WeightedMedian(weighted)
}

// TypedChars returns the number of characters over all samples.
func (u *UserState) TypedChars() int {
	total := 0

	for _, s := range u.Typing {
		total += s.Chars
	}

	return total
}

// DocumentSession is one open-to-close document lifetime. Its user map is
// dropped when the session closes; user ids are scoped to the document.
type DocumentSession struct {
	users     map[int]*UserState
	order     []int
	Kit       uint64
	StartLine int
	StartSeen bool
}

func newDocumentSession(kit uint64) *DocumentSession {
	return &DocumentSession{
		Kit:   kit,
		users: make(map[int]*UserState),
	}
}

// User returns the state of id, creating it on first sight.
func (d *DocumentSession) User(id int) *UserState {
	u, ok := d.users[id]
	if !ok {
		u = &UserState{}
		d.users[id] = u
		d.order = append(d.order, id)
	}

	return u
}

// Participants returns the number of distinct users seen.
func (d *DocumentSession) Participants() int {
	return len(d.users)
}

// UserSummary is the closed-out state of one participant.
type UserSummary struct {
	User        int
	TypedChars  int
	BestSpeed   float64
	MedianSpeed float64
	Edited      bool
}

// HasTyping reports whether any typing sample was recorded.
func (u UserSummary) HasTyping() bool {
	return u.TypedChars > 0
}

// DocumentSummary is emitted once per closed document.
type DocumentSummary struct {
	Users        []UserSummary
	Kit          uint64
	Participants int
	Editors      int
	StartSeen    bool
}

// Viewers returns the participants that never edited.
func (d DocumentSummary) Viewers() int {
	return d.Participants - d.Editors
}

func (d *DocumentSession) summarize() DocumentSummary {
	summary := DocumentSummary{
		Kit:          d.Kit,
		Participants: len(d.users),
		StartSeen:    d.StartSeen,
		Users:        make([]UserSummary, 0, len(d.users)),
	}

	for _, id := range slices.Sorted(slices.Values(d.order)) {
		u := d.users[id]

		if u.Edited {
			summary.Editors++
		}

		summary.Users = append(summary.Users, UserSummary{
			User:        id,
			Edited:      u.Edited,
			TypedChars:  u.TypedChars(),
			BestSpeed:   u.BestSpeed(),
			MedianSpeed: u.MedianSpeed(),
		})
	}

	return summary
}
