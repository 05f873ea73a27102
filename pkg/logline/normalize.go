package logline

import "strings"

// Normalizer collapses parameterized command families so that the
// transition vocabulary stays small.
type Normalizer struct {
	families       []string
	stripArguments bool
}

// NewNormalizer creates a Normalizer. Families are matched as prefixes in
// the given order; a matching command is reduced to the family name.
func NewNormalizer(families []string, stripArguments bool) *Normalizer {
	return &Normalizer{
		families:       families,
		stripArguments: stripArguments,
	}
}

// Normalize returns the canonical name of a command payload.
func (n *Normalizer) Normalize(command string) string {
	cmd := strings.TrimSpace(command)

	if n == nil {
		return cmd
	}

	if n.stripArguments {
		if i := strings.IndexAny(cmd, " \t?{"); i >= 0 {
			cmd = cmd[:i]
		}
	}

	for _, family := range n.families {
		if family != "" && strings.HasPrefix(cmd, family) {
			return family
		}
	}

	return cmd
}
