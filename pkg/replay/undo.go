package replay

// UndoFrame records Remaining not-yet-undone repetitions of Command.
type UndoFrame struct {
	Command   string
	Remaining int
}

// Attribution is a number of undone units charged to a command.
type Attribution struct {
	Command string
	Units   int
}

// UndoStack is a run-length encoded LIFO of undoable commands.
// It never holds a frame with Remaining <= 0.
type UndoStack struct {
	frames []UndoFrame
}

// Push adds count repetitions of command. Non-positive counts are ignored.
func (s *UndoStack) Push(count int, command string) {
	if count <= 0 {
		return
	}

	s.frames = append(s.frames, UndoFrame{Command: command, Remaining: count})
}

// Pop removes count units from the top of the stack and reports which
// commands they belonged to, merged by command in order of first removal.
// Units that cannot be matched against any frame are charged to unknown.
func (s *UndoStack) Pop(count int, unknown string) []Attribution {
	if count <= 0 {
		return nil
	}

	var out []Attribution

	charge := func(command string, units int) {
		for i := range out {
			if out[i].Command == command {
				out[i].Units += units

				return
			}
		}

		out = append(out, Attribution{Command: command, Units: units})
	}

	toConsume := count

	for toConsume > 0 && len(s.frames) > 0 {
		top := &s.frames[len(s.frames)-1]

		if top.Remaining > toConsume {
			top.Remaining -= toConsume
			charge(top.Command, toConsume)

			return out
		}

		toConsume -= top.Remaining
		charge(top.Command, top.Remaining)
		s.frames = s.frames[:len(s.frames)-1]
	}

	if toConsume > 0 {
		charge(unknown, toConsume)
	}

	return out
}

// Len returns the number of frames.
func (s *UndoStack) Len() int {
	return len(s.frames)
}

// Total returns the sum of Remaining over all frames.
func (s *UndoStack) Total() int {
	total := 0

	for _, f := range s.frames {
		total += f.Remaining
	}

	return total
}

// Frames returns a copy of the frames, bottom first.
func (s *UndoStack) Frames() []UndoFrame {
	out := make([]UndoFrame, len(s.frames))
	copy(out, s.frames)

	return out
}
