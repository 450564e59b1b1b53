/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// HistoryTracker remembers which words have already been shown so that every
// word in the bank comes up once before any repeats.
type HistoryTracker struct {
	used []Word
}

func NewHistoryTracker(used []Word) *HistoryTracker {
	h := &HistoryTracker{}
	for _, w := range used {
		h.MarkUsed(w)
	}

	return h
}

// IsUsed matches by word id.
func (h *HistoryTracker) IsUsed(w Word) bool {
	for _, u := range h.used {
		if u.ID == w.ID {
			return true
		}
	}

	return false
}

func (h *HistoryTracker) MarkUsed(w Word) {
	if h.IsUsed(w) {
		return
	}

	h.used = append(h.used, w)
}

func (h *HistoryTracker) Reset() {
	h.used = nil
}

// Used returns the history in insertion order.
func (h *HistoryTracker) Used() []Word {
	out := make([]Word, len(h.used))
	copy(out, h.used)

	return out
}

// Select draws a word uniformly from the unused part of bank, resetting the
// history first when every word has been used. The chosen word is marked
// used before it is returned. bank must not be empty.
func (h *HistoryTracker) Select(bank WordBank, rng Source) Word {
	candidates := h.unused(bank)
	if len(candidates) == 0 {
		h.Reset()
		candidates = bank
	}

	w := candidates[rng.IntN(len(candidates))]
	h.MarkUsed(w)

	return w
}

func (h *HistoryTracker) unused(bank WordBank) []Word {
	out := make([]Word, 0, len(bank))
	for _, w := range bank {
		if !h.IsUsed(w) {
			out = append(out, w)
		}
	}

	return out
}
