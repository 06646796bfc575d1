package vcedit

// mergeUpdateText folds next into prev when applying the merged prev alone
// gives the same text as applying prev then next. Both must be text
// updates. It reports whether the fold happened; prev is only modified
// when it did.
//
// prev introduced [prevStart, prevEnd) and next consumes
// [nextStart, nextEnd), both in the coordinates after prev. The spans
// must overlap or touch.
func mergeUpdateText(prev *Operation, next Operation) bool {
	if prev.Type != OpUpdateText || next.Type != OpUpdateText || prev.Node != next.Node {
		return false
	}

	prevBefore := []rune(prev.Before)
	prevAfter := []rune(prev.After)
	nextBefore := []rune(next.Before)

	prevStart := prev.Offset
	prevEnd := prev.Offset + len(prevAfter)
	nextStart := next.Offset
	nextEnd := next.Offset + len(nextBefore)

	if prevEnd < nextStart || nextEnd < prevStart {
		return false
	}

	before := string(prevBefore)
	after := next.After
	if nextStart < prevStart {
		// next reaches left of prev: the extra text was untouched by prev.
		before = string(nextBefore[:prevStart-nextStart]) + before
	} else {
		// prev's output left of next survives.
		after = string(prevAfter[:nextStart-prevStart]) + after
	}
	if nextEnd > prevEnd {
		before += string(nextBefore[len(nextBefore)-(nextEnd-prevEnd):])
	} else {
		after += string(prevAfter[len(prevAfter)-(prevEnd-nextEnd):])
	}

	prev.Offset = min(prevStart, nextStart)
	prev.Before = before
	prev.After = after
	return true
}

// compact folds each text update into the last kept operation when
// possible, in one forward pass.
func compact(ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if len(out) > 0 && mergeUpdateText(&out[len(out)-1], op) {
			continue
		}
		out = append(out, op)
	}
	return out
}
