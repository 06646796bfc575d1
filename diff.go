package vcedit

// diffText finds the single splice turning oldText into newText: the span
// between their common prefix and common suffix. Offsets are in code
// points. Equal inputs give empty before and after.
func diffText(oldText, newText string) (offset int, before, after string) {
	o := []rune(oldText)
	n := []rune(newText)

	prefix := 0
	for prefix < len(o) && prefix < len(n) && o[prefix] == n[prefix] {
		prefix++
	}

	// The suffix must not eat into the prefix on either side.
	suffix := 0
	for suffix < len(o)-prefix && suffix < len(n)-prefix &&
		o[len(o)-1-suffix] == n[len(n)-1-suffix] {
		suffix++
	}

	return prefix, string(o[prefix : len(o)-suffix]), string(n[prefix : len(n)-suffix])
}
