package richtext

// Correlate maps the ordinal of each placeholder glyph in the shaped stream
// to the index of the tag that produced it. Every tag collapses to a single
// placeholder, so each tag's offset in the stripped string is reduced by the
// excess length (Length-1) of all tags before it.
//
// The mapping is always rebuilt from scratch: any edit can shift every
// later offset.
func Correlate(tags []InlineTag) map[int]int {
	ordinals := make(map[int]int, len(tags))
	excess := 0
	for i, t := range tags {
		ordinals[t.Offset-excess] = i
		excess += t.Length - 1
	}
	return ordinals
}
