package richtext

// Link is a hyperlink span of the markup.
type Link struct {
	// Start and End delimit the link text in visible characters
	// (Markup.Visible), End exclusive.
	Start, End int
	URL        string
	// Boxes holds one rectangle per visual line the link covers. It is
	// rebuilt on every layout pass.
	Boxes []Rect
}

// TrackLinks recomputes the boxes of every link from the finalized vertex
// buffer. A quad begins a new line when it starts left of the current box,
// lies entirely left of the previous quad, or lies entirely below the box.
// Links that start past the end of the buffer get no boxes.
func TrackLinks(links []Link, verts []Vertex) {
	quads := len(verts) / 4
	for i := range links {
		l := &links[i]
		l.Boxes = l.Boxes[:0]
		end := min(l.End, quads)
		if end <= l.Start || l.Start < 0 {
			continue
		}
		b := quadBounds(verts[l.Start*4 : l.Start*4+4])
		prev := b
		for q := l.Start + 1; q < end; q++ {
			qb := quadBounds(verts[q*4 : q*4+4])
			if qb.min.X < b.min.X || qb.max.X <= prev.min.X || qb.max.Y <= b.min.Y {
				l.Boxes = append(l.Boxes, b.rect())
				b, prev = qb, qb
				continue
			}
			prev = qb
			b.encapsulate(qb.min)
			b.encapsulate(qb.max)
		}
		l.Boxes = append(l.Boxes, b.rect())
	}
}

func cloneLinks(links []Link) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l
		out[i].Boxes = append([]Rect(nil), l.Boxes...)
	}
	return out
}
