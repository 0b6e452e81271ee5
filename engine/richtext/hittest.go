package richtext

// HitTest returns the first link, in link then box order, with a box
// containing p. p must already be in layout-local space.
func HitTest(links []Link, p Vec2) (Link, bool) {
	for _, l := range links {
		for _, b := range l.Boxes {
			if b.Contains(p) {
				return l, true
			}
		}
	}
	return Link{}, false
}
