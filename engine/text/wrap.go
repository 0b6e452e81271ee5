package text

import (
	"strings"
	"unicode"

	"github.com/hubastard/quadtext/engine/colors"
)

// item is one rune or inline placeholder of the styled input.
type item struct {
	r      rune
	quad   bool
	w, h   float32 // placeholder size at the nominal font size
	size   float32 // text size at the nominal font size
	italic bool
	color  colors.Color
	adv    float32 // advance at the current layout size
}

func (it *item) space() bool { return !it.quad && unicode.IsSpace(it.r) }

func (it *item) newline() bool { return !it.quad && it.r == '\n' }

// line is a range of items laid out on one row.
type line struct {
	start, end int
	// wrapSpace is the whitespace item the line was broken at, or -1.
	wrapSpace int
	width     float32
}

// breakLines splits items into lines no wider than maxWidth, breaking at
// whitespace when possible and inside a word only when the word alone is
// wider than the line. Explicit newlines always break. With wrap off only
// newlines break.
func breakLines(items []item, maxWidth float32, wrap bool) []line {
	var lines []line
	closeLine := func(start, end, wrapSpace int) {
		lines = append(lines, line{start: start, end: end, wrapSpace: wrapSpace, width: contentWidth(items[start:end])})
	}

	start, lastSpace := 0, -1
	x := float32(0)
	for i := range items {
		it := &items[i]
		switch {
		case it.newline():
			closeLine(start, i, -1)
			start, lastSpace, x = i+1, -1, 0
			continue
		case it.space():
			lastSpace = i
			x += it.adv
			continue
		}
		if wrap && maxWidth > 0 && x > 0 && x+it.adv > maxWidth {
			if lastSpace >= start {
				closeLine(start, lastSpace, lastSpace)
				start = lastSpace + 1
				x = advanceSum(items[start:i])
			} else {
				closeLine(start, i, -1)
				start, x = i, 0
			}
			lastSpace = -1
		}
		x += it.adv
	}
	closeLine(start, len(items), -1)
	return lines
}

func advanceSum(items []item) float32 {
	var w float32
	for i := range items {
		w += items[i].adv
	}
	return w
}

// contentWidth is the advance of items without trailing whitespace.
func contentWidth(items []item) float32 {
	end := len(items)
	for end > 0 && items[end-1].space() {
		end--
	}
	return advanceSum(items[:end])
}

// WrapText breaks plain s into lines no wider than maxWidth at size, using
// the atlas advances of f. It returns the lines without trailing whitespace
// and the width of the widest one. With maxWidth <= 0 only newlines break.
func WrapText(f *Font, s string, size, maxWidth float32) ([]string, float32) {
	if f == nil || s == "" {
		return nil, 0
	}
	scale := size / f.SizePx
	runes := []rune(s)
	items := make([]item, len(runes))
	for i, r := range runes {
		items[i] = item{r: r, size: size}
		if r != '\n' {
			items[i].adv = f.advance(r) * scale
		}
	}

	var out []string
	var widest float32
	for _, ln := range breakLines(items, maxWidth, maxWidth > 0) {
		out = append(out, strings.TrimRightFunc(string(runes[ln.start:ln.end]), unicode.IsSpace))
		widest = max(widest, ln.width)
	}
	return out, widest
}
