package richtext

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a markup token.
type TokenKind uint8

const (
	TokenText TokenKind = iota
	TokenBold
	TokenBoldEnd
	TokenItalic
	TokenItalicEnd
	TokenSize
	TokenSizeEnd
	TokenColor
	TokenColorEnd
	TokenMaterial
	TokenMaterialEnd
	TokenLink
	TokenLinkEnd
	TokenQuad
)

// Token is one literal run or recognized tag of the markup.
type Token struct {
	Kind TokenKind
	// Text is the literal content for TokenText and the raw tag otherwise.
	Text string
	// Value is the tag argument: size, color, material or link target.
	Value string
	// Pos is the byte offset of the token in the markup.
	Pos int
}

var closingTags = [...]struct {
	lit  string
	kind TokenKind
}{
	{"<b>", TokenBold},
	{"</b>", TokenBoldEnd},
	{"<i>", TokenItalic},
	{"</i>", TokenItalicEnd},
	{"</size>", TokenSizeEnd},
	{"</color>", TokenColorEnd},
	{"</material>", TokenMaterialEnd},
	{"</a>", TokenLinkEnd},
}

var valueTags = [...]struct {
	prefix string
	kind   TokenKind
}{
	{"<size=", TokenSize},
	{"<color=", TokenColor},
	{"<material=", TokenMaterial},
}

const (
	quadPrefix = "<quad"
	quadSuffix = "/>"
	linkPrefix = "<a href="
)

// Tokenize splits markup into literal runs and recognized tags in a single
// pass. Anything that looks like a tag but is not one of the fixed set stays
// literal text.
func Tokenize(markup string) []Token {
	var toks []Token
	textStart := 0
	flush := func(end int) {
		if end > textStart {
			toks = append(toks, Token{Kind: TokenText, Text: markup[textStart:end], Pos: textStart})
		}
	}
	for i := 0; i < len(markup); {
		if markup[i] != '<' {
			i++
			continue
		}
		tok, n, ok := matchTag(markup, i)
		if !ok {
			i++
			continue
		}
		flush(i)
		toks = append(toks, tok)
		i += n
		textStart = i
	}
	flush(len(markup))
	return toks
}

// matchTag recognizes a tag starting at s[i] == '<' and returns its byte length.
func matchTag(s string, i int) (Token, int, bool) {
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, quadPrefix):
		end := strings.Index(rest, quadSuffix)
		if end < 0 {
			return Token{}, 0, false
		}
		n := end + len(quadSuffix)
		return Token{Kind: TokenQuad, Text: rest[:n], Pos: i}, n, true
	case strings.HasPrefix(rest, linkPrefix):
		j := len(linkPrefix)
		for j < len(rest) && rest[j] != '>' && !isSpaceByte(rest[j]) {
			j++
		}
		if j == len(linkPrefix) || j >= len(rest) || rest[j] != '>' {
			return Token{}, 0, false
		}
		return Token{Kind: TokenLink, Text: rest[:j+1], Value: rest[len(linkPrefix):j], Pos: i}, j + 1, true
	}
	for _, t := range closingTags {
		if strings.HasPrefix(rest, t.lit) {
			return Token{Kind: t.kind, Text: t.lit, Pos: i}, len(t.lit), true
		}
	}
	for _, t := range valueTags {
		if !strings.HasPrefix(rest, t.prefix) {
			continue
		}
		end := strings.IndexByte(rest[len(t.prefix):], '>')
		if end < 0 {
			return Token{}, 0, false
		}
		n := len(t.prefix) + end + 1
		return Token{Kind: t.kind, Text: rest[:n], Value: rest[len(t.prefix) : n-1], Pos: i}, n, true
	}
	return Token{}, 0, false
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// InlineTag is one parsed inline-object occurrence.
type InlineTag struct {
	Size    float32
	Width   float32
	Height  float32
	OffsetX float32
	OffsetY float32
	Keys    []string

	// Offset and Length locate the tag, in runes, inside Markup.Stripped.
	Offset int
	Length int
	// Pos is the byte offset of the tag in the source markup.
	Pos int
}

func (t InlineTag) RenderWidth() float32  { return t.Size * (t.Width / t.Height) }
func (t InlineTag) RenderHeight() float32 { return t.Size }

// Animated reports whether the tag names a frame sequence.
func (t InlineTag) Animated() bool { return len(t.Keys) > 1 }

// ParseInlineTag reads the attributes of a raw <quad .../> tag. Missing or
// malformed values fall back to their defaults: size is fontSize, width and
// height are 1, offsets are 0.
func ParseInlineTag(raw string, fontSize float32) InlineTag {
	tag := InlineTag{Size: fontSize, Width: 1, Height: 1}
	body := strings.TrimPrefix(raw, quadPrefix)
	body = strings.TrimSuffix(body, quadSuffix)
	for _, field := range strings.Fields(body) {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "displaykey":
			for _, k := range strings.Split(val, ",") {
				if k = strings.TrimSpace(k); k != "" {
					tag.Keys = append(tag.Keys, k)
				}
			}
		case "size":
			if v, pct, ok := parseNumber(val); ok && v > 0 {
				if pct {
					v = fontSize * v / 100
				}
				tag.Size = v
			}
		case "width":
			if v, _, ok := parseNumber(val); ok && v > 0 {
				tag.Width = v
			}
		case "height":
			if v, _, ok := parseNumber(val); ok && v > 0 {
				tag.Height = v
			}
		case "offsetx":
			if v, _, ok := parseNumber(val); ok {
				tag.OffsetX = v
			}
		case "offsety":
			if v, _, ok := parseNumber(val); ok {
				tag.OffsetY = v
			}
		}
	}
	return tag
}

// parseNumber accepts an optional trailing '%'.
func parseNumber(s string) (v float32, pct bool, ok bool) {
	if strings.HasSuffix(s, "%") {
		s, pct = s[:len(s)-1], true
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false, false
	}
	return float32(f), pct, true
}

// Markup is the result of scanning a markup string.
type Markup struct {
	Source string
	Tokens []Token
	Tags   []InlineTag
	Links  []Link

	// Plain has every recognized tag removed; whitespace is kept.
	Plain string
	// Stripped has formatting tags and whitespace removed but keeps inline
	// tags (without their whitespace); tag offsets index into it.
	Stripped string
	// Visible holds one rune per emitted glyph quad: no tags, no inline
	// objects, no whitespace. Link offsets index into it.
	Visible string
}

// Scan tokenizes markup and extracts inline-object tags and hyperlink
// spans. fontSize is the default inline-object size. Scanning is pure:
// identical input yields identical output.
func Scan(markup string, fontSize float32) Markup {
	m := Markup{Source: markup, Tokens: Tokenize(markup)}
	var plain, stripped, visible strings.Builder
	strippedLen, visibleLen := 0, 0

	var open *Link
	for _, tok := range m.Tokens {
		switch tok.Kind {
		case TokenText:
			plain.WriteString(tok.Text)
			for _, r := range tok.Text {
				if unicode.IsSpace(r) {
					continue
				}
				stripped.WriteRune(r)
				visible.WriteRune(r)
				strippedLen++
				visibleLen++
			}
		case TokenQuad:
			tag := ParseInlineTag(tok.Text, fontSize)
			compact := removeSpace(tok.Text)
			tag.Offset = strippedLen
			tag.Length = utf8.RuneCountInString(compact)
			tag.Pos = tok.Pos
			stripped.WriteString(compact)
			strippedLen += tag.Length
			m.Tags = append(m.Tags, tag)
		case TokenLink:
			// An unterminated link is dropped when the next one opens.
			open = &Link{Start: visibleLen, URL: tok.Value}
		case TokenLinkEnd:
			if open != nil {
				open.End = visibleLen
				m.Links = append(m.Links, *open)
				open = nil
			}
		}
	}
	m.Plain = plain.String()
	m.Stripped = stripped.String()
	m.Visible = visible.String()
	return m
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
