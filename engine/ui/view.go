package ui

import (
	"github.com/hubastard/quadtext/engine/colors"
)

type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

type LayoutDirection int

const (
	LayoutHorizontal LayoutDirection = iota
	LayoutVertical
)

type UIView struct {
	Common[*UIView]
	gap        float32
	mainAlign  Align
	crossAlign Align
	flow       LayoutDirection
}

func View(children ...UIElement) *UIView {
	v := &UIView{
		gap:        10,
		mainAlign:  AlignStart,
		crossAlign: AlignStart,
	}
	v.Common = NewCommon(v)
	return v.Children(children...)
}

func (l *UIView) BgColor(color colors.Color) *UIView              { l.base.color = color; return l }
func (l *UIView) FlowDirection(direction LayoutDirection) *UIView { l.flow = direction; return l }
func (l *UIView) Gap(g float32) *UIView                           { l.gap = g; return l }
func (l *UIView) AlignMain(a Align) *UIView                       { l.mainAlign = a; return l }
func (l *UIView) AlignCross(a Align) *UIView                      { l.crossAlign = a; return l }

// axes returns the index of the main and the cross axis.
func (d LayoutDirection) axes() (main, cross int) {
	if d == LayoutVertical {
		return 1, 0
	}
	return 0, 1
}

// Layout measures every child against the inner size, grows expanding
// children along the main axis and places the children in flow order.
func (l *UIView) Layout(ctx *Context, constraints Constraints) LayoutResult {
	main, cross := l.flow.axes()
	pad := l.base.Padding()
	inset := func(axis int) float32 { return pad[axis] + pad[axis+2] }

	var innerMin, innerMax [2]float32
	for a := range innerMax {
		innerMax[a] = maxf(0, resolveConstraint(constraints.Max[a])-inset(a))
		innerMin[a] = maxf(0, constraints.Min[a]-inset(a))
	}

	kids := l.base.children
	sizes := make([][2]float32, len(kids))
	var used, maxCross float32
	expanding := 0
	for i, c := range kids {
		sizes[i] = c.Layout(ctx, Constraints{Max: innerMax}).Size
		used += sizes[i][main]
		maxCross = maxf(maxCross, sizes[i][cross])
		if c.Node().mode(main) == SizeModeExpand {
			expanding++
		}
	}
	if len(kids) > 1 {
		used += l.gap * float32(len(kids)-1)
	}

	var outer [2]float32
	outer[main] = l.base.resolveAxis(l.base.mode(main), l.base.fixed(main), used+inset(main), constraints.Min[main], constraints.Max[main])
	outer[cross] = l.base.resolveAxis(l.base.mode(cross), l.base.fixed(cross), maxCross+inset(cross), constraints.Min[cross], constraints.Max[cross])
	l.base.SetSize(outer[0], outer[1])
	innerMain := maxf(maxf(0, outer[main]-inset(main)), innerMin[main])
	innerCross := maxf(maxf(0, outer[cross]-inset(cross)), innerMin[cross])

	free := maxf(0, innerMain-used)
	if expanding > 0 {
		share := free / float32(expanding)
		for i, c := range kids {
			if c.Node().mode(main) == SizeModeExpand {
				sizes[i][main] += share
			}
		}
		free = 0
	}

	var origin [2]float32
	origin[0], origin[1] = l.base.innerPosition()
	cursor := alignOffset(l.mainAlign, free)
	for i, c := range kids {
		size := sizes[i]
		if l.crossAlign == AlignStretch || c.Node().mode(cross) == SizeModeExpand {
			size[cross] = innerCross
		}
		size[cross] = clamp(size[cross], 0, innerCross)

		var pos [2]float32
		pos[main] = origin[main] + cursor
		pos[cross] = origin[cross] + alignOffset(l.crossAlign, innerCross-size[cross])
		moveTo(c.Node(), pos[0], pos[1])
		c.Node().SetSize(size[0], size[1])
		cursor += size[main] + l.gap
	}

	return LayoutResult{Size: l.base.size}
}

// alignOffset is where content starts inside free leftover space.
func alignOffset(a Align, free float32) float32 {
	switch a {
	case AlignCenter:
		return free / 2
	case AlignEnd:
		return free
	}
	return 0
}

// moveTo places b at (x, y). Its subtree was laid out relative to the old
// position and moves along.
func moveTo(b *Base, x, y float32) {
	dx, dy := x-b.position[0], y-b.position[1]
	if dx == 0 && dy == 0 {
		return
	}
	var shift func(*Base)
	shift = func(n *Base) {
		n.position[0] += dx
		n.position[1] += dy
		for _, c := range n.children {
			shift(c.Node())
		}
	}
	shift(b)
}

func (l *UIView) Draw(ctx *Context) {
	if l.base.parent == nil {
		layoutRoot(ctx, l)
	}

	if l.base.color[3] > 0 {
		halfW := l.base.size[0] / 2
		halfH := l.base.size[1] / 2
		ctx.Renderer.DrawQuad(l.base.position[0]+halfW, l.base.position[1]+halfH, l.base.size[0], l.base.size[1], l.base.color, 0)
	}

	for _, c := range l.base.children {
		c.Draw(ctx)
	}
}

// layoutRoot places a parentless element at the viewport origin and lays it
// out within the viewport.
func layoutRoot(ctx *Context, e UIElement) {
	e.Node().SetPos(ctx.Viewport[0], ctx.Viewport[1])
	e.Layout(ctx, Constraints{
		Min: [2]float32{0, 0},
		Max: [2]float32{ctx.Viewport[2], ctx.Viewport[3]},
	})
}
