package plot

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var colors = map[byte]color.Color{
	'k': color.Black,
	'r': color.RGBA{R: 0xdd, A: 0xff},
	'g': color.RGBA{G: 0x99, A: 0xff},
	'b': color.RGBA{B: 0xdd, A: 0xff},
	'c': color.RGBA{G: 0xbb, B: 0xbb, A: 0xff},
	'm': color.RGBA{R: 0xbb, B: 0xbb, A: 0xff},
	'y': color.RGBA{R: 0xcc, G: 0xbb, A: 0xff},
}

// glyphStyle decodes marker shorthand: an optional color letter followed by
// one of "+", "x", "s", "o", "^". Unknown markers become circles.
func glyphStyle(style string) draw.GlyphStyle {
	gs := draw.GlyphStyle{
		Color:  color.Black,
		Radius: vg.Points(3),
		Shape:  draw.CircleGlyph{},
	}
	if style == "" {
		return gs
	}

	if c, ok := colors[style[0]]; ok && len(style) > 1 {
		gs.Color = c
		style = style[1:]
	}

	switch style {
	case "+":
		gs.Shape = draw.PlusGlyph{}
	case "x":
		gs.Shape = draw.CrossGlyph{}
	case "s":
		gs.Shape = draw.BoxGlyph{}
	case "^":
		gs.Shape = draw.TriangleGlyph{}
	}
	return gs
}
