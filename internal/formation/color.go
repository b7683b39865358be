package formation

import "image/color"

// palette colours formations by index, wrapping after six.
var palette = [...]color.RGBA{
	{R: 0xff, A: 0xff},
	{R: 0xff, G: 0xff, A: 0xff},
	{G: 0xff, A: 0xff},
	{G: 0xff, B: 0xff, A: 0xff},
	{B: 0xff, A: 0xff},
	{R: 0xff, B: 0xff, A: 0xff},
}

// ColorByIndex returns the palette colour for a formation index.
func ColorByIndex(index int) color.RGBA {
	if index < 0 {
		index = -index
	}
	return palette[index%len(palette)]
}
