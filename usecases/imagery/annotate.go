package imagery

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/minealert/minealert-backend/models"
)

const annotationThickness = 2

var (
	landmineColor = color.NRGBA{R: 255, A: 255}
	debrisColor   = color.NRGBA{R: 255, G: 165, A: 255}
)

// Annotate returns a copy of the image with a rectangle around every object: red for landmines,
// orange for anything else.
func Annotate(img image.Image, objects []models.ImageObject) *image.NRGBA {
	out := imaging.Clone(img)
	bounds := out.Bounds()

	for _, o := range objects {
		c := debrisColor
		if o.Classification == models.Landmine {
			c = landmineColor
		}
		x0, y0 := o.Box.X, o.Box.Y
		x1, y1 := o.Box.X+o.Box.Width-1, o.Box.Y+o.Box.Height-1
		for t := 0; t < annotationThickness; t++ {
			for x := x0 - t; x <= x1+t; x++ {
				setIn(out, bounds, x, y0-t, c)
				setIn(out, bounds, x, y1+t, c)
			}
			for y := y0 - t; y <= y1+t; y++ {
				setIn(out, bounds, x0-t, y, c)
				setIn(out, bounds, x1+t, y, c)
			}
		}
	}
	return out
}

func setIn(img *image.NRGBA, bounds image.Rectangle, x, y int, c color.NRGBA) {
	if (image.Point{x, y}).In(bounds) {
		img.SetNRGBA(x, y, c)
	}
}
