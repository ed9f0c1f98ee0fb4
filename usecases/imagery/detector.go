// Package imagery finds small round objects in aerial pictures, the way a landmine shows up
// on the ground, and draws the findings on a copy of the picture.
package imagery

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/minealert/minealert-backend/models"
)

const (
	MIN_OBJECT_AREA       = 15.0
	MAX_OBJECT_AREA       = 120.0
	CIRCULARITY_THRESHOLD = 0.65
	MAX_CONFIDENCE        = 95.0
	LANDMINE_CONFIDENCE   = 80.0

	// sigma of a 5x5 gaussian kernel
	denoiseSigma = 1.1
	// sigma of the 11x11 gaussian neighbourhood of the adaptive threshold
	thresholdSigma  = 2.0
	thresholdOffset = 2
)

// GeoReference turns the pixel position of an object into coordinates, one pixel standing for a
// thousandth of a degree from the base position.
func GeoReference(box models.BoundingBox, baseLatitude, baseLongitude float64) (float64, float64) {
	return baseLatitude + float64(box.Y)/1000, baseLongitude + float64(box.X)/1000
}

// Detect returns the round objects of the image, in raster order of their top left pixel.
func Detect(img image.Image) []models.ImageObject {
	mask := threshold(img)

	objects := make([]models.ImageObject, 0)
	for _, c := range components(mask) {
		area, perimeter := c.contourMetrics(mask)
		if area < MIN_OBJECT_AREA || area > MAX_OBJECT_AREA || perimeter == 0 {
			continue
		}
		circularity := 4 * math.Pi * area / (perimeter * perimeter)
		if circularity < CIRCULARITY_THRESHOLD {
			continue
		}

		confidence := math.Min(MAX_CONFIDENCE, (circularity*0.7+area/MAX_OBJECT_AREA*0.3)*100)
		classification := models.MetalDebris
		if confidence > LANDMINE_CONFIDENCE {
			classification = models.Landmine
		}
		objects = append(objects, models.ImageObject{
			Box:            c.box,
			Confidence:     math.Round(confidence*100) / 100,
			Classification: classification,
			Label:          string(classification),
		})
	}
	return objects
}

// threshold marks the pixels darker than their gaussian-weighted neighbourhood.
func threshold(img image.Image) *mask {
	gray := imaging.Blur(imaging.Grayscale(img), denoiseSigma)
	local := imaging.Blur(gray, thresholdSigma)

	bounds := gray.Bounds()
	m := newMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			value := int(gray.Pix[y*gray.Stride+x*4])
			mean := int(local.Pix[y*local.Stride+x*4])
			if value <= mean-thresholdOffset {
				m.set(x, y)
			}
		}
	}
	return m
}
