package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// missingImageColor is returned when an image texture has no pixels
var missingImageColor = core.NewVec3(0, 1, 1)

// ImageData holds decoded linear colors for an image texture
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, top row first: Pixels[y*Width + x]
}

// NewImageData creates image data from row-major pixels
func NewImageData(width, height int, pixels []core.Vec3) *ImageData {
	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Sample returns the bilinearly filtered color at uv.
// UV is clamped to [0,1]; v=1 is the top row of the image.
func (img *ImageData) Sample(uv core.Vec2) core.Vec3 {
	if img == nil || img.Width <= 0 || img.Height <= 0 || len(img.Pixels) < img.Width*img.Height {
		return missingImageColor
	}

	u := math.Max(0, math.Min(1, uv.X))
	v := 1.0 - math.Max(0, math.Min(1, uv.Y))

	// Continuous pixel coordinates with texel centers at integer positions
	fx := u * float64(img.Width-1)
	fy := v * float64(img.Height-1)

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := min(x0+1, img.Width-1)
	y1 := min(y0+1, img.Height-1)
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	top := img.at(x0, y0).Lerp(img.at(x1, y0), tx)
	bottom := img.at(x0, y1).Lerp(img.at(x1, y1), tx)
	return top.Lerp(bottom, ty)
}

func (img *ImageData) at(x, y int) core.Vec3 {
	return img.Pixels[y*img.Width+x]
}
