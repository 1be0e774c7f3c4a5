// Package raster assembles HTML contract templates into a paginated PDF by rendering
// each template to one tall image and slicing it into A4 pages.
package raster

// Output page geometry in millimetres and the render surface width in CSS pixels.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	RenderWidth  = 794
	// CaptureScale is the device pixel ratio of the captured raster.
	CaptureScale = 2
)

// Band is a horizontal slice of a raster in source pixels.
type Band struct {
	Y int
	H int
}

// BandHeight returns the source pixel height that fills one output page for a raster
// of the given width.
func BandHeight(width int) int {
	if width <= 0 {
		return 0
	}
	return max(int(float64(width)*PageHeightMM/PageWidthMM), 1)
}

// Slice cuts height into consecutive bands of at most band pixels. The last band holds
// the remainder, so the heights sum to height and there are ceil(height/band) bands.
func Slice(height, band int) []Band {
	if height <= 0 || band <= 0 {
		return nil
	}

	bands := make([]Band, 0, (height+band-1)/band)
	for y := 0; y < height; y += band {
		bands = append(bands, Band{Y: y, H: min(band, height-y)})
	}
	return bands
}

// Segments returns the page bands for a width×height raster. A raster whose scaled
// height fits on one page yields a single band.
func Segments(width, height int) []Band {
	if width <= 0 || height <= 0 {
		return nil
	}
	scaledMM := float64(height) * PageWidthMM / float64(width)
	if scaledMM <= PageHeightMM {
		return []Band{{Y: 0, H: height}}
	}
	return Slice(height, BandHeight(width))
}
