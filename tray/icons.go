package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

const iconSize = 44

var (
	micRed    = color.RGBA{R: 255, G: 59, B: 48, A: 255}
	ringGray  = color.RGBA{R: 28, G: 28, B: 30, A: 255}
	badgeFill = color.RGBA{R: 255, G: 204, B: 0, A: 255}
	badgeMark = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

// Idle is a dark disc with a hollow center, recording fills the center red,
// warning adds a yellow "!" badge to the recording icon.
var (
	iconIdle      = encodePNG(drawIcon(false, false))
	iconRecording = encodePNG(drawIcon(true, false))
	iconWarn      = encodePNG(drawIcon(true, true))
)

func drawIcon(recording, warn bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	s := float64(iconSize)
	c := s / 2
	outer, hole := c-1, s/8
	dot := s / 6.5

	badgeR := s * 0.34
	bc := s - badgeR + 0.5
	bar := badgeR * 0.24

	for y := range iconSize {
		for x := range iconSize {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if warn && math.Hypot(fx-bc, fy-bc) <= badgeR {
				// vertical position inside the badge, 0 at top and 1 at bottom
				v := (fy - (bc - badgeR*0.7)) / (badgeR * 1.4)
				onMark := math.Abs(fx-bc) <= bar && ((v >= 0.1 && v <= 0.62) || (v >= 0.72 && v <= 0.85))
				if onMark {
					img.Set(x, y, badgeMark)
				} else {
					img.Set(x, y, badgeFill)
				}
				continue
			}
			d := math.Hypot(fx-c, fy-c)
			switch {
			case recording && d <= dot:
				img.Set(x, y, micRed)
			case !recording && d <= hole:
				// transparent
			case d <= outer:
				img.Set(x, y, ringGray)
			}
		}
	}
	return img
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("tray icon: " + err.Error())
	}
	return buf.Bytes()
}
