package menu

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 22

var (
	iconOnce     sync.Once
	lockedIcon   []byte
	unlockedIcon []byte
)

// trayIcon returns the platform-encoded icon for the given lock state.
func trayIcon(locked bool) []byte {
	iconOnce.Do(func() {
		lockedIcon = platformIcon(drawPadlock(true))
		unlockedIcon = platformIcon(drawPadlock(false))
	})
	if locked {
		return lockedIcon
	}
	return unlockedIcon
}

// drawPadlock renders a padlock; the shackle is drawn open when unlocked.
func drawPadlock(locked bool) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	body := color.RGBA{23, 93, 220, 255}
	shackle := color.RGBA{90, 90, 90, 255}

	for y := 10; y < 20; y++ {
		for x := 4; x < 18; x++ {
			img.Set(x, y, body)
		}
	}

	right := 15
	if !locked {
		right = 18
	}
	for y := 3; y < 10; y++ {
		img.Set(7, y, shackle)
		img.Set(8, y, shackle)
		if locked || y < 6 {
			img.Set(right-1, y, shackle)
			img.Set(right, y, shackle)
		}
	}
	for x := 7; x <= right; x++ {
		img.Set(x, 2, shackle)
		img.Set(x, 3, shackle)
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
