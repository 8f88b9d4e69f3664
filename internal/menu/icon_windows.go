//go:build windows

package menu

import (
	"bytes"
	"encoding/binary"

	"github.com/example/vaultdesk/internal/logging"
)

// platformIcon wraps the PNG in a single-image ico container, which the
// Windows notification area requires.
func platformIcon(pngData []byte) []byte {
	ico, err := wrapPNGAsICO(pngData, iconSize, iconSize)
	if err != nil {
		logging.Debugf("failed to wrap tray icon PNG as ico: %v", err)
		return nil
	}
	return ico
}

func wrapPNGAsICO(pngData []byte, width, height int) ([]byte, error) {
	buf := &bytes.Buffer{}

	header := []uint16{0, 1, 1}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}

	dimension := func(value int) byte {
		if value <= 0 || value >= 256 {
			return 0
		}
		return byte(value)
	}
	buf.Write([]byte{dimension(width), dimension(height), 0, 0})

	entry := struct {
		Planes   uint16
		BitCount uint16
		Size     uint32
		Offset   uint32
	}{1, 32, uint32(len(pngData)), 6 + 16}
	if err := binary.Write(buf, binary.LittleEndian, entry); err != nil {
		return nil, err
	}

	buf.Write(pngData)
	return buf.Bytes(), nil
}
