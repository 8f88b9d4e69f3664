//go:build !windows

package menu

func platformIcon(pngData []byte) []byte {
	return pngData
}
