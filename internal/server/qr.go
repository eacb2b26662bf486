package server

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

// renderQR draws content as a QR code for a terminal. Each text line holds
// two module rows using half-block runes. Light modules are drawn filled so
// the code scans on a dark background.
func renderQR(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}

	bm := q.Bitmap()

	var b strings.Builder
	for y := 0; y < len(bm); y += 2 {
		for x := range bm[y] {
			top := !bm[y][x]
			bottom := y+1 < len(bm) && !bm[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}

	return b.String(), nil
}
