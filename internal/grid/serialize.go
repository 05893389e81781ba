package grid

import (
	"bufio"
	"io"
	"strings"
)

// Serialize renders g as CSV text. Every field is quoted so that values such as
// "0.80" survive other tools untouched; rows end with "\n".
func Serialize(g Grid) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = Write(&b, g)
	return b.String()
}

// Write renders g to w using the same quoting policy as Serialize.
func Write(w io.Writer, g Grid) error {
	bw := bufio.NewWriter(w)
	for _, row := range g {
		for j, cell := range row {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
