// Package svg maps decoded strokes onto scalable vector paths.
package svg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inklift/inklift/internal/notes"
)

// Options control page geometry. The defaults are an A4 page in 90dpi
// user units with device units scaled to millimetres, matching the vendor
// tool's exports.
type Options struct {
	PageWidth  float64
	PageHeight float64
	Scale      float64
}

func DefaultOptions() Options {
	return Options{
		PageWidth:  744.09,
		PageHeight: 1052.36,
		Scale:      3.543307 / 50,
	}
}

// Path is one rendered stroke: a move-to followed by line-tos. Index is
// the stroke's position in the note, stable across renders.
type Path struct {
	Index int
	D     string
}

// Paths renders each stroke of a note independently. X is centered on the
// page; Y is not. Rendering is deterministic: identical strokes always
// produce identical path text.
func Paths(n notes.Note, opts Options) []Path {
	out := make([]Path, 0, len(n.Strokes))
	for i, stroke := range n.Strokes {
		var b strings.Builder
		for j, p := range stroke {
			if j == 0 {
				b.WriteString("M ")
			} else {
				b.WriteString(" L ")
			}
			b.WriteString(formatCoord(opts.PageWidth/2 + float64(p.X)*opts.Scale))
			b.WriteByte(' ')
			b.WriteString(formatCoord(float64(p.Y) * opts.Scale))
		}
		out = append(out, Path{Index: i, D: b.String()})
	}
	return out
}

// Document wraps the note's paths in a complete SVG document.
func Document(n notes.Note, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg version="1.1" baseProfile="full" xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" xml:space="preserve" xmlns:Anoto="http://www.anoto.com/dtd/20011023.dtd" Anoto:version="2.1">`,
		formatCoord(opts.PageWidth), formatCoord(opts.PageHeight))
	b.WriteString(`<g id="strokes" style="fill:none; stroke:#000000;"><Anoto:Activate PageAddress="43.0.4.01" PageTitle=""/>`)
	for _, p := range Paths(n, opts) {
		fmt.Fprintf(&b, `<path id="stroke%d" style="stroke:#000000; stroke-width: 1.0" d="%s" />`, p.Index, p.D)
	}
	b.WriteString(`</g></svg>`)
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
