package particles

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSVG renders the current frame as a standalone SVG document.
func (f *Field) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		f.width, f.height, f.width, f.height)
	bw.WriteString("\n<defs>\n")

	links := f.Links()
	for i, l := range links {
		a, b := f.particles[l.A], f.particles[l.B]
		fmt.Fprintf(bw, `<linearGradient id="l%d" gradientUnits="userSpaceOnUse" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f">`+
			`<stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient>`+"\n",
			i, a.X, a.Y, b.X, b.Y, WithAlpha(l.ColorA, l.Opacity), WithAlpha(l.ColorB, l.Opacity))
	}
	bw.WriteString("</defs>\n")

	for i, l := range links {
		a, b := f.particles[l.A], f.particles[l.B]
		fmt.Fprintf(bw, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="url(#l%d)" stroke-width="%.2f"/>`+"\n",
			a.X, a.Y, b.X, b.Y, i, f.cfg.LineWidth)
	}

	for _, p := range f.particles {
		switch p.Shape {
		case ShapeSquare:
			side := p.Radius * 1.6
			fmt.Fprintf(bw, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
				p.X-p.Radius*0.8, p.Y-p.Radius*0.8, side, side, p.Color)
		case ShapeDiamond:
			fmt.Fprintf(bw, `<polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s"/>`+"\n",
				p.X, p.Y-p.Radius, p.X+p.Radius, p.Y, p.X, p.Y+p.Radius, p.X-p.Radius, p.Y, p.Color)
		default:
			fmt.Fprintf(bw, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", p.X, p.Y, p.Radius, p.Color)
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
