// seehuhn.de/go/roadview - a top-down viewer for traffic simulations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package roadview

import (
	"image/color"
	"io"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/roadview/raster"
)

// WritePDF stores a vector version of a frame as a single page PDF file.
// One PDF unit corresponds to one pixel.
func (r *Renderer) WritePDF(fname string, human, machine []Orientation) error {
	if r.closed {
		return ErrClosed
	}
	scene := r.Scene(human, machine)
	return scene.WritePDF(fname, r.style)
}

// WritePDF writes the scene as a single page PDF file, using style for
// line strips.  The label is not included.
func (s *Scene) WritePDF(fname string, style raster.LineStyle) error {
	page, err := document.CreateSinglePage(fname, s.paper(), pdf.V1_7, nil)
	if err != nil {
		return err
	}
	return s.drawPDF(page, style)
}

// WritePDFTo is like [Scene.WritePDF], but writes the PDF file to w.  opt
// is passed on to the PDF writer and may be nil.
func (s *Scene) WritePDFTo(w io.Writer, style raster.LineStyle, opt *pdf.WriterOptions) error {
	page, err := document.WriteSinglePage(w, s.paper(), pdf.V1_7, opt)
	if err != nil {
		return err
	}
	return s.drawPDF(page, style)
}

func (s *Scene) paper() *pdf.Rectangle {
	return &pdf.Rectangle{URx: float64(s.Width), URy: float64(s.Height)}
}

func (s *Scene) drawPDF(page *document.Page, style raster.LineStyle) error {
	// PDF user space has its origin in the lower left corner, like the
	// canvas, so no flip is needed.
	page.SetFillColor(deviceRGB(s.Background))
	page.Rectangle(0, 0, float64(s.Width), float64(s.Height))
	page.Fill()

	page.SetLineWidth(style.Width)
	page.SetLineCap(style.Cap)
	page.SetLineJoin(style.Join)
	page.SetMiterLimit(style.MiterLimit)

	for _, layer := range s.Layers {
		for _, p := range layer.Primitives {
			if len(p.Points) < 2 {
				continue
			}
			if p.Kind == LineStrip {
				page.SetStrokeColor(deviceRGB(p.Color))
			} else {
				page.SetFillColor(deviceRGB(p.Color))
			}
			for cmd, pts := range p.Path() {
				switch cmd {
				case path.CmdMoveTo:
					page.MoveTo(pts[0].X, pts[0].Y)
				case path.CmdLineTo:
					page.LineTo(pts[0].X, pts[0].Y)
				case path.CmdClose:
					page.ClosePath()
				}
			}
			if p.Kind == LineStrip {
				page.Stroke()
			} else {
				page.Fill()
			}
		}
	}

	return page.Close()
}

func deviceRGB(c color.RGBA) pdfcolor.DeviceRGB {
	return pdfcolor.DeviceRGB{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}
