package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/alnah/go-compactpdf/internal/layout"
	"github.com/alnah/go-compactpdf/internal/style"
)

const pdfMagic = "%PDF-"

// paint draws a laid-out document with fpdf. Dates are fixed and catalogs
// sorted so that the same document always yields the same bytes.
func paint(doc *layout.Document, fonts *Fonts, date time.Time) ([]byte, error) {
	init := &fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: doc.PageWidth, Ht: doc.PageHeight}}
	if doc.PageWidth > doc.PageHeight {
		init.OrientationStr = "L"
		init.Size = fpdf.SizeType{Wd: doc.PageHeight, Ht: doc.PageWidth}
	}
	pdf := fpdf.NewCustom(init)
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("compactpdf", false)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	fonts.register(pdf)

	links := make(map[string]int, len(doc.Anchors))
	for _, id := range slices.Sorted(maps.Keys(doc.Anchors)) {
		a := doc.Anchors[id]
		link := pdf.AddLink()
		pdf.SetLink(link, a.Y, a.Page+1)
		links[id] = link
	}

	p := &painter{pdf: pdf, links: links}
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, it := range page.Items {
			p.item(it)
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(pdfMagic)) {
		return nil, ErrInvalidOutput
	}
	return buf.Bytes(), nil
}

type painter struct {
	pdf   *fpdf.Fpdf
	links map[string]int
}

func (p *painter) item(it layout.Item) {
	switch it.Kind {
	case layout.TextItem:
		p.pdf.SetFont(it.Font.Family, it.Font.Style(), it.Font.Size)
		r, g, b := rgb(it.Color)
		p.pdf.SetTextColor(r, g, b)
		p.pdf.Text(it.X, it.Y, it.Text)
	case layout.RectItem:
		r, g, b := rgb(it.Color)
		p.pdf.SetFillColor(r, g, b)
		p.pdf.Rect(it.X, it.Y, it.W, it.H, "F")
	case layout.LineItem:
		r, g, b := rgb(it.Color)
		p.pdf.SetDrawColor(r, g, b)
		p.pdf.SetLineWidth(it.Width)
		p.pdf.Line(it.X, it.Y, it.X2, it.Y2)
	case layout.ImageItem:
		opts := fpdf.ImageOptions{ImageType: it.Image.Format}
		p.pdf.RegisterImageOptionsReader(it.Image.Key, opts, bytes.NewReader(it.Image.Data))
		p.pdf.ImageOptions(it.Image.Key, it.X, it.Y, it.W, it.H, false, opts, 0, "")
	case layout.LinkItem:
		if it.URL != "" {
			p.pdf.LinkString(it.X, it.Y, it.W, it.H, it.URL)
		} else if link, ok := p.links[it.Anchor]; ok {
			p.pdf.Link(it.X, it.Y, it.W, it.H, link)
		}
	}
}

func rgb(c style.Color) (int, int, int) {
	return int(c.R), int(c.G), int(c.B)
}
