package export

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/dustin/go-humanize"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"tradeboard/internal/model"
)

type ReportOptions struct {
	Title     string
	Narrative []string
	Footer    string
	// Unit is appended to every money figure, e.g. "B" for billions.
	Unit string
}

func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Title: "China Trade Report 1950-2025",
		Narrative: []string{
			"From near-zero trade in 1960s to historic surpluses",
			"exceeding 1 trillion USD in recent years.",
		},
		Footer: "Data: Historical records & official statistics",
		Unit:   "B",
	}
}

// KeyFigures are the fixed labeled lines shared by the text and PDF reports.
func KeyFigures(summary model.Summary, unit string) []string {
	return []string{
		fmt.Sprintf("Highest Surplus: %s  (%d)", money(summary.MaxBalance, unit), summary.MaxBalanceYear),
		fmt.Sprintf("Highest Exports: %s  (%d)", money(summary.MaxExports, unit), summary.MaxExportsYear),
		fmt.Sprintf("Highest Imports: %s  (%d)", money(summary.MaxImports, unit), summary.MaxImportsYear),
		fmt.Sprintf("Average Positive Surplus: %s", money(summary.AvgPositiveBalance, unit)),
	}
}

// Report renders the summary as plain text with the default options.
func Report(summary model.Summary) []byte {
	return ReportWith(summary, DefaultReportOptions())
}

func ReportWith(summary model.Summary, opts ReportOptions) []byte {
	var b strings.Builder
	b.WriteString(opts.Title)
	b.WriteString("\n\n")
	for _, line := range opts.Narrative {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(opts.Narrative) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("Key Figures:\n")
	for _, line := range KeyFigures(summary, opts.Unit) {
		b.WriteString("  - ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if opts.Footer != "" {
		b.WriteString("\n")
		b.WriteString(opts.Footer)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

const (
	pageWidth    = 8.5 * vg.Inch
	pageHeight   = 11 * vg.Inch
	marginLeft   = vg.Length(100)
	marginTop    = vg.Length(750)
	marginBottom = vg.Length(72)
)

type pdfLine struct {
	text   string
	size   vg.Length
	bold   bool
	indent vg.Length
	// gap is the vertical space consumed before this line is drawn.
	gap vg.Length
}

type placedLine struct {
	pdfLine
	y vg.Length
}

// PDF lays the report out on letter pages.
func PDF(summary model.Summary, opts ReportOptions) ([]byte, error) {
	canvas := vgpdf.New(pageWidth, pageHeight)
	for i, page := range paginate(reportLines(summary, opts)) {
		if i > 0 {
			canvas.NextPage()
		}
		dc := draw.New(canvas)
		for _, line := range page {
			dc.FillText(textStyle(line.size, line.bold), vg.Point{X: marginLeft + line.indent, Y: line.y}, line.text)
		}
	}

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func reportLines(summary model.Summary, opts ReportOptions) []pdfLine {
	lines := []pdfLine{{text: opts.Title, size: 18, bold: true}}
	for i, text := range opts.Narrative {
		gap := vg.Length(20)
		if i == 0 {
			gap = 50
		}
		lines = append(lines, pdfLine{text: text, size: 12, gap: gap})
	}
	lines = append(lines, pdfLine{text: "Key Figures:", size: 13, bold: true, gap: 50})
	for i, text := range KeyFigures(summary, opts.Unit) {
		gap := vg.Length(22)
		if i == 0 {
			gap = 25
		}
		lines = append(lines, pdfLine{text: "- " + text, size: 12, indent: 20, gap: gap})
	}
	if opts.Footer != "" {
		lines = append(lines, pdfLine{text: opts.Footer, size: 12, gap: 50})
	}
	return lines
}

// paginate starts a new page whenever the next line would cross the bottom
// margin. The first line of every page sits at the top margin.
func paginate(lines []pdfLine) [][]placedLine {
	pages := [][]placedLine{{}}
	y := marginTop
	for i, line := range lines {
		if i > 0 {
			y -= line.gap
		}
		if y < marginBottom {
			pages = append(pages, []placedLine{})
			y = marginTop
		}
		last := len(pages) - 1
		pages[last] = append(pages[last], placedLine{pdfLine: line, y: y})
	}
	return pages
}

func textStyle(size vg.Length, bold bool) draw.TextStyle {
	face := plot.DefaultFont
	face.Variant = "Sans"
	if bold {
		face.Weight = xfont.WeightBold
	}
	return draw.TextStyle{
		Color:   color.Black,
		Font:    font.From(face, size),
		Handler: plot.DefaultTextHandler,
	}
}

func money(value float64, unit string) string {
	return "$" + humanize.FormatFloat("#,###.##", value) + unit
}
