package report

import (
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/data4good/donorscope/errors"
)

// AssemblePDF bundles the rendered charts into a single PDF digest, one
// chart per page under a title page.
func AssemblePDF(path string, chartPNGs []string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Donor Report", false)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 16, "Donor Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, time.Now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	for _, png := range chartPNGs {
		pdf.AddPage()
		// 180mm wide, aspect preserved, centered on an A4 page.
		pdf.ImageOptions(png, 15, 40, 180, 0, false, opts, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrapf(err, "write pdf %s", path)
	}
	return nil
}
