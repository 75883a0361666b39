// Package export renders tender lists into downloadable documents.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

const (
	SheetName   = "Tenders"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	cellLayout  = "2006-01-02 15:04"
	defaultName = "Sheet1"
)

var header = []any{
	"Tender Number",
	"Client",
	"Description",
	"Briefing Date",
	"Submission Date",
	"Venue",
	"Compulsory Briefing",
}

// XLSXExporter writes one worksheet with a header row and one row per tender.
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (XLSXExporter) ContentType() string   { return xlsxMIME }
func (XLSXExporter) FileExtension() string { return "xlsx" }

func (XLSXExporter) Write(w io.Writer, tenders []domain.Tender) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultName, SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx stream: %w", err)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i, t := range tenders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		compulsory := "No"
		if t.CompulsoryBriefing {
			compulsory = "Yes"
		}
		row := []any{
			t.TenderNumber,
			t.ClientName,
			t.Description,
			t.BriefingDate.UTC().Format(cellLayout),
			t.SubmissionDate.UTC().Format(cellLayout),
			t.Venue,
			compulsory,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
