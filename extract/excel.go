package extract

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/poiesic/docuchat/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/xuri/excelize/v2"
)

// ExcelAdapter extracts tabular files: CSV via the langchaingo loader,
// xlsx workbooks sheet by sheet.
type ExcelAdapter struct{}

var _ Adapter = (*ExcelAdapter)(nil)

// NewExcelAdapter creates a spreadsheet adapter.
func NewExcelAdapter() *ExcelAdapter {
	return &ExcelAdapter{}
}

// Extract dispatches on the file extension. Legacy .xls workbooks are not
// parseable and fail with an extraction error.
func (a *ExcelAdapter) Extract(ctx context.Context, path string) ([]core.Segment, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return a.extractCSV(ctx, path)
	case ".xls":
		return nil, extractionError("legacy .xls workbooks are not supported, convert to .xlsx", nil)
	default:
		return a.extractWorkbook(path)
	}
}

func (a *ExcelAdapter) extractCSV(ctx context.Context, path string) ([]core.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, extractionError("failed to open CSV file", err)
	}
	defer f.Close()

	docs, err := documentloaders.NewCSV(f).Load(ctx)
	if err != nil {
		return nil, extractionError("failed to parse CSV file", err)
	}

	segments := make([]core.Segment, 0, len(docs))
	for i, doc := range docs {
		if doc.PageContent == "" {
			continue
		}
		segments = append(segments, core.Segment{
			Text:     doc.PageContent,
			Metadata: map[string]string{"row": strconv.Itoa(i + 1)},
		})
	}
	return segments, nil
}

// extractWorkbook flattens each sheet into one segment of tab-separated
// rows, keeping the sheet name in metadata.
func (a *ExcelAdapter) extractWorkbook(path string) ([]core.Segment, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, extractionError("failed to open workbook", err)
	}
	defer wb.Close()

	var segments []core.Segment
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, extractionError("failed to read sheet "+sheet, err)
		}

		var sb strings.Builder
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		if sb.Len() == 0 {
			continue
		}
		segments = append(segments, core.Segment{
			Text:     sb.String(),
			Metadata: map[string]string{"sheet": sheet},
		})
	}
	return segments, nil
}
