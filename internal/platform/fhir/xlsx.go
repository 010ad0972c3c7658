package fhir

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// MappingRow is one source→target line of a mapping table.
type MappingRow struct {
	SourceSystem  string
	SourceCode    string
	SourceDisplay string
	TargetCode    string
	TargetDisplay string
	Equivalence   string
	Comment       string
}

var mappingTableHeaders = []string{
	"NAMASTE System",
	"NAMASTE Code",
	"NAMASTE Display",
	"ICD-11 Code",
	"ICD-11 Display",
	"Equivalence",
	"Comment",
}

const mappingSheet = "Mappings"

// MappingTableXLSX renders rows as a single-sheet workbook with a frozen,
// bold header row.
func MappingTableXLSX(rows []MappingRow) (*Artifact, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(mappingSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range mappingTableHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("header coordinates: %w", err)
		}
		if err := f.SetCellValue(mappingSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(mappingSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
	}

	for i, r := range rows {
		values := []string{r.SourceSystem, r.SourceCode, r.SourceDisplay, r.TargetCode, r.TargetDisplay, r.Equivalence, r.Comment}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("row %d coordinates: %w", i, err)
			}
			if err := f.SetCellValue(mappingSheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(mappingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}

	return &Artifact{Name: ArtifactMappingTable, ContentType: ContentTypeXLSX, Body: buf.Bytes()}, nil
}
