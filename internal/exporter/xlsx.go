package exporter

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"isxcli/internal/config"
	"isxcli/pkg/contracts/domain"
)

// WorkbookExporter writes the valuation run's results as a single .xlsx
// workbook with one sheet per role (hitter, starting pitcher, relief
// pitcher), plus a "Position Summary" sheet, for managers who want the
// auction board in a spreadsheet rather than CSV.
type WorkbookExporter struct {
	paths *config.Paths
}

// NewWorkbookExporter creates a new workbook exporter rooted at paths.OutputDir.
func NewWorkbookExporter(paths *config.Paths) *WorkbookExporter {
	return &WorkbookExporter{paths: paths}
}

var workbookRoleSheets = []struct {
	role  domain.Role
	sheet string
}{
	{domain.RoleHitter, "Hitters"},
	{domain.RoleSP, "Starting Pitchers"},
	{domain.RoleRP, "Relief Pitchers"},
}

// ExportWorkbook writes valuations and summaries to a single .xlsx file
// under the exporter's output directory, one sheet per role plus a
// position summary sheet, sorted the same way their CSV counterparts are.
func (e *WorkbookExporter) ExportWorkbook(valuations []domain.PlayerValuation, summaries []domain.PositionSummary, filePath string) error {
	sorted := make([]domain.PlayerValuation, len(valuations))
	copy(sorted, valuations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalDollars != sorted[j].TotalDollars {
			return sorted[i].TotalDollars > sorted[j].TotalDollars
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	f := excelize.NewFile()
	defer f.Close()

	wroteAnyRoleSheet := false
	for _, rs := range workbookRoleSheets {
		rows := playersByRole(sorted, rs.role)
		if len(rows) == 0 {
			continue
		}
		if err := writePlayerSheet(f, rs.sheet, rows); err != nil {
			return fmt.Errorf("writing %s sheet: %w", rs.sheet, err)
		}
		wroteAnyRoleSheet = true
	}

	if err := writeSummarySheet(f, summaries); err != nil {
		return fmt.Errorf("writing position summary sheet: %w", err)
	}

	// excelize seeds every new workbook with a default "Sheet1"; drop it
	// once at least one role sheet was written, otherwise keep it beside
	// the position summary sheet.
	if wroteAnyRoleSheet {
		f.DeleteSheet("Sheet1")
	}

	fullPath := e.resolvePath(filePath)
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("saving workbook %s: %w", fullPath, err)
	}
	return nil
}

func (e *WorkbookExporter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	if e.paths == nil || e.paths.OutputDir == "" {
		return filePath
	}
	return filepath.Join(e.paths.OutputDir, filePath)
}

func playersByRole(valuations []domain.PlayerValuation, role domain.Role) []domain.PlayerValuation {
	var out []domain.PlayerValuation
	for _, v := range valuations {
		if v.Role == role {
			out = append(out, v)
		}
	}
	return out
}

var workbookPlayerHeaders = []string{"Player ID", "Name", "Position", "Role", "Total Z", "Dollar Value", "Tier"}

func writePlayerSheet(f *excelize.File, sheet string, rows []domain.PlayerValuation) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for col, header := range workbookPlayerHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for i, v := range rows {
		row := i + 2
		values := []interface{}{v.PlayerID, v.Name, v.PrimaryPosition, string(v.Role), v.TotalZ, v.TotalDollars, string(v.Tier)}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

var workbookSummaryHeaders = []string{"Position", "Role", "Rostered Count", "Replacement Tier Count", "Total Budget", "Deficit"}

func writeSummarySheet(f *excelize.File, summaries []domain.PositionSummary) error {
	const sheet = "Position Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for col, header := range workbookSummaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	sorted := make([]domain.PositionSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	for i, s := range sorted {
		row := i + 2
		values := []interface{}{s.Position, string(s.Role), s.RosteredCount, s.ReplacementTierCount, s.TotalBudget, s.Deficit}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
