// Package export writes race results as an Excel workbook: one sheet
// per category, a combined "All Results" sheet, and an "Invalid IDs"
// sheet when unresolved entries exist.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/opentiming/finishline/internal/race"
	"github.com/opentiming/finishline/internal/sessionstore"
)

// maxSheetName is the spreadsheet engine's sheet-name length limit.
const maxSheetName = 31

var categoryHeader = []interface{}{
	"Rank", "ID", "First Name", "Last Name", "Team",
	"Birth Year", "Gender", "Finish Time", "Elapsed Time", "Notes",
}

var combinedHeader = []interface{}{
	"Category", "Rank", "ID", "First Name", "Last Name", "Team",
	"Birth Year", "Gender", "Finish Time", "Elapsed Time", "Notes",
}

// Session writes the session's results to an xlsx file at path.
func Session(s *race.Session, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	wrote := false
	for _, c := range s.Categories {
		if len(c.Entries) == 0 {
			continue
		}
		if err := writeCategorySheet(f, c); err != nil {
			return err
		}
		wrote = true
	}

	if wrote {
		if err := writeCombinedSheet(f, s); err != nil {
			return err
		}
	}
	if err := writeInvalidSheet(f, s); err != nil {
		return err
	}

	// Drop the default sheet once real ones exist.
	if wrote {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

func writeCategorySheet(f *excelize.File, c *race.Category) (err error) {
	sheet := sheetName(c.Name)
	if _, err = f.NewSheet(sheet); err != nil {
		return err
	}
	if err = f.SetSheetRow(sheet, "A1", &categoryHeader); err != nil {
		return err
	}

	for i, ranked := range c.Ranked() {
		e := ranked.Entry
		row := []interface{}{
			ranked.Rank,
			e.ParticipantID,
			e.FirstName,
			e.LastName,
			e.Team,
			e.BirthYear,
			e.Gender,
			e.FormatFinish(),
			e.FormatElapsed(),
			e.Notes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeCombinedSheet(f *excelize.File, s *race.Session) (err error) {
	const sheet = "All Results"
	if _, err = f.NewSheet(sheet); err != nil {
		return err
	}
	if err = f.SetSheetRow(sheet, "A1", &combinedHeader); err != nil {
		return err
	}

	for i, result := range s.CombinedResults() {
		e := result.Entry
		row := []interface{}{
			result.CategoryName,
			result.Rank,
			e.ParticipantID,
			e.FirstName,
			e.LastName,
			e.Team,
			e.BirthYear,
			e.Gender,
			e.FormatFinish(),
			e.FormatElapsed(),
			e.Notes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeInvalidSheet(f *excelize.File, s *race.Session) (err error) {
	invalid := s.InvalidEntries()
	if len(invalid) == 0 {
		return nil
	}

	const sheet = "Invalid IDs"
	if _, err = f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{
		"Category", "ID", "First Name", "Last Name", "Team",
		"Birth Year", "Gender", "Finish Time", "Elapsed Time", "Notes",
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, result := range invalid {
		e := result.Entry
		notes := e.Notes
		if notes == "" {
			notes = "ID not found in category roster"
		}
		row := []interface{}{
			result.CategoryName,
			e.ParticipantID,
			e.FirstName,
			e.LastName,
			e.Team,
			e.BirthYear,
			e.Gender,
			e.FormatFinish(),
			e.FormatElapsed(),
			notes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// DefaultFilename returns a timestamped results filename.
func DefaultFilename() string {
	stamp := time.Now().Format("20060102_150405")
	return sessionstore.SafeFilename("race_results_" + stamp + ".xlsx")
}
