// Package excel bulk-loads curriculum content units from spreadsheet or
// CSV files into the content repository.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/learnflow/internal/database"
	"github.com/example/learnflow/pkg/models"
)

// ImportConfig defines where the importer reads from and how rows map to
// content units. Columns: prompt, answer, topic, difficulty.
type ImportConfig struct {
	FilePath  string
	SheetName string
	StartRow  int // 1-based; rows above are skipped
}

// DefaultImportConfig returns the default mapping: first sheet, header row
// skipped.
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:  path,
		SheetName: "Sheet1",
		StartRow:  2,
	}
}

// ImportResult summarizes one import run.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportContent imports content units from an Excel or CSV file.
func ImportContent(config ImportConfig, repo *database.ContentRepository) (*ImportResult, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return importFromCSV(config, repo)
	}
	return importFromExcel(config, repo)
}

func importFromExcel(config ImportConfig, repo *database.ContentRepository) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{}
	position := 0
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		position++
		if err := importRow(row, position, repo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func importFromCSV(config ImportConfig, repo *database.ContentRepository) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	result := &ImportResult{}
	position := 0
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if line < config.StartRow {
			continue
		}
		result.TotalProcessed++
		position++
		if err := importRow(row, position, repo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
		}
	}
	return result, nil
}

func importRow(row []string, position int, repo *database.ContentRepository, result *ImportResult) error {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	prompt := cell(0)
	answer := cell(1)
	if prompt == "" || answer == "" {
		result.Skipped++
		return nil
	}

	difficulty := 1
	if d := cell(3); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil || v < 1 || v > 5 {
			return fmt.Errorf("invalid difficulty %q", d)
		}
		difficulty = v
	}

	unit := &models.ContentUnit{
		Prompt:     prompt,
		Answer:     answer,
		Topic:      cell(2),
		Difficulty: difficulty,
		Position:   position,
	}
	if err := repo.Create(unit); err != nil {
		return err
	}
	result.Created++
	return nil
}
