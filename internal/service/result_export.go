package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Форматы выгрузки результатов
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

var exportHeaders = []string{"Result ID", "Name", "Email", "Score", "Total", "Date"}

// WriteResultsCSV пишет строки в CSV с BOM для корректного отображения UTF-8 в Excel
func WriteResultsCSV(w io.Writer, rows []ExportRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ResultID), 10),
			sanitizeForExcel(r.UserName),
			sanitizeForExcel(r.Email),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.TotalQuestions),
			r.Date.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteResultsXLSX пишет строки в Excel через StreamWriter
func WriteResultsXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2) // 1 - заголовки
		row := []interface{}{
			r.ResultID,
			sanitizeForExcel(r.UserName),
			sanitizeForExcel(r.Email),
			r.Score,
			r.TotalQuestions,
			r.Date.UTC().Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
