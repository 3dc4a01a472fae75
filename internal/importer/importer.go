// Package importer разбирает таблицы с вопросами (CSV и XLSX) и проверяет
// каждую строку одной и той же процедурой независимо от формата файла.
package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/testps-api/internal/domain/entity"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoValidRows       = errors.New("no valid questions found in file")
)

// Заголовки колонок; регистр и пробелы вокруг не важны
const (
	HeaderQuestion      = "question"
	HeaderCorrectAnswer = "correctAnswer"
)

// Статусы отчета
const (
	StatusOK          = "ok"
	StatusPartial     = "partial"
	StatusNoValidRows = "no_valid_rows"
)

// Row - одна строка таблицы. Number - номер строки в файле, заголовок имеет номер 1.
type Row struct {
	Number        int
	Question      string
	Options       [entity.OptionsPerQuestion]string
	CorrectAnswer string
}

// Report - результат проверки строк
type Report struct {
	Status    string            `json:"status"`
	Message   string            `json:"msg"`
	Questions []entity.Question `json:"questions"`
	Errors    []string          `json:"errors"`
}

// Import выбирает парсер по расширению файла и проверяет строки
func Import(filename string, r io.Reader) (*Report, error) {
	var (
		rows []Row
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = ParseCSV(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV file: %w", err)
		}
	case ".xlsx", ".xls":
		rows, err = ParseXLSX(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv, .xlsx or .xls)", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	return Validate(rows), nil
}

// Validate проверяет строки. Ошибочные строки попадают в Errors и не мешают остальным.
func Validate(rows []Row) *Report {
	report := &Report{
		Questions: []entity.Question{},
		Errors:    []string{},
	}

	for _, row := range rows {
		if row.Question == "" || hasEmptyOption(row.Options) {
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: Missing required fields.", row.Number))
			continue
		}

		idx := resolveCorrectAnswer(row)
		if idx < 0 || idx >= entity.OptionsPerQuestion {
			report.Errors = append(report.Errors,
				fmt.Sprintf("Row %d: Invalid correctAnswer (must match one of the options or be 0-3).", row.Number))
			continue
		}

		report.Questions = append(report.Questions, entity.Question{
			Question:      row.Question,
			Options:       append([]string(nil), row.Options[:]...),
			CorrectAnswer: idx,
		})
	}

	switch {
	case len(report.Questions) == 0:
		report.Status = StatusNoValidRows
		report.Message = "No valid questions found in file."
	case len(report.Errors) > 0:
		report.Status = StatusPartial
		report.Message = fmt.Sprintf("%d valid questions found. Review below before adding.", len(report.Questions))
	default:
		report.Status = StatusOK
		report.Message = fmt.Sprintf("%d valid questions found. Review below before adding.", len(report.Questions))
	}
	return report
}

func hasEmptyOption(options [entity.OptionsPerQuestion]string) bool {
	for _, o := range options {
		if o == "" {
			return true
		}
	}
	return false
}

// resolveCorrectAnswer сначала ищет точное совпадение с текстом варианта,
// затем пробует прочитать значение как индекс. -1 если не удалось.
func resolveCorrectAnswer(row Row) int {
	answer := strings.TrimSpace(row.CorrectAnswer)
	if answer == "" {
		return -1
	}
	for i, opt := range row.Options {
		if strings.TrimSpace(opt) == answer {
			return i
		}
	}

	n, err := strconv.ParseFloat(answer, 64)
	if err != nil || n != math.Trunc(n) {
		return -1
	}
	if n < 0 || n >= float64(entity.OptionsPerQuestion) {
		return -1
	}
	return int(n)
}

// columnIndex сопоставляет заголовки с полями строки
type columnIndex struct {
	question      int
	options       [entity.OptionsPerQuestion]int
	correctAnswer int
}

func newColumnIndex(header []string) columnIndex {
	idx := columnIndex{question: -1, correctAnswer: -1}
	for i := range idx.options {
		idx.options[i] = -1
	}

	for col, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case strings.ToLower(HeaderQuestion):
			idx.question = col
		case strings.ToLower(HeaderCorrectAnswer):
			idx.correctAnswer = col
		default:
			for i := range idx.options {
				if name == fmt.Sprintf("option%d", i+1) {
					idx.options[i] = col
				}
			}
		}
	}
	return idx
}

func (idx columnIndex) row(number int, record []string) Row {
	cell := func(col int) string {
		if col < 0 || col >= len(record) {
			return ""
		}
		return record[col]
	}

	row := Row{
		Number:        number,
		Question:      strings.TrimSpace(cell(idx.question)),
		CorrectAnswer: cell(idx.correctAnswer),
	}
	for i, col := range idx.options {
		row.Options[i] = strings.TrimSpace(cell(col))
	}
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
