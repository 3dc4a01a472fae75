package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseCSV читает CSV с заголовком в первой строке
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Row{}, nil
		}
		return nil, err
	}
	idx := newColumnIndex(header)

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, idx.row(line, record))
	}
	return rows, nil
}

// ParseXLSX читает первый лист книги; первая строка листа - заголовок
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []Row{}, nil
	}

	idx := newColumnIndex(records[0])
	rows := []Row{}
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, idx.row(i+2, record))
	}
	return rows, nil
}
