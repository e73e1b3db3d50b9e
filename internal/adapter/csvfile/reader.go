// Package csvfile reads a sensor CSV export into a domain.Table.
package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("csv has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naMarkers are cell values read as null.
var naMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {},
	"1.#IND": {}, "-1.#IND": {}, "1.#QNAN": {}, "-1.#QNAN": {},
}

// Extractor reads input files for the pipeline.
// It implements pipeline.Extractor.
type Extractor struct{}

// Extract reads the CSV file at path.
func (Extractor) Extract(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV from r. The first record is the header; names are trimmed
// and lower-cased. Short rows are padded with nulls and NA markers become
// null cells. Every other cell is kept as raw text.
func Read(r io.Reader) (*domain.Table, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]domain.Column, len(header))
	for i, h := range header {
		columns[i].Name = domain.CleanHeader(h)
	}

	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		for i := range columns {
			var cell any
			if i < len(rec) {
				cell = cellValue(rec[i])
			}
			columns[i].Values = append(columns[i].Values, cell)
		}
		rows++
	}

	return domain.NewTable(rows, columns...), nil
}

func cellValue(s string) any {
	if _, ok := naMarkers[strings.TrimSpace(s)]; ok {
		return nil
	}
	return s
}
