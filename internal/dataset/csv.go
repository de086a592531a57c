// Package dataset reads the CSV files the recommender and the hotel catalog are
// built from. Every reader validates its header before touching a row.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingColumn is returned when a required column is absent from a header.
var ErrMissingColumn = errors.New("missing required column")

type header map[string]int

// naValues are the cell contents read_csv parses as missing. Cells are matched
// verbatim, so " NA" or a whitespace-only cell is still a value.
var naValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true, "N/A": true,
	"NA": true, "NULL": true, "NaN": true, "None": true, "n/a": true, "nan": true, "null": true,
}

// newCSVReader strips an optional UTF-8 byte-order mark before parsing.
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	return cr
}

func readHeader(cr *csv.Reader, required ...string) (header, error) {
	names, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file, expected %s", ErrMissingColumn, strings.Join(required, ", "))
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	h := make(header, len(names))
	for i, name := range names {
		h[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return h, nil
}

// get returns the cell for col exactly as written, or "" when the column or
// cell is absent or holds a missing-value marker. Hotel names are matched
// byte for byte, so no normalisation happens here.
func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) || naValues[record[i]] {
		return ""
	}
	return record[i]
}

func (h header) has(col string) bool {
	_, ok := h[col]
	return ok
}

// parseOptionalFloat treats empty cells and pandas-style NaN markers as missing.
// Surrounding whitespace is ignored for numbers.
func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func openFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
