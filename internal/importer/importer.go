// Package importer parses bulk user import files. Two formats are
// accepted: a JSON array of records, or CSV with a header row naming at
// least email, password and role columns.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

var ErrUnsupportedFormat = errors.New("unsupported import format")

// Parse reads records from r according to format ("csv" or "json").
func Parse(r io.Reader, format string) ([]domain.ImportRecord, error) {
	switch strings.ToLower(format) {
	case "csv":
		return parseCSV(r)
	case "json":
		return parseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseFilename picks the format from the file extension.
func ParseFilename(r io.Reader, filename string) ([]domain.ImportRecord, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return parseCSV(r)
	case strings.HasSuffix(name, ".json"):
		return parseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

func parseJSON(r io.Reader) ([]domain.ImportRecord, error) {
	var records []domain.ImportRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return records, nil
}

func parseCSV(r io.Reader) ([]domain.ImportRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"email", "password", "role"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}

	var records []domain.ImportRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		records = append(records, domain.ImportRecord{
			Email:    field(row, cols, "email"),
			Password: field(row, cols, "password"),
			Role:     field(row, cols, "role"),
			Name:     field(row, cols, "name"),
			Phone:    field(row, cols, "phone"),
		})
	}
	return records, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
