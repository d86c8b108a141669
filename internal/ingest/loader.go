package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// wrapperKeys are the object keys different scrapers use to wrap the record
// array when an export is not a bare JSON array.
var wrapperKeys = []string{"tweets", "data", "results", "items", "posts"}

// ReadFile loads a raw export into records. JSON files may be a bare array,
// an object wrapping the array under a known key, or a single record; CSV
// files become one record per row keyed by header column.
func ReadFile(path string) ([]RawRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(b, path)
	}
	return readJSON(b, path)
}

func readJSON(b []byte, path string) ([]RawRecord, error) {
	var arr []RawRecord
	if err := json.Unmarshal(b, &arr); err == nil {
		return arr, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, key := range wrapperKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &arr); err == nil {
			return arr, nil
		}
	}
	// single record at the top level
	var single RawRecord
	if err := json.Unmarshal(b, &single); err == nil {
		if _, ok := single["id"]; ok {
			return []RawRecord{single}, nil
		}
		if _, ok := single["text"]; ok {
			return []RawRecord{single}, nil
		}
	}
	return nil, fmt.Errorf("parse %s: no record array found", path)
}

func readCSV(b []byte, path string) ([]RawRecord, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("parse %s: empty csv", path)
	}
	header := rows[0]
	out := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := RawRecord{}
		for i, col := range header {
			if i < len(row) {
				rec[strings.TrimSpace(col)] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
