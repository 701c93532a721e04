// Package csvlog appends analysis results to a header-less CSV log.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Options controls the record format
type Options struct {
	// CRLF terminates records with \r\n, the terminator existing logs use
	CRLF bool
}

// DefaultOptions returns options compatible with existing distance logs
func DefaultOptions() Options {
	return Options{CRLF: true}
}

// Append writes row as a single record at the end of the file at path,
// creating the file if needed. An empty row leaves the file untouched.
func Append(path string, row []int, opts Options) (err error) {
	if len(row) == 0 {
		return nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open result log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close result log: %w", cerr)
		}
	}()

	record := make([]string, len(row))
	for i, v := range row {
		record[i] = strconv.Itoa(v)
	}

	w := csv.NewWriter(file)
	w.UseCRLF = opts.CRLF
	if err := w.Write(record); err != nil {
		return fmt.Errorf("failed to write result row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush result row: %w", err)
	}
	return nil
}

// ReadAll returns every record in the log. A missing file yields no records.
func ReadAll(path string) ([][]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open result log: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse result log: %w", err)
	}
	return records, nil
}
