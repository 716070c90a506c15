// Package resultswriter formats experiment harness output: the CSV
// table spec.md §6 specifies, and an optional JSON sweep summary using
// the teacher's generic writer shape.
package resultswriter

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// csvHeader is the exact header spec.md §6 requires.
var csvHeader = []string{"Scheduler", "Parameter", "Value", "AverageProcessingTime", "AvgRealTime"}

// Row is one line of the sweep CSV.
type Row struct {
	Scheduler             string
	Parameter             string
	Value                 string
	AverageProcessingTime float64
	AvgRealTime           float64
}

// CSVWriter streams Rows with the spec's exact header and 7-decimal
// fixed-precision formatting for the two time columns.
type CSVWriter struct{}

// NewCSVWriter returns a ready-to-use CSVWriter.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteToFile writes rows to filepath, truncating any existing file.
func (w *CSVWriter) WriteToFile(rows []Row, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()
	return w.Write(rows, file)
}

// Write writes rows to dst.
func (w *CSVWriter) Write(rows []Row, dst io.Writer) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Scheduler,
			r.Parameter,
			r.Value,
			strconv.FormatFloat(r.AverageProcessingTime, 'f', 7, 64),
			strconv.FormatFloat(r.AvgRealTime, 'f', 7, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONWriter writes data as JSON, adapted from the teacher's generic
// writer pattern so the sweep summary shares its shape with any other
// JSON artifact this repository produces.
type JSONWriter[T any] struct {
	Indent string
}

// NewJSONWriter creates a compact JSONWriter.
func NewJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{}
}

// NewPrettyJSONWriter creates a pretty-printing JSONWriter.
func NewPrettyJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{Indent: "  "}
}

// Write writes data as JSON to dst.
func (w *JSONWriter[T]) Write(data T, dst io.Writer) error {
	encoder := json.NewEncoder(dst)
	if w.Indent != "" {
		encoder.SetIndent("", w.Indent)
	}
	return encoder.Encode(data)
}

// WriteToFile writes data as JSON to filepath.
func (w *JSONWriter[T]) WriteToFile(data T, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()
	return w.Write(data, file)
}

// GzipJSONWriter writes data as gzipped JSON, for archiving large sweep
// summaries. Adapted from the teacher's GzipWriter[T].
type GzipJSONWriter[T any] struct {
	CompressionLevel int
}

// NewGzipJSONWriter creates a GzipJSONWriter with default compression.
func NewGzipJSONWriter[T any]() *GzipJSONWriter[T] {
	return &GzipJSONWriter[T]{CompressionLevel: gzip.DefaultCompression}
}

// WriteToFile writes data as gzipped JSON to filepath.
func (w *GzipJSONWriter[T]) WriteToFile(data T, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzWriter, err := gzip.NewWriterLevel(file, w.CompressionLevel)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}
	return gzWriter.Close()
}
