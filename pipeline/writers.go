package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/go-scrape-products/models"
)

// NewWriter builds the dump writer for format. An empty filename disables
// dumping and returns a nil writer.
func NewWriter(format, filename string) (DumpWriter, error) {
	if filename == "" {
		return nil, nil
	}
	var (
		writer DumpWriter
		err    error
	)
	switch strings.ToLower(format) {
	case "", "json":
		writer, err = NewJSONWriter(filename)
	case "csv":
		writer, err = NewCSVWriter(filename)
	case "dual":
		base := strings.TrimSuffix(filename, filepath.Ext(filename))
		writer, err = NewDualWriter(base+".csv", base+".json")
	default:
		return nil, fmt.Errorf("unknown dump format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return writer, nil
}

// CSVWriter appends the products of every search to one CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

var csvHeader = []string{"query", "source", "title", "price", "rating", "review_count", "url", "image", "moq", "generated_at"}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends one row per returned product.
func (cw *CSVWriter) Write(dump *models.SearchDump) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, product := range dump.Products {
		moq := ""
		if product.MOQ != nil {
			moq = strconv.Itoa(*product.MOQ)
		}
		record := []string{
			dump.Query.Text,
			product.Source,
			product.Title,
			product.Price,
			strconv.FormatFloat(product.Rating, 'f', -1, 64),
			strconv.Itoa(product.ReviewCount),
			product.URL,
			product.Image,
			moq,
			dump.GeneratedAt,
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter keeps the latest search as one indented JSON document; each
// Write replaces the previous one.
type JSONWriter struct {
	file *os.File
	mu   sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}
	return &JSONWriter{file: f}, nil
}

// Write replaces the file contents with dump.
func (jw *JSONWriter) Write(dump *models.SearchDump) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate json file: %w", err)
	}
	if _, err := jw.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind json file: %w", err)
	}

	buffer := bufio.NewWriter(jw.file)
	encoder := json.NewEncoder(buffer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dump); err != nil {
		return fmt.Errorf("encode search dump: %w", err)
	}
	if err := buffer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
