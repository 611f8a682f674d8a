package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/pwnholic/observador/internal/document"
)

// Record is one export job as it arrives from the records service.
type Record struct {
	Student      document.Student        `json:"estudiante"`
	Observations document.ObservationSet `json:"observaciones"`
	Filename     string                  `json:"archivo,omitempty"`
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// readRecords decodes a single record object or an array of them. label is a
// charset label understood by golang.org/x/net/html/charset; empty means
// UTF-8.
func readRecords(r io.Reader, label string) ([]Record, error) {
	if label != "" && !strings.EqualFold(label, "utf-8") && !strings.EqualFold(label, "utf8") {
		decoded, err := charset.NewReaderLabel(label, r)
		if err != nil {
			return nil, fmt.Errorf("unsupported input encoding %q: %w", label, err)
		}
		r = decoded
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	if data[0] == '[' {
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("input holds no records")
		}
		return records, nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return []Record{record}, nil
}
