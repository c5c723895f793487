package sheet

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reminder_notifier/internal/domain/reminder"

	"gopkg.in/yaml.v3"
)

// yamlRow mirrors reminder.Record; scalars decode as their literal text so
// "0900" stays "0900".
type yamlRow struct {
	Activity  string `yaml:"activity"`
	Unit      string `yaml:"unit"`
	Frequency string `yaml:"frequency"`
	Date      string `yaml:"date"`
	Time      string `yaml:"time"`
}

type yamlDocument struct {
	Reminders []yamlRow `yaml:"reminders"`
}

// FileSource re-reads a local YAML or CSV file on every Fetch, so edits
// take effect on the next cycle.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(ctx context.Context) ([]reminder.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading reminders file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	default:
		return ParseYAML(data)
	}
}

// ParseYAML reads a document with a top-level "reminders" list.
func ParseYAML(data []byte) ([]reminder.Record, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing reminders yaml: %w", err)
	}
	records := make([]reminder.Record, 0, len(doc.Reminders))
	for _, r := range doc.Reminders {
		records = append(records, reminder.Record(r))
	}
	return records, nil
}
