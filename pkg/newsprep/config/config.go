package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/newsprep/pkg/newsprep/dataset"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

// Source formats accepted by a job.
const (
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatJSONL = "jsonl"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file with a terms list, or from
// a plain .txt file with one word per line. Blank lines and lines starting
// with # are skipped in text files.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		sl := &Stoplist{}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			sl.Terms = append(sl.Terms, line)
		}
		return sl, sc.Err()
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Job describes one preprocessing run.
type Job struct {
	Input      string   `yaml:"input"`
	Output     string   `yaml:"output"`
	Format     string   `yaml:"format"`
	Column     string   `yaml:"column"`
	Columns    []string `yaml:"columns"`
	ChunkSize  int      `yaml:"chunk_size"`
	Workers    int      `yaml:"workers"`
	ListFormat string   `yaml:"list_format"`
	StripHTML  bool     `yaml:"strip_html"`
	Stoplist   string   `yaml:"stoplist"`
	// StopwordsAdd and StopwordsKeep adjust the stoplist after loading.
	StopwordsAdd  []string `yaml:"stopwords_add"`
	StopwordsKeep []string `yaml:"stopwords_keep"`

	// Stats collects vocabulary statistics while the job runs.
	Stats  bool   `yaml:"stats"`
	RunsDB string `yaml:"runs_db"`
}

// LoadJob loads a job from a YAML file. The result is not validated.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &job, nil
}

// SourceFormat returns the configured format, or one inferred from the
// input file extension.
func (j *Job) SourceFormat() string {
	if j.Format != "" {
		return strings.ToLower(j.Format)
	}
	switch strings.ToLower(filepath.Ext(j.Input)) {
	case ".tsv":
		return FormatTSV
	case ".jsonl", ".ndjson":
		return FormatJSONL
	}
	return FormatCSV
}

// Validate checks the job for missing or unknown settings.
func (j *Job) Validate() error {
	if j.Input == "" {
		return fmt.Errorf("input path is required: %w", internalerr.ErrInvalidConfig)
	}
	if j.Column == "" {
		return fmt.Errorf("text column is required: %w", internalerr.ErrInvalidConfig)
	}
	switch j.SourceFormat() {
	case FormatCSV, FormatTSV, FormatJSONL:
	default:
		return fmt.Errorf("unknown format %q: %w", j.Format, internalerr.ErrInvalidConfig)
	}
	if j.ChunkSize < 0 {
		return fmt.Errorf("chunk_size %d: %w", j.ChunkSize, internalerr.ErrInvalidConfig)
	}
	if j.Workers < 0 {
		return fmt.Errorf("workers %d: %w", j.Workers, internalerr.ErrInvalidConfig)
	}
	if _, err := dataset.ParseListFormat(j.ListFormat); err != nil {
		return err
	}
	return nil
}

// Loader returns a Loader for the job's stopword and markup settings.
func (j *Job) Loader() *Loader {
	return &Loader{
		StoplistPath:  j.Stoplist,
		StopwordsAdd:  j.StopwordsAdd,
		StopwordsKeep: j.StopwordsKeep,
		StripHTML:     j.StripHTML,
	}
}
