// Package jobfile reads job definitions from YAML so schedules can be
// kept under version control and imported in bulk.
//
//	jobs:
//	  - name: nightly-backup
//	    schedule: "0 2 * * *"
//	  - name: reports
//	    schedule: "@weekly"
//	    enabled: false
package jobfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/livinlefevreloca/cronkit/internal/db"
	"github.com/livinlefevreloca/cronkit/lib/cron"
)

// Definition is one job entry in a job file.
type Definition struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"`
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the job should be enabled. Omitted means true.
func (d Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Job converts the definition into a store record without an ID.
func (d Definition) Job() *db.Job {
	return &db.Job{
		Name:     d.Name,
		Schedule: d.Schedule,
		Enabled:  d.IsEnabled(),
	}
}

type document struct {
	Jobs []Definition `yaml:"jobs"`
}

// Parse decodes and validates a job file payload. Names must be unique
// and every schedule must parse; errors name the offending entry.
func Parse(data []byte) ([]Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("jobfile: payload is empty")
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("jobfile: decode: %w", err)
	}

	if len(doc.Jobs) == 0 {
		return nil, fmt.Errorf("jobfile: no jobs defined")
	}

	seen := make(map[string]int, len(doc.Jobs))
	for i := range doc.Jobs {
		def := &doc.Jobs[i]
		def.Name = strings.TrimSpace(def.Name)
		def.Schedule = strings.TrimSpace(def.Schedule)

		if def.Name == "" {
			return nil, fmt.Errorf("jobfile: job %d: name is required", i+1)
		}
		if prev, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("jobfile: job %q defined twice (entries %d and %d)", def.Name, prev+1, i+1)
		}
		seen[def.Name] = i

		if def.Schedule == "" {
			return nil, fmt.Errorf("jobfile: job %q: schedule is required", def.Name)
		}
		if _, err := cron.ParseExpression(def.Schedule); err != nil {
			return nil, fmt.Errorf("jobfile: job %q: %w", def.Name, err)
		}
	}

	return doc.Jobs, nil
}

// Load reads and parses the job file at path.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jobfile: read %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}
