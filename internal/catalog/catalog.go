// go-server/internal/catalog/catalog.go
//
// Provides mission catalog and sample pool management for the game engine.
//
// Responsibilities:
//   - Load the mission list from an environment-provided YAML file or fall
//     back to the embedded default catalog.
//   - Load the pool of training sentences the same way.
//   - Normalize mission combos on load so lookups and guard matching use
//     one canonical spelling.
//   - Supply accessors like Missions, At, Samples, PhaseNumber, and Stats.
//
// Initialization behavior (Init):
//   1. If CATALOG_FILE is set, load the mission list from that YAML file.
//   2. If SAMPLES_FILE is set, load training sentences from that file
//      (one per line, #-comments skipped).
//   3. Otherwise fall back to the embedded defaults in the assets package.
//
// Environment variables:
//   CATALOG_FILE=/path/to/missions.yaml
//   SAMPLES_FILE=/path/to/samples.txt
//
// Constraints:
//   • Every mission needs a label, a combo, a positive XP value and a
//     known task type.
//   • Initialization is run once (sync.Once).

package catalog

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/assets"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"
)

var (
	initOnce   sync.Once
	missions   []Mission
	samples    []string
	initialErr error
)

// phaseRE extracts the leading digit of a phase label ("Fase 2 - ..." → "2").
var phaseRE = regexp.MustCompile(`Fase\s+(\d)`)

type catalogFile struct {
	Missions []Mission `yaml:"missions"`
}

// Init loads the mission catalog and sample pool exactly once.
// Returns an error if either source is invalid or the catalog ends up empty.
func Init() error {
	initOnce.Do(func() {
		var raw []byte
		if path := os.Getenv("CATALOG_FILE"); path != "" {
			var err error
			raw, err = os.ReadFile(path)
			if err != nil {
				initialErr = fmt.Errorf("catalog: read %s: %w", path, err)
				return
			}
		} else {
			var err error
			raw, err = assets.MissionsYAML()
			if err != nil {
				initialErr = fmt.Errorf("catalog: embedded missions: %w", err)
				return
			}
		}

		list, err := parseMissions(raw)
		if err != nil {
			initialErr = err
			return
		}
		missions = list

		if path := os.Getenv("SAMPLES_FILE"); path != "" {
			samples, err = readSampleFile(path)
			if err != nil {
				initialErr = fmt.Errorf("catalog: read %s: %w", path, err)
				return
			}
		} else {
			samples, err = assets.SamplesList()
			if err != nil {
				initialErr = fmt.Errorf("catalog: embedded samples: %w", err)
				return
			}
		}
		if len(samples) == 0 {
			initialErr = fmt.Errorf("catalog: sample pool is empty")
		}
	})
	return initialErr
}

// parseMissions decodes and validates the YAML mission list, normalizing
// all combos to canonical form.
func parseMissions(raw []byte) ([]Mission, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(f.Missions) == 0 {
		return nil, fmt.Errorf("catalog: mission list is empty")
	}
	for i := range f.Missions {
		m := &f.Missions[i]
		if strings.TrimSpace(m.Label) == "" {
			return nil, fmt.Errorf("catalog: mission %d: missing label", i)
		}
		m.RealCombo = combo.Normalize(m.RealCombo)
		m.SafeCombo = combo.Normalize(m.SafeCombo)
		if m.RealCombo == "" {
			return nil, fmt.Errorf("catalog: mission %d (%s): missing combo", i, m.Label)
		}
		if m.SafeCombo == "" {
			m.SafeCombo = m.RealCombo
		}
		if m.XP <= 0 {
			return nil, fmt.Errorf("catalog: mission %d (%s): xp must be positive", i, m.Label)
		}
		if !m.TaskType.Valid() {
			return nil, fmt.Errorf("catalog: mission %d (%s): unknown task type %q", i, m.Label, m.TaskType)
		}
	}
	return f.Missions, nil
}

// readSampleFile loads one sentence per line, skipping blanks and #-comments.
func readSampleFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Missions returns the loaded mission list. Callers must treat it as
// read-only.
func Missions() []Mission {
	return missions
}

// Len returns the number of missions in the catalog.
func Len() int {
	return len(missions)
}

// At returns the mission at index i, or false when i is out of range.
func At(i int) (Mission, bool) {
	if i < 0 || i >= len(missions) {
		return Mission{}, false
	}
	return missions[i], true
}

// Samples returns the pool of training sentences. Callers must treat it
// as read-only.
func Samples() []string {
	return samples
}

// PhaseNumber extracts the digit from a phase label, defaulting to "1".
func PhaseNumber(phase string) string {
	if m := phaseRE.FindStringSubmatch(phase); m != nil {
		return m[1]
	}
	return "1"
}

// Stats returns counts of loaded entries: (missions, samples).
func Stats() (missionCount int, sampleCount int) {
	return len(missions), len(samples)
}
