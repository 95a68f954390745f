package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed missions.yaml samples.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
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

// MissionsYAML returns the embedded default mission catalog.
func MissionsYAML() ([]byte, error) {
	return FS.ReadFile("missions.yaml")
}

// SamplesList returns the embedded pool of training sentences, one per line.
// Blank lines and #-comments are skipped.
func SamplesList() ([]string, error) {
	return readLines("samples.txt")
}
