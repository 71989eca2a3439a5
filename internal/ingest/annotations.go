package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var markerRe = regexp.MustCompile(`^K\d{5}`)

// ReadAnnotations extracts marker ids from one annotation file: lines that
// contain a link and whose third field looks like a marker.
func ReadAnnotations(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		text := sc.Text()
		if !strings.Contains(text, "<a href=") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			continue
		}
		if markerRe.MatchString(fields[2]) {
			out = append(out, fields[2])
		}
	}
	return out, sc.Err()
}

// AliasOf returns the genome alias encoded in an annotation file name.
func AliasOf(name string) string {
	base := filepath.Base(name)
	alias, _, _ := strings.Cut(base, "_")
	return alias
}

// LoadAnnotationDir reads the annotation files named in listing (one per
// line, relative to dir) and returns markers keyed by genome id. Files whose
// alias is not selected are skipped.
func LoadAnnotationDir(listing, dir string, sel *Selection, log *zap.Logger) (map[string][]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.Open(listing)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string][]string)
	skipped := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		id, ok := sel.ID(AliasOf(name))
		if !ok {
			skipped++
			continue
		}
		markers, err := readAnnotationFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out[id] = markers
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", listing, err)
	}
	log.Debug("annotations loaded", zap.Int("genomes", len(out)), zap.Int("skipped", skipped))
	return out, nil
}

func readAnnotationFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	markers, err := ReadAnnotations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return markers, nil
}
