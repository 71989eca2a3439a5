package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadHoldout returns the first column of a CSV, header row excluded.
func ReadHoldout(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var out []string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) == 0 {
			continue
		}
		if id := strings.TrimSpace(rec[0]); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// LoadHoldout reads a holdout reference from disk.
func LoadHoldout(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ids, err := ReadHoldout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ids, nil
}

// Split partitions ids into train and test sets, keeping input order. An id
// is test when it appears in holdout.
func Split(ids, holdout []string) (train, test []string) {
	held := make(map[string]struct{}, len(holdout))
	for _, h := range holdout {
		held[h] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := held[id]; ok {
			test = append(test, id)
		} else {
			train = append(train, id)
		}
	}
	return train, test
}
