package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"genomecorrupt/internal/domain"
)

// Object names written under each run prefix.
const (
	DatasetObject    = "dataset.csv"
	ProvenanceObject = "provenance.jsonl"
	VocabularyObject = "vocabulary.txt"
	ManifestObject   = "manifest.json"
)

// RunMeta is the run bookkeeping recorded in the manifest.
type RunMeta struct {
	Policy   string
	Seed     uint64
	Eligible []string
	Skipped  []string
}

// Manifest describes one exported run.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Policy    string    `json:"policy"`
	Seed      uint64    `json:"seed"`
	Rows      int       `json:"rows"`
	Width     int       `json:"width"`
	Markers   int       `json:"markers"`
	Eligible  []string  `json:"eligible"`
	Skipped   []string  `json:"skipped"`
	CreatedAt time.Time `json:"created_at"`
	Objects   []Info    `json:"objects"`
}

type provenanceLine struct {
	Row       int      `json:"row"`
	Genome    string   `json:"genome"`
	Replicate int      `json:"replicate"`
	Retained  []string `json:"retained"`
}

// Exporter serialises datasets into a Store.
type Exporter struct {
	store  Store
	prefix string
	log    *zap.Logger
}

// NewExporter writes runs under prefix (may be empty).
func NewExporter(store Store, prefix string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{store: store, prefix: strings.Trim(prefix, "/"), log: log}
}

// Key returns the object key of name within a run.
func (e *Exporter) Key(runID, name string) string {
	return path.Join(e.prefix, runID, name)
}

// Export writes the dataset matrix, per-row provenance, the vocabulary and a
// manifest. An empty runID gets a fresh UUID. When any write fails the
// objects already written for the run are deleted again.
func (e *Exporter) Export(ctx context.Context, runID string, ds domain.Dataset, markers []string, meta RunMeta) (Manifest, error) {
	if 2*len(markers) != ds.Width {
		return Manifest{}, fmt.Errorf("%w: dataset width %d, %d markers", ErrWidthMismatch, ds.Width, len(markers))
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	m := Manifest{
		RunID:     runID,
		Policy:    meta.Policy,
		Seed:      meta.Seed,
		Rows:      ds.Len(),
		Width:     ds.Width,
		Markers:   len(markers),
		Eligible:  meta.Eligible,
		Skipped:   meta.Skipped,
		CreatedAt: time.Now().UTC(),
	}
	md := map[string]string{"run_id": runID, "policy": meta.Policy}

	dataset, err := encodeDataset(ds, markers)
	if err != nil {
		return Manifest{}, err
	}
	provenance, err := encodeProvenance(ds)
	if err != nil {
		return Manifest{}, err
	}
	vocabulary := []byte(strings.Join(markers, "\n") + "\n")

	var written []string
	put := func(name, contentType string, payload []byte) (Info, error) {
		key := e.Key(runID, name)
		info, err := e.store.Put(ctx, key, bytes.NewReader(payload), PutOptions{ContentType: contentType, Metadata: md})
		if err != nil {
			e.rollback(ctx, runID, written)
			return Info{}, fmt.Errorf("export %s: %w", name, err)
		}
		written = append(written, key)
		return info, nil
	}

	for _, obj := range []struct {
		name, contentType string
		payload           []byte
	}{
		{DatasetObject, "text/csv", dataset},
		{ProvenanceObject, "application/x-ndjson", provenance},
		{VocabularyObject, "text/plain", vocabulary},
	} {
		info, err := put(obj.name, obj.contentType, obj.payload)
		if err != nil {
			return Manifest{}, err
		}
		m.Objects = append(m.Objects, info)
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		e.rollback(ctx, runID, written)
		return Manifest{}, err
	}
	if _, err := put(ManifestObject, "application/json", manifest); err != nil {
		return Manifest{}, err
	}
	e.log.Info("dataset exported",
		zap.String("run_id", runID),
		zap.String("driver", string(e.store.Driver())),
		zap.String("key", e.Key(runID, "")),
		zap.Int("rows", m.Rows))
	return m, nil
}

// Discard deletes every object of an exported run.
func (e *Exporter) Discard(ctx context.Context, m Manifest) error {
	keys := make([]string, 0, len(m.Objects)+1)
	for _, o := range m.Objects {
		keys = append(keys, o.Key)
	}
	keys = append(keys, e.Key(m.RunID, ManifestObject))
	for _, k := range keys {
		if _, err := e.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("discard %s: %w", k, err)
		}
	}
	e.log.Info("export discarded", zap.String("run_id", m.RunID))
	return nil
}

func (e *Exporter) rollback(ctx context.Context, runID string, keys []string) {
	for _, k := range keys {
		if _, err := e.store.Delete(ctx, k); err != nil {
			e.log.Warn("export rollback failed", zap.String("run_id", runID), zap.String("key", k), zap.Error(err))
		}
	}
}

func encodeDataset(ds domain.Dataset, markers []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, 0, 2+ds.Width)
	header = append(header, "genome", "replicate")
	for _, m := range markers {
		header = append(header, "corrupted:"+m)
	}
	for _, m := range markers {
		header = append(header, "clean:"+m)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	record := make([]string, len(header))
	for i, r := range ds.Rows {
		if len(r.Vector) != ds.Width {
			return nil, fmt.Errorf("%w: row %d (%s) has width %d, want %d", ErrWidthMismatch, i, r.GenomeID, len(r.Vector), ds.Width)
		}
		record[0] = r.GenomeID
		record[1] = strconv.Itoa(r.Replicate)
		for j, v := range r.Vector {
			if v != 0 {
				record[2+j] = "1"
			} else {
				record[2+j] = "0"
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeProvenance(ds domain.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, r := range ds.Rows {
		retained := r.Retained
		if retained == nil {
			retained = []string{}
		}
		if err := enc.Encode(provenanceLine{Row: i, Genome: r.GenomeID, Replicate: r.Replicate, Retained: retained}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
