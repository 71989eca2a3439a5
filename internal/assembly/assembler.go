// Package assembly runs a corruption policy over every eligible genome of a
// clean matrix and collects the paired (corrupted ‖ clean) rows.
package assembly

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"genomecorrupt/internal/corruption"
	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/vocab"
)

// DefaultThreshold is the minimum module count a genome needs to be corrupted.
const DefaultThreshold = 10

// Translator maps a matrix genome id to the key its decomposition is stored under.
type Translator func(genomeID string) (string, bool)

// Identity uses genome ids as decomposition keys.
func Identity(id string) (string, bool) { return id, true }

// Options configures an Assembler.
type Options struct {
	Replicates int
	Threshold  int
	Seed       uint64
	Workers    int
	Logger     *zap.Logger
}

// Input is the read-only material of one run.
type Input struct {
	Matrix         *vocab.Matrix
	Translate      Translator
	Decompositions map[string]domain.Decomposition
}

// Report describes what a run did besides producing rows.
type Report struct {
	Policy   string
	Seed     uint64
	Eligible []string
	Skipped  []string
	Rows     int
}

// Assembler applies one policy to every eligible genome, Replicates times.
type Assembler struct {
	policy domain.Policy
	opts   Options
	log    *zap.Logger
}

// New validates options and returns an Assembler.
func New(policy domain.Policy, opts Options) (*Assembler, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: nil policy", corruption.ErrInvalidParams)
	}
	if opts.Replicates < 1 {
		return nil, fmt.Errorf("%w: replicates must be >= 1, got %d", corruption.ErrInvalidParams, opts.Replicates)
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{policy: policy, opts: opts, log: log.With(zap.String("policy", policy.Name()))}, nil
}

type genomeResult struct {
	rows    []domain.Row
	skipped bool
}

// Run corrupts every eligible genome and returns rows in genome-major,
// replicate-minor order. Each genome draws from its own random stream keyed
// by (seed, row index), so the output does not depend on Workers. Any error
// aborts the run and no rows are returned.
func (a *Assembler) Run(ctx context.Context, in Input) (domain.Dataset, Report, error) {
	report := Report{Policy: a.policy.Name(), Seed: a.opts.Seed}
	if in.Matrix == nil {
		return domain.Dataset{}, report, fmt.Errorf("%w: nil matrix", corruption.ErrInvalidParams)
	}
	translate := in.Translate
	if translate == nil {
		translate = Identity
	}
	genomes := in.Matrix.Genomes()
	results := make([]genomeResult, len(genomes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, id := range genomes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.genome(i, id, in, translate)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Error("corruption run aborted", zap.Error(err))
		return domain.Dataset{}, report, err
	}

	ds := domain.Dataset{Width: 2 * in.Matrix.Width()}
	for i, res := range results {
		if res.skipped {
			report.Skipped = append(report.Skipped, genomes[i])
			continue
		}
		report.Eligible = append(report.Eligible, genomes[i])
		ds.Rows = append(ds.Rows, res.rows...)
	}
	report.Rows = len(ds.Rows)
	a.log.Info("corruption run complete",
		zap.Int("eligible", len(report.Eligible)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("rows", report.Rows),
		zap.Uint64("seed", report.Seed))
	return ds, report, nil
}

func (a *Assembler) genome(i int, id string, in Input, translate Translator) (genomeResult, error) {
	key, ok := translate(id)
	if !ok {
		return genomeResult{}, fmt.Errorf("%w: no translation for %s", corruption.ErrUnknownGenome, id)
	}
	d, ok := in.Decompositions[key]
	if !ok {
		return genomeResult{}, fmt.Errorf("%w: no module decomposition for %s (%s)", corruption.ErrUnknownGenome, id, key)
	}
	if d.Len() < a.opts.Threshold {
		a.log.Debug("genome below module threshold", zap.String("genome", id), zap.Int("modules", d.Len()), zap.Int("threshold", a.opts.Threshold))
		return genomeResult{skipped: true}, nil
	}
	clean := in.Matrix.Row(i)
	genome := domain.Genome{ID: id, Modules: d, Clean: clean}
	rng := corruption.NewRand(a.opts.Seed, uint64(i))
	rows := make([]domain.Row, 0, a.opts.Replicates)
	for r := 0; r < a.opts.Replicates; r++ {
		s, err := a.policy.Corrupt(genome, rng)
		if err != nil {
			return genomeResult{}, fmt.Errorf("genome %s replicate %d: %w", id, r, err)
		}
		rows = append(rows, domain.NewRow(s, clean, r))
	}
	return genomeResult{rows: rows}, nil
}
