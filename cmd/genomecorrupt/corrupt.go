package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genomecorrupt/internal/artifact"
	"genomecorrupt/internal/artifact/fs"
	artifactmem "genomecorrupt/internal/artifact/memory"
	"genomecorrupt/internal/artifact/s3"
	"genomecorrupt/internal/assembly"
	"genomecorrupt/internal/config"
	"genomecorrupt/internal/corruption"
	"genomecorrupt/internal/domain"
	"genomecorrupt/internal/ingest"
	"genomecorrupt/internal/modules"
	"genomecorrupt/internal/store"
	"genomecorrupt/internal/store/memory"
	"genomecorrupt/internal/store/sqlite"
	"genomecorrupt/internal/summary"
	"genomecorrupt/internal/tui"
	"genomecorrupt/internal/vocab"
)

var corruptFlags struct {
	policy     string
	replicates int
	seed       uint64
	workers    int
	split      string
	storeType  string
	exportType string
	inspect    bool
}

var corruptCmd = &cobra.Command{
	Use:   "corrupt",
	Short: "Assemble a corrupted/clean dataset",
	Long: `Loads the selection list, annotations and module mapping, corrupts every
genome with enough modules and writes the rows to the configured store and
artifact export. Flags override the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyCorruptFlags(cmd, cfg)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := runCorrupt(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer res.close()
		fmt.Fprintln(cmd.OutOrStdout(), res.summary)
		if res.manifest != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "exported run %s\n", res.manifest.RunID)
		}
		if !corruptFlags.inspect {
			return nil
		}
		_, err = tea.NewProgram(tui.New(res.storage, res.summary)).Run()
		return err
	},
}

func init() {
	f := corruptCmd.Flags()
	f.StringVar(&corruptFlags.policy, "policy", "", "Corruption policy name or alias (v0-v3)")
	f.IntVar(&corruptFlags.replicates, "replicates", 0, "Corrupted samples per genome")
	f.Uint64Var(&corruptFlags.seed, "seed", 0, "Random seed (drawn and logged when unset)")
	f.IntVar(&corruptFlags.workers, "workers", 0, "Genomes corrupted in parallel")
	f.StringVar(&corruptFlags.split, "split", "", "Genomes to use: all, train or test")
	f.StringVar(&corruptFlags.storeType, "store", "", "Row store: memory or sqlite")
	f.StringVar(&corruptFlags.exportType, "export", "", "Artifact export: none, memory, fs or s3")
	f.BoolVar(&corruptFlags.inspect, "inspect", false, "Open the inspector when the run finishes")
}

func applyCorruptFlags(cmd *cobra.Command, c *config.AppConfig) {
	f := cmd.Flags()
	if f.Changed("policy") {
		c.Corruption.Policy = corruptFlags.policy
	}
	if f.Changed("replicates") {
		c.Corruption.Replicates = corruptFlags.replicates
	}
	if f.Changed("seed") {
		seed := corruptFlags.seed
		c.Corruption.Seed = &seed
	}
	if f.Changed("workers") {
		c.Corruption.Workers = corruptFlags.workers
	}
	if f.Changed("split") {
		c.Corruption.Split = corruptFlags.split
	}
	if f.Changed("store") {
		c.Store.Type = corruptFlags.storeType
		if c.Store.Type == "sqlite" && c.Store.SQLite == nil {
			c.Store.SQLite = &config.SQLiteConfig{Path: "genomecorrupt.db"}
		}
	}
	if f.Changed("export") {
		c.Export.Type = corruptFlags.exportType
		if c.Export.Type == "fs" && c.Export.FS == nil {
			c.Export.FS = &config.FSExportConfig{Root: "artifacts"}
		}
	}
}

type corruptResult struct {
	dataset  domain.Dataset
	report   assembly.Report
	markers  []string
	storage  store.Storage
	manifest *artifact.Manifest
	summary  string
	close    func()
}

// runCorrupt executes one full run. Nothing is stored or exported when
// assembly fails.
func runCorrupt(ctx context.Context, c *config.AppConfig, log *zap.Logger) (*corruptResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	in, err := loadInputs(c, log)
	if err != nil {
		return nil, err
	}

	corpus, err := corruption.NewCorpus(in.vocab, in.canonical)
	if err != nil {
		return nil, err
	}
	policy, err := corruption.New(c.Corruption.Policy, corpus, corruption.Params{
		TargetModules:    c.Corruption.TargetModules,
		Fraction:         c.Corruption.Fraction,
		UseCanonical:     c.Corruption.UseCanonical,
		LegacyProvenance: c.Corruption.LegacyProvenance,
	})
	if err != nil {
		return nil, err
	}

	var seed uint64
	if c.Corruption.Seed != nil {
		seed = *c.Corruption.Seed
	} else {
		seed = rand.Uint64()
		log.Info("no seed configured, drew one", zap.Uint64("seed", seed))
	}
	asm, err := assembly.New(policy, assembly.Options{
		Replicates: c.Corruption.Replicates,
		Threshold:  c.Corruption.Threshold,
		Seed:       seed,
		Workers:    c.Corruption.Workers,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	ds, report, err := asm.Run(ctx, assembly.Input{
		Matrix:         in.matrix,
		Translate:      in.selection.Alias,
		Decompositions: in.decomps,
	})
	if err != nil {
		return nil, err
	}

	text, err := summary.NewFrequency(len(report.Skipped)).Summarize(ds, summary.DefaultTop)
	if err != nil {
		return nil, err
	}

	// Export before storing rows: the exporter cleans up after itself, and a
	// failed store write can still discard a finished export.
	markers := in.vocab.Markers()
	st, closeStore, err := openStorage(c.Store)
	if err != nil {
		return nil, err
	}
	res := &corruptResult{
		dataset: ds,
		report:  report,
		markers: markers,
		storage: st,
		summary: fmt.Sprintf("%s [%s, seed %d]", text, report.Policy, report.Seed),
		close:   closeStore,
	}

	var exporter *artifact.Exporter
	if c.Export.Type != "none" {
		as, err := openArtifacts(ctx, c.Export)
		if err != nil {
			closeStore()
			return nil, err
		}
		exporter = artifact.NewExporter(as, c.Export.Prefix, log)
		m, err := exporter.Export(ctx, "", ds, markers, artifact.RunMeta{
			Policy:   report.Policy,
			Seed:     report.Seed,
			Eligible: report.Eligible,
			Skipped:  report.Skipped,
		})
		if err != nil {
			closeStore()
			return nil, err
		}
		res.manifest = &m
	}

	if err := storeRows(ctx, st, markers, ds.Rows); err != nil {
		if res.manifest != nil {
			if derr := exporter.Discard(ctx, *res.manifest); derr != nil {
				log.Warn("could not discard export", zap.String("run_id", res.manifest.RunID), zap.Error(derr))
			}
		}
		closeStore()
		return nil, err
	}
	return res, nil
}

// storeRows replaces the store contents with rows. A failed append leaves
// the store empty.
func storeRows(ctx context.Context, st store.Storage, markers []string, rows []domain.Row) error {
	if err := st.Init(ctx, markers); err != nil {
		return err
	}
	if err := st.Append(ctx, rows); err != nil {
		_ = st.Clear(ctx)
		return err
	}
	return nil
}

type inputs struct {
	selection *ingest.Selection
	vocab     *vocab.Vocabulary
	matrix    *vocab.Matrix
	canonical *modules.Canonical
	decomps   map[string]domain.Decomposition
}

func loadInputs(c *config.AppConfig, log *zap.Logger) (*inputs, error) {
	sel, err := ingest.LoadSelection(c.Inputs.Selection, c.Inputs.Taxon)
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	annotations, err := ingest.LoadAnnotationDir(c.Inputs.AnnotationList, c.Inputs.AnnotationDir, sel, log)
	if err != nil {
		return nil, fmt.Errorf("annotations: %w", err)
	}
	mm, err := ingest.LoadModules(c.Inputs.Modules)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	// Only genomes with both annotations and a decomposition become rows.
	var annotated, usable []string
	for _, id := range sel.IDs {
		if _, ok := annotations[id]; !ok {
			continue
		}
		annotated = append(annotated, id)
		if alias, _ := sel.Alias(id); hasKey(mm.Decompositions, alias) {
			usable = append(usable, id)
		}
	}
	usable, err = applySplit(c, usable)
	if err != nil {
		return nil, err
	}

	v, err := vocab.Build(annotated, annotations)
	if err != nil {
		return nil, err
	}
	matrix, err := vocab.BuildMatrix(v, usable, annotations)
	if err != nil {
		return nil, err
	}

	canonical := modules.CountVariants(mm.Order, mm.Decompositions).Canonical()
	decomps, removed := modules.Exclude(mm.Decompositions, c.Exclusions)
	log.Info("inputs loaded",
		zap.Int("selected", sel.Len()),
		zap.Int("annotated", len(annotated)),
		zap.Int("genomes", len(usable)),
		zap.Int("markers", v.Size()),
		zap.Int("modules", canonical.Len()),
		zap.Int("excluded", removed))
	return &inputs{selection: sel, vocab: v, matrix: matrix, canonical: canonical, decomps: decomps}, nil
}

func applySplit(c *config.AppConfig, ids []string) ([]string, error) {
	switch c.Corruption.Split {
	case "all", "":
		return ids, nil
	case "train", "test":
		if c.Inputs.Holdout == "" {
			return nil, fmt.Errorf("%w: split %q needs inputs.holdout", corruption.ErrInvalidParams, c.Corruption.Split)
		}
		holdout, err := ingest.LoadHoldout(c.Inputs.Holdout)
		if err != nil {
			return nil, fmt.Errorf("holdout: %w", err)
		}
		train, test := ingest.Split(ids, holdout)
		if c.Corruption.Split == "train" {
			return train, nil
		}
		return test, nil
	default:
		return nil, fmt.Errorf("%w: unknown split %q", corruption.ErrInvalidParams, c.Corruption.Split)
	}
}

func hasKey(m map[string]domain.Decomposition, k string) bool {
	_, ok := m[k]
	return ok
}

func openStorage(sc config.StoreConfig) (store.Storage, func(), error) {
	switch sc.Type {
	case "memory", "":
		return memory.NewStorage(), func() {}, nil
	case "sqlite":
		path := ""
		if sc.SQLite != nil {
			path = sc.SQLite.Path
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", corruption.ErrInvalidParams, sc.Type)
	}
}

func openArtifacts(ctx context.Context, ec config.ExportConfig) (artifact.Store, error) {
	switch ec.Type {
	case "memory":
		return artifactmem.New(), nil
	case "fs":
		root := "artifacts"
		if ec.FS != nil && ec.FS.Root != "" {
			root = ec.FS.Root
		}
		s, err := fs.New(root)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		var sc s3.Config
		if ec.S3 != nil {
			sc = s3.Config{Region: ec.S3.Region, Bucket: ec.S3.Bucket, Endpoint: ec.S3.Endpoint, PathStyle: ec.S3.PathStyle}
		}
		s, err := s3.New(ctx, s3.ConfigFromEnv(sc))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown export %q", corruption.ErrInvalidParams, ec.Type)
	}
}
