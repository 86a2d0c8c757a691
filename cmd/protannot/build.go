package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"protannot/internal/annotcache"
	"protannot/internal/archive"
	"protannot/internal/blob"
	"protannot/internal/config"
	"protannot/internal/extdata"
	"protannot/internal/isoform"
	"protannot/internal/pipeline"
	"protannot/internal/record"
)

var skipFetch bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the annotation report for a species",
	Long: `Fetches any missing reference datasets, then parses every protein
record, expands isoforms, extracts cross-references, and writes the
merged tab-separated report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runBuild(cmd.Context(), cfg)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&output, "output", "o", "", "report output path")
	buildCmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "fail instead of downloading missing datasets")
	buildCmd.Flags().BoolVar(&dedup, "dedup", false, "prune duplicate sequences from the fetched FASTA")
}

func runBuild(ctx context.Context, cfg config.Config) error {
	if !skipFetch {
		if err := fetchDatasets(ctx, cfg); err != nil {
			return err
		}
	}
	paths := datasetPaths(cfg)

	seqs, err := isoform.ReadIndexFile(paths.FASTA)
	if err != nil {
		return fmt.Errorf("read sequence side-table: %w", err)
	}
	complexes, err := loadComplexes(paths.CORUM)
	if err != nil {
		return err
	}
	families, err := loadFamilies(paths.PANTHER)
	if err != nil {
		return err
	}
	store, err := openCacheStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open annotation cache: %w", err)
	}
	cache := annotcache.New(store,
		annotcache.NewKEGGFetcher(cfg.KEGGBaseURL),
		annotcache.ParsePathways, "kegg", logger)

	p := pipeline.New(pipeline.Options{
		Species:   cfg.SpeciesInfo(),
		Diseases:  cfg.Families.Diseases,
		Drugs:     cfg.Families.Drugs,
		Sequences: seqs,
		Pathways:  cache,
		Families:  families,
		Complexes: complexes,
		Metrics:   pipeline.NewExpvarMetricsRecorder("protannot"),
		Log:       logger,
	})

	f, err := os.Open(paths.UniProt)
	if err != nil {
		return fmt.Errorf("open protein dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := p.Run(ctx, record.NewReader(f)); err != nil {
		return err
	}
	if err := p.WriteReport(ctx, cfg.Output); err != nil {
		return err
	}
	return archiveReport(ctx, cfg, p)
}

// loadComplexes reads the CORUM table; a missing file disables the family.
func loadComplexes(path string) (*extdata.ComplexTable, error) {
	table, err := extdata.ReadComplexTableFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("complex table missing, CORUM column will stay empty", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read complex table: %w", err)
	}
	return table, nil
}

// loadFamilies reads the PANTHER table; a missing file disables the family.
func loadFamilies(path string) (*extdata.ClassificationTable, error) {
	table, err := extdata.ReadClassificationTableFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("classification table missing, PANTHER column will stay empty", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read classification table: %w", err)
	}
	return table, nil
}

func openCacheStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	return blob.Open(ctx, blob.Options{
		Driver: blob.Driver(cfg.Cache.Driver),
		Root:   filepath.Join(cfg.Cache.Root, cfg.Species),
	})
}

// archiveReport saves the finished run when an archive backend is configured.
func archiveReport(ctx context.Context, cfg config.Config, p *pipeline.Pipeline) error {
	if cfg.Archive.Driver == "" {
		return nil
	}
	arch, err := archive.Open(ctx, archive.Options{
		Driver:      archive.Driver(cfg.Archive.Driver),
		SQLitePath:  cfg.Archive.SQLitePath,
		PostgresDSN: cfg.Archive.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("open report archive: %w", err)
	}
	defer func() { _ = arch.Close() }()
	id := cfg.Species + "-" + time.Now().UTC().Format("200601021504")
	return p.ArchiveRun(ctx, arch, id)
}
