package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"protannot/internal/config"
	"protannot/internal/fetch"
)

var dedup bool

func init() {
	fetchCmd.Flags().BoolVar(&dedup, "dedup", false, "prune duplicate sequences from the fetched FASTA")
}

// datasets names the on-disk locations of the species reference files.
type datasets struct {
	UniProt string
	FASTA   string
	CORUM   string
	PANTHER string
}

func datasetPaths(cfg config.Config) datasets {
	dir := filepath.Join(cfg.DataDir, cfg.Species)
	return datasets{
		UniProt: filepath.Join(dir, "uniprot.dat"),
		FASTA:   filepath.Join(dir, "proteins.fasta"),
		CORUM:   filepath.Join(dir, "allComplexes.json"),
		PANTHER: filepath.Join(dir, "panther.dat"),
	}
}

// fetchDatasets downloads every missing reference file for the species.
func fetchDatasets(ctx context.Context, cfg config.Config) error {
	paths := datasetPaths(cfg)
	f := fetch.New(fetch.Config{
		UniProtBaseURL: cfg.Datasets.UniProtBaseURL,
		CORUMURL:       cfg.Datasets.CORUMURL,
		PANTHERBaseURL: cfg.Datasets.PANTHERBaseURL,
	}, logger)
	sp := cfg.SpeciesInfo()

	if err := f.FetchUniProtFASTA(ctx, sp, paths.FASTA, false, false); err != nil {
		return err
	}
	if err := f.FetchUniProtData(ctx, sp, paths.UniProt); err != nil {
		return err
	}
	if err := f.FetchCORUM(ctx, paths.CORUM); err != nil {
		return err
	}
	if err := f.FetchPANTHER(ctx, cfg.Species, paths.PANTHER); err != nil {
		return err
	}
	if cfg.Datasets.DedupFASTA {
		return f.DedupFASTA(paths.FASTA)
	}
	return nil
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the reference datasets for a species",
	Long: `Downloads the UniProt flat-file and FASTA datasets, the CORUM
all-complexes archive, and the species PANTHER classification file.
Files already present are kept as-is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return fetchDatasets(cmd.Context(), cfg)
	},
}
