// Package fetch acquires the reference datasets: the UniProt FASTA and
// flat-file sets for a species, the CORUM all-complexes archive, and the
// species PANTHER classification file. Every download is skipped when the
// target file already exists, so reruns reuse previously fetched data.
package fetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"protannot/internal/extdata"
	"protannot/internal/isoform"
)

// Default dataset endpoints.
const (
	DefaultUniProtBaseURL = "https://www.uniprot.org/uniprot/?include=yes&"
	DefaultCORUMURL       = "http://mips.helmholtz-muenchen.de/corum/download/allComplexes.json.zip"
	DefaultPANTHERBaseURL = "http://data.pantherdb.org/ftp/sequence_classifications/current_release/PANTHER_Sequence_Classification_files/"
)

// Config points the fetcher at the dataset endpoints. Zero fields fall back
// to the defaults above.
type Config struct {
	UniProtBaseURL string
	CORUMURL       string
	PANTHERBaseURL string
}

// Fetcher downloads datasets over HTTP.
type Fetcher struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// New constructs a fetcher; log may be nil.
func New(cfg Config, log *zap.Logger) *Fetcher {
	if cfg.UniProtBaseURL == "" {
		cfg.UniProtBaseURL = DefaultUniProtBaseURL
	}
	if cfg.CORUMURL == "" {
		cfg.CORUMURL = DefaultCORUMURL
	}
	if cfg.PANTHERBaseURL == "" {
		cfg.PANTHERBaseURL = DefaultPANTHERBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	// dataset downloads are large; the timeout guards hung transfers, not
	// slow ones
	return &Fetcher{cfg: cfg, client: &http.Client{Timeout: 30 * time.Minute}, log: log}
}

// uniprotURL builds the species dataset query. The proteome filter selects by
// proteome id, otherwise by organism name plus taxonomy id.
func (f *Fetcher) uniprotURL(sp extdata.Species, format string, byProteome, reviewedOnly bool) string {
	url := f.cfg.UniProtBaseURL
	if byProteome {
		url += "query=proteome:" + sp.Proteome
	} else {
		url += "query=organism:" + sp.Name + "+taxonomy:" + sp.Taxonomy
	}
	if reviewedOnly {
		url += "&fil=reviewed:yes"
	}
	return url + "&format=" + format
}

// FetchUniProtFASTA downloads the species FASTA (all isoforms) into dest.
func (f *Fetcher) FetchUniProtFASTA(ctx context.Context, sp extdata.Species, dest string, byProteome, reviewedOnly bool) error {
	return f.download(ctx, f.uniprotURL(sp, "fasta", byProteome, reviewedOnly), dest)
}

// FetchUniProtData downloads the species flat-file dataset into dest.
func (f *Fetcher) FetchUniProtData(ctx context.Context, sp extdata.Species, dest string) error {
	return f.download(ctx, f.uniprotURL(sp, "txt", false, false), dest)
}

// DedupFASTA rewrites the FASTA at path with duplicate sequences pruned,
// keeping the record with the smaller accession. The rewrite goes through a
// temp file so a failure leaves the original in place.
func (f *Fetcher) DedupFASTA(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fasta: %w", err)
	}
	defer func() { _ = in.Close() }()
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dedup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := isoform.Deduplicate(in, tmp, f.log); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("deduplicate %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

// FetchCORUM downloads the all-complexes zip and extracts its contents into
// dest's directory. dest names the extracted JSON file used as the
// freshness marker.
func (f *Fetcher) FetchCORUM(ctx context.Context, dest string) error {
	if f.cached(dest) {
		return nil
	}
	archivePath := dest + ".zip"
	if err := f.download(ctx, f.cfg.CORUMURL, archivePath); err != nil {
		return err
	}
	if err := extractZip(archivePath, filepath.Dir(dest)); err != nil {
		return fmt.Errorf("extract %s: %w", archivePath, err)
	}
	return nil
}

// FetchPANTHER lists the classification directory, picks the species file by
// name, and downloads it into dest.
func (f *Fetcher) FetchPANTHER(ctx context.Context, species, dest string) error {
	if f.cached(dest) {
		return nil
	}
	listing, err := f.get(ctx, f.cfg.PANTHERBaseURL)
	if err != nil {
		return fmt.Errorf("list classifications: %w", err)
	}
	defer func() { _ = listing.Body.Close() }()
	body, err := io.ReadAll(listing.Body)
	if err != nil {
		return fmt.Errorf("read classification listing: %w", err)
	}
	pattern := regexp.MustCompile(`(?im)\s*(PTHR[^_]*_` + regexp.QuoteMeta(species) + `)`)
	m := pattern.FindSubmatch(body)
	if m == nil {
		return fmt.Errorf("no classification file for species %q", species)
	}
	return f.download(ctx, f.cfg.PANTHERBaseURL+string(m[1]), dest)
}

func (f *Fetcher) cached(dest string) bool {
	if _, err := os.Stat(dest); err == nil {
		f.log.Info("dataset cached", zap.String("path", dest))
		return true
	}
	return false
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}
	return resp, nil
}

// download streams url into dest unless dest already exists. Gzip payloads
// (".gz" paths or gzip content encoding) are decompressed on the way down.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	if f.cached(dest) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}
	f.log.Info("downloading dataset", zap.String("url", url), zap.String("path", dest))

	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var src io.Reader = resp.Body
	if strings.HasSuffix(strings.SplitN(url, "?", 2)[0], ".gz") ||
		strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := pgzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer func() { _ = zr.Close() }()
		src = zr
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}

// extractZip unpacks every regular file of the archive into dir, rejecting
// entries that would escape it.
func extractZip(path, dir string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }()
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := filepath.Clean(entry.Name)
		if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
			return fmt.Errorf("unsafe archive entry %q", entry.Name)
		}
		target := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractZipEntry(entry, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
