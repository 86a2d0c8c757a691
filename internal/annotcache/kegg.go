package annotcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultKEGGBaseURL is the public KEGG REST endpoint.
const DefaultKEGGBaseURL = "https://rest.kegg.jp"

// KEGGFetcher retrieves flat-file entries from the KEGG REST API.
type KEGGFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewKEGGFetcher returns a fetcher against baseURL (default: the public API).
func NewKEGGFetcher(baseURL string) *KEGGFetcher {
	if baseURL == "" {
		baseURL = DefaultKEGGBaseURL
	}
	return &KEGGFetcher{BaseURL: baseURL, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch issues GET <base>/get/<id> and returns the response body.
func (f *KEGGFetcher) Fetch(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/get/"+id, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kegg get %s: status %d", id, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var pathwayBlock = regexp.MustCompile(`(?m)(PATHWAY\s*[\w\W]*)`)

// ParsePathways reduces a KEGG flat-file entry to its PATHWAY block formatted
// as "id>name" pairs joined by ";". The block starts at the PATHWAY keyword
// and extends over the indented continuation lines that follow it; the first
// unindented line terminates it. Entries without a PATHWAY block derive to "".
func ParsePathways(raw string) string {
	m := pathwayBlock.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	var pairs []string
	for i, line := range strings.Split(m[1], "\n") {
		switch {
		case strings.HasPrefix(line, "PATHWAY"):
			pairs = append(pairs, pathwayPair(strings.TrimPrefix(line, "PATHWAY")))
		case i > 0 && strings.HasPrefix(line, " "):
			pairs = append(pairs, pathwayPair(line))
		default:
			if i > 0 {
				return strings.Join(pairs, ";")
			}
		}
	}
	return strings.Join(pairs, ";")
}

// pathwayPair splits "  hsa04110  Cell cycle" into "hsa04110>Cell cycle".
func pathwayPair(line string) string {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) == 1 {
		return fields[0] + ">"
	}
	return fields[0] + ">" + strings.TrimSpace(fields[1])
}
