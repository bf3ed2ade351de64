package topp

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/toppgo/toppgo/pkg/errors"
	"github.com/toppgo/toppgo/pkg/httputil"
)

// DefaultBaseURL is the production ToppGene Suite API endpoint.
const DefaultBaseURL = "https://toppgene.cchmc.org/API"

// defaultTimeout bounds a single request. Enrichment across many categories
// on a large gene list can take minutes on the service side.
const defaultTimeout = 5 * time.Minute

// Enrichment thresholds applied when an [EnrichRequest] leaves them zero.
// They match the service's own documented defaults.
const (
	DefaultPValueCutoff = 0.05
	DefaultMinGenes     = 1
	DefaultMaxGenes     = 1500
	DefaultMaxResults   = 50
)

// Client talks to the ToppGene Suite lookup and enrichment endpoints.
// It handles request construction, retries on 5xx responses, and response
// flattening. The zero value is not usable; construct with [NewClient].
type Client struct {
	http    *http.Client
	baseURL string
	strict  bool
	logf    func(msg string, args ...any)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service endpoint, primarily for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout (default 5 minutes).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithStrictParse makes a malformed annotation record fail the whole batch
// instead of being dropped with a warning.
func WithStrictParse() Option {
	return func(c *Client) { c.strict = true }
}

// WithLogf sets a diagnostic log callback for dropped records and retries.
// When unset, diagnostics are discarded.
func WithLogf(logf func(msg string, args ...any)) Option {
	return func(c *Client) { c.logf = logf }
}

// NewClient creates a ToppGene API client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: DefaultBaseURL,
		logf:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup translates gene symbols to Entrez identifiers.
//
// The response order is service-determined and unresolved symbols are
// absent, so the result may be shorter than symbols and in a different
// order. Use [Unresolved] to recover which symbols were lost.
func (c *Client) Lookup(ctx context.Context, symbols []string) ([]Gene, error) {
	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "lookup requires at least one gene symbol")
	}

	var resp lookupResponse
	if err := c.post(ctx, "/lookup", lookupRequest{Symbols: symbols}, &resp); err != nil {
		return nil, err
	}
	return resp.Genes, nil
}

// EnrichRequest describes one enrichment query: a shared identifier list and
// the categories to test it against, each with the same threshold
// parameters.
type EnrichRequest struct {
	GeneIDs    []int64
	Categories []Category
	Correction Correction

	// Zero values fall back to the service defaults (see the Default*
	// constants).
	PValueCutoff float64
	MinGenes     int
	MaxGenes     int
	MaxResults   int
}

// validate checks the enumerated fields before any network traffic.
func (r *EnrichRequest) validate() error {
	if len(r.GeneIDs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "enrich requires at least one gene identifier")
	}
	if len(r.Categories) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "enrich requires at least one category")
	}
	if err := ValidateCategories(r.Categories); err != nil {
		return err
	}
	return ValidateCorrection(r.Correction)
}

// wire converts the request to its on-the-wire shape, filling defaults.
func (r *EnrichRequest) wire() enrichRequest {
	cutoff := r.PValueCutoff
	if cutoff == 0 {
		cutoff = DefaultPValueCutoff
	}
	minGenes := r.MinGenes
	if minGenes == 0 {
		minGenes = DefaultMinGenes
	}
	maxGenes := r.MaxGenes
	if maxGenes == 0 {
		maxGenes = DefaultMaxGenes
	}
	maxResults := r.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}

	specs := make([]categorySpec, len(r.Categories))
	for i, cat := range r.Categories {
		specs[i] = categorySpec{
			Type:       cat,
			PValue:     cutoff,
			MinGenes:   minGenes,
			MaxGenes:   maxGenes,
			MaxResults: maxResults,
			Correction: r.Correction,
		}
	}
	return enrichRequest{Genes: r.GeneIDs, Categories: specs}
}

// Enrich submits the gene list for enrichment and returns the flattened
// annotation table. A gene set with no hits yields an empty slice, not an
// error.
func (c *Client) Enrich(ctx context.Context, req EnrichRequest) ([]Annotation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var resp enrichResponse
	if err := c.post(ctx, "/enrich", req.wire(), &resp); err != nil {
		return nil, err
	}

	anns, dropped, err := flattenAnnotations(resp.Annotations, c.strict)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.logf("dropped %d malformed annotation record(s)", dropped)
	}
	return anns, nil
}

// post issues a JSON POST with retry on transient failures and decodes the
// response into v.
func (c *Client) post(ctx context.Context, path string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	return httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "build request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) {
				return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s timed out", path)
			}
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", path)}
		}
		defer resp.Body.Close()

		if err := checkStatus(path, resp.StatusCode); err != nil {
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeParse, err, "undecodable response from %s", path)
		}
		return nil
	})
}

func checkStatus(path string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code >= 500:
		return &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "%s returned status %d", path, code),
		}
	default:
		return errors.New(errors.ErrCodeNetwork, "%s returned status %d", path, code)
	}
}

// termsOfUseNotice is the service's usage notice, surfaced once per process
// by the CLI rather than on every call.
const termsOfUseNotice = "Results are produced by the ToppGene Suite " +
	"(https://toppgene.cchmc.org); please cite Chen et al., Nucleic Acids " +
	"Res. 2009, and respect the service's terms of use."

// TermsOfUse returns the ToppGene usage notice.
func TermsOfUse() string { return termsOfUseNotice }
