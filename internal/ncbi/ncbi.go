// Package ncbi fetches and parses sequence metadata from the NCBI
// E-utilities esummary service. It is used to annotate RefSeq
// accessions with titles, lengths, and taxonomy before ingest.
package ncbi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	verrors "github.com/seqvarlab/varnorm/core/errors"
)

// Precompiled selectors for the esummary document shape.
var (
	docsumQuery = xpath.MustCompile("//eSummaryResult/DocSum")
	errorQuery  = xpath.MustCompile("//eSummaryResult/ERROR")
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultTimeout bounds esummary requests.
const DefaultTimeout = 30 * time.Second

// SequenceSummary is the subset of esummary document fields the
// repository cares about.
type SequenceSummary struct {
	UID              string
	AccessionVersion string
	Caption          string
	Title            string
	Length           int
	TaxID            int
}

// Client talks to the E-utilities esummary endpoint for the nuccore
// database.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client for the given base URL. An empty base
// uses the public NCBI endpoint.
func NewClient(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// FetchSummaries retrieves esummary records for the given nuccore IDs
// or accessions.
func (c *Client) FetchSummaries(ctx context.Context, ids ...string) ([]SequenceSummary, error) {
	if len(ids) == 0 {
		return nil, verrors.NewNotFound("esummary id", "")
	}

	endpoint := fmt.Sprintf("%s/esummary.fcgi?db=nuccore&id=%s",
		c.base, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, verrors.Wrap(err, "create esummary request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, verrors.Wrap(err, "esummary request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, verrors.Wrapf(fmt.Errorf("status %d", resp.StatusCode), "esummary %s", strings.Join(ids, ","))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, verrors.Wrap(err, "read esummary response")
	}

	return ParseESummary(data)
}

// ParseESummary parses an esummary XML response into summaries. Error
// documents from the service are surfaced as lookup failures.
func ParseESummary(data []byte) ([]SequenceSummary, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, verrors.Wrap(err, "parse esummary XML")
	}

	if errNode := xmlquery.QuerySelector(root, errorQuery); errNode != nil {
		return nil, verrors.NewNotFound("esummary record", strings.TrimSpace(errNode.InnerText()))
	}

	docs := xmlquery.QuerySelectorAll(root, docsumQuery)
	if len(docs) == 0 {
		return nil, verrors.NewNotFound("esummary record", "")
	}

	summaries := make([]SequenceSummary, 0, len(docs))
	for _, doc := range docs {
		var s SequenceSummary
		if id, err := xmlquery.Query(doc, "Id"); err == nil && id != nil {
			s.UID = strings.TrimSpace(id.InnerText())
		}
		s.AccessionVersion = itemText(doc, "AccessionVersion")
		s.Caption = itemText(doc, "Caption")
		s.Title = itemText(doc, "Title")
		s.Length = itemInt(doc, "Length")
		s.TaxID = itemInt(doc, "TaxId")
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Aliases derives repository aliases from a summary: the versioned
// accession in the refseq namespace plus the bare caption.
func (s SequenceSummary) Aliases() []string {
	var aliases []string
	if s.AccessionVersion != "" {
		aliases = append(aliases, s.AccessionVersion, "refseq:"+s.AccessionVersion)
	}
	if s.Caption != "" && s.Caption != s.AccessionVersion {
		aliases = append(aliases, s.Caption)
	}
	return aliases
}

func itemText(doc *xmlquery.Node, name string) string {
	node, err := xmlquery.Query(doc, fmt.Sprintf("Item[@Name='%s']", name))
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(node.InnerText())
}

func itemInt(doc *xmlquery.Node, name string) int {
	text := itemText(doc, name)
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}
