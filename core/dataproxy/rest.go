package dataproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	verrors "github.com/seqvarlab/varnorm/core/errors"
)

// DefaultRESTTimeout bounds individual refget requests.
const DefaultRESTTimeout = 30 * time.Second

// RESTProxy is a SequenceDataProxy backed by a remote refget service
// (e.g. a SeqRepo REST instance).
type RESTProxy struct {
	base   string
	client *http.Client
}

// NewRESTProxy returns a proxy for the refget service at baseURL
// (e.g. "http://localhost:5000/seqrepo"). A nil client uses a default
// with DefaultRESTTimeout.
func NewRESTProxy(baseURL string, client *http.Client) *RESTProxy {
	if client == nil {
		client = &http.Client{Timeout: DefaultRESTTimeout}
	}
	return &RESTProxy{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
	}
}

func (p *RESTProxy) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refget request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, verrors.NewNotFound("sequence", path)
	default:
		return nil, fmt.Errorf("refget request %s: unexpected status %s", path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("refget response read failed: %w", err)
	}
	return body, nil
}

// GetSequence returns the subsequence [start, end); end < 0 means the end
// of the sequence.
func (p *RESTProxy) GetSequence(ctx context.Context, id string, start, end int) (string, error) {
	path := "/sequence/" + url.PathEscape(id)
	if start != 0 || end >= 0 {
		q := url.Values{}
		q.Set("start", fmt.Sprint(start))
		if end >= 0 {
			q.Set("end", fmt.Sprint(end))
		}
		path += "?" + q.Encode()
	}
	body, err := p.get(ctx, path)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// restMetadata is the refget metadata response envelope.
type restMetadata struct {
	Metadata struct {
		Length  int      `json:"length"`
		Aliases []string `json:"aliases"`
	} `json:"metadata"`
}

// GetMetadata returns the sequence's length and aliases.
func (p *RESTProxy) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	body, err := p.get(ctx, "/sequence/"+url.PathEscape(id)+"/metadata")
	if err != nil {
		return nil, err
	}
	var env restMetadata
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("refget metadata parse failed: %w", err)
	}
	return &Metadata{Length: env.Metadata.Length, Aliases: env.Metadata.Aliases}, nil
}

// TranslateIdentifier returns the identified sequence's aliases in the
// given namespace ("" for all).
func (p *RESTProxy) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	md, err := p.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		return md.Aliases, nil
	}
	var out []string
	for _, a := range md.Aliases {
		if strings.HasPrefix(a, namespace+":") {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ SequenceDataProxy = (*RESTProxy)(nil)
