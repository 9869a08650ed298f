// Package ens provides a GraphQL client for the ENS subgraph used as the name registry
package ens

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"enscheck/internal/core/namehash"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	"enscheck/internal/services/resolve/domain"
)

const (
	// DefaultURL is the hosted ENS subgraph
	DefaultURL       = "https://api.thegraph.com/subgraphs/name/ensdomains/ens"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "enscheck"
	maxErrorBodySize = 2048
)

// Options configures the Client
type Options struct {
	URL       string
	UserAgent string
	Timeout   time.Duration

	// APIKey is sent as a bearer token when set (gateway endpoints require one)
	APIKey string

	// Scheme selects the entity queried; it must match the resolver's scheme
	Scheme domain.Scheme

	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client implements domain.Registry against a subgraph GraphQL endpoint.
// It makes exactly one POST per Lookup and never retries
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Scheme == "" {
		o.Scheme = domain.SchemeLabelHash
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: hc,
		opts: o,
		log:  *logger.Named("ens"),
		now:  time.Now,
	}
}

// URL returns the endpoint the client posts to
func (c *Client) URL() string { return c.opts.URL }

// Lookup implements domain.Registry
func (c *Client) Lookup(ctx context.Context, ids []namehash.ID) ([]domain.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > domain.MaxBatchSize {
		return nil, perr.InvalidArgf("ens: %d ids exceed the page limit of %d", len(ids), domain.MaxBatchSize)
	}
	vars := gqlVariables{IDs: make([]string, len(ids))}
	for i, id := range ids {
		vars.IDs[i] = id.String()
	}
	query := registrationsQuery
	if c.opts.Scheme == domain.SchemeNameHash {
		query = domainsQuery
	}

	data, err := c.post(ctx, gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, err
	}
	if c.opts.Scheme == domain.SchemeNameHash {
		return c.decodeDomains(data)
	}
	return c.decodeRegistrations(data)
}

// post sends one GraphQL request and returns the data member of the response
func (c *Client) post(ctx context.Context, body gqlRequest) (json.RawMessage, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "ens encode request failed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(buf))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "ens new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ens do failed")
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Int("ids", len(body.Variables.IDs)).
		Dur("latency", lat).
		Msg("ens http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		_ = drainAndClose(resp.Body)
		return nil, &StatusError{
			Status: resp.StatusCode,
			Body:   string(tail),
			Err:    perr.Newf(statusCode(resp.StatusCode), "ens unexpected status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail))),
		}
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "ens decode response failed")
	}
	if len(out.Errors) > 0 {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "ens graphql errors: %s", joinMessages(out.Errors))
	}
	if len(out.Data) == 0 || string(out.Data) == "null" {
		return nil, perr.Newf(perr.ErrorCodeJSON, "ens response has no data")
	}
	return out.Data, nil
}

func (c *Client) decodeRegistrations(data json.RawMessage) ([]domain.Record, error) {
	var d registrationsData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "ens decode registrations failed")
	}
	recs := make([]domain.Record, 0, len(d.Registrations))
	for _, r := range d.Registrations {
		id, err := namehash.Parse(r.ID)
		if err != nil {
			c.log.Warn().Str("id", r.ID).Msg("ens registration with unparseable id ignored")
			continue
		}
		name := r.LabelName
		if r.Domain != nil && r.Domain.Name != "" {
			name = r.Domain.Name
		}
		recs = append(recs, domain.Record{
			ID:           id,
			Name:         name,
			RegisteredAt: string(r.RegistrationDate),
			ExpiresAt:    string(r.ExpiryDate),
		})
	}
	return recs, nil
}

// decodeDomains drops domains without a registration; they have never been
// registered at the second level and count as unregistered
func (c *Client) decodeDomains(data json.RawMessage) ([]domain.Record, error) {
	var d domainsData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "ens decode domains failed")
	}
	recs := make([]domain.Record, 0, len(d.Domains))
	for _, e := range d.Domains {
		if e.Registration == nil {
			continue
		}
		id, err := namehash.Parse(e.ID)
		if err != nil {
			c.log.Warn().Str("id", e.ID).Msg("ens domain with unparseable id ignored")
			continue
		}
		recs = append(recs, domain.Record{
			ID:           id,
			Name:         e.Name,
			RegisteredAt: string(e.Registration.RegistrationDate),
			ExpiresAt:    string(e.Registration.ExpiryDate),
		})
	}
	return recs, nil
}

func statusCode(status int) perr.ErrorCode {
	switch status {
	case http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	case http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return perr.ErrorCodeForbidden
	default:
		return perr.ErrorCodeUnavailable
	}
}
