package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/internal/errors"
	"funnelboard/ports"

	"github.com/go-resty/resty/v2"
)

// Client fetches funnels over HTTP from /api/funnel/{name}. It accepts both
// the raw aggregate row array served for the onboarding funnel and a
// {stages,total} document.
type Client struct {
	http    *resty.Client
	baseURL string
	funnels []string
	prefix  string
}

var _ ports.FunnelCatalog = (*Client)(nil)

// NewClient creates a remote funnel client
func NewClient(config ClientConfig) *Client {
	c := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetHeader("Accept", "application/json")
	return &Client{
		http:    c,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		funnels: config.Funnels,
		prefix:  config.NamePrefix,
	}
}

// Sources exposes each configured remote funnel
func (c *Client) Sources(ctx context.Context) ([]ports.FunnelSource, error) {
	sources := make([]ports.FunnelSource, 0, len(c.funnels))
	for _, name := range c.funnels {
		parsed, err := core.ParseFunnelName(name)
		if err != nil {
			return nil, errors.Wrap(err, "invalid remote funnel name")
		}
		sources = append(sources, &remoteSource{
			client: c,
			name:   core.FunnelName(c.prefix + parsed.String()),
			remote: parsed,
		})
	}
	return sources, nil
}

// Funnel fetches and decodes one named funnel
func (c *Client) Funnel(ctx context.Context, name core.FunnelName) (funnel.Spec, error) {
	endpoint := fmt.Sprintf("%s/api/funnel/%s", c.baseURL, url.PathEscape(name.String()))
	resp, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return funnel.Spec{}, errors.ExternalServiceError("remote dashboard", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return funnel.Spec{}, core.NewFunnelNotFoundError(name.String())
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return funnel.Spec{}, errors.ExternalServiceError("remote dashboard", fmt.Errorf("GET %s: status %d", endpoint, resp.StatusCode()))
	}
	return DecodeFunnel(resp.Body())
}

// DecodeFunnel accepts either [{total_accounts,...}] or {"stages":[...],"total":n}
func DecodeFunnel(body []byte) (funnel.Spec, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return funnel.Spec{}, core.ErrEmptyFunnel
	}

	var spec funnel.Spec
	if trimmed[0] == '[' {
		var rows []funnel.AccountCreationCounts
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return funnel.Spec{}, errors.Wrap(err, "failed to decode funnel rows")
		}
		if len(rows) == 0 {
			return funnel.Spec{}, core.ErrEmptyFunnel
		}
		spec = rows[0].Spec()
	} else if err := json.Unmarshal(trimmed, &spec); err != nil {
		return funnel.Spec{}, errors.Wrap(err, "failed to decode funnel spec")
	}

	if err := spec.Validate(); err != nil {
		return funnel.Spec{}, err
	}
	return spec, nil
}

type remoteSource struct {
	client *Client
	name   core.FunnelName
	remote core.FunnelName
}

func (s *remoteSource) Name() core.FunnelName { return s.name }

func (s *remoteSource) Funnel(ctx context.Context) (funnel.Spec, error) {
	return s.client.Funnel(ctx, s.remote)
}
