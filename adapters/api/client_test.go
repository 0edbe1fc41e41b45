package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/domain/core"
	ierrors "funnelboard/internal/errors"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/funnel/account-creation", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"total_accounts":1000,"step_basic_info":900,"step_headline":700,"step_location":650,"step_company":400,"step_linkedin":250,"step_finder_enabled":80}]`))
	})
	mux.HandleFunc("/api/funnel/trial", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stages":[{"label":"Visited","value":50},{"label":"Paid","value":5}],"total":60}`))
	})
	mux.HandleFunc("/api/funnel/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, funnels ...string) *Client {
	cfg := DefaultClientConfig()
	cfg.BaseURL = srv.URL + "/"
	cfg.Timeout = 2 * time.Second
	cfg.RetryCount = 0
	if len(funnels) > 0 {
		cfg.Funnels = funnels
	}
	return NewClient(cfg)
}

func TestClientDecodesAccountCreationRows(t *testing.T) {
	srv := newTestServer(t)
	spec, err := newTestClient(srv).Funnel(context.Background(), "account-creation")
	require.NoError(t, err)
	assert.Len(t, spec.Stages, 7)
	assert.Equal(t, 1000.0, spec.Total)
	assert.Equal(t, 80.0, spec.Stages[6].Value)
}

func TestClientDecodesSpecDocument(t *testing.T) {
	srv := newTestServer(t)
	spec, err := newTestClient(srv).Funnel(context.Background(), "trial")
	require.NoError(t, err)
	assert.Equal(t, 60.0, spec.Total)
	assert.Equal(t, "Paid", spec.Stages[1].Label)
}

func TestClientErrors(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(srv)

	_, err := c.Funnel(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrFunnelNotFound)

	_, err = c.Funnel(context.Background(), "broken")
	assert.Equal(t, ierrors.CodeExternalService, ierrors.GetCode(err))
}

func TestClientSources(t *testing.T) {
	srv := newTestServer(t)
	sources, err := newTestClient(srv, "account-creation", "Trial").Sources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, core.FunnelName("remote-trial"), sources[1].Name())

	spec, err := sources[1].Funnel(context.Background())
	require.NoError(t, err)
	assert.Len(t, spec.Stages, 2)
}

func TestDecodeFunnelEmpty(t *testing.T) {
	for _, body := range []string{"", "null", "[]", `{"stages":[],"total":0}`} {
		_, err := DecodeFunnel([]byte(body))
		assert.ErrorIs(t, err, core.ErrEmptyFunnel, body)
	}
}
