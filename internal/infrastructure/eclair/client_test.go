package eclair

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, password string, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{
		baseURL:    srv.URL,
		password:   password,
		httpClient: srv.Client(),
	}
}

func TestCallSendsFormEncodedParams(t *testing.T) {
	client := newTestClient(t, "s3cret", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/createinvoice", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		user, password, ok := r.BasicAuth()
		require.True(t, ok)
		require.Empty(t, user)
		require.Equal(t, "s3cret", password)

		require.NoError(t, r.ParseForm())
		require.Equal(t, "150000", r.PostForm.Get("amountMsat"))

		w.Write([]byte(`{"paymentHash": "h1"}`))
	}))

	params := url.Values{}
	params.Set("amountMsat", "150000")

	raw, err := client.Call(context.Background(), "createinvoice", params)
	require.NoError(t, err)
	require.JSONEq(t, `{"paymentHash": "h1"}`, string(raw))
}

func TestCallNon2xx(t *testing.T) {
	client := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "route computation failed", http.StatusInternalServerError)
	}))

	_, err := client.Call(context.Background(), "findroute", nil)
	require.Error(t, err)

	var unavailableErr *domain.ServiceUnavailableError
	require.True(t, errors.As(err, &unavailableErr))
	require.Equal(t, "findroute", unavailableErr.Endpoint)
	require.Contains(t, unavailableErr.Message, "route computation failed")
}

func TestCallTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := &Client{baseURL: srv.URL, httpClient: http.DefaultClient}

	_, err := client.Call(context.Background(), "getinfo", nil)
	var unavailableErr *domain.ServiceUnavailableError
	require.True(t, errors.As(err, &unavailableErr))
}

func TestCallMalformedBody(t *testing.T) {
	client := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("created"))
	}))

	raw, err := client.Call(context.Background(), "createinvoice", nil)
	require.NoError(t, err)
	require.Equal(t, "{}", string(raw))
}
