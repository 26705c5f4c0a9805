package eclair

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lnsettle/eclair-adapter/internal/config"
	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const maxResponseBytes = 1 << 20

// Client issues named calls against the eclair API. Parameters travel
// form-encoded, responses come back as raw JSON. No retries happen at
// this layer; retry policy belongs to the callers that need it.
type Client struct {
	baseURL    string
	password   string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:  cfg.RpcBaseURL(),
		password: cfg.RpcPassword,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RpcTimeoutSecs) * time.Second,
		},
	}
}

// Call posts the form-encoded params to the named endpoint. Transport
// failures and non-2xx responses surface as ServiceUnavailableError; a
// body that is not valid JSON yields an empty object rather than an
// error.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/"+endpoint, strings.NewReader(params.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.password != "" {
		// eclair uses basic auth with an empty user name.
		req.SetBasicAuth("", c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("endpoint", endpoint).Error("eclair call failed")
		return nil, &domain.ServiceUnavailableError{Endpoint: endpoint, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.WithError(err).WithField("endpoint", endpoint).Error("eclair response read failed")
		return nil, &domain.ServiceUnavailableError{Endpoint: endpoint, Message: err.Error()}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(body))
		log.WithFields(log.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Errorf("eclair call rejected: %s", msg)
		return nil, &domain.ServiceUnavailableError{Endpoint: endpoint, Message: msg}
	}

	if !json.Valid(body) {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(body), nil
}
