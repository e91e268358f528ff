package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/cityofzion/neon-go/packages/logger"
	"github.com/cityofzion/neon-go/packages/metrics"
)

// DefaultTimeout is used if a RESTClient is created without a timeout.
const DefaultTimeout = 30 * time.Second

// RESTClient issues the JSON GET requests of a provider, records their duration and maps error status codes.
type RESTClient struct {
	name    string
	client  *resty.Client
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

// NewRESTClient creates a RESTClient for the provider with the given name. log and m may be nil.
func NewRESTClient(name string, timeout time.Duration, log *zap.SugaredLogger, m *metrics.Metrics) *RESTClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &RESTClient{
		name:    name,
		client:  resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		metrics: m,
		log:     logger.OrNop(log),
	}
}

// Get requests url and decodes the JSON body into result. The operation names the request in logs and metrics.
func (r *RESTClient) Get(ctx context.Context, operation, url string, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.ProviderRequest(r.name, operation, time.Since(start), err)
		if err != nil {
			r.log.Debugw("request failed", "operation", operation, "url", url, "err", err)
		}
	}()

	response, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return errors.Wrapf(err, "%s request to %s failed", r.name, url)
	}

	return interpretBody(response, result)
}

type errorResponse struct {
	Error string `json:"error"`
}

func interpretBody(response *resty.Response, decodeTo interface{}) error {
	body := response.Body()

	if response.StatusCode() == http.StatusOK || response.StatusCode() == http.StatusCreated {
		if err := json.Unmarshal(body, decodeTo); err != nil {
			return errors.Wrapf(ErrBadResponse, "unable to decode response body of %s: %s", response.Request.URL, err)
		}

		return nil
	}

	errRes := &errorResponse{}
	if err := json.Unmarshal(body, errRes); err != nil || errRes.Error == "" {
		errRes.Error = string(body)
	}

	switch response.StatusCode() {
	case http.StatusInternalServerError:
		return errors.Wrapf(ErrInternalServerError, "%s", errRes.Error)
	case http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "%s", response.Request.URL)
	case http.StatusBadRequest:
		return errors.Wrapf(ErrBadRequest, "%s", errRes.Error)
	}

	return errors.Wrapf(ErrUnknownError, "status %d: %s", response.StatusCode(), errRes.Error)
}
