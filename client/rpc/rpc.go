// Package rpc talks to the JSON-RPC interface of a NEO node.
package rpc

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ybbus/jsonrpc/v3"
	"go.uber.org/zap"

	"github.com/cityofzion/neon-go/packages/logger"
)

// DefaultTimeout is used if no timeout was configured.
const DefaultTimeout = 30 * time.Second

// ErrRPC is returned if a node answers a call with an error object.
var ErrRPC = errors.New("rpc error")

// Client issues calls to nodes. The node is chosen per call since providers resolve different endpoints.
type Client struct {
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// New creates a Client.
func New(options ...Option) *Client {
	c := &Client{}
	for _, option := range options {
		option(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c.log = logger.OrNop(c.log)

	return c
}

// SendRawTransaction submits a serialized signed transaction and returns whether the node accepted it.
func (c *Client) SendRawTransaction(ctx context.Context, url, transactionHex string) (accepted bool, err error) {
	if err = c.call(ctx, url, &accepted, "sendrawtransaction", transactionHex); err != nil {
		return false, err
	}
	c.log.Debugw("submitted transaction", "url", url, "accepted", accepted)

	return accepted, nil
}

// GetBlockCount returns the number of blocks of the chain of the node.
func (c *Client) GetBlockCount(ctx context.Context, url string) (count uint64, err error) {
	if err = c.call(ctx, url, &count, "getblockcount"); err != nil {
		return 0, err
	}

	return count, nil
}

func (c *Client) call(ctx context.Context, url string, out interface{}, method string, params ...interface{}) error {
	client := jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{HTTPClient: c.httpClient})

	// nodes reject requests without a params array
	if len(params) == 0 {
		params = []interface{}{[]interface{}{}}
	}

	if err := client.CallFor(ctx, out, method, params...); err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return errors.Wrapf(ErrRPC, "%s failed with code %d: %s", method, rpcErr.Code, rpcErr.Message)
		}

		c.log.Debugw("call failed", "url", url, "method", method, "err", err)
		return errors.Wrapf(err, "%s call to %s failed", method, url)
	}

	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of a single call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithHTTPClient sets the HTTP client that carries the calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger of the Client.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}
