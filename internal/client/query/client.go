package query

import (
	"net/http"
	"strings"

	"github.com/EdProwise/beawar-school-sub001/internal/client/transport"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the table API root, e.g. "http://localhost:5000/api".
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient transport.Doer
	// Tokens supplies the bearer token; nil sends requests anonymously.
	Tokens transport.TokenSource
	// Logger defaults to logging.Nop.
	Logger logging.Logger
}

// Client creates builders that share one base URL, HTTP client and
// token source. It is safe for concurrent use; builders are not.
type Client struct {
	baseURL string
	http    transport.Doer
	tokens  transport.TokenSource
	logger  logging.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		tokens:  opts.Tokens,
		logger:  opts.Logger,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = logging.Nop{}
	}
	return c
}

// From starts a query against table.
func (c *Client) From(table string) *Builder {
	return newBuilder(c, table)
}

// BaseURL returns the table API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}
