package client

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/EdProwise/beawar-school-sub001/internal/client/auth"
	"github.com/EdProwise/beawar-school-sub001/internal/client/config"
	"github.com/EdProwise/beawar-school-sub001/internal/client/query"
	"github.com/EdProwise/beawar-school-sub001/internal/client/repositories/metadata"
	"github.com/EdProwise/beawar-school-sub001/internal/client/storage"
	"github.com/EdProwise/beawar-school-sub001/internal/client/transport"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

// Options wires a Client by hand. See Open for the configured variant.
type Options struct {
	BaseURL    string
	HTTPClient transport.Doer
	Sessions   auth.SessionStore
	Logger     logging.Logger
}

// Client is the entry point of the data-access layer: tables via From,
// the session via Auth and media via Storage. Every request made through
// it carries the bearer token of the stored session.
type Client struct {
	Auth    *auth.Auth
	Storage *storage.Client

	tables *query.Client
	db     *sql.DB
}

func New(opts Options) *Client {
	a := auth.New(auth.Options{
		BaseURL:    opts.BaseURL,
		HTTPClient: opts.HTTPClient,
		Store:      opts.Sessions,
		Logger:     opts.Logger,
	})
	return &Client{
		Auth: a,
		Storage: storage.New(storage.Options{
			BaseURL:    opts.BaseURL,
			HTTPClient: opts.HTTPClient,
			Tokens:     a,
			Logger:     opts.Logger,
		}),
		tables: query.NewClient(query.Options{
			BaseURL:    opts.BaseURL,
			HTTPClient: opts.HTTPClient,
			Tokens:     a,
			Logger:     opts.Logger,
		}),
	}
}

// Open builds a Client from cfg with the session persisted in the SQLite
// file cfg.SessionDBPath. Close releases the file.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Client, error) {
	db, err := InitDatabase(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, err
	}

	c := New(Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Sessions:   auth.NewMetadataStore(metadata.NewSQLiteRepository(db)),
		Logger:     logger,
	})
	c.db = db
	return c, nil
}

// From starts a query against table.
func (c *Client) From(table string) *query.Builder {
	return c.tables.From(table)
}

// BaseURL returns the table API root.
func (c *Client) BaseURL() string {
	return c.tables.BaseURL()
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
