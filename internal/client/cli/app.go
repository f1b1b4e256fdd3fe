package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/EdProwise/beawar-school-sub001/internal/client/auth"
	"github.com/EdProwise/beawar-school-sub001/internal/client/client"
	"github.com/EdProwise/beawar-school-sub001/internal/client/config"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

// DefaultBucket is the media bucket used by upload, remove and url.
const DefaultBucket = "media"

type App struct {
	client *client.Client
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
	sub    *auth.Subscription
}

// NewApp opens the data-access client described by c. The session file is
// created on first use.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	cl, err := client.Open(ctx, c, logger)
	if err != nil {
		logger.Error(ctx, "error initializing client", "error", err)
		return nil, err
	}
	return newApp(cl, logger, os.Stdin, os.Stdout), nil
}

func newApp(cl *client.Client, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		client: cl,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.sub = cl.Auth.OnAuthStateChange(a.onAuthEvent)
	return a
}

func (a *App) onAuthEvent(event auth.Event, session *auth.Session) {
	switch event {
	case auth.EventSignedIn:
		email := ""
		if session != nil && session.User != nil {
			email = session.User.Email
		}
		fmt.Fprintf(a.out, "* signed in %s\n", email)
	case auth.EventSignedOut:
		fmt.Fprintln(a.out, "* signed out")
	}
}

// Run starts the REPL on stdin and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "School CMS console (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.status(ctx) }, bufio.NewScanner(a.reader))
}

func (a *App) Close() error {
	if a.sub != nil {
		a.sub.Unsubscribe()
	}
	return a.client.Close()
}

func (a *App) isLoggedIn() bool {
	return a.client.Auth.AccessToken(context.Background()) != ""
}

func (a *App) status(ctx context.Context) string {
	res := a.client.Auth.GetUser(ctx)
	if res.Error != nil || res.Data.User == nil {
		return "anonymous"
	}
	return res.Data.User.Email
}
