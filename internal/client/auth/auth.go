// Package auth is the session half of the CMS data-access client.
//
// Signing in or up posts credentials to {root}/api/auth/signin or
// {root}/api/auth/signup and stores the returned session through a
// SessionStore. The presence of a stored session is the only signal of
// being signed in; there is no expiry check and no refresh.
//
// Every change of the stored session is broadcast to the callbacks
// registered with OnAuthStateChange in the same process. A callback that
// subscribes while a session exists is also called once, on its own
// goroutine, with EventSignedIn.
//
// No method panics or returns a Go error: failures are reported in the
// Error field of the returned envelope.
package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/EdProwise/beawar-school-sub001/internal/client/transport"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

// Options configures an Auth.
type Options struct {
	// BaseURL is the table API root; auth routes live under its root.
	BaseURL    string
	HTTPClient transport.Doer
	// Store defaults to an in-memory store.
	Store  SessionStore
	Logger logging.Logger
}

type Auth struct {
	root   string
	http   transport.Doer
	store  SessionStore
	logger logging.Logger
	events *broadcaster
}

func New(opts Options) *Auth {
	a := &Auth{
		root:   transport.RootURL(opts.BaseURL),
		http:   opts.HTTPClient,
		store:  opts.Store,
		logger: opts.Logger,
		events: newBroadcaster(),
	}
	if a.http == nil {
		a.http = http.DefaultClient
	}
	if a.store == nil {
		a.store = &MemoryStore{}
	}
	if a.logger == nil {
		a.logger = logging.Nop{}
	}
	return a
}

// SignInWithPassword exchanges an email and password for a session.
func (a *Auth) SignInWithPassword(ctx context.Context, creds Credentials) AuthResponse {
	return a.authenticate(ctx, "signin", Credentials{Email: creds.Email, Password: creds.Password})
}

// SignUp creates an account. Credentials.Data is sent as user metadata.
func (a *Auth) SignUp(ctx context.Context, creds Credentials) AuthResponse {
	return a.authenticate(ctx, "signup", creds)
}

// SignOut forgets the stored session and notifies listeners.
func (a *Auth) SignOut(ctx context.Context) *Error {
	if err := a.store.Clear(ctx); err != nil {
		a.logger.Error(ctx, "failed to clear session", "error", err)
		return &Error{Message: err.Error()}
	}
	a.logger.Info(ctx, "signed out")
	a.notify(ctx)
	return nil
}

// GetSession returns the stored session, or a nil session when signed out.
func (a *Auth) GetSession(ctx context.Context) SessionResponse {
	session, err := a.current(ctx)
	if err != nil {
		return SessionResponse{Error: &Error{Message: err.Error()}}
	}
	return SessionResponse{Data: SessionData{Session: session}}
}

// GetUser returns the user of the stored session.
func (a *Auth) GetUser(ctx context.Context) UserResponse {
	session, err := a.current(ctx)
	if err != nil {
		return UserResponse{Error: &Error{Message: err.Error()}}
	}
	if session == nil {
		return UserResponse{}
	}
	return UserResponse{Data: UserData{User: session.User}}
}

// AccessToken returns the bearer token of the stored session or "".
func (a *Auth) AccessToken(ctx context.Context) string {
	session, err := a.current(ctx)
	if err != nil || session == nil {
		return ""
	}
	return session.AccessToken
}

// OnAuthStateChange registers cb for session changes. If a session exists
// now, cb is also called once asynchronously with EventSignedIn, unless a
// change reaches cb first.
func (a *Auth) OnAuthStateChange(cb Callback) *Subscription {
	l, sub := a.events.subscribe(cb)

	session, err := a.current(context.Background())
	if err == nil && session != nil {
		go a.deliverInitial(l, session)
	}
	return sub
}

func (a *Auth) deliverInitial(l *listener, session *Session) {
	if a.events.claimInitial(l) {
		l.cb(EventSignedIn, session)
	}
}

func (a *Auth) authenticate(ctx context.Context, route string, creds Credentials) AuthResponse {
	url := transport.JoinURL(a.root, "api", "auth", route)
	log := a.logger.With("route", route)

	req, err := transport.NewJSONRequest(ctx, http.MethodPost, url, creds, "")
	if err != nil {
		return authFailure(err.Error())
	}

	resp, err := a.http.Do(req)
	if err != nil {
		log.Warn(ctx, "auth request failed", "error", err)
		return authFailure(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return authFailure("read response: " + err.Error())
	}
	if !transport.OK(resp.StatusCode) {
		log.Info(ctx, "auth rejected", "status", resp.StatusCode)
		return authFailure(transport.ErrorMessage(resp.StatusCode, raw))
	}

	var payload struct {
		User    *User           `json:"user"`
		Session json.RawMessage `json:"session"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return authFailure("invalid JSON response: " + err.Error())
	}

	var session *Session
	if len(payload.Session) > 0 && string(payload.Session) != "null" {
		session, err = parseSession(payload.Session)
		if err != nil {
			return authFailure("invalid session: " + err.Error())
		}
		if err := a.store.Save(ctx, session.Raw); err != nil {
			log.Error(ctx, "failed to persist session", "error", err)
			return authFailure("persist session: " + err.Error())
		}
		a.notify(ctx)
	}

	user := payload.User
	if user == nil && session != nil {
		user = session.User
	}
	log.Info(ctx, "authenticated")
	return AuthResponse{Data: AuthData{User: user, Session: session}}
}

// notify broadcasts the stored state as it is after a change.
func (a *Auth) notify(ctx context.Context) {
	session, err := a.current(ctx)
	if err != nil {
		a.logger.Warn(ctx, "session unreadable after change", "error", err)
		return
	}
	if session == nil {
		a.events.dispatch(EventSignedOut, nil)
		return
	}
	a.events.dispatch(EventSignedIn, session)
}

func (a *Auth) current(ctx context.Context) (*Session, error) {
	raw, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return parseSession(raw)
}

func authFailure(msg string) AuthResponse {
	return AuthResponse{Error: &Error{Message: msg}}
}
