package auth

import (
	"encoding/json"

	"github.com/EdProwise/beawar-school-sub001/internal/client/query"
)

// Error is the message-only error shared with query results.
type Error = query.Error

// Event names delivered to OnAuthStateChange callbacks.
type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedOut Event = "SIGNED_OUT"
)

// Credentials are posted to the sign-in and sign-up routes. Data is only
// meaningful for sign-up, where it becomes the user's metadata.
type Credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

// Session is the typed view of the stored session blob. Raw keeps the blob
// exactly as the backend returned it.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
	User        *User  `json:"user,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func parseSession(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s.Raw = append(json.RawMessage(nil), raw...)
	return &s, nil
}

// AuthData is the payload of sign-in and sign-up.
type AuthData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

type AuthResponse struct {
	Data  AuthData `json:"data"`
	Error *Error   `json:"error"`
}

type SessionData struct {
	Session *Session `json:"session"`
}

type SessionResponse struct {
	Data  SessionData `json:"data"`
	Error *Error      `json:"error"`
}

type UserData struct {
	User *User `json:"user"`
}

type UserResponse struct {
	Data  UserData `json:"data"`
	Error *Error   `json:"error"`
}
