package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/EdProwise/beawar-school-sub001/internal/client/auth"
	"github.com/EdProwise/beawar-school-sub001/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (auth.Credentials, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return auth.Credentials{}, err
	}
	if email == "" {
		return auth.Credentials{}, errors.New("email is required")
	}

	password, err := getPassword(a.out)
	if err != nil {
		return auth.Credentials{}, err
	}
	defer common.WipeByteArray(password)

	return auth.Credentials{Email: email, Password: string(password)}, nil
}

// Login prompts for an email and a password and signs in.
func (a *App) Login(ctx context.Context) error {
	creds, err := a.credentials()
	if err != nil {
		return err
	}
	res := a.client.Auth.SignInWithPassword(ctx, creds)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// SignUp creates an account and signs in with it. An optional display
// name is stored as user metadata.
func (a *App) SignUp(ctx context.Context) error {
	creds, err := a.credentials()
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Full name (optional)", a.out)
	if err != nil {
		return err
	}
	if name != "" {
		creds.Data = map[string]any{"full_name": name}
	}

	res := a.client.Auth.SignUp(ctx, creds)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Auth.SignOut(ctx); err != nil {
		return err
	}
	return nil
}

// WhoAmI prints the user of the stored session.
func (a *App) WhoAmI(ctx context.Context) error {
	res := a.client.Auth.GetUser(ctx)
	if res.Error != nil {
		return res.Error
	}
	if res.Data.User == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	return printJSON(a.out, res.Data.User)
}
