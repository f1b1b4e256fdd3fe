package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Upload stores a local file under an object path of the default bucket.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: upload <path> <file>")
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	res := a.client.Storage.From(DefaultBucket).Upload(ctx, args[0], filepath.Base(args[1]), f)
	if res.Error != nil {
		return res.Error
	}
	return printJSON(a.out, res.Data)
}

// UploadFile sends a local file to the plain upload route.
func (a *App) UploadFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: uploadfile <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res := a.client.Storage.UploadFile(ctx, filepath.Base(args[0]), f)
	if res.Error != nil {
		return res.Error
	}
	return printJSON(a.out, res.Data)
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: remove <path>...")
	}
	res := a.client.Storage.From(DefaultBucket).Remove(ctx, args)
	if res.Error != nil {
		return res.Error
	}
	return printJSON(a.out, res.Data)
}

func (a *App) URL(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: url <path>")
	}
	res := a.client.Storage.From(DefaultBucket).GetPublicURL(args[0])
	fmt.Fprintln(a.out, res.Data.PublicURL)
	return nil
}
