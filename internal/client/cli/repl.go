package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. App
// satisfies it; tests provide a recording stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	SignUp(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Select(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Insert(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Upsert(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	Upload(ctx context.Context, args []string) error
	UploadFile(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login, signup, select, get, url, exit"
	helpSignedIn  = "Available commands: select, get, insert, update, upsert, delete, upload, uploadfile, remove, url, whoami, logout, exit"
)

// runREPL reads a line at a time from scanner, splits it into a command
// and its arguments and dispatches to a. The loop ends on EOF or on
// "exit" / "quit".
//
// Handler errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cms %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := splitArgs(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			err = a.Login(ctx)
		case "signup", "register":
			err = a.SignUp(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)

		case "select", "ls":
			err = a.Select(ctx, args)
		case "get":
			err = a.Get(ctx, args)
		case "insert":
			err = a.Insert(ctx, args)
		case "update":
			err = a.Update(ctx, args)
		case "upsert":
			err = a.Upsert(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)

		case "upload":
			err = a.Upload(ctx, args)
		case "uploadfile":
			err = a.UploadFile(ctx, args)
		case "remove":
			err = a.Remove(ctx, args)
		case "url":
			err = a.URL(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}

// splitArgs splits line on whitespace. Single-quoted spans are kept whole
// so JSON bodies with spaces can be typed inline.
func splitArgs(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '\'':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}
