package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ListKeys(ctx context.Context) error
	AddKey(ctx context.Context, provider string) error
	RemoveKey(ctx context.Context, id string) error
	Usage(ctx context.Context, limit int) error
	Styles(query string) error
	Stylize(ctx context.Context, opts StylizeOptions) (string, error)
	Annotations() error
	Annotate(ctx context.Context, x, y float64, note string) error
	Unannotate(ctx context.Context, id string) error
	Transcript() error
	Chat(ctx context.Context, text string) error
	Pricing(ctx context.Context) error
	Checkout(ctx context.Context, priceID string) error
}

// runREPL starts a simple read-eval-print loop for the Roomify CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help                      : show available commands
//	  - signup | signin | reset   : account access
//	  - styles [query]            : browse styles
//	  - pricing                   : list plans
//	  - exit | quit               : leave the program
//
//	Signed in, additionally:
//	  - whoami | signout
//	  - keys | addkey <provider> | rmkey <id> | usage [n]
//	  - stylize <photo> [reference]: restyle a photo, asks for style and notes
//	  - notes | note <x> <y> <text> | rmnote <id>
//	  - chat [message]
//	  - checkout <price-id>
//
// Any errors returned by command handlers are ignored here; handlers
// notify the user themselves. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, ask func(prompt string) (string, error)) {
	for {
		printlnFn(fmt.Sprintf("roomify (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: whoami, keys, addkey, rmkey, usage, styles, stylize, notes, note, rmnote, chat, pricing, checkout, signout, exit")
			} else {
				printlnFn("Available commands: signup, signin, reset, styles, pricing, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "keys":
			_ = a.ListKeys(ctx)

		case "addkey":
			provider := "openai"
			if len(args) > 0 {
				provider = args[0]
			}
			_ = a.AddKey(ctx, provider)

		case "rmkey":
			if len(args) != 1 {
				printlnFn("Usage: rmkey <id>")
				continue
			}
			_ = a.RemoveKey(ctx, args[0])

		case "usage":
			limit := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					printlnFn("Usage: usage [count]")
					continue
				}
				limit = n
			}
			_ = a.Usage(ctx, limit)

		case "styles":
			_ = a.Styles(strings.Join(args, " "))

		case "stylize":
			if len(args) == 0 || len(args) > 2 {
				printlnFn("Usage: stylize <photo> [reference-photo]")
				continue
			}
			opts := StylizeOptions{BasePath: args[0]}
			if len(args) == 2 {
				opts.ReferencePath = args[1]
			} else {
				style, err := ask("Style (empty for none)")
				if err != nil {
					continue
				}
				opts.Style = style
			}
			notes, err := ask("Notes (empty for none)")
			if err != nil {
				continue
			}
			opts.Notes = notes
			_, _ = a.Stylize(ctx, opts)

		case "notes":
			_ = a.Annotations()

		case "note":
			if len(args) < 3 {
				printlnFn("Usage: note <x%> <y%> <text>")
				continue
			}
			x, errX := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
			y, errY := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
			if errX != nil || errY != nil {
				printlnFn("Usage: note <x%> <y%> <text>")
				continue
			}
			_ = a.Annotate(ctx, x, y, strings.Join(args[2:], " "))

		case "rmnote":
			if len(args) != 1 {
				printlnFn("Usage: rmnote <id>")
				continue
			}
			_ = a.Unannotate(ctx, args[0])

		case "chat":
			if len(args) == 0 {
				_ = a.Transcript()
				continue
			}
			_ = a.Chat(ctx, strings.Join(args, " "))

		case "pricing":
			_ = a.Pricing(ctx)

		case "checkout":
			if len(args) != 1 {
				printlnFn("Usage: checkout <price-id>")
				continue
			}
			_ = a.Checkout(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Shell runs the interactive loop on the app's input until exit or EOF,
// printing session changes while it runs.
func (a *App) Shell(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := a.followSession(ctx)
	defer stop()

	printlnFn("Welcome to Roomify (type 'help' for commands)")
	scanner := bufio.NewScanner(a.reader)
	// prompts issued by commands read through the same scanner
	a.reader = bufio.NewReader(&scannerReader{s: scanner})
	ask := func(prompt string) (string, error) {
		return getSimpleText(a.reader, prompt, a.out)
	}
	runREPL(ctx, a, a.status, scanner, ask)
}

// scannerReader hands out one scanned line per Read.
type scannerReader struct {
	s   *bufio.Scanner
	buf []byte
}

func (r *scannerReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if !r.s.Scan() {
			if err := r.s.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		r.buf = append(append(r.buf[:0], r.s.Bytes()...), '\n')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
