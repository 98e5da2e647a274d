package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/roomify-app/roomify/internal/client/config"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/spf13/cobra"
)

// newApp is a seam for tests.
var newApp = NewApp

// runner opens the App lazily so commands that fail flag parsing never
// touch on-device state.
type runner struct {
	cfg *config.Config
	app *App
}

func (r *runner) open(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	logger := logging.NewTextLogger(os.Stderr, r.cfg.Debug)
	a, err := newApp(ctx, r.cfg, logger)
	if err != nil {
		return nil, err
	}
	r.app = a
	return a, nil
}

func (r *runner) close() {
	if r.app != nil {
		_ = r.app.Close()
		r.app = nil
	}
}

func (r *runner) run(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := r.open(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd.Context(), a, args)
	}
}

// Execute builds the command tree for cfg, runs args through it and
// releases the App afterwards.
func Execute(ctx context.Context, cfg *config.Config, args []string) error {
	root, closeFn := NewRootCommand(cfg)
	defer closeFn()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var shown *reported
	if err != nil && !errors.As(err, &shown) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// NewRootCommand returns the command tree and a func releasing the App it opened.
func NewRootCommand(cfg *config.Config) (*cobra.Command, func()) {
	r := &runner{cfg: cfg}

	root := &cobra.Command{
		Use:           "roomify",
		Short:         "Restyle room photos with AI from your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "signup",
			Short: "Create an account",
			Args:  cobra.NoArgs,
			RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.SignUp(ctx) }),
		},
		&cobra.Command{
			Use:     "signin",
			Aliases: []string{"login"},
			Short:   "Sign in",
			Args:    cobra.NoArgs,
			RunE:    r.run(func(ctx context.Context, a *App, _ []string) error { return a.SignIn(ctx) }),
		},
		&cobra.Command{
			Use:     "signout",
			Aliases: []string{"logout"},
			Short:   "Sign out on this device",
			Args:    cobra.NoArgs,
			RunE:    r.run(func(ctx context.Context, a *App, _ []string) error { return a.SignOut(ctx) }),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset a forgotten password",
			Args:  cobra.NoArgs,
			RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.ResetPassword(ctx) }),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in account",
			Args:  cobra.NoArgs,
			RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.WhoAmI(ctx) }),
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Check the server is reachable",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, a *App, _ []string) error {
				if err := a.backend.Health(ctx); err != nil {
					return a.report(err)
				}
				a.notifier.Success("Server is up")
				return nil
			}),
		},
		newKeysCmd(r),
		newUsageCmd(r),
		&cobra.Command{
			Use:   "styles [query]",
			Short: "List interior styles",
			RunE: r.run(func(_ context.Context, a *App, args []string) error {
				return a.Styles(strings.Join(args, " "))
			}),
		},
		newStylizeCmd(r),
		newAnnotateCmd(r),
		&cobra.Command{
			Use:   "chat [message]",
			Short: "Talk to the design assistant",
			RunE: r.run(func(ctx context.Context, a *App, args []string) error {
				if len(args) == 0 {
					return a.Transcript()
				}
				return a.Chat(ctx, strings.Join(args, " "))
			}),
		},
		&cobra.Command{
			Use:   "pricing",
			Short: "List plans",
			Args:  cobra.NoArgs,
			RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.Pricing(ctx) }),
		},
		&cobra.Command{
			Use:   "subscription",
			Short: "Show your subscription",
			Args:  cobra.NoArgs,
			RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.Subscription(ctx) }),
		},
		&cobra.Command{
			Use:   "checkout <price-id>",
			Short: "Start a purchase",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, a *App, args []string) error {
				return a.Checkout(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: r.run(func(ctx context.Context, a *App, _ []string) error {
				a.Shell(ctx)
				return nil
			}),
		},
	)

	return root, r.close
}

func newKeysCmd(r *runner) *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys",
		Args:  cobra.NoArgs,
		RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.ListKeys(ctx) }),
	}
	keys.AddCommand(
		&cobra.Command{
			Use:   "add [provider]",
			Short: "Store a key (openai or anthropic) and make it active",
			Args:  cobra.MaximumNArgs(1),
			RunE: r.run(func(ctx context.Context, a *App, args []string) error {
				provider := "openai"
				if len(args) == 1 {
					provider = args[0]
				}
				return a.AddKey(ctx, provider)
			}),
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"remove"},
			Short:   "Delete a stored key",
			Args:    cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, a *App, args []string) error {
				return a.RemoveKey(ctx, args[0])
			}),
		},
	)
	return keys
}

func newUsageCmd(r *runner) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show recent feature usage",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, a *App, _ []string) error {
			return a.Usage(ctx, limit)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func newStylizeCmd(r *runner) *cobra.Command {
	var opts StylizeOptions
	cmd := &cobra.Command{
		Use:   "stylize <photo>",
		Short: "Restyle a room photo",
		Long: "Restyle a room photo with a named style and notes, or copy furnishings\n" +
			"from a reference photo with --reference.",
		Args: cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, a *App, args []string) error {
			opts.BasePath = args[0]
			_, err := a.Stylize(ctx, opts)
			return err
		}),
	}
	cmd.Flags().StringVarP(&opts.ReferencePath, "reference", "r", "", "reference photo to copy furnishings from")
	cmd.Flags().StringVar(&opts.Style, "style", "", "named style, see `roomify styles`")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "extra instructions")
	cmd.Flags().StringVar(&opts.Template, "template", "", "notes template: single or multiple")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "directory for the result")
	return cmd
}

func newAnnotateCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Pin notes to points of your room photo",
		Args:  cobra.NoArgs,
		RunE:  r.run(func(_ context.Context, a *App, _ []string) error { return a.Annotations() }),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <x%> <y%> <note>",
			Short: "Add a note at a position given in percent of the photo",
			Args:  cobra.MinimumNArgs(3),
			RunE: r.run(func(ctx context.Context, a *App, args []string) error {
				x, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
				if err != nil {
					return a.report(err)
				}
				y, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
				if err != nil {
					return a.report(err)
				}
				return a.Annotate(ctx, x, y, strings.Join(args[2:], " "))
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a note",
			Args:  cobra.ExactArgs(1),
			RunE: r.run(func(ctx context.Context, a *App, args []string) error {
				return a.Unannotate(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every note",
			Args:  cobra.NoArgs,
			RunE:  r.run(func(ctx context.Context, a *App, _ []string) error { return a.ClearAnnotations(ctx) }),
		},
	)
	return cmd
}
