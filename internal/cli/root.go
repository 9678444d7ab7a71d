// Package cli is the command-line view over the archive session.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

const annotationNoBootstrap = "no-bootstrap"

type cli struct {
	factory Factory
	rt      *Runtime
	output  string
}

// Execute runs the command tree with args and releases the runtime afterwards,
// including when a command fails.
func Execute(ctx context.Context, factory Factory, args []string, stdout, stderr io.Writer) error {
	c := &cli{factory: factory}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if stopErr := c.stop(); err == nil {
		err = stopErr
	}
	return err
}

// NewRootCommand builds the archive command tree.
func NewRootCommand(factory Factory) *cobra.Command {
	c := &cli{factory: factory}
	return c.rootCommand()
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "archive",
		Short:         "Student growth archive client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.start(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		c.loginCommand(),
		c.registerCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.deleteAccountCommand(),
		c.refreshCommand(),
		c.archiveCommand(),
		c.dashboardCommand(),
		c.pinsCommand(),
		c.inboxCommand(),
		c.profileCommand(),
		c.exportCommand(),
	)
	return root
}

func (c *cli) start(cmd *cobra.Command) error {
	if c.output != "table" && c.output != "json" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown output format %q", c.output))
	}
	if c.rt != nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := c.factory(ctx)
	if err != nil {
		return err
	}
	c.rt = rt
	if cmd.Annotations[annotationNoBootstrap] == "true" {
		return nil
	}
	if err := rt.Session.Bootstrap(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "stored session is no longer valid: %s\n", appErrors.FromError(err).Message)
	}
	return nil
}

func (c *cli) stop() error {
	if c.rt == nil || c.rt.Close == nil {
		return nil
	}
	err := c.rt.Close()
	c.rt = nil
	return err
}

// requireLogin fails fast when no session was restored.
func (c *cli) requireLogin() error {
	if !c.rt.Session.IsLoggedIn() {
		return appErrors.Clone(appErrors.ErrNotLoggedIn, "not logged in; run `archive login` first")
	}
	return nil
}

func noBootstrap() map[string]string {
	return map[string]string{annotationNoBootstrap: "true"}
}
