package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/growth-archive/internal/dto"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

func (c *cli) loginCommand() *cobra.Command {
	var form dto.LoginForm
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in with phone number and password",
		Args:        cobra.NoArgs,
		Annotations: noBootstrap(),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.rt.Sessions.Login(cmd.Context(), form)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), snap.User, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "signed in as %s (%d archive items, %d notifications)\n",
					snap.User.Name, len(snap.Items), len(snap.Notifications))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	return cmd
}

func (c *cli) registerCommand() *cobra.Command {
	var form dto.RegisterForm
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account",
		Args:        cobra.NoArgs,
		Annotations: noBootstrap(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				form.ConfirmPassword = form.Password
			}
			id, err := c.rt.Sessions.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), map[string]string{"userId": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "registered user %s; run `archive login` to sign in\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&form.Phone, "phone", "", "11-digit phone number")
	cmd.Flags().StringVar(&form.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation (defaults to --password)")
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Sign out and forget the stored token",
		Args:        cobra.NoArgs,
		Annotations: noBootstrap(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.rt.Sessions.Logout(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return err
		},
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			user := c.rt.Sessions.Snapshot().User
			return c.emit(cmd.OutOrStdout(), user, profileTable(user))
		},
	}
}

func (c *cli) deleteAccountCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Permanently delete the account and its archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if !yes {
				return appErrors.Clone(appErrors.ErrValidation, "refusing to delete the account without --yes")
			}
			if err := c.rt.Sessions.DeleteAccount(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "account deleted")
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func (c *cli) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch profile, archive and notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			snap := c.rt.Sessions.Refresh(cmd.Context())
			return c.emit(cmd.OutOrStdout(), snap, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d archive items, %d notifications\n", len(snap.Items), len(snap.Notifications))
				return err
			})
		},
	}
}
