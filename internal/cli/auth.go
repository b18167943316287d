package cli

import (
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/spf13/cobra"
)

func newAuthCommand(env *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, register and manage your profile",
	}

	cmd.AddCommand(
		newLoginCommand(env),
		newRegisterCommand(env),
		newLogoutCommand(env),
		newWhoamiCommand(env),
		newProfileCommand(env),
	)

	return cmd
}

func newLoginCommand(env *rootEnv) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Start a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := secret(cmd, password, "Password")
			if err != nil {
				return err
			}

			app := env.app
			if err := report(cmd.OutOrStdout(), app.auth.Login(cmd.Context(), args[0], pw)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", displayName(app.auth.User()))

			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password, read from stdin when omitted")

	return cmd
}

func newRegisterCommand(env *rootEnv) *cobra.Command {
	var req models.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password2 == "" {
				req.Password2 = req.Password
			}

			return report(cmd.OutOrStdout(), env.app.auth.Register(cmd.Context(), req))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Username, "username", "", "login name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.Password, "password", "", "password")
	flags.StringVar(&req.Password2, "password-confirm", "", "repeat the password (defaults to --password)")
	flags.StringVar(&req.FirstName, "first-name", "", "first name")
	flags.StringVar(&req.LastName, "last-name", "", "last name")

	return cmd
}

func newLogoutCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := env.app
			res := app.auth.Logout(cmd.Context())

			// the local session is gone even when the server call failed
			app.markLoggedOut()

			return report(cmd.OutOrStdout(), res)
		},
	}
}

func newWhoamiCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := env.app
			app.ensureSession(cmd.Context())

			out := cmd.OutOrStdout()

			user := app.auth.User()
			if user == nil {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintf(out, "%s (%s)\n", user.Username, user.Email)

			if name := user.FullName(); name != "" {
				fmt.Fprintf(out, "Name:  %s\n", name)
			}

			if user.IsStaff {
				fmt.Fprintln(out, "Staff: yes")
			}

			fmt.Fprintf(out, "Cart:  %d items\n", app.cart.Count())

			return nil
		},
	}
}

func newProfileCommand(env *rootEnv) *cobra.Command {
	var req models.UpdateProfileRequest

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := env.app
			app.ensureSession(cmd.Context())

			return report(cmd.OutOrStdout(), app.auth.UpdateProfile(cmd.Context(), req))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Email, "email", "", "new email address")
	flags.StringVar(&req.FirstName, "first-name", "", "new first name")
	flags.StringVar(&req.LastName, "last-name", "", "new last name")

	return cmd
}

func displayName(u *models.User) string {
	if u == nil {
		return ""
	}

	if u.FirstName != "" {
		return u.FirstName
	}

	return u.Username
}
