package cli

import (
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	storeHealth "github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/hellofresh/health-go/v5"
	"github.com/spf13/cobra"
)

func newContactCommand(env *rootEnv) *cobra.Command {
	var req models.ContactMessageRequest

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report(cmd.OutOrStdout(), env.app.contact.Send(cmd.Context(), req))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Name, "name", "", "your name")
	flags.StringVar(&req.Phone, "phone", "", "phone to call you back on")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVarP(&req.Message, "message", "m", "", "the message")

	return cmd
}

func newHealthCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend and the session store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := env.app

			h, err := storeHealth.NewHealthChecker(app.cfg, &storeHealth.Endpoints{Sessions: app.sessions}, app.version)
			if err != nil {
				return err
			}

			check := h.Measure(cmd.Context())

			data, err := json.MarshalIndent(check, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			if check.Status == health.StatusUnavailable {
				return errors.HTTPError("The storefront backend is unavailable", 0)
			}

			return nil
		},
	}
}
