// Package cli is the storefront command line. Each invocation restores the
// saved session, runs one command and saves the session again.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootEnv struct {
	opts Options
	app  *App

	configPath string
	envFile    string
	apiURL     string
	logLevel   string
	logFormat  string
}

func NewRootCommand(env *rootEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Shop the gift store from your terminal",
		Long: `storefront talks to the gift shop backend: browse the catalog,
keep a cart, place and cancel orders, and manage products as staff.

The login is remembered between runs in the configured session store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.setup(cmd)
		},
	}

	root.SetIn(env.opts.In)
	root.SetOut(env.opts.Out)
	root.SetErr(env.opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&env.configPath, "config", "", "path to a YAML config file (default $CONFIG_PATH)")
	flags.StringVar(&env.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.StringVar(&env.apiURL, "api-url", "", "backend base URL, overrides api.base_url")
	flags.StringVar(&env.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&env.logFormat, "log-format", "", "json or text")

	root.AddCommand(
		newProductsCommand(env),
		newCategoriesCommand(env),
		newAuthCommand(env),
		newCartCommand(env),
		newOrdersCommand(env),
		newAdminCommand(env),
		newContactCommand(env),
		newHealthCommand(env),
		newVersionCommand(env),
	)

	return root
}

func (e *rootEnv) setup(cmd *cobra.Command) error {
	// variables already set in the environment win over the file
	if e.envFile != "" {
		if err := godotenv.Load(e.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("can not read env file: %w", err)
		}
	}

	path := e.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.LoadConfigFromPath(path)
	if err != nil {
		return err
	}

	if e.apiURL != "" {
		cfg.API.BaseURL = e.apiURL
	}

	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}

	if e.logFormat != "" {
		cfg.Log.Format = e.logFormat
	}

	app, err := newApp(cmd.Context(), cfg, e.opts)
	if err != nil {
		return err
	}

	e.app = app

	ctx := logging.WithCommand(cmd.Context(), app.logger, cmd.CommandPath())
	cmd.SetContext(ctx)

	app.restore(ctx)

	return nil
}

// Execute runs one invocation and always saves the session afterwards, even
// when the command failed.
func Execute(ctx context.Context, args []string, opts Options) error {
	opts.defaults()

	env := &rootEnv{opts: opts}
	root := NewRootCommand(env)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)

	if env.app != nil {
		if finishErr := env.app.finish(ctx); finishErr != nil {
			env.app.logger.Warn("Could not save session", "error", finishErr.Error())
		}
	}

	return err
}

// Main is the process entry point behind cmd/storefront.
func Main(version string) int {
	err := Execute(context.Background(), os.Args[1:], Options{Version: version})
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var resErr *resultError
	if errors.As(err, &resErr) {
		return 1
	}

	return 2
}

func newVersionCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), env.opts.Version)
			return nil
		},
	}
}
