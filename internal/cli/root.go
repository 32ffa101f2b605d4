package cli

import (
	"context"
	"errors"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/freenote/freenote/internal/api"
	"github.com/freenote/freenote/internal/config"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Gateway is what the commands need from the notes server.
type Gateway interface {
	api.Gateway
	TreeOutline(ctx context.Context) (*domain.NoteObject, error)
}

// App holds the collaborators shared by all commands. Fields left nil are
// filled from configuration before the first command runs.
type App struct {
	Config  *config.Config
	Gateway Gateway
	Logger  zerolog.Logger

	// IsInteractive reports whether stdin is a terminal. The bare command
	// starts the TUI only when it returns true.
	IsInteractive func() bool

	// Clipboard copies text for the TUI's copy action. Nil uses the
	// system clipboard.
	Clipboard func(string) error

	closers []io.Closer
}

// flagKeys maps configuration keys to the flags that override them.
var flagKeys = map[string]string{
	config.KeyServerURL:      "server",
	config.KeyServerToken:    "token",
	config.KeyServerUser:     "user",
	config.KeyLogFile:        "log-file",
	config.KeyLogLevel:       "log-level",
	config.KeyServeAddr:      "addr",
	config.KeyServeDriver:    "driver",
	config.KeyServeDB:        "db",
	config.KeyServeDSN:       "dsn",
	config.KeyServeTokenHash: "token-hash",
}

// NewRootCmd creates the top-level "freenote" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "freenote",
		Short: "Hierarchical notes in the terminal",
		Long: heredoc.Doc(`
			Browse and edit a tree of notes and notebooks kept on a freenote server.

			Run without arguments in a terminal to open the interactive editor.
			Edits are saved automatically every few seconds and whenever you
			switch notes.

			Settings are read from ~/.freenote/config.yaml, FREENOTE_* environment
			variables (for example FREENOTE_SERVER_URL) and the flags below.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd, configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ~/.freenote/config.yaml)")
	pf.String("server", "", "notes server base URL")
	pf.String("token", "", "access token sent to the server")
	pf.String("user", "", "user id sent to the server")
	pf.String("log-file", "", `log file ("-" for stderr, empty to disable)`)
	pf.String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newUICmd(app),
		newTreeCmd(app),
		newShowCmd(app),
		newNewCmd(app),
		newRmCmd(app),
		newEditCmd(app),
		newServeCmd(app),
	)

	return root
}

// setup loads configuration, logging and the API client unless the caller
// already supplied them.
func (a *App) setup(cmd *cobra.Command, configFile string) error {
	if a.Config == nil {
		flags := make(map[string]*pflag.Flag, len(flagKeys))
		for key, name := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
				flags[key] = f
			}
		}
		cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: flags})
		if err != nil {
			return err
		}
		a.Config = cfg

		logger, closer, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
		if err != nil {
			return err
		}
		a.Logger = logger
		a.closers = append(a.closers, closer)
		a.Logger.Debug().Str("config_file", cfg.File).Str("server", cfg.Server.URL).Msg("configuration loaded")
	}
	if a.Gateway == nil {
		a.Gateway = api.NewClient(a.Config.API(), api.NewLogObserver(a.Logger))
	}
	return nil
}

// Close releases resources opened during setup.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
