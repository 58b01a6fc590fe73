package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/quizflash/internal/app"
	"github.com/vytor/quizflash/internal/config"
	"github.com/vytor/quizflash/internal/logger"
)

// cliLogLevel is used when neither --log-level nor LOG_LEVEL is set, so the
// interactive output is not interleaved with request logs.
const cliLogLevel = "WARN"

// cli carries the application shared by every subcommand. It is opened in
// the root's PersistentPreRunE and closed by execute.
type cli struct {
	app *app.App
	ctx context.Context
}

// execute runs root and closes the application afterwards. cobra skips
// post-run hooks when a command fails, so the close cannot live there.
func execute(root *cobra.Command, c *cli) error {
	err := root.Execute()
	if cerr := c.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Terminal front-end for the quizflash engine",
		Long:          "quizctl plays quizzes and manages quiz progress against the same database as the quizflash server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides DB_PATH)")
	flags.String("questions", "", "Directory holding question sources (overrides QUESTIONS_DIR)")
	flags.String("url", "", "Base URL to fetch question sources from (overrides QUESTIONS_URL)")
	flags.String("log-level", cliLogLevel, "Log level written to stderr (overrides LOG_LEVEL)")
	flags.Int("size", 0, "Questions per quiz (overrides SESSION_SIZE)")

	root.AddCommand(
		newSourcesCmd(c),
		newRemainingCmd(c),
		newPlayCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newResetCmd(c),
		newHistoryCmd(c),
		newRestoreCmd(c),
	)
	return root
}

// open resolves the configuration, flags taking priority over the
// environment, and builds the application.
func (c *cli) open(cmd *cobra.Command) error {
	cfg := config.Load()
	flags := cmd.Flags()
	if v, _ := flags.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := flags.GetString("questions"); v != "" {
		cfg.QuestionsDir = v
		cfg.QuestionsURL = ""
	}
	if v, _ := flags.GetString("url"); v != "" {
		cfg.QuestionsURL = v
	}
	if v, _ := flags.GetInt("size"); v > 0 {
		cfg.SessionSize = v
	}
	switch {
	case flags.Changed("log-level"):
		cfg.LogLevel, _ = flags.GetString("log-level")
	case os.Getenv("LOG_LEVEL") == "":
		cfg.LogLevel = cliLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(cmd.ErrOrStderr()),
	)
	logger.SetDefault(log)

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	c.ctx = logger.NewContext(base, log)

	a, err := app.New(c.ctx, cfg)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}
