package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	configdb "github.com/0xalexb/hjarta-configdb"
	yamlcodec "github.com/0xalexb/hjarta-configdb/codec/yaml"
	filefetcher "github.com/0xalexb/hjarta-configdb/fetcher/file"
	"github.com/0xalexb/hjarta-configdb/logging"
	"github.com/0xalexb/hjarta-configdb/repository"
	"github.com/0xalexb/hjarta-configdb/settings"

	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	settingsFile    string
	settingsSection string
	driver          string
	path            string
	dsn             string
	environment     string
	logLevel        string
	logFormat       string
}

// session is the repository opened for one command run.
type session struct {
	settings *settings.Settings
	repo     *repository.Repository
	close    func() error
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "configdb",
		Short:         "Namespaced configuration repository",
		Long:          "Read and write configuration groups addressed as namespace::group.item keys.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.settingsFile, "settings", "", "YAML settings file")
	persistent.StringVar(&flags.settingsSection, "settings-section", "",
		"colon separated path of the settings inside the file, e.g. services:configdb")
	persistent.StringVar(&flags.driver, "driver", "", "loader driver: file, sqlite or memory")
	persistent.StringVar(&flags.path, "path", "", "configuration directory for the file driver")
	persistent.StringVar(&flags.dsn, "dsn", "", "database DSN for the sqlite driver")
	persistent.StringVar(&flags.environment, "environment", "", "environment overlay for the file driver")
	persistent.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	persistent.StringVar(&flags.logFormat, "log-format", "", "log format: json or text")

	rootCmd.AddCommand(
		newGetCommand(flags),
		newHasCommand(flags),
		newHasGroupCommand(flags),
		newSetCommand(flags),
		newNamespacesCommand(flags),
		newAddNamespaceCommand(flags),
		newServeCommand(flags),
		newVersionCommand(),
	)

	return rootCmd
}

// loadSettings reads the settings file when given, then applies flag overrides,
// defaults and validation.
func loadSettings(cmd *cobra.Command, flags *globalFlags) (*settings.Settings, error) {
	target := &settings.Settings{}

	if flags.settingsFile != "" {
		fetcher, err := filefetcher.NewFetcher(flags.settingsFile)()
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		data, err := fetcher.Fetch()
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		err = yamlcodec.NewParser().Parse(data, target, flags.settingsSection)
		if err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	}

	override := func(name string, field *string, flagValue string) {
		if cmd.Flags().Changed(name) {
			*field = flagValue
		}
	}

	override("driver", &target.Loader.Driver, flags.driver)
	override("path", &target.Loader.Path, flags.path)
	override("dsn", &target.Loader.DSN, flags.dsn)
	override("environment", &target.Loader.Environment, flags.environment)
	override("log-level", &target.Log.Level, flags.logLevel)
	override("log-format", &target.Log.Format, flags.logFormat)

	return settings.Finalize(target, flags.settingsSection)
}

// openSession builds the logger and the repository described by the settings.
func openSession(cmd *cobra.Command, flags *globalFlags) (*session, error) {
	s, err := loadSettings(cmd, flags)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.LoggerConfig{Level: s.Log.Level, Format: s.Log.Format}, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	loader, closeLoader, err := configdb.NewLoader(cmd.Context(), s.Loader)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(loader)
	if err != nil {
		_ = closeLoader()

		return nil, err
	}

	return &session{settings: s, repo: repo, close: closeLoader}, nil
}

// withSession opens a session, runs fn and closes the session.
func withSession(
	flags *globalFlags,
	fn func(ctx context.Context, cmd *cobra.Command, sess *session, args []string) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd, flags)
		if err != nil {
			return err
		}

		defer func() {
			closeErr := sess.close()
			if closeErr != nil {
				slog.Error("failed to close loader", "error", closeErr)
			}
		}()

		return fn(cmd.Context(), cmd, sess, args)
	}
}
