package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	configdb "github.com/0xalexb/hjarta-configdb"
	yamlcodec "github.com/0xalexb/hjarta-configdb/codec/yaml"
	"github.com/0xalexb/hjarta-configdb/listener"
	"github.com/0xalexb/hjarta-configdb/value"

	"github.com/spf13/cobra"
)

// APIListenerName names the listener started by serve.
const APIListenerName = "api"

var errKeyNotFound = errors.New("key not found")

func newGetCommand(flags *globalFlags) *cobra.Command {
	var def string

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a key as YAML",
		Args:  cobra.ExactArgs(1),
	}

	getCmd.Flags().StringVar(&def, "default", "", "value printed when the key does not resolve")

	getCmd.RunE = withSession(flags, func(ctx context.Context, cmd *cobra.Command, sess *session, args []string) error {
		found, ok, err := sess.repo.Lookup(ctx, args[0])
		if err != nil {
			return err //nolint:wrapcheck // repository errors are printed as is
		}

		if !ok {
			if !cmd.Flags().Changed("default") {
				return fmt.Errorf("%w: %s", errKeyNotFound, args[0])
			}

			found = value.Scalar(def)
		}

		data, err := yamlcodec.NewParser().Encode(found)
		if err != nil {
			return err //nolint:wrapcheck // codec errors carry their context
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err //nolint:wrapcheck // terminal write
	})

	return getCmd
}

func newHasCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "has <key>",
		Short: "Print whether a key resolves to a value",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(ctx context.Context, cmd *cobra.Command, sess *session, args []string) error {
			ok, err := sess.repo.Has(ctx, args[0])
			if err != nil {
				return err //nolint:wrapcheck // repository errors are printed as is
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ok)

			return nil
		}),
	}
}

func newHasGroupCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "has-group <key>",
		Short: "Print whether the group of a key exists in the loader",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(ctx context.Context, cmd *cobra.Command, sess *session, args []string) error {
			ok, err := sess.repo.HasGroup(ctx, args[0])
			if err != nil {
				return err //nolint:wrapcheck // repository errors are printed as is
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ok)

			return nil
		}),
	}
}

func newSetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <yaml-value>",
		Short: "Replace the content of the group of a key",
		Long: "Replace the content of the group of a key with a YAML value. " +
			"The namespace and item of the key are ignored by loaders that write the default namespace only.",
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: withSession(flags, func(ctx context.Context, cmd *cobra.Command, sess *session, args []string) error {
			content, err := yamlcodec.NewParser().Decode([]byte(args[1]))
			if err != nil {
				return err //nolint:wrapcheck // codec errors carry their context
			}

			saved, err := sess.repo.Save(ctx, args[0], content)
			if err != nil {
				return err //nolint:wrapcheck // repository errors are printed as is
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), saved)

			return nil
		}),
	}
}

func newNamespacesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "namespaces",
		Short: "List the registered namespaces",
		Args:  cobra.NoArgs,
		RunE: withSession(flags, func(_ context.Context, cmd *cobra.Command, sess *session, _ []string) error {
			printNamespaces(cmd, sess.repo.Namespaces())

			return nil
		}),
	}
}

func newAddNamespaceCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add-namespace <namespace> <hint>",
		Short: "Register a namespace for this run and list the namespaces",
		Long: "Register a namespace with the loader for the duration of this run and print the registered " +
			"namespaces. Persistent namespaces belong in the loader.namespaces section of the settings file.",
		Args: cobra.ExactArgs(2), //nolint:mnd // namespace and hint
		RunE: withSession(flags, func(_ context.Context, cmd *cobra.Command, sess *session, args []string) error {
			sess.repo.AddNamespace(args[0], args[1])
			printNamespaces(cmd, sess.repo.Namespaces())

			return nil
		}),
	}
}

func printNamespaces(cmd *cobra.Command, names []string) {
	if len(names) == 0 {
		return
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the repository over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, flags)
			if err != nil {
				return err
			}

			app := configdb.NewApp(
				configdb.WithLogOutput(cmd.ErrOrStderr()),
				configdb.WithSettings(s),
				configdb.WithAPIListener(APIListenerName,
					listener.WithAddress(s.Listener.Address),
					listener.WithTimeouts(s.Listener.ReadTimeout, s.Listener.WriteTimeout, s.Listener.IdleTimeout),
				),
			)

			app.Run()

			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "configdb %s (commit %s, built %s)\n",
				configdb.Version, configdb.Commit, configdb.CompiledAt)
		},
	}
}
