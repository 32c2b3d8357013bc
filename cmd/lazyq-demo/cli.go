package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/lazyq/config"
	"github.com/kbukum/lazyq/version"
)

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           appName,
		Short:         "Run the sample queries through the lazy pipeline engine",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), loaderOptions(configFile)...)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: config.yml in the working directory)")
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", appName, info.String(), info.GoVersion)
			return err
		},
	}
}

func loaderOptions(path string) []config.LoaderOption {
	if path == "" {
		return nil
	}
	return []config.LoaderOption{config.WithConfigFile(path)}
}
