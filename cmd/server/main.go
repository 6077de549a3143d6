package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "songvote/docs"
)

// @title           Song Vote API
// @version         1.0
// @description     Live audience voting for the next song, with playback state and session control
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "songvote",
		Short:         "Real-time song voting server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path != "" {
				return os.Setenv("CONFIG_FILE", path)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newHashPasswordCommand())
	root.AddCommand(newStateCommand())
	return root
}
