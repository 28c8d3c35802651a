package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool
	var jsonOutput bool
	var flags releaseFlags

	ctx := newCommandContext(&configFlag, &verbose, &jsonOutput)

	rootCmd := &cobra.Command{
		Use:   "mapassist [release-root]",
		Short: "Prepare a GoldenEye: Source map release",
		Long: "Builds or validates the map script, music script, and reslist of a map release.\n" +
			"The exit code is a bitmask: 1 preflight, 2 map script, 4 music script, 8 reslist.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReleaseCommand(cmd, ctx, &flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show every check and enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	flags.register(rootCmd)

	rootCmd.AddCommand(newFullCheckCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
