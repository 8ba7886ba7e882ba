package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "salesbot",
		Short:         "Announce NFT sales of one collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	runCmd := NewRunCommand()
	root.RunE = runCmd.RunE

	root.AddCommand(
		runCmd,
		NewPreviewCommand(),
		NewRatesCommand(),
		NewVersionCommand(),
	)
	return root
}

func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		zap.L().Error("Command failed", zap.Error(err))
		_ = zap.L().Sync()
		os.Exit(1)
	}
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show salesbot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
