// Package cmd implements the ethicalpulse command line.
package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func NewRootCmd(buildInfo BuildInfo, args []string, outWriter io.Writer, errWriter io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ethicalpulse",
		Short:         "Vulnerability management dashboard backed by simulated security tooling",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(NewVersionCmd(buildInfo, outWriter))
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewExecCmd(outWriter))
	rootCmd.AddCommand(NewToolsCmd(outWriter))
	rootCmd.AddCommand(NewReportCmd(outWriter))

	rootCmd.SetArgs(args[1:])
	rootCmd.SetOut(outWriter)
	rootCmd.SetErr(errWriter)

	return rootCmd
}

// Run executes the command named by args.
func Run(buildInfo BuildInfo, args []string, outWriter io.Writer, errWriter io.Writer) error {
	return NewRootCmd(buildInfo, args, outWriter, errWriter).Execute()
}

func NewVersionCmd(buildInfo BuildInfo, outWriter io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(outWriter, "EthicalPulse Version: "+buildInfo.Version+
				" (commit "+buildInfo.Commit+", built "+buildInfo.Date+")\n")
			return err
		},
	}
}
