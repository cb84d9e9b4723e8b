package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ethicalpulse/dashboard/internal/app"
	"ethicalpulse/dashboard/internal/report"
)

func NewReportCmd(outWriter io.Writer) *cobra.Command {
	var (
		flags           storeFlags
		vulnerabilities bool
		scans           bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard summary of the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}
			ctx := contextOf(cmd)
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			vulns, err := a.Vulnerabilities.List(ctx)
			if err != nil {
				return err
			}
			scanList, err := a.Scans.List(ctx)
			if err != nil {
				return err
			}

			report.WriteSummary(outWriter, report.Summarize(vulns, scanList, a.Clock().Now()))
			if vulnerabilities {
				_, _ = fmt.Fprintln(outWriter)
				report.WriteVulnerabilities(outWriter, vulns)
			}
			if scans {
				_, _ = fmt.Fprintln(outWriter)
				report.WriteScans(outWriter, scanList)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&vulnerabilities, "vulnerabilities", false, "Also list every vulnerability")
	cmd.Flags().BoolVar(&scans, "scans", false, "Also list every scan")
	return cmd
}
