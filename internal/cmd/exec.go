package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/report"
	"ethicalpulse/dashboard/internal/scanners"
	"ethicalpulse/dashboard/internal/sequencer"
	"ethicalpulse/dashboard/internal/terminal"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func NewExecCmd(outWriter io.Writer) *cobra.Command {
	var (
		domain  string
		ip      string
		option  string
		animate string
	)
	cmd := &cobra.Command{
		Use:   "exec TOOL [COMMAND]",
		Short: "Play the simulated transcript of a tool command",
		Example: `  ethicalpulse exec nmap
  ethicalpulse exec nmap --option comprehensive --ip 192.168.1.100
  ethicalpulse exec sqlmap 'sqlmap -u "http://example.com/page.php?id=1" --dbs'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := args[0]
			if _, ok := scanners.Lookup(tool); !ok {
				return fmt.Errorf("%w: %s", scanners.ErrUnknownTool, tool)
			}
			command := strings.Join(args[1:], " ")
			if command == "" && option != "" {
				command = scanners.Command(tool, option, scanners.Target{Domain: domain, IP: ip})
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			var opts []sequencer.Option
			live := animate == "always" || (animate == "auto" && isTerminal(outWriter))
			if live {
				opts = append(opts, sequencer.WithMirror(outWriter))
			} else {
				opts = append(opts, sequencer.WithSleep(noSleep))
			}

			results := &terminal.Results{}
			manager := terminal.NewManager(cfg.Sequencer, results, ext.NewSystemClock(), ext.NewUUIDGenerator(), logr.Discard(), opts...)
			session, err := manager.Open(tool, domain, ip, "")
			if err != nil {
				return err
			}
			res, err := manager.Run(contextOf(cmd), session.ID, command)
			if err != nil {
				return err
			}
			if !live {
				snap, err := manager.Snapshot(session.ID)
				if err != nil {
					return err
				}
				if _, err := io.WriteString(outWriter, snap.Transcript); err != nil {
					return err
				}
			}
			if res.Cancelled {
				return context.Canceled
			}
			_, _ = fmt.Fprintln(outWriter)
			report.WriteResults(outWriter, results.List())
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Target domain")
	cmd.Flags().StringVar(&ip, "ip", "", "Target IP address")
	cmd.Flags().StringVar(&option, "option", "", "Tool option used to build the command when none is given")
	cmd.Flags().StringVar(&animate, "animate", "auto", "Typing animation: auto, always or never")
	return cmd
}

func NewToolsCmd(outWriter io.Writer) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available security tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			tools := scanners.Tools
			if category != "" {
				tools = scanners.ByCategory(scanners.Category(category))
			}
			report.WriteTools(outWriter, tools)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list tools of this category")
	return cmd
}
