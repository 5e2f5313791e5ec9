package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/scriptdeck/internal/logging"
)

// Default poll interval for following logs.
const defaultLogPollInterval = 100 * time.Millisecond

var logsCmd = &cobra.Command{
	Use:   "logs [log-file]",
	Short: "View execution logs",
	Long: `View execution output logs.

With no arguments, lists available log files. With a log file name,
shows its content.`,
	Example: `  # List available execution logs
  scriptdeck logs

  # View recent output (last 100 lines)
  scriptdeck logs deploy_alice_260829_140509.log

  # Follow output of a running execution
  scriptdeck logs deploy_alice_260829_140509.log -f

  # Show the entire log
  scriptdeck logs deploy_alice_260829_140509.log --full`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogsCmd,
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	engine, err := requireEngine(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listLogs(engine.Paths)
	}

	follow, err := cmd.Flags().GetBool("follow")
	if err != nil {
		return fmt.Errorf("get follow flag: %w", err)
	}
	lines, err := cmd.Flags().GetInt("lines")
	if err != nil {
		return fmt.Errorf("get lines flag: %w", err)
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("get full flag: %w", err)
	}

	name := args[0]
	if _, err := os.Stat(engine.Paths.LogPath(name)); err != nil {
		return fmt.Errorf("no log file %q, try 'scriptdeck logs'", name)
	}

	return outputLogs(cmd.Context(), logging.NewReader(engine.Paths), name, follow, lines, full)
}

func listLogs(paths *logging.PathManager) error {
	logNames, err := paths.ListExecutionLogs()
	if err != nil {
		return fmt.Errorf("list execution logs: %w", err)
	}

	if len(logNames) == 0 {
		fmt.Println("No execution logs found")
		return nil
	}
	for _, name := range logNames {
		fmt.Println(name)
	}
	return nil
}

func outputLogs(ctx context.Context, reader *logging.Reader, name string, follow bool, lines int, full bool) error {
	if follow {
		// Follow mode: show last N lines then stream new output
		return reader.FollowWithHistory(ctx, name, os.Stdout, lines, defaultLogPollInterval)
	}

	// Read mode: show lines and exit
	var logLines []string
	var err error

	if full {
		logLines, err = reader.ReadAll(name)
	} else {
		logLines, err = reader.ReadLastN(name, lines)
	}

	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	for _, line := range logLines {
		fmt.Println(line)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolP("follow", "f", false, "follow log output in real-time")
	logsCmd.Flags().IntP("lines", "n", logging.DefaultTailLines, "number of lines to show")
	logsCmd.Flags().Bool("full", false, "show entire log")
}
