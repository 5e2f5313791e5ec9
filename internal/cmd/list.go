package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scripts",
	Long: `List the scripts defined in the configured scripts directory.

Script definitions are YAML files; broken definitions are skipped.`,
	Example: `  # List available scripts
  scriptdeck list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := requireEngine(cmd.Context())
		if err != nil {
			return err
		}

		scriptNames, err := engine.Scripts.ListNames()
		if err != nil {
			return fmt.Errorf("list scripts: %w", err)
		}

		if len(scriptNames) == 0 {
			fmt.Println("No scripts found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "NAME\tPATH\tTERMINAL\tPARAMETERS\tDOWNLOADS"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, name := range scriptNames {
			cfg, loadErr := engine.Scripts.Load(name)
			if loadErr != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				cfg.Name, cfg.ScriptPath, strconv.FormatBool(cfg.RequiresTerminal),
				len(cfg.Parameters), len(cfg.DownloadableFiles)); err != nil {
				return fmt.Errorf("write script: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
