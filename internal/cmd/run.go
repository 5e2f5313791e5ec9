package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/scriptdeck/internal/alert"
	"github.com/jmgilman/scriptdeck/internal/download"
	"github.com/jmgilman/scriptdeck/internal/execution"
	"github.com/jmgilman/scriptdeck/internal/logging"
	"github.com/jmgilman/scriptdeck/internal/process"
	"github.com/jmgilman/scriptdeck/internal/prompt"
	"github.com/jmgilman/scriptdeck/internal/script"
	"github.com/jmgilman/scriptdeck/internal/stream"
	"github.com/jmgilman/scriptdeck/internal/termstyle"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script",
	Long: `Run a predefined script as a managed process.

Output is shown live and written to an execution log with secret
parameter values masked. On failure an alert goes to every configured
destination; on success declared result files are collected for
download. Ctrl+C terminates the script.`,
	Example: `  # Run a script, prompting for missing parameters
  scriptdeck run deploy

  # Supply parameters up front
  scriptdeck run deploy -p env=prod -p verbose=true

  # Run on behalf of a specific identity
  scriptdeck run deploy --owner alice`,
	Args: cobra.ExactArgs(1),
	RunE: runRunCmd,
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	engine, err := requireEngine(cmd.Context())
	if err != nil {
		return err
	}

	rawParams, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		return fmt.Errorf("get param flag: %w", err)
	}
	ownerFlag, err := cmd.Flags().GetString("owner")
	if err != nil {
		return fmt.Errorf("get owner flag: %w", err)
	}
	noInput, err := cmd.Flags().GetBool("no-input")
	if err != nil {
		return fmt.Errorf("get no-input flag: %w", err)
	}
	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return fmt.Errorf("get plain flag: %w", err)
	}

	cfg, err := engine.Scripts.Load(args[0])
	if err != nil {
		if errors.Is(err, script.ErrNotFound) {
			return fmt.Errorf("unknown script %q, try 'scriptdeck list'", args[0])
		}
		return fmt.Errorf("load script: %w", err)
	}

	owner := resolveOwner(cmd.Context(), ownerFlag)
	if !cfg.AllowsUser(owner) {
		return fmt.Errorf("user %q is not allowed to run script %q", owner, cfg.Name)
	}

	values, err := parseParamFlags(cfg, rawParams)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && !noInput
	if interactive {
		if err := promptMissing(cfg, values); err != nil {
			return err
		}
	}

	e, err := engine.Registry.Start(cfg, values, owner)
	if err != nil {
		var launchErr *process.LaunchError
		if errors.As(err, &launchErr) {
			alert.DispatchLaunchFailure(engine.Dispatcher, cfg, owner, err)
			engine.Dispatcher.Wait()
		}
		return fmt.Errorf("start script: %w", err)
	}

	extractor := attachConsumers(cmd, engine, cfg, values, owner, e)

	// Show live output on the console; secrets were typed here, so the raw
	// view is fine. Styling is stripped when requested or when stdout is
	// not a terminal.
	stripStyles := cfg.BashFormatting && (plain || !term.IsTerminal(int(os.Stdout.Fd())))
	decoder := termstyle.NewReader()
	consoleDone := make(chan struct{})
	e.OutputStream(false).Subscribe(stream.Funcs{
		Chunk: func(chunk string) {
			if stripStyles {
				for _, frag := range decoder.Read(chunk) {
					fmt.Print(frag.Text)
				}
				return
			}
			fmt.Print(chunk)
		},
		Close: func() { close(consoleDone) },
	})

	// Ctrl+C terminates the script rather than the CLI.
	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		e.Kill()
	}()

	if interactive {
		go forwardStdin(e)
	}

	<-consoleDone

	if extractor != nil {
		<-extractor.Done()
		for _, res := range extractor.Results() {
			fmt.Printf("Result file: %s\n", res.Path)
			if res.Token != "" {
				fmt.Printf("  token: %s\n", res.Token)
			}
		}
	}
	engine.Dispatcher.Wait()

	if code, ok := e.ExitCode(); ok && code != 0 {
		return fmt.Errorf("script %q exited with code %d", cfg.Name, code)
	}
	return nil
}

// promptMissing asks for parameters that were not supplied on the command
// line. Constants are never prompted; empty answers leave optional
// parameters unset.
func promptMissing(cfg *script.Config, values script.Values) error {
	prompter := prompt.New()

	for i := range cfg.Parameters {
		p := &cfg.Parameters[i]
		if p.Constant {
			continue
		}
		if _, supplied := values[p.Name]; supplied {
			continue
		}

		switch {
		case p.Secret:
			value, err := prompter.Secret(p.Name)
			if err != nil {
				return err
			}
			if value != "" {
				values[p.Name] = value
			}
		case p.NoValue:
			enabled, err := prompter.Confirm(p.Name, p.Description)
			if err != nil {
				return err
			}
			values[p.Name] = enabled
		default:
			value, err := prompter.Input(p.Name, p.Description)
			if err != nil {
				return err
			}
			if value == "" && p.Default != "" {
				value = p.Default
			}
			if value != "" {
				values[p.Name] = value
			}
		}
	}
	return nil
}

// attachConsumers wires the execution log, failure alerting, and result file
// extraction to a freshly started execution. Logging problems are reported
// but never stop the run.
func attachConsumers(cmd *cobra.Command, engine *Engine, cfg *script.Config, values script.Values, owner string, e *execution.Executor) *download.Extractor {
	logName := engine.Paths.ExecutionLogName(cfg.Name, owner, e.StartedAt())

	if _, err := engine.Paths.EnsureProcessesDir(); err != nil {
		engine.Logger.Error("execution log unavailable", "error", err)
	} else {
		outputLog, err := logging.NewOutputLogger(
			engine.Paths.LogPath(logName),
			logging.Header{
				ExecutionID: e.ID(),
				Script:      cfg.Name,
				Owner:       owner,
				Command:     e.SecureCommand(),
				StartedAt:   e.StartedAt(),
			},
			engine.Logger,
		)
		if err != nil {
			engine.Logger.Error("execution log unavailable", "error", err)
		} else {
			// The persisted log uses the secure view: secrets stay out of
			// files on disk.
			e.OutputStream(true).Subscribe(outputLog)
		}
	}

	e.AddFinishListener(alert.NewFailureListener(e, engine.Dispatcher, logName))

	var extractor *download.Extractor
	if appCfg := ConfigFromContext(cmd.Context()); appCfg != nil && len(cfg.DownloadableFiles) > 0 {
		signer, err := loadSigner(cmd)
		if err != nil {
			engine.Logger.Warn("download tokens unavailable", "error", err)
		}
		extractor = download.NewExtractor(cfg, values, owner, e.OutputStream(false).Text, appCfg.ResultFilesDir(), signer, engine.Logger)
		e.AddFinishListener(extractor)
	}

	return extractor
}

// forwardStdin relays console input lines to the script's standard input.
func forwardStdin(e *execution.Executor) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := e.WriteInput(scanner.Text() + "\n"); err != nil {
			return
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayP("param", "p", nil, "script parameter as name=value (repeatable)")
	runCmd.Flags().String("owner", "", "audit identity for this execution")
	runCmd.Flags().Bool("no-input", false, "never prompt for missing parameters")
	runCmd.Flags().Bool("plain", false, "strip terminal styling from output")
}
