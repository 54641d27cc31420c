package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"copilotdesk/cmd/copilot/chat"
	"copilotdesk/internal/config"
	"copilotdesk/internal/logging"
	"copilotdesk/internal/reply"
	"copilotdesk/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	noDelay    bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "copilot",
	Short: "AI Co-pilot - 智能对话工作台",
	Long: `AI Co-pilot is a single-session chat workspace for the terminal.

Type a question, or pick one of the quick-start prompts with alt+1..4.
Replies are produced locally after a short simulated thinking delay.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd == cmd.Root() {
			return nil
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// replyCmd prints the reply the assistant would give
var replyCmd = &cobra.Command{
	Use:   "reply [prompt...]",
	Short: "Print the assistant reply for a prompt without opening the UI",
	Example: `  copilot reply 帮我做一份学习计划
  copilot reply "write a marketing idea"`,
	RunE: runReply,
}

// startersCmd lists the quick-start prompts
var startersCmd = &cobra.Command{
	Use:   "starters",
	Short: "List the quick-start prompts",
	Args:  cobra.NoArgs,
	RunE:  listStarters,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (debug level for chat log files)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&noDelay, "no-delay", false, "Reply immediately instead of simulating thinking time")

	rootCmd.AddCommand(replyCmd, startersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the config file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

func runInteractiveChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lo, hi := applyFlags(cfg)
	initLogging(cfg.Logging, os.Stderr)
	defer logging.CloseAll()

	logging.Boot("starting chat (theme=%s, delay %s..%s)", cfg.UI.Theme, lo, hi)

	ctrl := session.NewController(session.WithDelayWindow(lo, hi))
	return chat.RunInteractiveChat(chat.Config{
		Controller: ctrl,
		Theme:      cfg.UI.Theme,
		Markdown:   cfg.UI.Markdown,
	})
}

// applyFlags folds --verbose and --no-delay into cfg and returns the reply
// delay window to use.
func applyFlags(cfg *config.Config) (lo, hi time.Duration) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
	lo, hi = cfg.GetDelayWindow()
	if noDelay {
		lo, hi = 0, 0
	}
	return lo, hi
}

// initLogging starts file logging. A failure is reported once on w and the
// chat runs without logs.
func initLogging(c config.LoggingConfig, w io.Writer) {
	if err := logging.Initialize(c); err != nil {
		fmt.Fprintf(w, "warning: %v; file logging disabled\n", err)
	}
}

func runReply(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(joinArgs(args))
	if prompt == "" {
		return fmt.Errorf("prompt is empty")
	}

	synth := reply.New()
	rule, matched := synth.Match(prompt)
	name := "fallback"
	if matched {
		name = rule.Name
	}
	logger.Debug("reply synthesized", zap.String("rule", name))

	printReply(cmd.OutOrStdout(), synth.Synthesize(prompt))
	return nil
}

func printReply(w io.Writer, text string) {
	label := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", label("AI"), text)
}

func listStarters(cmd *cobra.Command, args []string) error {
	key := color.New(color.FgGreen, color.Bold).SprintFunc()
	out := cmd.OutOrStdout()
	for i, s := range session.QuickStarters() {
		fmt.Fprintf(out, "%s %s\n", key(fmt.Sprintf("alt+%d", i+1)), s)
	}
	return nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
