// Command spd diagnoses failed pandoc/TeX compilations. It reads the
// compiler log, classifies the primary error, optionally cross-checks the
// TeX source for structural problems, and prints an actionable lead with
// remedy suggestions.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pandoc-debugger/internal/checker"
	"pandoc-debugger/internal/config"
	"pandoc-debugger/internal/lead"
	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/logscan"
	"pandoc-debugger/internal/pipeline"
	"pandoc-debugger/internal/suggest"
	"pandoc-debugger/internal/textio"
	"pandoc-debugger/internal/types"
)

var version = "dev"

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

var (
	flagConfigPath string
	flagLogLevel   string
	flagJSON       bool

	flagRulesFile string
	flagSource    string
	flagMdHint    string
	flagTexHint   string
	flagStrategy  string
	flagRecords   bool

	cfgManager *config.Manager
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	errColor     = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen)
	detailColor  = color.New(color.FgYellow)
	subduedColor = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:     "spd",
	Short:   "Diagnose failed pandoc/TeX compilations",
	Version: version,
	Long: `spd turns an opaque TeX compile failure into an actionable lead.

It extracts the primary error from the compiler log, classifies it,
runs structural checks against the TeX source when that can sharpen
the diagnosis, and matches remedy rules against the log excerpt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func setup() error {
	var err error
	cfgManager, err = config.NewManager(flagConfigPath)
	if err != nil {
		return err
	}
	if err := cfgManager.Load(); err != nil {
		return err
	}
	cfg := cfgManager.GetConfig()

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(level)
	logCfg.LogFilePath = cfg.LogFilePath
	return logger.Init(logCfg)
}

func newPipeline() (*pipeline.Pipeline, error) {
	cfg := cfgManager.GetConfig()

	var rules *suggest.RuleSet
	rulesPath := flagRulesFile
	if rulesPath == "" {
		rulesPath = cfgManager.GetRulesFile()
	}
	if rulesPath != "" {
		var err error
		rules, err = suggest.LoadRules(rulesPath)
		if err != nil {
			return nil, err
		}
	}

	strategy := checker.ParseStrategy(cfg.CheckerStrategy)
	if flagStrategy != "" {
		strategy = checker.ParseStrategy(flagStrategy)
	}

	hints := lead.Hints{MarkdownFile: flagMdHint, TexFile: flagTexHint}
	if hints.MarkdownFile == "" {
		hints.MarkdownFile = config.MarkdownHint()
	}
	if hints.TexFile == "" {
		hints.TexFile = config.TexHint()
	}

	return pipeline.New(pipeline.Options{
		Extractor: logscan.NewExtractor(nil, cfg.ExcerptWindow, cfg.LineSearchWindow),
		Rules:     rules,
		Strategy:  strategy,
		Hints:     hints,
	}), nil
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <log-file>",
	Short: "Diagnose a compile failure from its log (and optionally the source)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}

		report, err := p.DiagnoseFiles(args[0], flagSource)
		if err != nil {
			// The partial report still names the failure for JSON consumers.
			if flagJSON {
				printJSON(report)
			}
			return err
		}

		if flagJSON {
			return printJSON(report)
		}
		printReport(report)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <source-file>",
	Short: "Run structural checks against a TeX source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := textio.ReadFile(args[0])
		if err != nil {
			return types.NewAppError(types.ErrInvalidInput, "failed to read source file "+args[0], err)
		}

		cfg := cfgManager.GetConfig()
		strategy := checker.ParseStrategy(cfg.CheckerStrategy)
		if flagStrategy != "" {
			strategy = checker.ParseStrategy(flagStrategy)
		}

		findings := checker.Run(checker.DefaultCheckers(), src, strategy)
		if len(findings) == 0 {
			if !flagJSON && !flagRecords {
				okColor.Println("No structural problems found.")
			}
			return nil
		}

		switch {
		case flagRecords:
			for i := range findings {
				fmt.Println(lead.FormatRecord(&findings[i]))
			}
		case flagJSON:
			return printJSON(findings)
		default:
			for i := range findings {
				printFinding(&findings[i])
			}
		}
		return nil
	},
}

var rulesLintCmd = &cobra.Command{
	Use:   "rules-lint <rules-file>",
	Short: "Validate a suggestion rules file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := suggest.LoadRules(args[0])
		if err != nil {
			return err
		}
		okColor.Printf("OK: %d rule(s) compiled.\n", rs.Len())
		return nil
	},
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to encode report", err)
	}
	fmt.Println(string(data))
	return nil
}

func printReport(r *pipeline.Report) {
	headerColor.Println("Primary error")
	fmt.Printf("  signature: %s\n", errColor.Sprint(r.Primary.Signature))
	if r.Primary.RawMessage != "" {
		fmt.Printf("  message:   %s\n", r.Primary.RawMessage)
	}
	fmt.Printf("  line:      %s\n", r.Primary.LineNumber)
	if r.Primary.LogExcerpt != "" {
		subduedColor.Println(indent(r.Primary.LogExcerpt, "  | "))
	}

	if len(r.Findings) > 0 {
		fmt.Println()
		headerColor.Println("Structural findings")
		for i := range r.Findings {
			printFinding(&r.Findings[i])
		}
	}

	if r.Lead != nil {
		fmt.Println()
		headerColor.Println("Actionable lead")
		if data, err := lead.MarshalLead(r.Lead); err == nil {
			fmt.Println(indent(string(data), "  "))
		}
	}

	fmt.Println()
	if len(r.Suggestions) == 0 {
		subduedColor.Println("No suggestions matched.")
		return
	}
	headerColor.Println("Suggestions")
	for _, s := range r.Suggestions {
		detailColor.Printf("  - %s", s.Message)
		subduedColor.Printf("  (confidence %.2f, %s)\n", s.Confidence, s.Origin)
	}
}

func printFinding(f *types.Finding) {
	errColor.Printf("  %s", f.Kind)
	fmt.Printf(" at line %d", f.LineNumber)
	switch {
	case f.Counts != nil:
		fmt.Printf(" (%d vs %d)", f.Counts.Open, f.Counts.Close)
	case f.DelimChars != nil:
		fmt.Printf(" (opened %q, closed %q)", f.DelimChars.Opening, f.DelimChars.Closing)
	case f.EnvNames != nil && f.EnvNames.Expected != "" && f.EnvNames.Found != "":
		fmt.Printf(" (expected %s, found %s)", f.EnvNames.Expected, f.EnvNames.Found)
	case f.EnvNames != nil && f.EnvNames.Expected != "":
		fmt.Printf(" (%s)", f.EnvNames.Expected)
	case f.EnvNames != nil:
		fmt.Printf(" (%s)", f.EnvNames.Found)
	}
	fmt.Println()
	if f.ProblemSnippet != "" {
		subduedColor.Printf("    %s\n", f.ProblemSnippet)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit machine-readable JSON")

	diagnoseCmd.Flags().StringVar(&flagRulesFile, "rules", "", "path to suggestion rules file (YAML)")
	diagnoseCmd.Flags().StringVar(&flagSource, "source", "", "path to the TeX source for structural checks")
	diagnoseCmd.Flags().StringVar(&flagMdHint, "md-file", "", "Markdown file name reported in leads")
	diagnoseCmd.Flags().StringVar(&flagTexHint, "tex-file", "", "TeX file name reported in leads")
	diagnoseCmd.Flags().StringVar(&flagStrategy, "strategy", "", "checker strategy (first_match, collect_all)")

	checkCmd.Flags().StringVar(&flagStrategy, "strategy", "", "checker strategy (first_match, collect_all)")
	checkCmd.Flags().BoolVar(&flagRecords, "records", false, "emit legacy colon records")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesLintCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			os.Exit(exitFatal)
		}
		os.Exit(exitUsage)
	}
	os.Exit(exitOK)
}
