package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"find-text/config"
	"find-text/render"
	"find-text/search"
)

var version = "0.3"

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

// cli carries the state shared by the root command and its subcommands
type cli struct {
	v          *viper.Viper
	cfg        *config.Config
	logger     *slog.Logger
	configFile string
	out        io.Writer
	errOut     io.Writer
}

// NewRootCommand builds the command tree writing to out and errOut
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	c := &cli{v: config.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "findtext PATTERN [PATH...]",
		Short: "Search text and PDF documents and highlight the matches",
		Long: `findtext searches plain-text files (line by line) and PDF documents
(sentence by sentence, with estimated page numbers) for a literal
string or a regular expression. Matching is case-insensitive unless
--case-sensitive is given. PATH may be a file, a directory or a
comma-separated list of files; it defaults to the current directory.

A PATTERN that names a subcommand (such as "list") must follow "--".`,
		Example: `  findtext error ./logs
  findtext -r -e pdf "net present value" ~/papers
  findtext -x 'order\s+\d+' a.txt,b.txt
  findtext -f json timeout . > report.json
  findtext -- list ./notes`,
		Args:              cobra.MinimumNArgs(1),
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runSearch,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.BoolP("recursive", "r", false, "Descend into subdirectories")
	pf.Bool("hidden", false, "Include entries whose name starts with a dot")
	pf.StringSliceP("ext", "e", nil, "Extensions searched in directories (default .txt,.pdf)")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&c.configFile, "config", "", "Config file (default: findtext.yaml in ~/.config/findtext, $HOME or .)")

	f := root.Flags()
	f.BoolP("regex", "x", false, "Treat PATTERN as a regular expression")
	f.BoolP("case-sensitive", "s", false, "Match case exactly")
	f.StringP("color", "c", "auto", "Colorize output: auto, always, never")
	f.String("highlight", "red", "Highlight color: red, green, yellow, blue, magenta, cyan, none")
	f.String("style", "color", "Highlight style: color, bold, underline, none")
	f.StringP("format", "f", "text", "Output format: text, json, yaml, html")
	f.IntP("workers", "w", 0, "Documents searched in parallel (0 = automatic)")
	f.Int("heavy-concurrency", 0, "Concurrent PDF extractions (0 = automatic)")
	f.Duration("binary-timeout", 0, "Timeout per PDF extraction (default 30s)")
	f.BoolP("interactive", "i", false, "Browse results in an interactive view")

	for key, flag := range map[string]string{
		"recursive":      "recursive",
		"include_hidden": "hidden",
		"extensions":     "ext",
		"log_level":      "log-level",
	} {
		_ = c.v.BindPFlag(key, pf.Lookup(flag))
	}
	for key, flag := range map[string]string{
		"regex":             "regex",
		"case_sensitive":    "case-sensitive",
		"color":             "color",
		"highlight":         "highlight",
		"style":             "style",
		"format":            "format",
		"workers":           "workers",
		"heavy_concurrency": "heavy-concurrency",
		"binary_timeout":    "binary-timeout",
	} {
		_ = c.v.BindPFlag(key, f.Lookup(flag))
	}

	root.AddCommand(c.listCommand())
	return root
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [PATH...]",
		Short: "List the documents a search would read",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := search.NewResolver(c.resolveOptions(), c.logger)
			docs, warnings := resolver.Resolve(cmd.Context(), defaultPaths(args))
			render.Documents(c.out, docs)
			render.Warnings(c.errOut, warnings, colorEnabled("auto", c.errOut))
			return cmd.Context().Err()
		},
	}
}

// setup loads configuration once flags are parsed
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = newLogger(c.errOut, cfg.LogLevel)
	c.logger.Debug("configuration loaded", "file", c.v.ConfigFileUsed(), "extensions", cfg.Extensions)
	return nil
}

func (c *cli) resolveOptions() search.ResolveOptions {
	return search.ResolveOptions{
		Recursive:     c.cfg.Recursive,
		Extensions:    c.cfg.Extensions,
		IncludeHidden: c.cfg.IncludeHidden,
	}
}

func (c *cli) engineOptions() search.Options {
	mode := search.Literal
	if c.cfg.Regex {
		mode = search.Regex
	}
	return search.Options{
		Recursive:        c.cfg.Recursive,
		IncludeHidden:    c.cfg.IncludeHidden,
		Extensions:       c.cfg.Extensions,
		Mode:             mode,
		CaseSensitive:    c.cfg.CaseSensitive,
		Workers:          c.cfg.Workers,
		HeavyConcurrency: c.cfg.HeavyConcurrency,
		BinaryTimeout:    c.cfg.BinaryTimeout,
		Logger:           c.logger,
	}
}

func (c *cli) runSearch(cmd *cobra.Command, args []string) error {
	pattern, paths := args[0], defaultPaths(args[1:])
	opts := c.engineOptions()

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		return runTUI(cmd.Context(), pattern, paths, opts, c.cfg)
	}

	engine, err := search.NewEngine(pattern, opts)
	if err != nil {
		return err
	}
	report, runErr := engine.Run(cmd.Context(), paths)

	renderer, err := render.New(c.cfg.Format, render.Options{
		Palette: c.cfg.Highlight,
		Style:   c.cfg.Style,
		Color:   c.cfg.Format == "text" && colorEnabled(c.cfg.Color, c.out),
	})
	if err != nil {
		return err
	}
	if err := renderer.Render(c.out, report); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	render.Warnings(c.errOut, report.Warnings, colorEnabled(c.cfg.Color, c.errOut))
	return runErr
}

// defaultPaths searches the working directory when no path is given
func defaultPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// colorEnabled resolves auto/always/never against the writer. NO_COLOR disables auto.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newLogger writes text records to w at the given level
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Run executes the command line and returns a process exit code
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, NewRootCommand(os.Stdout, os.Stderr), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, errOut io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, warningStyle.Render("Interrupted; results are partial."))
		return exitInterrupted
	default:
		fmt.Fprintln(errOut, errorStyle.Render("Error: "+err.Error()))
		return exitError
	}
}
