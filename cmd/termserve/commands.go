package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/termserve/internal/cli"
	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/dictionary"
	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bastiangx/termserve/pkg/server"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0-beta"
	AppName = "termserve"
	gh      = "https://github.com/bastiangx/termserve"
)

type options struct {
	configPath string
	debug      bool
	dict       []string
	lexicon    string
	watch      bool
	sim        float64
	attrs      []string
	limit      int
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var showVersion bool
	root := &cobra.Command{
		Use:          AppName,
		Short:        "Dictionary term matcher over MessagePack IPC",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config.toml")
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug mode")
	root.PersistentFlags().StringSliceVar(&opts.dict, "dict", nil, "Dictionary files or doublestar globs (overrides [dict].paths)")
	root.PersistentFlags().StringVar(&opts.lexicon, "lexicon", "", "Extra TOML lexicon (overrides [dict].lexicon)")
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show current version")

	root.AddCommand(newServeCmd(opts), newMatchCmd(opts), newInteractiveCmd(opts), newCompileCmd(opts))
	return root
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve match requests over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload dictionaries when their files change")
	return cmd
}

func newMatchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match TEXT...",
		Short: "Print the dictionary terms found in TEXT",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, d, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			attrs, err := matchAttrs(cfg, opts)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			matches := d.Scan(text, attrs, matchSim(cfg, cmd, opts), cfg.Match.MaxMatches)
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "no matches")
				return nil
			}
			fmt.Fprintln(out, cli.Highlight(text, matches))
			for _, m := range matches {
				fmt.Fprintf(out, "%d\t%d\t%s\t%v\n", m.BeginChar(), m.EndChar(), m.Termin.CanonicText(), tagOf(m.Termin))
			}
			return nil
		},
	}
	addMatchFlags(cmd, opts)
	return cmd
}

func newInteractiveCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Match lines typed on stdin, for testing dictionaries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, d, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			attrs, err := matchAttrs(cfg, opts)
			if err != nil {
				return err
			}
			log.SetReportTimestamp(false)
			h := cli.NewInputHandler(d, attrs, matchSim(cfg, cmd, opts), opts.limit, cmd.InOrStdin(), cmd.OutOrStdout())
			return h.Start()
		},
	}
	addMatchFlags(cmd, opts)
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Maximum matches per line")
	return cmd
}

func newCompileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [PATTERN...]",
		Short: "Compile dictionaries into a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadConfigWithPriority(opts.configPath)
			if err != nil {
				return err
			}
			patterns := args
			if len(patterns) == 0 {
				patterns = dictPaths(cfg, opts)
			}
			out := opts.output
			if out == "" {
				out = cfg.Dict.Snapshot
			}
			if out == "" {
				return fmt.Errorf("no output path: use -o or set [dict].snapshot")
			}
			return compile(cmd.Context(), patterns, lexiconPath(cfg, opts), out)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Snapshot path (default [dict].snapshot)")
	return cmd
}

func addMatchFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().Float64Var(&opts.sim, "sim", 0, "Approximate matching threshold in [0.05, 1) (overrides [match].similarity)")
	cmd.Flags().StringSliceVar(&opts.attrs, "attrs", nil, "Extra parse attributes, e.g. ignore_brackets,full_words_only")
}

func matchAttrs(cfg *config.Config, opts *options) (termin.ParseAttr, error) {
	extra, unknown := termin.ParseAttrFromNames(opts.attrs)
	if len(unknown) > 0 {
		return 0, fmt.Errorf("unknown attributes: %s", strings.Join(unknown, ", "))
	}
	return cfg.Match.Attrs() | extra, nil
}

func matchSim(cfg *config.Config, cmd *cobra.Command, opts *options) float64 {
	if cmd.Flags().Changed("sim") {
		return opts.sim
	}
	return cfg.Match.Similarity
}

func tagOf(t *termin.Termin) any {
	if t.Tag == nil {
		return ""
	}
	return t.Tag
}

func dictPaths(cfg *config.Config, opts *options) []string {
	if len(opts.dict) > 0 {
		return opts.dict
	}
	return cfg.Dict.Paths
}

func lexiconPath(cfg *config.Config, opts *options) string {
	if opts.lexicon != "" {
		return opts.lexicon
	}
	return cfg.Dict.Lexicon
}

// sources picks what to load: --dict wins, then an existing snapshot, then
// the configured paths.
func sources(cfg *config.Config, opts *options) []string {
	if len(opts.dict) == 0 && cfg.Dict.Snapshot != "" && utils.FileExists(cfg.Dict.Snapshot) {
		return []string{cfg.Dict.Snapshot}
	}
	return dictPaths(cfg, opts)
}

func setup(ctx context.Context, opts *options) (*config.Config, *dictionary.Dictionary, error) {
	cfg, path, err := config.LoadConfigWithPriority(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(path))
	d, err := dictionary.Open(ctx, sources(cfg, opts), lexiconPath(cfg, opts))
	if err != nil {
		return nil, nil, fmt.Errorf("loading dictionaries: %w", err)
	}
	return cfg, d, nil
}

func runServe(ctx context.Context, opts *options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, d, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	srcs := sources(cfg, opts)
	reload := func(ctx context.Context) (*dictionary.Dictionary, error) {
		return dictionary.Open(ctx, srcs, lexiconPath(cfg, opts))
	}
	srv := server.NewServer(d, cfg,
		server.WithReloader(reload),
		server.WithLogger(logger.NewWithConfig("ipc", log.GetLevel(), opts.debug, true, log.TextFormatter)),
	)

	if opts.watch || cfg.Dict.Watch {
		w, err := dictionary.NewWatcher(srcs, dictionary.DefaultDebounce, func() {
			if err := srv.Reload(ctx); err != nil {
				log.Warnf("Reload failed, keeping current dictionary: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("watching dictionaries: %w", err)
		}
		defer w.Close()
	}

	showStartupInfo(d)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		return nil
	}
}

func compile(ctx context.Context, patterns []string, lexicon, out string) error {
	paths, err := dictionary.ExpandPaths(patterns)
	if err != nil {
		return err
	}
	src, err := dictionary.LoadFiles(ctx, paths)
	if err != nil {
		return err
	}
	var lex *morph.Lexicon
	if lexicon != "" {
		if lex, err = morph.LoadLexicon(lexicon); err != nil {
			return err
		}
	}
	d, err := dictionary.Build(src, lex)
	if err != nil {
		return err
	}
	if err := dictionary.SaveSnapshot(src, out); err != nil {
		return err
	}
	info, _ := dictionary.GetFormatInfo(dictionary.FormatSnapshot)
	log.Print("Snapshot written", "path", out, "format", info.Description, "files", len(paths), "patterns", d.Collection.Len())
	return nil
}

// printVersion shows the styled version banner on stderr.
func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ TermServe ] Finds dictionary terms in running text")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(d *dictionary.Dictionary) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	st := d.Collection.Stats()
	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " TermServe ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("patterns: %d from %d files", st.Termins, len(d.Sources))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
}
