package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"GoDFA/internal/automaton"
	"GoDFA/internal/definition"
	"GoDFA/internal/logger"
	"GoDFA/internal/server"
)

type globalFlags struct {
	logLevel  string
	logFormat string
	logger    *zap.Logger
}

func makeDFACommand() *cobra.Command {
	var global globalFlags
	command := &cobra.Command{
		Use:     "dfa [command] (flags)",
		Short:   "dfa runs deterministic finite automata defined in YAML, TOML or JSON.",
		Version: Version,
		Long: `dfa runs deterministic finite automata defined in YAML, TOML or JSON files.

Typical usage:
    dfa run -f mod3.yaml 110 1001
        Run each input from the initial state and print the resulting state.

    dfa validate -f mod3.yaml
        Check that every (state, symbol) pair has a transition to a declared state.

    dfa serve --addr :8080 --data-dir data
        Serve the HTTP API over the definitions stored in data/definitions.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			global.logger = logger.NewWithWriter(cmd.ErrOrStderr(), global.logLevel, global.logFormat)
		},
	}
	command.PersistentFlags().StringVar(&global.logLevel, "log-level", getEnv("DFA_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	command.PersistentFlags().StringVar(&global.logFormat, "log-format", getEnv("DFA_LOG_FORMAT", "console"), "log format (console, json)")

	command.AddCommand(makeRunCommand(&global))
	command.AddCommand(makeTokenizeCommand(&global))
	command.AddCommand(makeValidateCommand(&global))
	command.AddCommand(makeServeCommand(&global))
	return command
}

func loadAutomaton(path string, global *globalFlags) (*automaton.DFA[string], error) {
	def, err := definition.Load(path)
	if err != nil {
		return nil, err
	}
	dfa, err := def.Build(automaton.Options{Logger: global.logger})
	if err != nil {
		return nil, errors.Wrapf(err, "build %s", path)
	}
	return dfa, nil
}

func makeRunCommand(global *globalFlags) *cobra.Command {
	var file string
	runCmdFunc := func(cmd *cobra.Command, inputs []string) error {
		dfa, err := loadAutomaton(file, global)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, input := range inputs {
			dfa.Reset()
			state, err := dfa.ProcessSequence(input)
			if err != nil {
				return errors.Wrapf(err, "input %q", input)
			}
			verdict := "not final"
			if dfa.IsFinal(state) {
				verdict = "final"
			}
			fmt.Fprintf(out, "%s -> %s (%s)\n", input, state, verdict)
		}
		return nil
	}
	cmd := &cobra.Command{
		Use:   "run -f <definition> <input>...",
		Short: "Run each input from the initial state and print the state it ends in.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCmdFunc,
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "automaton definition file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func makeTokenizeCommand(global *globalFlags) *cobra.Command {
	var file string
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		dfa, err := loadAutomaton(file, global)
		if err != nil {
			return err
		}
		tokens, err := dfa.Tokenize(args[0])
		if err != nil {
			return err
		}
		quoted := make([]string, len(tokens))
		for i, tok := range tokens {
			quoted[i] = fmt.Sprintf("%q", tok)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(quoted, " "))
		return nil
	}
	cmd := &cobra.Command{
		Use:   "tokenize -f <definition> <input>",
		Short: "Split input into alphabet symbols by greedy longest match.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCmdFunc,
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "automaton definition file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func makeValidateCommand(global *globalFlags) *cobra.Command {
	var file string
	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		dfa, err := loadAutomaton(file, global)
		if err != nil {
			return err
		}
		if err := dfa.ValidateAllTransitions(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d states, %d symbols, all transitions defined\n",
			file, len(dfa.States()), len(dfa.Alphabet()))
		return nil
	}
	cmd := &cobra.Command{
		Use:   "validate -f <definition>",
		Short: "Check that every (state, symbol) pair leads to a declared state.",
		Args:  cobra.NoArgs,
		RunE:  runCmdFunc,
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "automaton definition file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func makeServeCommand(global *globalFlags) *cobra.Command {
	cfg := server.DefaultConfig()
	cfg.Addr = ":" + getEnv("DFA_PORT", "8080")
	cfg.DataDir = getEnv("DFA_DATA_DIR", cfg.DataDir)

	runCmdFunc := func(cmd *cobra.Command, args []string) error {
		log := global.logger
		defer func() { _ = log.Sync() }()

		log.Info("starting GoDFA",
			zap.String("version", Version),
			zap.String("addr", cfg.Addr),
			zap.String("data_dir", cfg.DataDir),
		)
		srv, err := server.New(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the automaton HTTP API.",
		Args:  cobra.NoArgs,
		RunE:  runCmdFunc,
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding definitions/")
	cmd.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for in-flight requests")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "maximum request body size")
	return cmd
}
