// archcheck checks a TypeScript or JavaScript project against the
// architecture declared in its archcheck.yaml.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

// errViolations signals a completed run that found violations.
var errViolations = errors.New("architecture violations found")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errViolations):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintf(stderr, "Warning: .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(defaultToCheck(root, args))
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "archcheck",
		Short:         "Check a codebase against its declared architecture",
		Long:          "archcheck verifies dependency, purity, cycle, mirror, existence, scope, overlap and\nexhaustiveness contracts declared in archcheck.yaml and reports violations\nas compiler-style diagnostics.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("archcheck {{.Version}}\n")
	root.PersistentFlags().String("color", envDefault("ARCHCHECK_COLOR", "auto"), "colorize output (auto|on|off)")
	root.PersistentFlags().String("log-level", envDefault("ARCHCHECK_LOG_LEVEL", "warn"), "log level (debug|info|warn|error)")

	root.AddCommand(newCheckCmd(stdout, stderr))
	root.AddCommand(newInitCmd(stdout, stderr))
	root.AddCommand(newInferCmd(stdout, stderr))
	root.AddCommand(newScaffoldCmd(stdout, stderr))
	root.AddCommand(newSchemaCmd(stdout))
	root.AddCommand(newCodesCmd(stdout))
	return root
}

// defaultToCheck makes check the default command, so that "archcheck",
// "archcheck ./web" and "archcheck -f json" all run a check.
func defaultToCheck(root *cobra.Command, args []string) []string {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help", "-v", "--version", "completion", "__complete":
			return args
		}
		for _, c := range root.Commands() {
			if c.Name() == args[0] || c.HasAlias(args[0]) {
				return args
			}
		}
	}
	return append([]string{"check"}, args...)
}

func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	name, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", name)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func envDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
