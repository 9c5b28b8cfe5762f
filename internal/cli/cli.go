package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/vk/rustdex/internal/catalog"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitInternal  = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitAmbiguous = 4
	ExitSchema    = 5
)

// Version is the release version, overridable with -ldflags.
var Version = "0.1.0-dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// exitErrorFor classifies err by the catalog error it wraps.
func exitErrorFor(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := ExitInternal
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		code = ExitNotFound
	case errors.Is(err, catalog.ErrAmbiguous):
		code = ExitAmbiguous
	case errors.Is(err, catalog.ErrSchemaViolation):
		code = ExitSchema
	}
	return &ExitError{Code: code, Message: err.Error()}
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// Execute runs the command line in args. It returns nil on success and an
// *ExitError otherwise. Command output goes to outW; logs and help for
// errors go to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		// Anything cobra rejects before a command runs is a usage error.
		return usageError(err)
	}
	return nil
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so tests can run commands in parallel.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{outW: outW, errW: errW}

	root := &cobra.Command{
		Use:   "rustdex",
		Short: "Look up Rust standard library traits",
		Long: `rustdex is a reference dictionary of Rust standard library traits.

Each trait is described by facts about implementing it and about the trait
itself, with an example and its signature. Names declared in several modules,
such as Write in fmt and io, must be qualified: io::Write.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a TOML configuration file")
	flags.StringVar(&opts.catalog, "catalog", "", "catalog file or directory (default: bundled catalog)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&opts.color, "color", "auto", "colorize output: auto, on or off")
	flags.StringVar(&opts.output, "output", "text", "output format: text or json")

	root.AddCommand(
		newShowCommand(opts),
		newListCommand(opts),
		newModuleCommand(opts),
		newValidateCommand(opts),
		newExportCommand(opts),
		newServeCommand(opts),
		newVersionCommand(opts),
	)
	return root
}
