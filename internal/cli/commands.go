package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vk/rustdex/internal/app"
	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/codec"
	"github.com/vk/rustdex/internal/loader"
	"github.com/vk/rustdex/internal/lookup"
	"github.com/vk/rustdex/internal/render"
)

func newShowCommand(opts *options) *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "show REF",
		Short: "Show a trait record",
		Long: `Show the record of a trait.

REF is a trait name (Clone), a qualified name (io::Write, io.Write) or a path
under std (std::io::Write). With --module, REF is taken verbatim as the
trait name inside that module.`,
		Example: "  rustdex show Clone\n  rustdex show io::Write\n  rustdex show Write --module fmt",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			reply := lookup.Answer(a.Registry(), lookup.Query{Ref: args[0], Module: module})

			if err := opts.emit(reply, func(t *render.Text) error {
				switch reply.Status {
				case lookup.StatusOK:
					return t.Capability(reply.Module, catalog.Capability(*reply.Capability))
				case lookup.StatusAmbiguous:
					return t.Ambiguous(reply.Query.Ref, reply.Candidates)
				}
				return nil
			}); err != nil {
				return err
			}

			switch reply.Status {
			case lookup.StatusNotFound:
				return &ExitError{Code: ExitNotFound, Message: reply.Error}
			case lookup.StatusAmbiguous:
				return &ExitError{Code: ExitAmbiguous, Message: reply.Error}
			case lookup.StatusInvalid:
				return &ExitError{Code: ExitUsage, Message: reply.Error}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "module that declares the trait")
	return cmd
}

type modulesView struct {
	Modules []string `json:"modules"`
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [MODULE]",
		Short: "List modules, or the traits of a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			reg := a.Registry()

			if len(args) == 0 {
				ids := reg.ListModules()
				return opts.emit(modulesView{Modules: ids}, func(t *render.Text) error {
					return t.List(ids)
				})
			}

			m, err := reg.GetModule(args[0])
			if err != nil {
				return exitErrorFor(err)
			}
			view := lookup.NewModuleView(m)
			return opts.emit(view, func(t *render.Text) error {
				return t.List(view.Capabilities)
			})
		},
	}
}

func newModuleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "module ID",
		Short: "Describe a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			m, err := a.Registry().GetModule(args[0])
			if err != nil {
				return exitErrorFor(err)
			}
			return opts.emit(lookup.NewModuleView(m), func(t *render.Text) error {
				return t.Module(m)
			})
		},
	}
}

type validateView struct {
	Status       string `json:"status"`
	Source       string `json:"source"`
	Modules      int    `json:"modules"`
	Capabilities int    `json:"capabilities"`
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [PATH]",
		Short: "Check a catalog file or directory",
		Long: `Load a catalog and report the first schema violation, if any.

Without PATH the configured catalog is checked, which defaults to the
bundled one. Exits with status 5 when the catalog violates the schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Catalog = args[0]
			}

			a := app.NewApp(opts.errW, cfg)
			if err := a.Load(cmd.Context()); err != nil {
				return exitErrorFor(err)
			}
			reg := a.Registry()

			view := validateView{
				Status:       "ok",
				Source:       loader.Describe(cfg.Catalog),
				Modules:      len(reg.ListModules()),
				Capabilities: reg.Len(),
			}
			return opts.emit(view, func(t *render.Text) error {
				_, err := fmt.Fprintf(opts.outW, "ok: %s has %d modules and %d capabilities\n",
					view.Source, view.Modules, view.Capabilities)
				return err
			})
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog in another format",
		Long: fmt.Sprintf(`Write the loaded catalog as %v.

Without --format the format follows the extension of --out, and defaults to hcl.`, codec.Names()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := exportCodec(cmd, format, outPath)
			if err != nil {
				return err
			}

			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			out, err := c.Encode(cmd.Context(), a.Registry().Export())
			if err != nil {
				return exitErrorFor(err)
			}

			if outPath == "" {
				_, err = opts.outW.Write(out)
				return err
			}
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return exitErrorFor(fmt.Errorf("failed to write export: %w", err))
			}
			a.Logger().Info("Catalog exported.", "path", outPath, "format", c.Name(), "bytes", len(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "hcl", "output format")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func exportCodec(cmd *cobra.Command, format, outPath string) (codec.Codec, error) {
	if !cmd.Flags().Changed("format") && outPath != "" {
		if c, err := codec.ForFilename(outPath); err == nil {
			return c, nil
		}
	}
	c, err := codec.ByName(format)
	if err != nil {
		return nil, usageError(err)
	}
	return c, nil
}

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP, socket.io and NATS",
		Long: `Serve the catalog until interrupted.

The HTTP API always runs. The socket.io relay and the NATS responder start
when their URLs are configured. With --watch, edits to the catalog on disk
are picked up without a restart; a broken edit leaves the previous catalog
in service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") && opts.configPath == "" {
				cfg.Log.Level = "info"
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Server.Watch = watch
			}

			a := app.NewApp(opts.errW, cfg)
			if err := a.Serve(cmd.Context()); err != nil {
				return exitErrorFor(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the catalog when its files change")
	return cmd
}

func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(opts.outW, "rustdex %s\n", Version)
			return err
		},
	}
}
