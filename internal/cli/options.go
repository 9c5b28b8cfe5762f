package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vk/rustdex/internal/app"
	"github.com/vk/rustdex/internal/config"
	"github.com/vk/rustdex/internal/render"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	catalog    string
	logLevel   string
	logFormat  string
	color      string
	output     string

	outW io.Writer
	errW io.Writer
}

// loadConfig reads the configuration file, if any, and applies the flags
// the user set on top of it.
func (o *options) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath)
		if err != nil {
			return config.Config{}, usageError(err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog = o.catalog
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, usageError(err)
	}
	return cfg, nil
}

// newApp builds an app with the catalog loaded.
func (o *options) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := app.NewApp(o.errW, cfg)
	if err := a.Load(cmd.Context()); err != nil {
		return nil, exitErrorFor(err)
	}
	return a, nil
}

func (o *options) jsonOutput() (bool, error) {
	switch o.output {
	case "text":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, usageError(fmt.Errorf("invalid output format %q (expected text or json)", o.output))
	}
}

func (o *options) text() (*render.Text, error) {
	enabled, err := render.ColorEnabled(o.color, o.outW)
	if err != nil {
		return nil, usageError(err)
	}
	return render.NewText(o.outW, render.Options{
		Color: enabled,
		Width: render.TerminalWidth(o.outW),
	}), nil
}

// emit writes v as JSON, or calls printText with a text renderer.
func (o *options) emit(v any, printText func(*render.Text) error) error {
	asJSON, err := o.jsonOutput()
	if err != nil {
		return err
	}
	if asJSON {
		return render.JSON(o.outW, v)
	}
	t, err := o.text()
	if err != nil {
		return err
	}
	return printText(t)
}
