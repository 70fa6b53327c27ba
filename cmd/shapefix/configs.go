package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"gopkg.in/yaml.v3"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/defs"
	"github.com/reoring/shapefix/i18n"
	"github.com/reoring/shapefix/kubeopenapi"
	"github.com/reoring/shapefix/source"
)

type MainConfig struct {
	Verbose    bool   `cli:"name=v aliases=verbose desc='log debug records to stderr'"`
	Color      bool   `cli:"name=color desc='color output even when not a terminal'"`
	NoColor    bool   `cli:"name=nocolor desc='never color output'"`
	ConfigFile string `cli:"name=config desc='YAML file with maxErrors, threshold, language and input limits'"`
	Def        string `cli:"name=def desc='definition to check against (default: the root definition); with -openapi, the CRD kind'"`
	OpenAPI    bool   `cli:"name=openapi desc='read the definitions file as an OpenAPI v3 schema or a CRD bundle'"`
	Format     string `cli:"name=format desc='document format: json or yaml (default: by file extension, json for stdin)'"`
	MaxErrors  int    `cli:"name=maxErrors desc='maximum number of reported errors per document'"`

	Main *cli.Command
}

type FixConfig struct {
	*MainConfig
	Diff  bool `cli:"name=diff desc='print a line diff of the repair instead of the document'"`
	Patch bool `cli:"name=patch desc='print the repair as a JSON merge patch (RFC 7386)'"`

	Fix *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q aliases=quiet desc='only set the exit code'"`

	Cmd *cli.Command
}

// FileConfig is the -config file layout.
type FileConfig struct {
	sf.Config `yaml:",inline"`
	Language  string         `yaml:"language"`
	Input     source.Options `yaml:"input"`
}

func loadFileConfig(path string) (FileConfig, error) {
	fc := FileConfig{Config: sf.DefaultConfig()}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// session is everything a command needs once flags and files are resolved.
type session struct {
	validator *sf.Validator
	schema    sf.Schema
	input     source.Options
	format    *source.Format
	out       io.Writer
	errOut    io.Writer
	colors    palette
}

func (cfg *MainConfig) session(cc *cli.Context, defsFile string) (*session, error) {
	fc, err := loadFileConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.MaxErrors > 0 {
		fc.MaxErrors = cfg.MaxErrors
	}
	if fc.Language != "" {
		i18n.SetLanguage(fc.Language)
	}
	fc.Logger = newLogger(os.Stderr, cfg.Verbose)

	var schema sf.Schema
	if cfg.OpenAPI {
		schema, err = cfg.importOpenAPI(fc.Logger, defsFile)
	} else {
		schema, err = cfg.loadDefs(fc.Logger, defsFile)
	}
	if err != nil {
		return nil, err
	}

	s := &session{
		validator: sf.New(fc.Config),
		schema:    schema,
		input:     fc.Input,
		out:       cc.Out,
		errOut:    os.Stderr,
	}
	if cfg.Format != "" {
		f, err := source.ParseFormat(cfg.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		s.format = &f
	}
	s.colors = newPalette(cfg.useColor(cc.Out))
	return s, nil
}

func (cfg *MainConfig) loadDefs(log *slog.Logger, file string) (sf.Schema, error) {
	set, err := defs.LoadFile(file)
	if err != nil {
		return nil, err
	}
	log.Debug("definitions loaded", "file", file, "names", set.Names(), "root", set.RootName())
	if cfg.Def != "" {
		s, ok := set.Schema(cfg.Def)
		if !ok {
			return nil, fmt.Errorf("%w: definition %q not found in %s (have %v)", cli.ErrUsage, cfg.Def, file, set.Names())
		}
		return s, nil
	}
	s, err := set.Root()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return s, nil
}

func (cfg *MainConfig) importOpenAPI(log *slog.Logger, file string) (sf.Schema, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var (
		s    sf.Schema
		diag kubeopenapi.Diag
	)
	if cfg.Def != "" {
		s, diag, err = kubeopenapi.ImportYAMLForCRDKind(data, cfg.Def, kubeopenapi.Options{})
	} else {
		s, diag, err = kubeopenapi.Import(data, kubeopenapi.Options{})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	for _, w := range diag.Warnings() {
		log.Warn("schema import", "file", file, "warning", w)
	}
	return s, nil
}

func (cfg *MainConfig) useColor(w io.Writer) bool {
	switch {
	case cfg.NoColor:
		return false
	case cfg.Color:
		return true
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
