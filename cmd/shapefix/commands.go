package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "shapefix").
		WithSynopsis("shapefix [opts] command [opts] defs.yaml [documents]").
		WithDescription("shapefix checks JSON and YAML documents against schema definitions and repairs them.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return shapefixMain(cfg, cc, args)
		}).
		WithSubs(
			FixCommand(cfg),
			CheckCommand(cfg, "validate", []string{"v", "val"}, "report every violation", validate),
			CheckCommand(cfg, "assert", []string{"a"}, "report the first violation", assert),
			CheckCommand(cfg, "is", nil, "print true or false per document", is))
}

func shapefixMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Color && cfg.NoColor {
		return fmt.Errorf("%w: -color and -nocolor are exclusive", cli.ErrUsage)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func FixCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FixConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("fix").
		WithAliases("f").
		WithSynopsis("fix [-diff | -patch] defs.yaml [documents]").
		WithDescription("repair documents and print them; violations are reported on stderr").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fix(cfg, cc, args)
		})
	cfg.Fix = cmd
	return cmd
}

type checkFunc func(s *session, docs []document, quiet bool) (ok bool, err error)

func CheckCommand(mainCfg *MainConfig, name string, aliases []string, desc string, fn checkFunc) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand(name).
		WithAliases(aliases...).
		WithSynopsis(name + " [-q] defs.yaml [documents]").
		WithDescription(desc).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args, fn)
		})
	cfg.Cmd = cmd
	return cmd
}

func fix(cfg *FixConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fix.Parse(cc, args)
	if err != nil {
		cfg.Fix.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Diff && cfg.Patch {
		return fmt.Errorf("%w: -diff and -patch are exclusive", cli.ErrUsage)
	}
	s, docs, err := prepare(cfg.MainConfig, cc, args)
	if err != nil {
		return err
	}
	mode := outputDocument
	switch {
	case cfg.Diff:
		mode = outputDiff
	case cfg.Patch:
		mode = outputPatch
	}
	clean, err := s.fix(docs, mode)
	if err != nil {
		return err
	}
	if !clean {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func check(cfg *CheckConfig, cc *cli.Context, args []string, fn checkFunc) error {
	args, err := cfg.Cmd.Parse(cc, args)
	if err != nil {
		cfg.Cmd.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	s, docs, err := prepare(cfg.MainConfig, cc, args)
	if err != nil {
		return err
	}
	ok, err := fn(s, docs, cfg.Quiet)
	if err != nil {
		return err
	}
	if !ok {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func prepare(cfg *MainConfig, cc *cli.Context, args []string) (*session, []document, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("%w: missing definitions file", cli.ErrUsage)
	}
	s, err := cfg.session(cc, args[0])
	if err != nil {
		return nil, nil, err
	}
	docs, err := s.read(args[1:])
	if err != nil {
		return nil, nil, err
	}
	return s, docs, nil
}
