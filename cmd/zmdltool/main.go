// zmdltool is a CLI utility for exporting scene dumps to zmdl model documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/zmdl/internal/config"
	"github.com/Faultbox/zmdl/internal/export"
	"github.com/Faultbox/zmdl/internal/logger"
	"github.com/Faultbox/zmdl/pkg/scene"
	"github.com/Faultbox/zmdl/pkg/zmdl"
)

// stdout receives command output; logs go to stderr.
var stdout io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "export", "x":
		err = cmdExport(args)
	case "check":
		err = cmdCheck(args)
	case "inspect", "info":
		err = cmdInspect(args)
	case "config":
		err = cmdConfig(args)
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = cmdWatch(ctx, args)
		stop()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`zmdltool - zmdl model exporter

Usage:
  zmdltool <command> [options]

Commands:
  export [flags] <scene> <out.zmdl>  Export every used mesh object
  check [flags] <scene>              Run the export without writing
  inspect <file.zmdl>                Show per-object counts of a document
  watch [flags] <scene> <out.zmdl>   Re-export whenever the scene changes
  config init [-toml] [-force] [file] Write a config file with the defaults

Flags:
  -config <file>     Config file (.yaml or .toml)
  -debug             Enable debug logging
  -log <file>        Also log to a rotated file
  -uv <layer>        UV layer name (default: active layer)
  -deform <layer>    Deform layer name (default: active layer)
  -epsilon <n>       Vertex merge tolerance (default: exact)
  -keyframes <mode>  strict or resample
  -yup, -flipv       Axis conversion (default: on)

Examples:
  zmdltool export scene.yaml crate.zmdl
  zmdltool check -keyframes resample rig.json
  zmdltool inspect crate.zmdl`)
}

// setup parses the common flags of a command, loads the config and
// initializes logging. It returns the remaining arguments.
func setup(name string, args []string, nargs int, usage string) ([]string, export.Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, export.Options{}, err
	}
	if fs.NArg() != nargs {
		return nil, export.Options{}, fmt.Errorf("usage: zmdltool %s", usage)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, export.Options{}, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, export.Options{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, export.Options{}, err
	}
	opts.Logger = logger.Named("export")
	logger.Debug("export options",
		zap.String("command", name),
		zap.String("uv_layer", opts.UVLayer),
		zap.String("deform_layer", opts.DeformLayer),
		zap.Float32("merge_epsilon", opts.MergeEpsilon),
		zap.Stringer("keyframes", opts.Keyframes),
		zap.Bool("y_up", opts.YUp),
		zap.Bool("flip_v", opts.FlipV))
	return fs.Args(), opts, nil
}

// exportScene loads a scene file and runs the exporter over it.
func exportScene(path string, opts export.Options) (*zmdl.Document, error) {
	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	return export.New(opts).Export(s)
}

func cmdExport(args []string) error {
	rest, opts, err := setup("export", args, 2, "export [flags] <scene> <out.zmdl>")
	if err != nil {
		return err
	}
	return exportTo(rest[0], rest[1], opts)
}

func exportTo(scenePath, outPath string, opts export.Options) error {
	doc, err := exportScene(scenePath, opts)
	if err != nil {
		return err
	}
	if doc.Len() == 0 {
		logger.Warn("scene has no exportable objects", zap.String("scene", scenePath))
	}
	if err := zmdl.WriteFile(outPath, doc); err != nil {
		return err
	}
	logger.Info("wrote document",
		zap.String("path", outPath),
		zap.Int("objects", doc.Len()))
	fmt.Fprintf(stdout, "Exported: %s (%d objects)\n", outPath, doc.Len())
	return nil
}

func cmdCheck(args []string) error {
	rest, opts, err := setup("check", args, 1, "check [flags] <scene>")
	if err != nil {
		return err
	}
	doc, err := exportScene(rest[0], opts)
	if err != nil {
		return err
	}
	printSummary(doc)
	return nil
}

func cmdInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: zmdltool inspect <file.zmdl>")
	}

	doc, err := zmdl.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Document: %s\n", fs.Arg(0))
	printSummary(doc)
	return nil
}

func cmdConfig(args []string) error {
	const usage = "usage: zmdltool config init [-toml] [-force] [file]"
	if len(args) < 1 || args[0] != "init" {
		return errors.New(usage)
	}

	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	asTOML := fs.Bool("toml", false, "Write TOML to the default location")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var path string
	switch fs.NArg() {
	case 0:
		path = config.DefaultPath(*asTOML)
	case 1:
		path = fs.Arg(0)
	default:
		return errors.New(usage)
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote: %s\n", path)
	return nil
}

// printSummary prints one line of counts per object.
func printSummary(doc *zmdl.Document) {
	fmt.Fprintf(stdout, "Objects: %d\n", doc.Len())
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  %-20s %8s %9s %9s %6s %10s\n",
		"object", "vertices", "triangles", "submeshes", "bones", "animations")
	for _, name := range doc.Keys() {
		m, _ := doc.Get(name)
		fmt.Fprintf(stdout, "  %-20s %8d %9d %9d %6d %10d\n",
			name, len(m.Vertices), m.TriangleCount(), m.Submeshes.Len(), m.Skeleton.Len(), m.Animations.Len())
	}
}
