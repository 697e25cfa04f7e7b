// bldgltf is a CLI utility for exporting building geometry models to glTF.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/bldgltf/internal/config"
	"github.com/Faultbox/bldgltf/internal/logger"
	"github.com/Faultbox/bldgltf/pkg/export"
	"github.com/Faultbox/bldgltf/pkg/load"
	"github.com/Faultbox/bldgltf/pkg/model"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export", "x":
		cmdExport(args)
	case "inspect", "info":
		cmdInspect(args)
	case "convert":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bldgltf - building model to glTF 2.0 exporter

Usage:
  bldgltf <command> [options]

Commands:
  export [options] <model.yaml> <out.gltf|out.glb>  Export surfaces to glTF
  inspect [options] <file.gltf|file.glb>            Show scene and surface metadata
  convert [options] <file.gltf|file.glb> [outdir]   Write embedded and non-embedded copies

Options:
  -config <path>      Config file (default ./bldgltf.yaml or the user config dir)
  -color-by <scheme>  surface_type, surface_type_exposure, boundary, construction,
                      thermal_zone, space_type, building_story, building_unit
  -binary             Write a .glb container
  -tolerance <m>      Vertex merge distance
  -generator <name>   Asset generator string
  -assign-colors      Store synthesized colors in the model file
  -debug              Enable debug logging
  -log-file <path>    Also log to a rotating file

Examples:
  bldgltf export office.yaml office.gltf
  bldgltf export -color-by thermal_zone office.yaml office.glb
  bldgltf inspect office.glb
  bldgltf convert office.glb ./out`)
}

// setup parses the shared flags, loads the config and starts logging.
func setup(args []string) (*config.Config, []string) {
	rest, err := config.ParseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("color_by", cfg.Export.ColorBy),
		zap.Float64("tolerance", cfg.Export.Tolerance),
		zap.Bool("binary", cfg.Export.Binary))
	return cfg, rest
}

// fatal logs err and exits.
func fatal(err error) {
	logger.Error("command failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdExport(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: bldgltf export [options] <model.yaml> <out.gltf|out.glb>")
		os.Exit(1)
	}
	modelPath, outPath := rest[0], rest[1]

	m, err := model.LoadFile(modelPath)
	if err != nil {
		fatal(err)
	}

	log := logger.Named("export")
	res, err := export.Export(m, export.Options{
		Logger:    log,
		Tolerance: cfg.Export.Tolerance,
		ColorBy:   cfg.ColorBy(),
		Generator: cfg.Export.Generator,
		Progress: func(done, total int) {
			log.Debug("progress", zap.Int("done", done), zap.Int("total", total))
		},
	})
	if err != nil {
		fatal(err)
	}

	binary := cfg.Export.Binary || export.IsBinaryPath(outPath)
	if err := export.WriteFile(res.Document, outPath, binary); err != nil {
		fatal(err)
	}
	logger.Info("wrote document", zap.String("path", outPath), zap.Bool("binary", binary))

	for _, e := range multierr.Errors(res.Err) {
		logger.Warn("skipped surface", zap.Error(e))
		fmt.Fprintf(os.Stderr, "Skipped: %v\n", e)
	}

	if cfg.Export.AssignColors && len(res.ColorAssignments) > 0 {
		if err := writeColors(modelPath, res.ColorAssignments); err != nil {
			fatal(err)
		}
		model.ApplyColors(res.ColorAssignments)
		fmt.Printf("Assigned colors in %s:\n", modelPath)
		for _, a := range res.ColorAssignments {
			fmt.Printf("  %-28s %-24s %s\n", a.Owner.IddObjectType(), a.Owner.Name(), a.Color.Hex())
		}
	}

	fmt.Printf("Exported: %s (%d surfaces, %d skipped, %d materials)\n",
		outPath, len(res.Exported), len(res.Skipped), len(res.Document.Materials))
}

// writeColors stores synthesized colors in the model file they came from.
func writeColors(path string, assignments []model.ColorAssignment) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := model.WriteColors(data, assignments)
	if err != nil {
		return fmt.Errorf("writing colors to %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return err
	}
	logger.Info("wrote colors", zap.String("path", path), zap.Int("owners", len(assignments)))
	return nil
}

func cmdInspect(args []string) {
	_, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bldgltf inspect [options] <file.gltf|file.glb>")
		os.Exit(1)
	}

	f, err := load.Load(rest[0], load.WithLogger(logger.Named("load")))
	if err != nil {
		fatal(err)
	}

	s := f.Scene
	b := s.BoundingBox
	fmt.Printf("File:       %s\n", rest[0])
	fmt.Printf("Generator:  %s (%s %s)\n", s.Generator, s.Type, s.Version)
	fmt.Printf("North axis: %g\n", s.NorthAxis)
	fmt.Printf("Bounds:     (%g, %g, %g) - (%g, %g, %g)\n", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
	fmt.Printf("Stories:    %v\n", s.BuildingStoryNames)
	fmt.Printf("Objects:    %d\n", len(s.ModelObjectMetadata))
	fmt.Printf("Surfaces:   %d\n", len(f.Nodes))
	fmt.Println()

	typeCount := make(map[string]int)
	for _, n := range f.Nodes {
		typeCount[n.SurfaceType]++
	}
	type typeStat struct {
		typ   string
		count int
	}
	var stats []typeStat
	for typ, count := range typeCount {
		stats = append(stats, typeStat{typ, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].typ < stats[j].typ
	})

	fmt.Println("Surfaces by type:")
	for _, st := range stats {
		fmt.Printf("  %-24s %d\n", st.typ, st.count)
	}
	fmt.Println()

	fmt.Printf("%-24s %-20s %-20s %-16s %s\n", "NAME", "TYPE", "ZONE", "BOUNDARY", "CONSTRUCTION")
	for _, n := range f.Nodes {
		fmt.Printf("%-24s %-20s %-20s %-16s %s\n",
			n.Name, n.SurfaceType, n.ThermalZone.Name, n.OutsideBoundaryCondition, n.Construction.Name)
	}
}

func cmdConvert(args []string) {
	_, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bldgltf convert [options] <file.gltf|file.glb> [outdir]")
		os.Exit(1)
	}
	outDir := ""
	if len(rest) > 1 {
		outDir = rest[1]
	}

	out, err := load.Convert(rest[0], outDir, load.WithLogger(logger.Named("convert")))
	if err != nil {
		fatal(err)
	}
	logger.Info("converted", zap.String("embedded", out.Embedded), zap.String("non_embedded", out.NonEmbedded))

	fmt.Printf("Wrote: %s\n", out.NonEmbedded)
	for _, b := range out.Buffers {
		fmt.Printf("Wrote: %s\n", b)
	}
	fmt.Printf("Wrote: %s\n", out.Embedded)
}
