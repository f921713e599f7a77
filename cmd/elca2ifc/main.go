// Command elca2ifc converts eLCA HTML reports (optionally paired with an
// XML project export) into CSV tables or an IFC material library. The input
// may be a single report or a directory of reports.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/elcatools/elca2ifc/internal/config"
	"github.com/elcatools/elca2ifc/internal/core"
	"github.com/elcatools/elca2ifc/internal/ifc"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config with the library identity")
		xmlPath    = flag.String("xml", "", "XML project export to reconcile against (single-file mode)")
		output     = flag.String("o", "", "output path (single-file mode, default derived from input)")
		summary    = flag.Bool("summary", false, "write the per-assembly summary instead of the detailed table")
		library    = flag.Bool("ifc", false, "write an IFC material library instead of CSV")
		recursive  = flag.Bool("r", false, "recurse into subdirectories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <report.html | directory>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	opts := ifc.BuildOptions{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		opts = cfg.BuildOptions()
	}

	kind := core.OutputDetailed
	switch {
	case *library:
		kind = core.OutputLibrary
	case *summary:
		kind = core.OutputSummary
	}

	pipeline := core.NewPipeline(opts)

	info, err := os.Stat(input)
	if err != nil {
		log.Fatalf("input %s: %v", input, err)
	}

	if !info.IsDir() {
		if err := runSingle(pipeline, input, *xmlPath, *output, kind); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	stats, err := pipeline.ProcessPath(input, core.BatchOptions{
		Recursive: *recursive,
		Kind:      kind,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("processed %d file(s), %d failed", stats.Processed, stats.Failed)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

// runSingle handles one report with explicit xml/output overrides that the
// batch path cannot carry.
func runSingle(pipeline *core.Pipeline, input, xmlPath, output string, kind core.OutputKind) error {
	assemblies, stats, err := pipeline.ExtractFromFile(input, xmlPath)
	if err != nil {
		return err
	}
	log.Printf("extracted %d assemblies, %d components", stats.Assemblies, stats.Components)

	if output == "" {
		output = kind.OutputPath(input)
	}

	switch kind {
	case core.OutputLibrary:
		if _, err := pipeline.WriteLibrary(assemblies, output); err != nil {
			return err
		}
	default:
		if err := pipeline.WriteCSV(assemblies, output, kind == core.OutputSummary); err != nil {
			return err
		}
	}
	log.Printf("wrote %s", output)
	return nil
}
