// Command ampes converts a slicer G-code program into the event series
// consumed by the thermal solver.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ampes-dev/ampes/internal/config"
	"github.com/ampes-dev/ampes/internal/db"
	"github.com/ampes-dev/ampes/internal/fsutil"
	"github.com/ampes-dev/ampes/internal/monitoring"
	"github.com/ampes-dev/ampes/internal/timeutil"
	"github.com/ampes-dev/ampes/internal/version"
)

var (
	inputPath   = flag.String("i", "", "Input g-code file (default: first *.gcode file in the working directory)")
	configPath  = flag.String("c", config.DefaultConfigName, "Configuration file (.yaml, .toml or .json)")
	outputDir   = flag.String("d", "output", "Output directory")
	outputName  = flag.String("o", "output", "Output file basename")
	plotPNG     = flag.Bool("plot", false, "Write PNG plots of the tool path and power")
	plotHTML    = flag.Bool("html", false, "Write an interactive HTML chart")
	dbPath      = flag.String("db", "", "Record the run in this SQLite run registry (also the target of 'migrate')")
	watchMode   = flag.Bool("watch", false, "Re-run when the g-code or configuration file changes")
	seed        = flag.Int64("seed", -1, "Power perturbation seed (overrides the configuration)")
	quiet       = flag.Bool("q", false, "Suppress progress output")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

const watchDelay = 250 * time.Millisecond

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	if flag.Arg(0) == "migrate" {
		if err := db.RunMigrateCommand(os.Stdout, flag.Arg(1), *dbPath); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	fs := fsutil.OSFileSystem{}
	clock := timeutil.RealClock{}

	gcode, err := findGCode(fs, ".", *inputPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	opts := options{
		gcode:  gcode,
		config: *configPath,
		outDir: *outputDir,
		base:   *outputName,
		png:    *plotPNG,
		html:   *plotHTML,
		dbPath: *dbPath,
		seed:   *seed,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runAndReport := func() error {
		start := clock.Now()
		res, err := run(ctx, fs, clock, opts)
		if err != nil {
			return err
		}
		for _, st := range res.out.Stages {
			monitoring.Logf("  %-12s %v", st.Name, st.Duration)
		}
		monitoring.Logf("Complete: %d layers, %d points, %.3f s simulated, %d files in %v",
			res.out.Layers, res.out.Series.Len(), res.out.Duration(), len(res.files), clock.Since(start))
		return nil
	}

	if err := runAndReport(); err != nil {
		if !*watchMode {
			log.Fatalf("Error: %v", err)
		}
		log.Printf("Error: %v", err)
	}
	if !*watchMode {
		return
	}

	log.Printf("Watching %s and %s for changes", opts.gcode, opts.config)
	err = watch(ctx, clock, []string{opts.gcode, opts.config}, watchDelay, func() {
		if err := runAndReport(); err != nil {
			log.Printf("Error: %v", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("watch stopped: %v", err)
		os.Exit(1)
	}
}
