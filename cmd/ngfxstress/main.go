package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/ngfx/config"
	"github.com/wippyai/ngfx/rc"
)

func main() {
	var (
		configFile  = flag.String("c", "", "Path to YAML config file")
		workers     = flag.Int("workers", 0, "Worker goroutines per subsystem (overrides config)")
		iterations  = flag.Int("iterations", 0, "Operations per worker (overrides config)")
		verbose     = flag.Bool("v", false, "Verbose development logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile, *workers, *iterations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Usage: ngfxstress -i requires a terminal on stdout")
			os.Exit(1)
		}
		// log output would tear the alt screen
		if err := runInteractive(cfg, zap.NewNop()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !run(ctx, cfg, log) {
		log.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string, workers, iterations int) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if iterations > 0 {
		cfg.Iterations = iterations
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) bool {
	rc.SetLogger(log.Named("rc"))

	fmt.Printf("Workers: %d\n", cfg.Workers)
	fmt.Printf("Iterations: %d\n", cfg.Iterations)
	fmt.Printf("Shared objects: %d\n", cfg.Objects)

	rep := newStresser(cfg, log).run(ctx)

	fmt.Printf("\nObjects created:   %d\n", rep.Created)
	fmt.Printf("Objects destroyed: %d\n", rep.Destroyed)
	fmt.Printf("Double destroys:   %d\n", rep.DoubleDestroys)
	fmt.Printf("Pointer clones:    %d\n", rep.Clones)
	fmt.Printf("Handles minted:    %d (freed %d, exhausted %d)\n", rep.Handles, rep.Freed, rep.Exhausted)
	fmt.Printf("Deferred pins:     %d over %d fences\n", rep.Deferred, rep.Fences)
	fmt.Printf("Elapsed:           %v\n", rep.Elapsed)

	if !rep.OK() {
		fmt.Println("\nFAIL: objects leaked or destroyed twice")
		return false
	}
	fmt.Println("\nOK")
	return true
}
