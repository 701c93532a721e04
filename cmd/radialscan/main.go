package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"radialscan/pkg/analysis"
	"radialscan/pkg/config"
	"radialscan/pkg/csvlog"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "radialscan.yaml", "YAML configuration file (defaults are used if it does not exist)")
	input := flag.String("input", "", "Image to analyse (MRC map or raster image)")
	output := flag.String("output", "", "CSV log the result is appended to")
	threshold := flag.Float64("threshold", 0, "Standard deviation below which a window counts as flat")
	window := flag.Int("window", 0, "Number of rows pooled into each window")
	axis := flag.String("axis", "", "Scan direction: x (rows) or y (columns)")
	record := flag.String("record", "", "Value written to the log: radius or sentinel")
	section := flag.Int("section", 0, "Z-section of a multi-section MRC stack")
	plotDir := flag.String("plot-dir", "", "Directory for the profile plot and overlay (enables plotting)")
	quiet := flag.Bool("quiet", false, "Suppress the array excerpt and per-step statistics")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file to -config and exit")
	showLog := flag.Bool("show-log", false, "Print the result log after the run")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *input
		case "output":
			cfg.OutputPath = *output
		case "threshold":
			cfg.Threshold = *threshold
		case "window":
			cfg.WindowSize = *window
		case "axis":
			cfg.Input.Axis = *axis
		case "record":
			cfg.Output.Record = *record
		case "section":
			cfg.Input.Section = *section
		case "plot-dir":
			cfg.Plot.Enabled = true
			cfg.Plot.Dir = *plotDir
		case "quiet":
			cfg.Output.Verbose = !*quiet
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	scan, err := cfg.ScanParams()
	if err != nil {
		log.Fatalf("Invalid scan parameters: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("RADIAL FEATURE RADIUS ESTIMATION")
	fmt.Println("================================")
	fmt.Printf("Threshold: %g, window: %d rows, axis: %s, record: %s\n",
		scan.Threshold, scan.WindowSize, scan.Axis, scan.Record)

	params := &analysis.Params{
		InputPath:  cfg.InputPath,
		Section:    cfg.Input.Section,
		OutputPath: cfg.OutputPath,
		CSV:        csvlog.Options{CRLF: cfg.Output.CRLF},
		Scan:       scan,
		Verbose:    cfg.Output.Verbose,
	}
	if cfg.Plot.Enabled {
		params.PlotDir = cfg.Plot.Dir
	}

	analyzer := analysis.NewAnalyzer(params)

	startTime := time.Now()
	if err := analyzer.Process(); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	fmt.Printf("\nAnalysis completed in %.3f seconds\n", time.Since(startTime).Seconds())

	res := analyzer.Result()
	if res.Found {
		fmt.Printf("Radius: %d px (cursor %d, sentinel %d)\n", res.Radius, res.Cursor, res.Sentinel)
	} else {
		fmt.Println("Radius: not detected")
	}

	if *showLog {
		records, err := csvlog.ReadAll(cfg.OutputPath)
		if err != nil {
			log.Fatalf("Failed to read result log: %v", err)
		}
		fmt.Printf("\n%s (%d rows):\n", cfg.OutputPath, len(records))
		for _, rec := range records {
			fmt.Println(strings.Join(rec, ","))
		}
	}
}
