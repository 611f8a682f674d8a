package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/exports"
	"github.com/pwnholic/observador/internal/layout"
)

type Flag struct {
	Input         string
	OutputDir     string
	Backend       string
	Filename      string
	ConfigFile    string
	Encoding      string
	LogLevel      string
	MaxConcurrent int
}

func parseFlag() *Flag {
	help := flag.Bool("h", false, "Display this help message and exit")
	flag.BoolVar(help, "help", false, "Alias for -h")
	input := flag.String("i", "", `Path to a JSON record or an array of records ("-" reads stdin)`)
	output := flag.String("o", "", `Output directory (default from config: "observadores")`)
	backend := flag.String("f", "", fmt.Sprintf("Output format: %s (default from config: docx)", strings.Join(exports.Names(), ", ")))
	filename := flag.String("name", "", `[Single Mode] Output file name. Ignored when the input holds more than one record`)
	configFile := flag.String("c", "", "Optional config file (yaml, json or toml)")
	encoding := flag.String("encoding", "", `Input charset label, e.g. "latin1" or "windows-1252" (default utf-8)`)
	logLevel := flag.String("log", "", "Log level: debug, info, warning, error")
	maxConcurrent := flag.Int("x", 0, "Maximum records exported at once (default from config: 4)")

	flag.Parse()

	if *help {
		fmt.Println("Observador - Student observation record generator")
		fmt.Println("Usage: `observador -i <record.json>`")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Single record as DOCX: -i ana.json")
		fmt.Println("  Single record as PDF with a name: -i ana.json -f pdf -name ana.pdf")
		fmt.Println("  Whole course exported 8 at a time: -i grado5.json -f pdf -x 8 -o salida")
		fmt.Println("  Latin-1 export from a spreadsheet: -i grado5.json -encoding latin1")
		os.Exit(0)
	}

	if *input == "" {
		fmt.Println("An input file is required. Use -i flag")
		os.Exit(1)
	}

	if *backend != "" {
		if _, err := exports.New(*backend, layout.Default()); err != nil {
			internal.Error("%s", err)
			os.Exit(1)
		}
	}

	if *maxConcurrent < 0 {
		internal.Error("Concurrency value (-x) must be >= 1")
		os.Exit(1)
	}

	if *logLevel != "" {
		if _, err := internal.ParseLevel(*logLevel); err != nil {
			internal.Error("%s", err)
			os.Exit(1)
		}
	}

	return &Flag{
		Input:         *input,
		OutputDir:     *output,
		Backend:       *backend,
		Filename:      *filename,
		ConfigFile:    *configFile,
		Encoding:      *encoding,
		LogLevel:      *logLevel,
		MaxConcurrent: *maxConcurrent,
	}
}

// apply overrides conf with every flag that was set.
func (f *Flag) apply(conf *Config) {
	if f.OutputDir != "" {
		conf.OutputDir = f.OutputDir
	}
	if f.Backend != "" {
		conf.Backend = f.Backend
	}
	if f.LogLevel != "" {
		conf.LogLevel = f.LogLevel
	}
	if f.MaxConcurrent > 0 {
		conf.Concurrency = f.MaxConcurrent
	}
}
