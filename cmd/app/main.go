package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pwnholic/observador/internal"
)

func init() {
	internal.InitDefaultLogger(internal.INFO)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: observador -i <record.json>")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	startTime := time.Now()
	customFlag := parseFlag()

	conf, err := loadConfig(customFlag.ConfigFile)
	if err != nil {
		internal.Error("Invalid configuration: %s", err)
		os.Exit(1)
	}
	customFlag.apply(conf)

	level, err := internal.ParseLevel(conf.LogLevel)
	if err != nil {
		internal.Warn("%s, using INFO", err)
	}
	internal.GetDefaultLogger().SetLevel(level)

	in, err := openInput(customFlag.Input)
	if err != nil {
		internal.Error("%s", err)
		os.Exit(1)
	}
	records, err := readRecords(in, customFlag.Encoding)
	in.Close()
	if err != nil {
		internal.Error("%s", err)
		os.Exit(1)
	}
	if customFlag.Filename != "" {
		if len(records) == 1 {
			records[0].Filename = customFlag.Filename
		} else {
			internal.Warn("-name ignored for %d records", len(records))
		}
	}

	if err := run(conf, records); err != nil {
		internal.Error("Something went wrong : %s", err)
		os.Exit(1)
	}
	internal.Success("Program completed in %v", time.Since(startTime))
}

func run(conf *Config, records []Record) error {
	process, err := NewGenerateRecords(conf)
	if err != nil {
		return err
	}
	defer process.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = process.processRecords(ctx, records)
	return err
}
