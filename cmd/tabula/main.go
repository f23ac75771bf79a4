package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tabula-go/tabula"
	"github.com/tabula-go/tabula/layout"
	"github.com/tabula-go/tabula/render"
	"github.com/tabula-go/tabula/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	report := flag.Bool("r", false, "Print a report of the tracks and bars of each score (default behaviour when no other output is defined).")
	tab := flag.Bool("t", false, "Print every track of each score as a text tab.")
	normalize := flag.Bool("n", false, "Print each score back as .yml, with missing ids and note slots filled in.")
	lineWidth := flag.Float64("w", 0, "Line width used to wrap bars into lines. By default, the width from dimensions.yml.")
	debug := flag.Bool("d", false, "Log layout passes to standard error.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*tab && !*normalize {
		*report = true
	}
	if *debug {
		tabula.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	dim, err := layout.LoadDim()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load custom dimensions, using defaults: %v\n", err)
		dim = layout.DefaultDim()
	}
	if *lineWidth > 0 {
		dim.LineWidth = *lineWidth
	}
	if err := dim.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid dimensions: %v\n", err)
		os.Exit(1)
	}
	renderer, err := render.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create renderer: %v\n", err)
		os.Exit(1)
	}
	ids := tabula.NewIDSource(nil)
	process := func(filename string) error {
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("could not open file %v: %v", filename, err)
		}
		defer f.Close()
		score, err := tabula.ReadScore(f, ids)
		if err != nil {
			return fmt.Errorf("the score could not be read: %v", err)
		}
		if *report {
			text, err := renderer.Report(&score)
			if err != nil {
				return err
			}
			fmt.Println(text)
		}
		if *tab {
			for i := range score.Tracks {
				t := layout.NewTab(dim, nil)
				t.Update(&score.Tracks[i])
				text, err := renderer.Tab(&score.Tracks[i], t)
				if err != nil {
					return err
				}
				fmt.Println(text)
			}
		}
		if *normalize {
			if err := tabula.WriteScore(os.Stdout, score); err != nil {
				return err
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Tabula command line utility for checking and printing .yml guitar tab scores.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
