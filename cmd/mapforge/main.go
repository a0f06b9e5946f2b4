// Package main provides the CLI entrypoint for mapforge.
//
// mapforge builds field-to-field mapping tables between a fixed system
// interface and a partner schema:
//   - extract: prints the field catalog of a JSON, XML or XSD file
//   - validate: checks a project file
//   - xlsx-export: writes a project file as a workbook
//   - xlsx-import: prints the rows decoded from a workbook
//   - serve: runs the local editor backend
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mapforge/internal/config"
	"mapforge/internal/extract"
	"mapforge/internal/logger"
	"mapforge/internal/persist"
	"mapforge/internal/project"
	"mapforge/internal/registry"
	"mapforge/internal/rubric"
	"mapforge/internal/server"
	"mapforge/internal/sheet"
	"mapforge/internal/storage"
	"mapforge/internal/workspace"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: mapforge <command> [flags] [args]

commands:
  extract      print the field catalog of a JSON, XML or XSD file
  validate     check a project file
  xlsx-export  write a project file as a workbook
  xlsx-import  print the rows decoded from a workbook
  serve        run the local editor backend
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cmds := map[string]func([]string, io.Writer, io.Writer) int{
		"extract":     runExtract,
		"validate":    runValidate,
		"xlsx-export": runExport,
		"xlsx-import": runImport,
		"serve":       runServe,
	}

	cmd, ok := cmds[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	return cmd(args[1:], stdout, stderr)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	return fs
}

// oneFile parses flags and requires exactly one positional file argument.
func oneFile(fs *flag.FlagSet, args []string, stderr io.Writer) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "%s: expected exactly one file argument\n", fs.Name())
		return "", false
	}

	return fs.Arg(0), true
}

func runExtract(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("extract", stderr)
	format := fs.String("format", "", "parser to use: json, xml or xsd (default: by file name)")
	leaves := fs.Bool("leaves", false, "print XML leaves with description and completeness")

	path, ok := oneFile(fs, args, stderr)
	if !ok {
		return exitUsage
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	var res *extract.Result

	if *format == "" {
		res, err = extract.FromFile(filepath.Base(path), data)
	} else {
		var f extract.Format

		f, err = extract.ParseFormat(*format)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}

		res, err = extract.Extract(f, data)
	}

	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	if res.IsEmpty() {
		fmt.Fprintln(stderr, "no usable fields found, enter the paths manually")
		return exitOK
	}

	if *leaves && len(res.Leaves) > 0 {
		for _, l := range res.Leaves {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", l.Path, l.Status, l.Description)
		}

		return exitOK
	}

	for _, p := range res.Paths {
		fmt.Fprintln(stdout, p)
	}

	return exitOK
}

func readProject(path string) (*project.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return persist.ImportJSON(f)
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("validate", stderr)

	path, ok := oneFile(fs, args, stderr)
	if !ok {
		return exitUsage
	}

	p, err := readProject(path)
	if err != nil {
		var verr *project.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				fmt.Fprintln(stderr, fe)
			}
		} else {
			fmt.Fprintln(stderr, err)
		}

		return exitFail
	}

	rows := 0
	for _, r := range p.Rounds {
		rows += len(r.Rows)
	}

	fmt.Fprintf(stdout, "%s: valid, %d round(s), %d row(s)\n", p.Key(), len(p.Rounds), rows)

	return exitOK
}

func runExport(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("xlsx-export", stderr)
	out := fs.String("o", "", "output file (default: derived from the project)")
	analysis := fs.Bool("analysis", false, "write the six-column analysis layout")

	path, ok := oneFile(fs, args, stderr)
	if !ok {
		return exitUsage
	}

	p, err := readProject(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	var (
		data []byte
		name string
	)

	if *analysis {
		data, err = sheet.EncodeAnalysis(sheet.AnalysisFromProject(p))
		name = workspace.AnalysisFilename
	} else {
		data, err = persist.ExportSpreadsheet(p)
		name = persist.SpreadsheetFilename(p, time.Now())
	}

	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	if *out != "" {
		name = *out
	}

	if err := os.WriteFile(name, data, 0o644); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	fmt.Fprintln(stdout, name)

	return exitOK
}

func runImport(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("xlsx-import", stderr)
	asJSON := fs.Bool("json", false, "print the decoded sheets as JSON")

	path, ok := oneFile(fs, args, stderr)
	if !ok {
		return exitUsage
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	sheets, err := persist.ImportSpreadsheet(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	if len(sheets) == 0 {
		fmt.Fprintln(stderr, "no sheet with usable rows found")
		return exitOK
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(sheets); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFail
		}

		return exitOK
	}

	for _, s := range sheets {
		fmt.Fprintln(stdout, s.Summary())

		for _, r := range s.Rows {
			fmt.Fprintf(stdout, "  %s\t%s\t%s\t%s\n", r.Source, r.Destination, r.Status, r.Comment)
		}
	}

	return exitOK
}

func runServe(args []string, _, stderr io.Writer) int {
	fs := newFlagSet("serve", stderr)
	addr := fs.String("addr", "", "listen address (overrides the configuration)")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logger.New(cfg.Log)

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		log.Error("failed to load registry", "error", err)
		return exitFail
	}

	templates, err := rubric.Load(cfg.Rubrics.Path)
	if err != nil {
		log.Error("failed to load rubric templates", "error", err)
		return exitFail
	}

	slots, closeSlots, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		log.Error("failed to open storage", "error", err)
		return exitFail
	}

	defer func() {
		if err := closeSlots(); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	repo := persist.NewRepository(slots, persist.WithLogger(log))
	session := workspace.NewSession(repo, reg, templates, log)

	gin.SetMode(gin.ReleaseMode)

	srv := server.New(cfg.Server, session, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server failed", "error", err)
		return exitFail
	}

	log.Info("server exited gracefully")

	return exitOK
}
