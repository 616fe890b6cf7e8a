package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/datamtools/dmp"
)

var CLI struct {
	Start int64 `optional:"" help:"Skip the first N bytes of each input." placeholder:"N"`
	Limit int64 `optional:"" help:"Stop each dump after N bytes, 0 dumps everything." placeholder:"N"`

	PerLine  int    `optional:"" name:"per-line" default:"16" help:"Bytes per output line, 0 never wraps."`
	Group    int    `optional:"" default:"1" help:"Space the hex pairs every N bytes, 0 disables." placeholder:"N"`
	Half     int    `optional:"" default:"0" help:"Extra space every N bytes, independent of --group." placeholder:"N"`
	Addr     string `optional:"" default:"long" enum:"none,short,long,var" help:"Address column format: none, short, long or var."`
	Lower    bool   `optional:"" help:"Lowercase hex digits."`
	NoASCII  bool   `optional:"" name:"no-ascii" help:"Omit the ASCII gutter."`
	NoHex    bool   `optional:"" name:"no-hex" help:"Omit the hex digit pairs."`
	Trailing bool   `optional:"" help:"End each dump with its byte count as an address line."`

	HexOnly    bool `optional:"" name:"hex-only" help:"Bare space-separated hex pairs on one unwrapped line."`
	Continuous bool `optional:"" short:"c" help:"Bare hex digits as one unbroken string."`
	HexdumpC   bool `optional:"" name:"hexdump-c" short:"X" help:"Emulate 'hexdump -C -v' output."`

	Quiet bool `optional:"" short:"q" help:"Omit headers, footers and framing blank lines."`

	ToFile  bool   `optional:"" name:"to-file" short:"f" help:"Write each dump to a derived file instead of stdout."`
	KeepExt bool   `optional:"" name:"keep-ext" help:"Derive file.ext.dmp instead of file.dmp."`
	Ext     string `optional:"" default:"dmp" help:"Extension for derived output files."`
	Out     string `optional:"" help:"Combine all dumps into this single output file." placeholder:"FILE"`
	InDir   bool   `optional:"" name:"in-dir" help:"Place derived output files beside their inputs."`
	Jobs    int    `optional:"" default:"1" help:"Concurrent dumps when each input has its own output file." placeholder:"N"`

	About   bool             `optional:"" help:"Show what this program is for."`
	Version kong.VersionFlag `optional:"" help:"Show version and exit."`

	Files []string `arg:"" optional:"" name:"file" help:"Input files to dump."`
}

var errLine = color.New(color.FgRed)

func main() {
	k, err := kong.New(&CLI,
		kong.Name(progName),
		kong.Description(progTitle+". Reads the given files (or a pipe) byte-by-byte and renders each byte in hexadecimal, with various output formatting options."),
		kong.Vars{"version": versionLine()},
	)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if _, err := k.Parse(os.Args[1:]); err != nil {
		errLine.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if CLI.About {
		fmt.Print(aboutText())
		return
	}

	pipe := stdinIsPipe()
	if pipe && len(CLI.Files) > 0 {
		errLine.Fprintln(os.Stderr, "input files are not valid in pipe operations")
		os.Exit(1)
	}
	if !pipe && len(CLI.Files) == 0 {
		fmt.Print(blurbText())
		os.Exit(2)
	}

	cfg, err := resolveConfig()
	if err != nil {
		errLine.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(run(cfg, pipe))
}

// stdinIsPipe reports whether stdin is a pipe, which overrides and
// precludes input from files.
func stdinIsPipe() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeNamedPipe != 0
}

// resolveConfig turns the parsed flags into the engine configuration. The
// engine only ever sees resolved fields, never option text.
func resolveConfig() (dmp.Config, error) {
	for _, v := range []int64{CLI.Start, CLI.Limit, int64(CLI.PerLine), int64(CLI.Group), int64(CLI.Half)} {
		if v < 0 {
			return dmp.Config{}, fmt.Errorf("numeric options must not be negative")
		}
	}
	if CLI.Jobs < 1 {
		CLI.Jobs = 1
	}

	var cfg dmp.Config
	switch {
	case CLI.HexdumpC:
		cfg = dmp.HexdumpC()
	case CLI.Continuous:
		cfg = dmp.HexOnly(true)
	case CLI.HexOnly:
		cfg = dmp.HexOnly(false)
	default:
		cfg = dmp.Config{
			ShowHex:        !CLI.NoHex,
			ShowASCII:      !CLI.NoASCII,
			WordGroup:      CLI.Group,
			HalfGap:        CLI.Half,
			BytesPerLine:   CLI.PerLine,
			ASCIIFullWidth: true,
			TrailingAddr:   CLI.Trailing,
		}
		switch CLI.Addr {
		case "none":
			cfg.AddrMode = dmp.AddrNone
		case "short":
			cfg.AddrMode = dmp.AddrShort
		case "long":
			cfg.AddrMode = dmp.AddrLong
		case "var":
			cfg.AddrMode = dmp.AddrVar
		}
		// Unwrapped lines carry neither addresses nor a gutter, and very
		// long lines drop the gutter.
		if cfg.BytesPerLine == 0 {
			cfg.AddrMode = dmp.AddrNone
			cfg.ShowASCII = false
		} else if cfg.BytesPerLine > 24 {
			cfg.ShowASCII = false
		}
	}

	if CLI.Lower {
		cfg.LowerCase = true
	}
	cfg.StartOffset = CLI.Start
	cfg.Limit = CLI.Limit
	return cfg, nil
}

// job is one input bound to one output.
type job struct {
	path    string // input path; empty reads stdin
	outName string // derived per-input output file; empty means stdout or the combined file
}

func (j job) display() string {
	if j.path == "" {
		return "(stdin)"
	}
	return j.path
}

func buildJobs(pipe bool) []job {
	perFileOut := CLI.ToFile && CLI.Out == ""

	if pipe {
		j := job{}
		if perFileOut {
			j.outName = deriveOutName(stdinName, CLI.KeepExt, CLI.Ext, false)
		}
		return []job{j}
	}

	jobs := make([]job, 0, len(CLI.Files))
	for _, f := range CLI.Files {
		j := job{path: f}
		if perFileOut {
			j.outName = deriveOutName(f, CLI.KeepExt, CLI.Ext, CLI.InDir)
		}
		jobs = append(jobs, j)
	}
	return jobs
}

func run(cfg dmp.Config, pipe bool) int {
	jobs := buildJobs(pipe)

	if CLI.ToFile && CLI.Out == "" && CLI.Jobs > 1 && len(jobs) > 1 {
		return runConcurrent(cfg, jobs)
	}
	return runSequential(cfg, jobs)
}

func runSequential(cfg dmp.Config, jobs []job) int {
	var combined *os.File
	if CLI.Out != "" {
		f, err := os.Create(CLI.Out)
		if err != nil {
			reportJobError(os.Stderr, CLI.Out, err)
			return 1
		}
		defer f.Close()
		combined = f
	}

	exit := 0
	ran := 0
	for _, j := range jobs {
		if err := runJob(cfg, j, combined, ran > 0, os.Stdout); err != nil {
			reportJobError(os.Stderr, j.display(), err)
			exit = 1
			continue
		}
		ran++
	}
	if ran > 0 && !CLI.Quiet {
		fmt.Println()
	}
	return exit
}

// runConcurrent dumps jobs in parallel, which is safe because every job
// writes its own output file and holds its own run state. Console output is
// buffered per job and replayed in argument order.
func runConcurrent(cfg dmp.Config, jobs []job) int {
	var g errgroup.Group
	g.SetLimit(CLI.Jobs)

	consoles := make([]bytes.Buffer, len(jobs))
	errs := make([]error, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			errs[i] = runJob(cfg, j, nil, false, &consoles[i])
			return nil
		})
	}
	g.Wait()

	exit := 0
	ran := 0
	for i, j := range jobs {
		io.Copy(os.Stdout, &consoles[i])
		if errs[i] != nil {
			reportJobError(os.Stderr, j.display(), errs[i])
			exit = 1
			continue
		}
		ran++
	}
	if ran > 0 && !CLI.Quiet {
		fmt.Println()
	}
	return exit
}

// runJob dumps one input. Formatted text goes to the job's own output file,
// the combined file, or stdout; status lines go to console.
func runJob(cfg dmp.Config, j job, combined *os.File, appended bool, console io.Writer) error {
	var in io.Reader = os.Stdin
	if j.path != "" {
		f, err := os.Open(j.path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var sink io.Writer = os.Stdout
	outName := ""
	switch {
	case combined != nil:
		sink = combined
		outName = CLI.Out
	case j.outName != "":
		f, err := os.Create(j.outName)
		if err != nil {
			return err
		}
		defer f.Close()
		sink = f
		outName = j.outName
	}

	if !CLI.Quiet {
		fmt.Fprintln(console)
	}

	w := bufio.NewWriter(sink)
	if !CLI.Quiet {
		if appended && combined != nil {
			fmt.Fprintln(w)
		}
		w.WriteString(headerLine(j.path, j.path == ""))
	}

	sum, err := dmp.Dump(w, bufio.NewReader(in), cfg)
	if err != nil {
		return err
	}

	if !CLI.Quiet {
		w.WriteString(footerLine(sum, cfg.Limit))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if outName != "" {
		fmt.Fprint(console, dumpedLine(sum, outName, appended && combined != nil))
	}
	return nil
}

func reportJobError(w io.Writer, name string, err error) {
	errLine.Fprintf(w, "  error dumping %s\n", name)
	errLine.Fprintf(w, "  (%v)\n", err)
}
