package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/funvibe/perldoop/internal/analyzer"
	"github.com/funvibe/perldoop/internal/catalog"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/emitter"
	"github.com/funvibe/perldoop/internal/pipeline"
	"github.com/funvibe/perldoop/internal/symbols"
	"github.com/funvibe/perldoop/internal/translator"
	"github.com/funvibe/perldoop/internal/unitfile"
)

var log = commonlog.GetLogger(config.CLILog)

const usage = `Usage: perldoop [options] <file|dir>...
       perldoop catalog [options]

Translates parsed Perl tree documents (*.pdt.yaml) into Java classes.

Options:
  -o <dir>          output directory (overrides settings)
  -v <level>        log verbosity, 0 to 5
  -settings <file>  settings file (default: perldoop.yaml or perldoop.toml
                    found from the working directory upwards)
  -color <mode>     auto, always or never
`

// options are the command line overrides of the settings file.
type options struct {
	out       string
	verbosity int
	settings  string
	color     string
	paths     []string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{verbosity: -1}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.paths = append(opts.paths, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		value := ""
		if j := strings.IndexByte(name, '='); j >= 0 {
			name, value = name[:j], name[j+1:]
		} else {
			switch name {
			case "o", "v", "settings", "color":
				if i+1 >= len(args) {
					return nil, fmt.Errorf("option %s needs a value", arg)
				}
				i++
				value = args[i]
			}
		}
		switch name {
		case "o":
			opts.out = value
		case "v":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > 5 {
				return nil, fmt.Errorf("verbosity must be between 0 and 5, got %q", value)
			}
			opts.verbosity = n
		case "settings":
			opts.settings = value
		case "color":
			switch value {
			case config.ColorAuto, config.ColorAlways, config.ColorNever:
			default:
				return nil, fmt.Errorf("color must be auto, always or never, got %q", value)
			}
			opts.color = value
		default:
			return nil, fmt.Errorf("unknown option %s", arg)
		}
	}
	return opts, nil
}

// loadSettings reads the explicit settings file, or the nearest one above
// the working directory, and applies the command line overrides.
func loadSettings(opts *options) (*config.Settings, error) {
	path := opts.settings
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	settings := config.DefaultSettings()
	if path != "" {
		s, err := config.LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = s
	}
	if opts.out != "" {
		abs, err := filepath.Abs(opts.out)
		if err != nil {
			return nil, err
		}
		settings.Out = abs
	}
	if opts.verbosity >= 0 {
		settings.Verbosity = opts.verbosity
	}
	if opts.color != "" {
		settings.Color = opts.color
	}
	return settings, nil
}

func useColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// collectFiles expands directories to the tree documents they contain,
// ordered by path.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && unitfile.IsTreeFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// compiler translates the files of one run. Units share a registry so a
// later unit sees the packages of earlier ones.
type compiler struct {
	settings *config.Settings
	registry *symbols.Registry
	catalog  *catalog.Catalog
	stderr   io.Writer
	color    bool
}

func (c *compiler) importer() symbols.Importer {
	if c.catalog == nil {
		return nil
	}
	return c.catalog
}

func (c *compiler) pipeline() *pipeline.Pipeline {
	return pipeline.New(
		&unitfile.LoadProcessor{},
		&analyzer.PrepassProcessor{},
		&translator.Processor{},
		&emitter.Processor{},
		&catalog.ExportProcessor{Catalog: c.catalog},
	)
}

// compile translates one file and writes its class. It reports whether the
// unit translated without errors.
func (c *compiler) compile(path string) bool {
	ctx := pipeline.NewContext(path, c.settings, c.registry, c.importer())
	ctx = c.pipeline().Run(ctx)
	if ctx.Failed() {
		for _, err := range ctx.Errors {
			fmt.Fprintln(c.stderr, diagnostics.Format(err, c.color))
		}
		log.Infof("%s: %d errors, nothing written", path, len(ctx.Errors))
		return false
	}
	if ctx.OutputPath == "" {
		return true
	}
	if err := os.MkdirAll(filepath.Dir(ctx.OutputPath), 0o755); err != nil {
		fmt.Fprintf(c.stderr, "%s: %s\n", path, err)
		return false
	}
	if err := os.WriteFile(ctx.OutputPath, ctx.Output, 0o644); err != nil {
		fmt.Fprintf(c.stderr, "%s: %s\n", path, err)
		return false
	}
	log.Infof("%s -> %s", path, ctx.OutputPath)
	return true
}

func openCatalog(settings *config.Settings) (*catalog.Catalog, error) {
	path := settings.CatalogPath()
	if path == "" {
		return nil, nil
	}
	return catalog.Open(path)
}

// listCatalog prints the packages recorded in the catalog.
func listCatalog(settings *config.Settings, stdout io.Writer) error {
	cat, err := openCatalog(settings)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("no catalog configured")
	}
	defer cat.Close()
	entries, err := cat.Packages()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(stdout, "%-24s %-20s %s  %s  %s\n",
			e.Name, e.Class, e.Source, e.Build, e.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// run executes the command line and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "-help", "--help", "help":
			fmt.Fprint(stdout, usage)
			return 0
		}
	}
	listing := len(args) > 0 && args[0] == "catalog"
	if listing {
		args = args[1:]
	}
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n\n%s", err, usage)
		return 2
	}
	settings, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	commonlog.Configure(settings.Verbosity, nil)

	if listing {
		if err := listCatalog(settings, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
		return 0
	}

	if len(opts.paths) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	files, err := collectFiles(opts.paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	cat, err := openCatalog(settings)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if cat != nil {
		defer cat.Close()
	}

	c := &compiler{
		settings: settings,
		registry: symbols.NewRegistry(),
		catalog:  cat,
		stderr:   stderr,
		color:    useColor(settings.Color, os.Stderr),
	}
	failed := 0
	for _, f := range files {
		if !c.compile(f) {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d files failed\n", failed, len(files))
		return 1
	}
	return 0
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
