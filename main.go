package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/json2env/internal/config"
	"github.com/mcncl/json2env/internal/errors"
	"github.com/mcncl/json2env/internal/flattener"
	"github.com/mcncl/json2env/internal/formatter"
	"github.com/mcncl/json2env/internal/logging"
	"github.com/mcncl/json2env/internal/models"
	"github.com/mcncl/json2env/internal/parser"
	"go.uber.org/zap"
)

// CLI defines the command-line interface
var CLI struct {
	Input          string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output         string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	KeySeparator   string `help:"Separator for nested keys." short:"s" default:"__" placeholder:"STRING"`
	ArraySeparator string `help:"Separator for array elements." short:"S" default:"," placeholder:"STRING"`
	EnumerateArray bool   `help:"Separate array elements in multiple environment variables." short:"e"`
	JSONC          bool   `help:"Accept comments and trailing commas in the input." name:"jsonc"`
	Config         string `help:"Path to a YAML config file. Defaults to the nearest .json2env.yml." short:"c" type:"path"`
	Debug          bool   `help:"Enable debug logging." short:"d"`
	Version        bool   `help:"Show version information." short:"v"`
	Interactive    bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *zap.Logger
	Stdout io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	cliParser := kong.Must(&CLI,
		kong.Name("json2env"),
		kong.Description("A tool to convert JSON into KEY=VALUE environment variables"),
		kong.UsageOnError(),
	)

	// Paste mode is the default when no arguments are given
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	kctx, err := cliParser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("json2env version %s\n", Version)
		return
	}

	cfg, configPath, err := config.LoadConfigWithCLI(CLI.Config, cliFlags(), explicitFlags(kctx))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(
			errors.NewConfigError(fmt.Sprintf("failed to load '%s': %v", configPath, err), err),
		))
		os.Exit(1)
	}

	logger := logging.New(cfg.Debug, os.Stderr)
	defer func() { _ = logger.Sync() }()
	if configPath != "" {
		logger.Debug("loaded config file", zap.String("path", configPath))
	}

	err = run(&Context{Debug: cfg.Debug, Config: cfg, Logger: logger, Stdout: os.Stdout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: json2env --help\n")
		_ = logger.Sync()
		os.Exit(1)
	}
}

// cliFlags copies the parsed flag values into config.Flags.
func cliFlags() config.Flags {
	return config.Flags{
		KeySeparator:   CLI.KeySeparator,
		ArraySeparator: CLI.ArraySeparator,
		EnumerateArray: CLI.EnumerateArray,
		JSONC:          CLI.JSONC,
		Debug:          CLI.Debug,
	}
}

// explicitFlags returns the names of the flags given on the command line.
func explicitFlags(kctx *kong.Context) map[string]bool {
	set := map[string]bool{}
	for _, p := range kctx.Path {
		if p.Flag != nil {
			set[p.Flag.Name] = true
		}
	}
	return set
}

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}
	if ctx.Logger == nil {
		ctx.Logger = logging.New(ctx.Debug, os.Stderr)
	}
	if ctx.Stdout == nil {
		ctx.Stdout = os.Stdout
	}
	opts := ctx.Config.Options()

	// 1. Parse JSON input
	ir, err := parseInput(parser.Options{JSONC: ctx.Config.JSONC})
	if err != nil {
		return err
	}

	// 2. Flatten the document
	ctx.Logger.Debug("flattening document",
		zap.String("key_separator", opts.KeySeparator),
		zap.String("array_separator", opts.ArraySeparator),
		zap.Bool("enumerate_array", opts.EnumerateArray),
		zap.Bool("root_is_array", ir.RootIsArray),
	)
	entries := flattener.NewFlattener(opts, ctx.Logger).Flatten(ir.Root)
	ctx.Logger.Debug("flattened document", zap.Int("entries", len(entries)))

	// 3. Render KEY=VALUE lines
	environ := formatter.NewFormatter().Render(entries)

	// 4. Output the result
	return writeOutput(ctx.Stdout, environ)
}

// parseInput reads JSON from file or stdin
func parseInput(opts parser.Options) (models.IntermediateRepresentation, error) {
	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input, opts)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(opts)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("could not read input", err)
	}

	if len(jsonData) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(jsonData, opts)
}

// writeOutput writes the variables to the output file or to stdout, unchanged.
func writeOutput(stdout io.Writer, environ string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(environ), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Environment variables written to %s\n", CLI.Output)
		return nil
	}

	if _, err := io.WriteString(stdout, environ); err != nil {
		return errors.NewOutputError("could not write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(opts parser.Options) (models.IntermediateRepresentation, error) {
	fmt.Fprintln(os.Stderr, "json2env Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData, opts)
}
