package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/ironsheep/cinegrade-mcp/internal/acquire"
	"github.com/ironsheep/cinegrade-mcp/internal/config"
	"github.com/ironsheep/cinegrade-mcp/internal/export"
	"github.com/ironsheep/cinegrade-mcp/internal/grade"
	"github.com/ironsheep/cinegrade-mcp/internal/pipeline"
	"github.com/ironsheep/cinegrade-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 && args[0] == "process" {
		return runProcess(args[1:])
	}

	flagSet := pflag.NewFlagSet("cinegrade-mcp", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the YAML config file (default: $"+config.EnvConfig+")")
	showVersion := flagSet.BoolP("version", "v", false, "print version information")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if *showVersion {
		printVersion()
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	logger.Debug("starting server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"output_dir", cfg.OutputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(p, logger, Version)
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runProcess grades one shot and prints its manifest as JSON on stdout.
func runProcess(args []string) error {
	var (
		configPath string
		outputDir  string
		shotID     string
		preset     string
	)
	params := grade.Neutral()

	flagSet := pflag.NewFlagSet("cinegrade-mcp process", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file")
	flagSet.StringVar(&outputDir, "output-dir", "", "override output_dir from the config")
	flagSet.StringVar(&shotID, "shot-id", "", "artifact filename prefix (default: random UUID)")
	flagSet.StringVar(&preset, "preset", "", "look preset: neutral, warm, cool, dramatic, vintage, noir")
	flagSet.Float64Var(&params.Exposure, "exposure", params.Exposure, "exposure in stops")
	flagSet.Float64Var(&params.Contrast, "contrast", params.Contrast, "contrast multiplier around mid-gray")
	flagSet.Float64Var(&params.Saturation, "saturation", params.Saturation, "saturation multiplier")
	flagSet.Float64Var(&params.Temperature, "temperature", params.Temperature, "warm (+) or cool (-) shift")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printProcessHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printProcessHelp(flagSet)
		return nil
	}
	rest := flagSet.Args()
	if len(rest) != 1 {
		return fmt.Errorf("process takes exactly one source, got %d", len(rest))
	}

	cfg, logger, err := setup(configPath)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	params.Preset = grade.ParsePreset(preset)
	if shotID == "" {
		shotID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manifest, err := p.Process(ctx, rest[0], shotID, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}

// setup loads and validates the configuration and installs the logger.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	// Stdout is reserved for the MCP protocol.
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}
	caption, err := cfg.CaptionStyle()
	if err != nil {
		return nil, err
	}

	exp := export.New(cfg.OutputDir)
	exp.JPEGQuality = cfg.Export.JPEGQuality
	exp.ProgressivePreview = cfg.Export.ProgressivePreview
	exp.Caption = caption
	exp.Logger = logger

	fetcher := acquire.NewFetcher(timeout, cfg.Fetch.MaxBytes)
	fetcher.MaxPixels = cfg.Fetch.MaxPixels
	return pipeline.New(fetcher, exp, logger), nil
}

func printVersion() {
	fmt.Printf("cinegrade-mcp %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Println("cinegrade-mcp - MCP server for 16-bit HDR color grading")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cinegrade-mcp [flags]                     serve MCP over stdin/stdout")
	fmt.Println("  cinegrade-mcp process [flags] <source>    grade one image and print its manifest")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Print(flagSet.FlagUsages())
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=<path>     config file when --config is not given\n", config.EnvConfig)
	fmt.Printf("  %s=debug   override log.level\n", config.EnvLogLevel)
}

func printProcessHelp(flagSet *pflag.FlagSet) {
	fmt.Println("Usage: cinegrade-mcp process [flags] <source>")
	fmt.Println()
	fmt.Println("Source is an http(s) URL, a file:// URL or a filesystem path.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Print(flagSet.FlagUsages())
}
