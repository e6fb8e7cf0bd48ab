package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sandwichlabs/mcp-config-extract/internal/extractor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/llms"
)

const appName = "mcp-config-extract"

var version = "dev"

// Function variable for the model constructor to allow mocking in tests
var newModelFn = extractor.NewModel

func newRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Extract MCP server configuration from project documentation using an LLM.",
		Long: `mcp-config-extract reads a README and an optional package.json, asks an LLM to pick out
the server name, command, arguments, environment variables and capabilities, and writes the
result as JSON with heuristic confidence scores.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, v)
		},
	}

	pflags := rootCmd.PersistentFlags()
	pflags.String("provider", extractor.ProviderOpenAI, "LLM provider (openai, anthropic)")
	pflags.String("model", "", "Model name (default depends on provider)")
	pflags.String("base-url", "", "Base URL of the provider API (OpenAI- or Anthropic-compatible endpoint)")
	pflags.Float64("temperature", 0, "Sampling temperature for the LLM (0.0-1.0)")
	pflags.Int("max-tokens", 0, "Maximum number of tokens to generate (0 uses the provider default)")
	pflags.Duration("timeout", 0, "Timeout for the extraction request (0 disables)")
	pflags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pflags.String("env-file", ".env", "dotenv file loaded before reading the environment")

	flags := rootCmd.Flags()
	flags.String("readme", "", "Path to README file")
	flags.String("package-json", "", "Path to package.json file")
	flags.StringP("output", "o", "", "Output file path (default: stdout)")
	flags.String("format", extractor.FormatJSON, "Output format (json, yaml)")
	_ = rootCmd.MarkFlagRequired("readme")

	if err := v.BindPFlags(pflags); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("format", flags.Lookup("format")); err != nil {
		panic(err)
	}
	v.SetEnvPrefix("MCPX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newServeCmd(v), newViewCmd(), newSchemaCmd())
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the dotenv file and installs the process logger. It runs once
// before any command.
func setup(cmd *cobra.Command, v *viper.Viper) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load env file %s: %w", envFile, err)
			}
		}
	}
	logger, err := newLogger(cmd.ErrOrStderr(), v.GetString("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// newExtractor builds an Extractor from the bound settings. It fails before
// any request is made when the provider credential is missing.
func newExtractor(v *viper.Viper) (*extractor.Extractor, error) {
	llm, err := newModelFn(extractor.ProviderSettings{
		Provider: v.GetString("provider"),
		Model:    v.GetString("model"),
		BaseURL:  v.GetString("base-url"),
	})
	if err != nil {
		return nil, err
	}

	var llmCallOpts []llms.CallOption
	if temperature := v.GetFloat64("temperature"); temperature > 0.0 {
		llmCallOpts = append(llmCallOpts, llms.WithTemperature(temperature))
	}
	if maxTokens := v.GetInt("max-tokens"); maxTokens > 0 {
		llmCallOpts = append(llmCallOpts, llms.WithMaxTokens(maxTokens))
	}
	return extractor.New(llm, extractor.WithCallOptions(llmCallOpts...)), nil
}

func runExtract(cmd *cobra.Command, v *viper.Viper) error {
	readmePath, _ := cmd.Flags().GetString("readme")
	manifestPath, _ := cmd.Flags().GetString("package-json")
	outputPath, _ := cmd.Flags().GetString("output")
	format := strings.ToLower(v.GetString("format"))
	if format != extractor.FormatJSON && format != extractor.FormatYAML {
		return fmt.Errorf("unsupported output format %q", format)
	}

	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return fmt.Errorf("read README %s: %w", readmePath, err)
	}
	var manifest *extractor.Manifest
	if manifestPath != "" {
		manifest, err = extractor.LoadManifest(manifestPath)
		if err != nil {
			return err
		}
	}
	slog.Info("Starting extraction", "readme", readmePath, "package_json", manifestPath)

	ex, err := newExtractor(v)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := v.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := ex.ExtractConfiguration(ctx, string(readme), manifest)
	if err != nil {
		return err
	}
	slog.Info("Extraction finished", "overall", out.ConfidenceScores.Overall, "completeness", out.ConfidenceScores.Completeness)

	if outputPath == "" {
		return extractor.Encode(cmd.OutOrStdout(), out, format)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output %s: %w", outputPath, err)
	}
	if err := extractor.Encode(f, out, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	slog.Info("Wrote configuration", "path", outputPath)
	return nil
}
