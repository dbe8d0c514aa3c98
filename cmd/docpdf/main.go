// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docpdf CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpdf/internal/logging"
	"github.com/pdiddy/docpdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the configuration for the running command, read once in
	// PersistentPreRunE.
	cfg types.Config

	// logger writes the diagnostic log. It is a no-op until configured.
	logger    = zerolog.Nop()
	logCloser io.Closer
)

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"profile":   "output.profile",
	"ocr-lang":  "ocr.languages",
	"dpi":       "ocr.dpi",
	"log-file":  "log.file",
	"log-level": "log.level",
	"verbose":   "log.console",
	"temp-dir":  "work.temp_dir",
}

// rootCmd is the base command for the docpdf CLI.
var rootCmd = &cobra.Command{
	Use:   "docpdf",
	Short: "Batch-convert documents, spreadsheets, slides, text and images to PDF",
	Long: `docpdf converts office documents, presentations, CSV and text files,
images and existing PDFs into PDF. Output can be normalized to PDF/A
(1b, 2b, 3b), made searchable with OCR, and stamped with a title and author.

Each file in a batch is converted on its own: a file that fails is reported
and the rest of the batch continues. LibreOffice handles office formats,
Tesseract performs OCR and Ghostscript produces PDF/A.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		bindFlags(cmd.Flags())
		var c types.Config
		if err := viper.Unmarshal(&c); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		cfg = c.WithDefaults()

		log, closer, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger, logCloser = log, closer
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("config", used).Msg("using config file")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./docpdf.yaml or ~/.config/docpdf/docpdf.yaml)")
	pf.String("log-file", "", "diagnostic log file (default converter.log)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.BoolP("verbose", "v", false, "mirror the diagnostic log to stderr")
	pf.String("temp-dir", "", "parent directory for intermediate files")
}

// bindFlags binds the flags of the running command to their configuration
// keys. Binding happens per invocation because several commands define the
// same flag names.
func bindFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func initConfig() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docpdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docpdf"))
		}
	}

	viper.SetEnvPrefix("DOCPDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// setDefaults registers every configuration key so that environment
// variables are honored by viper.Unmarshal.
func setDefaults() {
	viper.SetDefault("engines.ghostscript", "")
	viper.SetDefault("engines.tesseract", "")
	viper.SetDefault("engines.soffice", "")
	viper.SetDefault("ocr.languages", types.DefaultOCRLanguages)
	viper.SetDefault("ocr.dpi", types.DefaultDPI)
	viper.SetDefault("output.profile", string(types.ProfileNone))
	viper.SetDefault("log.file", types.DefaultLogFile)
	viper.SetDefault("log.level", "debug")
	viper.SetDefault("log.console", false)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", types.DefaultHistoryFile)
	viper.SetDefault("work.temp_dir", "")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
