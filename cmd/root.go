package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocrtool/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ocrtool",
	Short: "ocrtool - multi-engine OCR from the command line",
	Long: `ocrtool extracts text from images using interchangeable OCR engines
(PaddleOCR, EasyOCR, Surya, Tesseract) and normalizes their outputs into
one comparable JSON schema.

Tesseract runs in-process; the other engines run as local model servers
whose endpoints are configured through the environment. Run one engine,
or all of them side by side to compare their results.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("ocrtool executed")

		fmt.Println("ocrtool - multi-engine OCR")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
