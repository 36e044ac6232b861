package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocrtool/internal/config"
	"ocrtool/internal/engine"
	"ocrtool/internal/imaging"
	"ocrtool/internal/logger"
	"ocrtool/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Extract text from every supported image in a directory",
	Long: `Process every supported image file in a directory (jpg, jpeg, png, bmp,
tif, tiff, webp) and produce one aggregate JSON report.

Images are processed sequentially in name order. A failure on one image -
an undecodable file, a crashed engine - is recorded in that image's entry
and the batch continues; only a directory with no eligible files at all is
an error. Interrupting the run (Ctrl-C) stops it between images and the
report covers what was processed so far.`,
	Example: `  # Process a folder of scans with the default engine
  ocrtool batch ./scans

  # Compare all engines across a folder and save the report
  ocrtool batch ./scans --engine all -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("engine", "e", "paddleocr", "OCR engine (paddleocr, easyocr, surya, tesseract, all)")
	batchCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	batchCmd.Flags().Int("timeout", 1800, "Batch timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	engineName, _ := cmd.Flags().GetString("engine")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	dir := args[0]

	sel, err := pipeline.ParseSelector(engineName)
	if err != nil {
		return fmt.Errorf("invalid engine %q (choose from paddleocr, easyocr, surya, tesseract, all)", engineName)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	log.Info().
		Str("dir", dir).
		Str("engine", sel.String()).
		Str("output", outputPath).
		Msg("Starting batch processing")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := engine.NewRegistry(cfg.GetEngineConfig())
	defer registry.Close()

	dispatcher := pipeline.NewDispatcher(registry, imaging.NewPreparer())
	report, err := pipeline.NewBatch(dispatcher).Run(ctx, dir, sel)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoImages) {
			return fmt.Errorf("no supported image files in %s (supported: jpg, jpeg, png, bmp, tif, tiff, webp)", dir)
		}
		return err
	}

	log.Info().
		Int("images", report.Summary.TotalImages).
		Int("successful", report.Summary.SuccessfulImages).
		Float64("total_time", report.Summary.TotalTime).
		Msg("Batch processing completed")

	return writeOutput(report, outputPath, log)
}
