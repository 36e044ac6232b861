package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ocrtool/internal/config"
	"ocrtool/internal/engine"
	"ocrtool/internal/imaging"
	"ocrtool/internal/logger"
	"ocrtool/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [image]",
	Short: "Extract text from a single image",
	Long: `Run one OCR engine, or all of them, against a single image and print
the normalized results as JSON.

Engines that are not installed or whose model server is not reachable are
reported as failed entries rather than aborting the run, so "--engine all"
always shows which engines were attempted.

Model server endpoints are configured through the environment:
  OCR_PADDLE_URL   - PaddleOCR server (default http://127.0.0.1:8868)
  OCR_EASYOCR_URL  - EasyOCR server (default http://127.0.0.1:8869)
  OCR_SURYA_URL    - Surya server (default http://127.0.0.1:8870)`,
	Example: `  # Extract text with the default engine
  ocrtool run invoice.jpg

  # Compare all engines on one image
  ocrtool run invoice.jpg --engine all

  # Run Tesseract and save the result
  ocrtool run scan.png --engine tesseract -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("engine", "e", "paddleocr", "OCR engine (paddleocr, easyocr, surya, tesseract, all)")
	runCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	runCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("run")

	engineName, _ := cmd.Flags().GetString("engine")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	sel, err := pipeline.ParseSelector(engineName)
	if err != nil {
		return fmt.Errorf("invalid engine %q (choose from paddleocr, easyocr, surya, tesseract, all)", engineName)
	}

	if err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	log.Info().
		Str("image", imagePath).
		Str("engine", sel.String()).
		Str("output", outputPath).
		Msg("Starting OCR processing")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := engine.NewRegistry(cfg.GetEngineConfig())
	defer registry.Close()

	dispatcher := pipeline.NewDispatcher(registry, imaging.NewPreparer())
	record := dispatcher.Dispatch(ctx, imagePath, sel)

	log.Info().
		Int("engines_attempted", len(record.Entries)).
		Int("engines_succeeded", record.SuccessCount()).
		Float64("mean_confidence", record.MeanConfidence()).
		Msg("OCR processing completed")

	return writeOutput(record, outputPath, log)
}

// validateImageFile checks that the path names a readable, non-empty regular file.
func validateImageFile(path string, log zerolog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Image file not found")
			return fmt.Errorf("image file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", path).
				Msg("Permission denied accessing image file")
			return fmt.Errorf("permission denied accessing image file: %s", path)
		}
		return fmt.Errorf("error accessing image file: %w", err)
	}

	if !info.Mode().IsRegular() {
		log.Error().
			Str("file", path).
			Msg("Path is not a regular file")
		return fmt.Errorf("path is not a regular file: %s", path)
	}

	if info.Size() == 0 {
		log.Error().
			Str("file", path).
			Msg("Image file is empty")
		return fmt.Errorf("image file is empty: %s", path)
	}

	if !imaging.SupportedFile(path) {
		log.Warn().
			Str("file", path).
			Msg("File does not have a supported image extension")
	}

	return nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling OCR processing")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// writeOutput marshals v as indented JSON and writes it to the output path
// or stdout.
func writeOutput(v any, outputPath string, log zerolog.Logger) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
