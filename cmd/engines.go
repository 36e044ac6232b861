package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ocrtool/internal/config"
	"ocrtool/internal/engine"
	"ocrtool/internal/logger"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show which OCR engines are available",
	Long: `Probe every known OCR engine and report its availability.

Tesseract is checked in-process; the sidecar engines are checked by calling
their model server health endpoints. Also reports whether a GPU accelerator
was detected.`,
	Example: `  ocrtool engines`,
	Args:    cobra.NoArgs,
	RunE:    runEngines,
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func runEngines(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("engines")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := engine.NewRegistry(cfg.GetEngineConfig())
	defer registry.Close()

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("OCR Engines")
	fmt.Println(strings.Repeat("=", 50))

	available := 0
	for _, id := range engine.IDs() {
		_, err := registry.Get(cmd.Context(), id)
		switch {
		case err == nil:
			fmt.Printf("✓ %s available\n", id.DisplayName())
			available++
		case errors.Is(err, engine.ErrEngineUnavailable):
			fmt.Printf("✗ %s not installed\n", id.DisplayName())
		default:
			fmt.Printf("✗ %s initialization failed: %v\n", id.DisplayName(), err)
		}
	}

	fmt.Println(strings.Repeat("-", 50))
	if registry.HasAccelerator() {
		fmt.Println("Accelerator: GPU detected")
	} else {
		fmt.Println("Accelerator: none (CPU only)")
	}
	fmt.Println(strings.Repeat("=", 50))

	log.Info().
		Int("available", available).
		Int("total", len(engine.IDs())).
		Bool("accelerator", registry.HasAccelerator()).
		Msg("Engine availability probed")

	return nil
}
