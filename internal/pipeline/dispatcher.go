package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ocrtool/internal/engine"
	"ocrtool/internal/logger"
)

// Provider hands out initialized engine handles. Satisfied by
// *engine.Registry.
type Provider interface {
	Get(ctx context.Context, id engine.ID) (engine.Engine, error)
}

// Preparer is the image-decoding collaborator. Satisfied by
// *imaging.Preparer.
type Preparer interface {
	Prepare(path string) (string, func(), error)
}

// Selector names either one engine or the whole enumeration.
type Selector struct {
	id  engine.ID
	all bool
}

// All selects every known engine.
var All = Selector{all: true}

// One selects a single engine.
func One(id engine.ID) Selector {
	return Selector{id: id}
}

// ParseSelector converts a user-supplied selector string.
func ParseSelector(s string) (Selector, error) {
	if s == "all" {
		return All, nil
	}
	id, err := engine.Parse(s)
	if err != nil {
		return Selector{}, err
	}
	return One(id), nil
}

// IDs returns the engines this selector covers, in the fixed dispatch order.
func (s Selector) IDs() []engine.ID {
	if s.all {
		return engine.IDs()
	}
	return []engine.ID{s.id}
}

func (s Selector) String() string {
	if s.all {
		return "all"
	}
	return string(s.id)
}

// Dispatcher runs one named engine or every known engine against one image.
// Each engine is attempted exactly once per image per call; individual
// engine failures never abort the dispatch.
type Dispatcher struct {
	provider Provider
	preparer Preparer
	log      zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given engine provider and
// image preparer.
func NewDispatcher(provider Provider, preparer Preparer) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		preparer: preparer,
		log:      logger.WithComponent("dispatcher"),
	}
}

// Dispatch produces an ImageRecord for the image at path. If the image
// cannot be decoded, every selected engine is recorded as failed with the
// decode message instead of failing the whole image. Engines that are
// unavailable still yield an entry so downstream consumers can see which
// engines were attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, sel Selector) *ImageRecord {
	rec := NewImageRecord(path)

	prepared, cleanup, err := d.preparer.Prepare(path)
	if err != nil {
		d.log.Warn().
			Str("image", rec.Image).
			Err(err).
			Msg("Image decode failed")
		decodeErr := fmt.Errorf("image decode failed: %w", err)
		for _, id := range sel.IDs() {
			rec.Add(id, engine.Failure(id.DisplayName(), 0, decodeErr))
		}
		return rec
	}
	defer cleanup()

	for _, id := range sel.IDs() {
		rec.Add(id, d.runEngine(ctx, id, prepared))
	}
	return rec
}

func (d *Dispatcher) runEngine(ctx context.Context, id engine.ID, imagePath string) engine.Result {
	eng, err := d.provider.Get(ctx, id)
	if err != nil {
		d.log.Debug().
			Str("engine", string(id)).
			Err(err).
			Msg("Engine not usable for this image")
		if errors.Is(err, engine.ErrEngineUnavailable) {
			return engine.Failure(id.DisplayName(), 0, errors.New("not installed"))
		}
		return engine.Failure(id.DisplayName(), 0, err)
	}

	res := eng.Recognize(ctx, imagePath)
	d.log.Info().
		Str("engine", string(id)).
		Bool("success", res.Success).
		Int("lines", res.Lines).
		Float64("confidence", res.Confidence).
		Dur("duration", time.Duration(res.ProcessingTime*float64(time.Second))).
		Msg("Engine finished")
	return res
}
