package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrtool/internal/engine"
	"ocrtool/internal/imaging"
)

// writePNG writes a small valid PNG fixture.
func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, 4, color.Black)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func newTestBatch(provider Provider) *Batch {
	return NewBatch(NewDispatcher(provider, imaging.NewPreparer()))
}

func singleEngineProvider(id engine.ID) *fakeProvider {
	return &fakeProvider{engines: map[engine.ID]*fakeEngine{
		id: {id: id, res: okResult(id, "some text", 0.9, 1)},
	}}
}

func TestBatchProcessesAllImagesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.png", "b.png"} {
		writePNG(t, filepath.Join(dir, name))
	}

	report, err := newTestBatch(singleEngineProvider(engine.Tesseract)).
		Run(context.Background(), dir, One(engine.Tesseract))
	require.NoError(t, err)

	require.Len(t, report.Images, 3)
	assert.Equal(t, "a.png", report.Images[0].Image)
	assert.Equal(t, "b.png", report.Images[1].Image)
	assert.Equal(t, "c.png", report.Images[2].Image)
	assert.Equal(t, 3, report.Summary.TotalImages)
	assert.Equal(t, 3, report.Summary.SuccessfulImages)
	assert.Greater(t, report.Summary.TotalTime, 0.0)
}

func TestBatchOneBadImageDoesNotReduceOutputCount(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "img1.png"))
	// img2 has an image extension but undecodable content.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img2.png"), []byte("this is not a PNG"), 0o644))
	writePNG(t, filepath.Join(dir, "img3.png"))

	report, err := newTestBatch(singleEngineProvider(engine.Paddle)).
		Run(context.Background(), dir, One(engine.Paddle))
	require.NoError(t, err)

	require.Len(t, report.Images, 3)

	bad := report.Images[1]
	assert.Equal(t, "img2.png", bad.Image)
	require.Len(t, bad.Entries, 1)
	assert.False(t, bad.Entries[0].Result.Success)
	assert.Contains(t, bad.Entries[0].Result.Error, "image decode failed")

	assert.Equal(t, 1, report.Images[0].SuccessCount())
	assert.Equal(t, 1, report.Images[2].SuccessCount())
	assert.Equal(t, 2, report.Summary.SuccessfulImages)
	assert.Equal(t, 3, report.Summary.TotalImages)
}

func TestBatchSkipsUnsupportedFilesAndSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "keep.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	report, err := newTestBatch(singleEngineProvider(engine.Tesseract)).
		Run(context.Background(), dir, One(engine.Tesseract))
	require.NoError(t, err)

	require.Len(t, report.Images, 1)
	assert.Equal(t, "keep.png", report.Images[0].Image)
}

func TestBatchCaseInsensitiveExtensions(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "UPPER.PNG"))

	report, err := newTestBatch(singleEngineProvider(engine.Tesseract)).
		Run(context.Background(), dir, One(engine.Tesseract))
	require.NoError(t, err)
	require.Len(t, report.Images, 1)
}

func TestBatchEmptyDirectoryIsDistinctError(t *testing.T) {
	dir := t.TempDir()

	_, err := newTestBatch(singleEngineProvider(engine.Tesseract)).
		Run(context.Background(), dir, One(engine.Tesseract))
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestBatchMissingDirectory(t *testing.T) {
	_, err := newTestBatch(singleEngineProvider(engine.Tesseract)).
		Run(context.Background(), filepath.Join(t.TempDir(), "nope"), One(engine.Tesseract))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoImages)
}

func TestBatchAbortsBetweenImagesOnCancel(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		writePNG(t, filepath.Join(dir, name))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestBatch(singleEngineProvider(engine.Tesseract)).
		Run(ctx, dir, One(engine.Tesseract))
	require.NoError(t, err)
	// Already-canceled context: no per-image work is issued, but file
	// enumeration still succeeded and the report is well-formed.
	assert.Empty(t, report.Images)
	assert.Equal(t, 0, report.Summary.TotalImages)
}

func TestBatchAllEnginesUnavailableStillCompletes(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))

	report, err := newTestBatch(&fakeProvider{}).Run(context.Background(), dir, All)
	require.NoError(t, err)

	require.Len(t, report.Images, 1)
	require.Len(t, report.Images[0].Entries, 4)
	for _, e := range report.Images[0].Entries {
		assert.False(t, e.Result.Success)
		assert.Equal(t, "not installed", e.Result.Error)
	}
	assert.Equal(t, 0, report.Summary.SuccessfulImages)
}
