package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writePNG(t *testing.T, dir, name string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o600))
}

func TestLoadImageValidPNG(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "shot.png", 10, 10)
	store := NewImageStore(dir, 100, 100, 1<<20, zap.NewNop())

	payload := store.LoadImage("shot.png")

	require.NotNil(t, payload)
	assert.Equal(t, "image/png", payload.MIMEType)
	assert.NotEmpty(t, payload.Data)
}

func TestLoadImageEmptyRef(t *testing.T) {
	store := NewImageStore(t.TempDir(), 100, 100, 1<<20, zap.NewNop())
	assert.Nil(t, store.LoadImage(""))
	assert.Nil(t, store.LoadImage("   "))
}

func TestLoadImageMissingFile(t *testing.T) {
	store := NewImageStore(t.TempDir(), 100, 100, 1<<20, zap.NewNop())
	assert.Nil(t, store.LoadImage("does-not-exist.png"))
}

func TestLoadImageRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writePNG(t, outside, "secret.png", 10, 10)
	store := NewImageStore(root, 100, 100, 1<<20, zap.NewNop())

	assert.Nil(t, store.LoadImage("../"+filepath.Base(outside)+"/secret.png"))
	assert.Nil(t, store.LoadImage("../../etc/passwd"))
	assert.Nil(t, store.LoadImage(filepath.Join(outside, "secret.png")))
}

func TestLoadImageRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0o600))
	store := NewImageStore(dir, 100, 100, 1<<20, zap.NewNop())

	assert.Nil(t, store.LoadImage("notes.txt"))
}

func TestLoadImageRejectsOversizedDimensions(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "big.png", 50, 10)
	store := NewImageStore(dir, 20, 20, 1<<20, zap.NewNop())

	assert.Nil(t, store.LoadImage("big.png"))
}

func TestLoadImageRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "small.png", 10, 10)
	store := NewImageStore(dir, 100, 100, 1, zap.NewNop())

	assert.Nil(t, store.LoadImage("small.png"))
}

func TestLoadImageSubdirectoryAllowed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2026", "08"), 0o755))
	writePNG(t, filepath.Join(dir, "2026", "08"), "shot.png", 10, 10)
	store := NewImageStore(dir, 100, 100, 1<<20, zap.NewNop())

	assert.NotNil(t, store.LoadImage(filepath.Join("2026", "08", "shot.png")))
}
