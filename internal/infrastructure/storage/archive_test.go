package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	return img
}

func TestFileArchive_SaveLoadRemove(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewFileArchive(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, archive.Save(ctx, "frame_b.jpg", testFrame()))
	require.NoError(t, archive.Save(ctx, "frame_a.png", testFrame()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	frames, err := archive.Load(ctx)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, "frame_a.png", frames[0].Name)
	require.Equal(t, "frame_b.jpg", frames[1].Name)
	require.NotEmpty(t, frames[1].Data)

	_, err = os.Stat(filepath.Join(dir, "frame_b.jpg.tmp"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, archive.Remove(ctx, "frame_b.jpg"))
	require.NoError(t, archive.Remove(ctx, "frame_b.jpg"))
	frames, err = archive.Load(ctx)
	require.NoError(t, err)
	require.Len(t, frames, 1)
}

func TestFileArchive_UnknownFormat(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir())
	require.NoError(t, err)
	require.Error(t, archive.Save(context.Background(), "frame.raw", testFrame()))
}

func TestFileArchive_ConcurrentOverwrite(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, archive.Save(ctx, "frame_s.jpg", testFrame()))
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			frames, err := archive.Load(ctx)
			require.NoError(t, err)
			for _, f := range frames {
				_, err := imagingDecode(f.Data)
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func imagingDecode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data))
}
