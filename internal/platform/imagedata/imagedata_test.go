package imagedata

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestShrinkLargeDataURL(t *testing.T) {
	src := pngDataURL(t, 800, 600)

	out, err := Shrink(src, 1000)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestShrinkPassThrough(t *testing.T) {
	for _, s := range []string{
		"",
		"https://example.com/me.png",
		"data:image/png;base64,AAAA",
	} {
		out, err := Shrink(s, DefaultMaxLen)
		require.NoError(t, err)
		assert.Equal(t, s, out)
	}
}

func TestShrinkBrokenPayload(t *testing.T) {
	_, err := Shrink("data:image/png;base64,"+strings.Repeat("@", 50), 10)
	assert.ErrorIs(t, err, ErrNotDataURL)
}
