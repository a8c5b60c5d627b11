// Package imagedata はセルに埋め込まれた data URL 画像を扱う。
package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// 1セル 50,000 文字の上限に余裕を持たせる
	DefaultMaxLen = 45000

	maxSide = 320
	quality = 80
)

var ErrNotDataURL = errors.New("imagedata: not a base64 image data URL")

func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,")
}

// Shrink は maxLen を超える data URL 画像を 320x320 に収めて JPEG にし直す。
// URL や短い data URL はそのまま返す。
func Shrink(s string, maxLen int) (string, error) {
	if !IsDataURL(s) || len(s) <= maxLen {
		return s, nil
	}

	i := strings.Index(s, ";base64,")
	raw, err := base64.StdEncoding.DecodeString(s[i+len(";base64,"):])
	if err != nil {
		return "", ErrNotDataURL
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
