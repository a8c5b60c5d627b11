// Package photos は公開アルバムページから写真 URL を拾う。
package photos

import (
	"regexp"
	"strings"
)

const (
	imageHost = "lh3.googleusercontent.com"

	ThumbnailSize = "=w600-h600-no"
	FullSize      = "=w1600-h1600-no"

	minIDLen = 10
)

var (
	ogImageRe = regexp.MustCompile(`(?i)<meta\s+property=["']og:image["']\s+content=["']([^"']+)["']`)
	rawURLRe  = regexp.MustCompile(`https://lh3\.googleusercontent\.com/([a-zA-Z0-9_\-]+)`)
)

// IsAlbumURL はサムネイル取得の対象か。
func IsAlbumURL(u string) bool {
	return strings.Contains(u, "photos.")
}

// baseOf はサイズ指定（最初の '=' 以降）を落とす。
func baseOf(u string) string {
	base, _, _ := strings.Cut(u, "=")
	return base
}

func idOf(u string) string {
	base := baseOf(u)
	return base[strings.LastIndex(base, "/")+1:]
}

// ParseThumbnail は og:image を優先し、無ければ本文中の最初の画像 URL を使う。
func ParseThumbnail(html string) string {
	if m := ogImageRe.FindStringSubmatch(html); m != nil && strings.Contains(m[1], imageHost) {
		return baseOf(m[1]) + ThumbnailSize
	}
	if m := rawURLRe.FindStringSubmatch(html); m != nil {
		return "https://" + imageHost + "/" + m[1] + ThumbnailSize
	}
	return ""
}

// ParseAllPhotos は og:image と本文中の全画像 URL をまとめ、
// 短すぎる ID を除き、ID 単位で重複を落として高解像度指定に直す。
func ParseAllPhotos(html string) []string {
	var candidates []string
	for _, m := range ogImageRe.FindAllStringSubmatch(html, -1) {
		if strings.Contains(m[1], imageHost) {
			candidates = append(candidates, m[1])
		}
	}
	for _, m := range rawURLRe.FindAllStringSubmatch(html, -1) {
		candidates = append(candidates, "https://"+imageHost+"/"+m[1])
	}

	out := []string{}
	seenURL := make(map[string]struct{}, len(candidates))
	seenID := make(map[string]struct{}, len(candidates))
	for _, u := range candidates {
		if _, ok := seenURL[u]; ok {
			continue
		}
		seenURL[u] = struct{}{}

		id := idOf(u)
		if len(id) < minIDLen {
			continue
		}
		if _, ok := seenID[id]; ok {
			continue
		}
		seenID[id] = struct{}{}
		out = append(out, baseOf(u)+FullSize)
	}
	return out
}
