package books

import (
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Review はレビュー1件。セルには1行1件の JSON で置く。
// 旧形式の行（"[5] よかった (by 霍)"）は Legacy に原文を持ち、触られるまでそのまま残す。
type Review struct {
	ID        string `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`

	Legacy string `json:"-"`
}

var legacyLineRe = regexp.MustCompile(`^\[(\d+)\]\s?(.*?)\s*\(by (.*)\)\s*$`)

func ParseReviews(cell string) []Review {
	var out []Review
	for _, line := range strings.Split(cell, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var r Review
			if err := json.Unmarshal([]byte(line), &r); err == nil {
				out = append(out, r)
				continue
			}
		}
		out = append(out, parseLegacy(line))
	}
	return out
}

func parseLegacy(line string) Review {
	r := Review{Comment: line, Legacy: line}
	if m := legacyLineRe.FindStringSubmatch(line); m != nil {
		r.Rating, _ = strconv.Atoi(m[1])
		r.Comment = m[2]
		r.Author = m[3]
	}
	return r
}

// line は1件分の行（改行を含まない）。
func (r Review) line() (string, error) {
	if r.Legacy != "" {
		return r.Legacy, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatReviews は各行の末尾に改行を付けて連結する。0件なら空文字。
func FormatReviews(reviews []Review) (string, error) {
	var sb strings.Builder
	for _, r := range reviews {
		l, err := r.line()
		if err != nil {
			return "", err
		}
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// appendReview は既存セルの末尾に1件足す。
func appendReview(cell string, r Review) (string, error) {
	l, err := r.line()
	if err != nil {
		return "", err
	}
	if cell != "" && !strings.HasSuffix(cell, "\n") {
		cell += "\n"
	}
	return cell + l + "\n", nil
}

func (r Review) toDTO(index int) ReviewResponse {
	return ReviewResponse{
		Index:     index,
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Author:    r.Author,
		CreatedAt: r.CreatedAt,
		Legacy:    r.Legacy != "",
	}
}
