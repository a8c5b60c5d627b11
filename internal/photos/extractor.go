package photos

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	thumbKeyPrefix = "portal:thumb:"
)

// ThumbnailProvider はイベント一覧が使う取得口。失敗は空文字で表す。
type ThumbnailProvider interface {
	Thumbnail(ctx context.Context, albumURL string) string
	AllPhotos(ctx context.Context, albumURL string) []string
}

type Options struct {
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
	Burst             int
}

type Extractor struct {
	http    *resty.Client
	limiter *rate.Limiter
	cache   Cache
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewExtractor: cache は nil なら毎回取りに行く
func NewExtractor(cache Cache, log *zap.Logger, opt Options) *Extractor {
	if opt.Timeout <= 0 {
		opt.Timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	limit := rate.Inf
	if opt.RequestsPerSecond > 0 {
		limit = rate.Limit(opt.RequestsPerSecond)
	}
	burst := opt.Burst
	if burst <= 0 {
		burst = 1
	}

	client := resty.New().
		SetTimeout(opt.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", userAgent)

	return &Extractor{
		http:    client,
		limiter: rate.NewLimiter(limit, burst),
		cache:   cache,
		ttl:     opt.CacheTTL,
		log:     log,
		now:     time.Now,
	}
}

// fetch はページ本文を返す。200 以外・通信エラーは ok=false。
func (x *Extractor) fetch(ctx context.Context, albumURL string) (string, bool) {
	if err := x.limiter.Wait(ctx); err != nil {
		x.log.Warn("album fetch skipped", zap.String("album_url", albumURL), zap.Error(err))
		return "", false
	}
	resp, err := x.http.R().
		SetContext(ctx).
		SetQueryParam("_t", strconv.FormatInt(x.now().UnixMilli(), 10)).
		Get(albumURL)
	if err != nil {
		x.log.Warn("album fetch failed", zap.String("album_url", albumURL), zap.Error(err))
		return "", false
	}
	if resp.StatusCode() != http.StatusOK {
		x.log.Warn("album fetch non-200", zap.String("album_url", albumURL), zap.Int("status", resp.StatusCode()))
		return "", false
	}
	return resp.String(), true
}

func (x *Extractor) Thumbnail(ctx context.Context, albumURL string) string {
	key := thumbKeyPrefix + albumURL
	if x.cache != nil {
		v, err := x.cache.Get(ctx, key)
		if err == nil {
			return v
		}
		if !errors.Is(err, ErrMiss) {
			x.log.Warn("thumbnail cache get failed", zap.Error(err))
		}
	}

	body, ok := x.fetch(ctx, albumURL)
	if !ok {
		return ""
	}
	thumb := ParseThumbnail(body)
	if thumb == "" {
		x.log.Info("no thumbnail found", zap.String("album_url", albumURL))
		return ""
	}
	if x.cache != nil {
		if err := x.cache.Set(ctx, key, thumb, x.ttl); err != nil {
			x.log.Warn("thumbnail cache set failed", zap.Error(err))
		}
	}
	return thumb
}

func (x *Extractor) AllPhotos(ctx context.Context, albumURL string) []string {
	body, ok := x.fetch(ctx, albumURL)
	if !ok {
		return []string{}
	}
	urls := ParseAllPhotos(body)
	x.log.Debug("album photos", zap.String("album_url", albumURL), zap.Int("count", len(urls)))
	return urls
}
