package main

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"portal-backend/internal/notify"
	"portal-backend/internal/photos"
	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/auth"
	"portal-backend/internal/platform/config"
	"portal-backend/internal/platform/db"
	"portal-backend/internal/platform/lock"
	"portal-backend/internal/platform/middleware"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/platform/tablestore"
	"portal-backend/internal/portal/books"
	"portal-backend/internal/portal/equipment"
	"portal-backend/internal/portal/events"
	"portal-backend/internal/portal/incidents"
	"portal-backend/internal/portal/requests"
	"portal-backend/internal/portal/sheets"
	"portal-backend/internal/portal/skills"
)

// app は設定から組み立てた依存一式。
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *sheetdb.Engine

	equipment *equipment.Service
	skills    *skills.Service
	books     *books.Service
	requests  *requests.Service
	incidents *incidents.Service
	events    *events.Service
	sheets    *sheets.Service
	auth      *auth.Service // auth.enabled の時だけ

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = sheetdb.New(store, lock.New(), sheetdb.Options{
		Location:  cfg.Location(),
		ReadWait:  cfg.Storage.ReadWait,
		WriteWait: cfg.Storage.WriteWait,
		Logger:    log.Named("sheetdb"),
	})

	slack := notify.NewSlack(cfg.Slack.WebhookURL, log.Named("slack"))
	if !slack.Enabled() {
		log.Info("slack webhook is not configured; notifications are disabled")
	}
	extractor := photos.NewExtractor(a.thumbnailCache(ctx), log.Named("photos"), photos.Options{
		Timeout:           cfg.Photos.Timeout,
		CacheTTL:          cfg.Photos.CacheTTL,
		RequestsPerSecond: cfg.Photos.RequestsPerSecond,
		Burst:             cfg.Photos.Burst,
	})

	a.equipment = equipment.NewService(a.db)
	a.skills = skills.NewService(a.db, log.Named("skills"))
	a.books = books.NewService(a.db, slack, log.Named("books"))
	a.requests = requests.NewService(a.db, log.Named("requests"))
	a.incidents = incidents.NewService(a.db)
	a.events = events.NewService(a.db, extractor, log.Named("events"))
	a.sheets = sheets.NewService(a.db, log.Named("sheets"))
	if cfg.Auth.Enabled {
		a.auth = auth.NewService(auth.NewStore(a.db), []byte(cfg.Auth.JWTSecret))
	}
	return a, nil
}

// openStore は storage.backend に応じたストアを開く。
func (a *app) openStore(ctx context.Context) (tablestore.TableStore, error) {
	cfg := a.cfg
	switch cfg.Storage.Backend {
	case "memory":
		a.log.Warn("memory backend: data is lost on exit")
		return tablestore.NewMemory(), nil
	case "xlsx":
		x, err := tablestore.OpenXLSX(cfg.Storage.XLSXPath, cfg.Location())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, x.Close)
		a.log.Info("opened workbook", zap.String("path", cfg.Storage.XLSXPath))
		return x, nil
	case "mysql", "sqlite":
		driver, dsn := db.DriverMySQL, db.MySQLDSN(cfg.DB)
		if cfg.Storage.Backend == "sqlite" {
			driver, dsn = db.DriverSQLite, cfg.Storage.SQLitePath
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, err
			}
		}
		conn, err := db.Connect(driver, dsn)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		s, err := tablestore.NewSQL(ctx, conn)
		if err != nil {
			return nil, err
		}
		a.log.Info("connected to DB", zap.String("driver", driver), zap.String("dbname", cfg.DB.DBName))
		return s, nil
	}
	return nil, fmt.Errorf("未対応の storage.backend: %q", cfg.Storage.Backend)
}

// thumbnailCache: Redis に繋がらなければプロセス内キャッシュで動かす
func (a *app) thumbnailCache(ctx context.Context) photos.Cache {
	rc := a.cfg.Redis
	if !rc.Enabled {
		return photos.NewMemoryCache()
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.log.Warn("redis unavailable, using memory cache", zap.String("addr", rc.Addr), zap.Error(err))
		_ = client.Close()
		return photos.NewMemoryCache()
	}
	a.closers = append(a.closers, client.Close)
	return photos.NewRedisCache(client)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) router(static fs.FS) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(a.log.Named("http")), middleware.Recovery(a.log))
	_ = r.SetTrustedProxies(nil)

	if a.cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// /api/v2
	api := r.Group("/api/v2")
	portalAPI := api.Group("")
	// シートの一覧・エクスポート・初期化は管理者だけ
	adminAPI := api.Group("")
	if a.auth != nil {
		auth.RegisterRoutes(api, a.auth)
		portalAPI.Use(auth.RequireAuthForWrites(a.auth.Secret()))
		adminAPI.Use(auth.RequireAuth(a.auth.Secret()), auth.RequireRole(auth.RoleAdmin))
	}
	equipment.RegisterRoutes(portalAPI, a.equipment)
	skills.RegisterRoutes(portalAPI, a.skills)
	books.RegisterRoutes(portalAPI, a.books)
	requests.RegisterRoutes(portalAPI, a.requests)
	incidents.RegisterRoutes(portalAPI, a.incidents)
	events.RegisterRoutes(portalAPI, a.events)
	sheets.RegisterRoutes(adminAPI, a.sheets)

	r.NoRoute(spaHandler(http.FS(static)))
	return r
}

// spaHandler は実ファイルがあれば返し、なければ index.html にフォールバックする。
func spaHandler(fileFS http.FileSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		// API は対象外
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, apierr.ErrorBody(apierr.CodeNotFound, "no such endpoint"))
			return
		}

		reqPath := strings.TrimPrefix(c.Request.URL.Path, "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// 実ファイルがあるならそれを返す（Content-Type を推測、キャッシュ付与）
		if f, err := fileFS.Open(reqPath); err == nil {
			defer f.Close()
			if fi, err := f.Stat(); err == nil && !fi.IsDir() {
				if ct := mime.TypeByExtension(path.Ext(reqPath)); ct != "" {
					c.Header("Content-Type", ct)
				}
				// index.html 以外はキャッシュ（SPAの基本運用）
				if !strings.HasSuffix(reqPath, "index.html") {
					c.Header("Cache-Control", "public, max-age=86400, immutable")
				}
				http.ServeContent(c.Writer, c.Request, reqPath, fi.ModTime(), f)
				return
			}
		}

		// なければ index.html にフォールバック
		if idx, err := fileFS.Open("index.html"); err == nil {
			defer idx.Close()
			c.Header("Content-Type", "text/html; charset=utf-8")
			if fi, err := idx.Stat(); err == nil {
				http.ServeContent(c.Writer, c.Request, "index.html", fi.ModTime(), idx)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		c.Status(http.StatusNotFound)
	}
}
