package main

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"absences/internal/auth"
	"absences/internal/cache"
	"absences/internal/config"
	"absences/internal/httpmiddleware"
	"absences/internal/journal"
	"absences/internal/justification"
	"absences/internal/portal"
	"absences/internal/queue"
	"absences/internal/store"
	"absences/internal/upload"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	if env == "production" || env == "prod" {
		logger, err := zap.NewProduction()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Warn("db not reachable", zap.Error(err))
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "absences:events")
	}

	portalClient := portal.New(cfg.PortalBaseURL, cfg.DefaultType, cfg.HTTPTimeout, logger)
	uploadClient := upload.NewClient(cfg.UploadURL, cfg.HTTPTimeout)
	coordinator := upload.NewCoordinator(uploadClient, logger)
	submissions := justification.NewService(cfg.PortalBaseURL+"/justifications", cfg.HTTPTimeout, coordinator, events, logger)
	listings := cache.New(redisClient.Client, cfg.CacheTTL, logger)
	var journalRepo *journal.Repository
	if db != nil {
		journalRepo = journal.NewRepository(db.Client)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	// Loose IP-keyed backstop for the public surface; the real per-student
	// quota is enforced inside the authenticated group, after StudentAuth
	// has put claims on the context.
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin*4, cfg.RateLimitPerMin*4).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil && db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Dev-only token mint; real sessions come from the campus identity
	// provider and are out of scope here.
	if cfg.Env != "production" && cfg.Env != "prod" {
		r.POST("/v1/session/dev", func(c *gin.Context) {
			var req struct {
				StudentCode string `json:"student_code" binding:"required"`
				Role        string `json:"role"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if req.Role == "" {
				req.Role = "student"
			}
			tokens, err := auth.Issue(req.StudentCode, req.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
				return
			}
			c.JSON(http.StatusCreated, gin.H{
				"access_token":  tokens.AccessToken,
				"refresh_token": tokens.RefreshToken,
				"expires_at":    tokens.AccessExp.Unix(),
			})
		})
	}

	authGroup := r.Group("/v1",
		auth.StudentAuth(cfg.JWTSigningKey, cfg.JWTIssuer),
		httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware(),
	)

	authGroup.GET("/absences", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		token := auth.TokenFrom(c)

		filter := portal.AbsenceFilter{
			StartDate: c.Query("startDate"),
			EndDate:   c.Query("endDate"),
			Status:    c.Query("status"),
			Type:      c.Query("type"),
			CourseID:  c.Query("courseId"),
		}
		query := filter.Query()

		if records, ok := listings.Get(c.Request.Context(), claims.Subject, query); ok {
			c.JSON(http.StatusOK, gin.H{"absences": records, "cached": true})
			return
		}

		records, err := portalClient.ListAbsences(c.Request.Context(), token, filter)
		if err != nil {
			var apiErr *portal.APIError
			if errors.As(err, &apiErr) {
				c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		listings.Set(c.Request.Context(), claims.Subject, query, records)
		c.JSON(http.StatusOK, gin.H{"absences": records})
	})

	authGroup.POST("/justifications", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		token := auth.TokenFrom(c)

		req, err := bindSubmitRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := submissions.Submit(c.Request.Context(), token, claims.Subject, req)
		if err != nil {
			status, msg := submissionError(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"justification_code": result.JustificationCode,
			"files":              result.Files,
		})
	})

	authGroup.GET("/files", func(c *gin.Context) {
		fileURL := c.Query("url")
		if fileURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter required"})
			return
		}
		data, contentType, err := portalClient.DownloadFile(c.Request.Context(), auth.TokenFrom(c), fileURL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, data)
	})

	authGroup.GET("/justifications/recent", func(c *gin.Context) {
		limit := 50
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		entries, err := journalRepo.Recent(c.Request.Context(), auth.ClaimsFrom(c).Subject, limit)
		if err != nil {
			if errors.Is(err, journal.ErrUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "submission history unavailable"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"submissions": entries})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// bindSubmitRequest accepts either a multipart form (local files) or a JSON
// body (descriptors that already carry content_url).
func bindSubmitRequest(c *gin.Context) (justification.SubmitRequest, error) {
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		return bindMultipart(c)
	}

	var body struct {
		AbsenceCodes []string `json:"absence_codes"`
		Reason       string   `json:"reason"`
		Files        []struct {
			ContentURL string `json:"content_url"`
			Title      string `json:"title"`
			Type       string `json:"type"`
		} `json:"files"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return justification.SubmitRequest{}, err
	}

	req := justification.SubmitRequest{
		AbsenceCodes: body.AbsenceCodes,
		Reason:       body.Reason,
	}
	for _, f := range body.Files {
		req.Supplementary = append(req.Supplementary, upload.Attachment{
			ContentURL: f.ContentURL,
			Title:      f.Title,
			Type:       f.Type,
		})
	}
	return req, nil
}

func bindMultipart(c *gin.Context) (justification.SubmitRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return justification.SubmitRequest{}, err
	}

	req := justification.SubmitRequest{
		AbsenceCodes: splitCodes(c.PostForm("absence_codes")),
		Reason:       c.PostForm("reason"),
	}

	if files := form.File["file"]; len(files) > 0 {
		att, err := readAttachment(files[0], c.PostForm("type"))
		if err != nil {
			return justification.SubmitRequest{}, err
		}
		req.Main = &att
	}

	for _, fh := range form.File["files"] {
		att, err := readAttachment(fh, "")
		if err != nil {
			return justification.SubmitRequest{}, err
		}
		req.Supplementary = append(req.Supplementary, att)
	}

	for _, u := range form.Value["existing_urls"] {
		if u == "" {
			continue
		}
		req.Supplementary = append(req.Supplementary, upload.Attachment{ContentURL: u})
	}

	return req, nil
}

func readAttachment(fh *multipart.FileHeader, typeHint string) (upload.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return upload.Attachment{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return upload.Attachment{}, err
	}
	return upload.Attachment{
		Filename: fh.Filename,
		Content:  data,
		Type:     typeHint,
	}, nil
}

func splitCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// submissionError maps a submission failure to an HTTP status for the
// frontend. Precondition failures are the caller's fault; classified
// upstream rejections keep their status; everything else is a bad gateway.
func submissionError(err error) (int, string) {
	if errors.Is(err, justification.ErrNoAbsences) || errors.Is(err, justification.ErrNoValidFiles) {
		return http.StatusBadRequest, err.Error()
	}
	var subErr *justification.SubmitError
	if errors.As(err, &subErr) {
		switch subErr.Kind {
		case justification.KindForbidden:
			return http.StatusForbidden, subErr.Message
		case justification.KindBadRequest:
			return http.StatusBadRequest, subErr.Message
		default:
			return http.StatusBadGateway, subErr.Message
		}
	}
	return http.StatusBadGateway, err.Error()
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
