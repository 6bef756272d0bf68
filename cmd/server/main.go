package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharedvideo/internal/media"
	"sharedvideo/internal/playback"
	"sharedvideo/internal/platform/config"
	"sharedvideo/internal/platform/logger"
	"sharedvideo/internal/platform/metrics"
	"sharedvideo/internal/stats"
	"sharedvideo/internal/weather"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	videoDir := config.GetEnv("VIDEO_DIR", "shared_video")
	dbPath := config.GetEnv("DB_PATH", "data/statistics.db")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	viewerTTL := config.GetEnvDuration("VIEWER_TTL", playback.DefaultViewerTTL)
	weatherURL := config.GetEnv("WEATHER_URL", weather.DefaultURL)
	weatherTimeout := config.GetEnvDuration("WEATHER_TIMEOUT", weather.DefaultTimeout)
	maxUploadMB := config.GetEnvInt("MAX_UPLOAD_MB", 2048)
	uploadRate := config.GetEnvInt("UPLOAD_RATE_PER_MIN", 10)

	log := logger.New(logLevel, logFormat)

	prober, err := media.NewFFmpegProber(
		config.GetEnv("FFMPEG_PATH", ""),
		config.GetEnv("FFPROBE_PATH", ""),
	)
	if err != nil {
		log.Error("prober unavailable", "error", err)
		os.Exit(1)
	}

	store, err := playback.NewDiskStore(videoDir)
	if err != nil {
		log.Error("video storage unavailable", "error", err)
		os.Exit(1)
	}

	counter, err := stats.Open(dbPath)
	if err != nil {
		log.Error("stats store unavailable", "error", err)
		os.Exit(1)
	}
	defer counter.Close()

	session := playback.NewSession(nil)
	tracker := playback.NewTracker(viewerTTL, nil)
	svc := playback.NewService(session, store, prober, counter, log)
	wc := weather.NewClient(weatherURL, weatherTimeout, nil)
	met := metrics.New()
	h := playback.NewHandler(svc, tracker, counter, wc, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			met.SetActiveSession(session.Playing())
			met.SetViewers(tracker.Count())
		}).ServeHTTP(w, r)
	})

	r.With(httprate.LimitByIP(uploadRate, time.Minute)).Post("/upload", h.Upload)
	r.Get("/stats", h.Stats)
	r.Get("/status", h.Status)
	r.Post("/ping", h.Ping)
	r.Post("/end", h.End)
	r.Get("/video", h.Video)
	r.Get("/weather", h.Weather)
	r.Handle("/videos/*", http.StripPrefix("/videos/", http.FileServer(http.Dir(store.Dir()))))

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: http.MaxBytesHandler(r, int64(maxUploadMB)<<20),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"video_dir", videoDir,
		"viewer_ttl", viewerTTL.String(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
