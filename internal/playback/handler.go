package playback

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"sharedvideo/internal/platform/metrics"
	"sharedvideo/internal/weather"
)

// StatsReader reads the durable play counter.
type StatsReader interface {
	Total(ctx context.Context) (int64, error)
}

// WeatherProvider fetches the ambient weather readout. Failures are expected
// and are rendered as an error payload, never as a 5xx.
type WeatherProvider interface {
	Current(ctx context.Context) (weather.Report, error)
}

// Handler exposes the playback HTTP endpoints.
type Handler struct {
	svc     *Service
	tracker *Tracker
	stats   StatsReader
	weather WeatherProvider
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler over the given collaborators. stats, weather,
// and metrics may be nil (e.g. in tests); the corresponding endpoints then
// degrade or record nothing.
func NewHandler(svc *Service, tracker *Tracker, stats StatsReader, wp WeatherProvider, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, tracker: tracker, stats: stats, weather: wp, log: log, metrics: m}
}

// Upload handles POST /upload: a multipart form with a single "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeUploadError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	res, err := h.svc.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		var ve *ValidationError
		var pe *ProbeError
		switch {
		case errors.Is(err, ErrSessionActive):
			h.log.Info("upload rejected, session active", slog.String("filename", header.Filename))
			h.writeUploadError(w, http.StatusConflict, err.Error())
		case errors.As(err, &ve), errors.As(err, &pe):
			h.log.Info("upload rejected",
				slog.String("filename", header.Filename),
				slog.String("error", err.Error()))
			h.writeUploadError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("upload failed", slog.String("error", err.Error()))
			h.writeUploadError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if h.metrics != nil {
		h.metrics.IncUploads()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "video uploaded",
		"filename": res.Filename,
		"duration": res.Duration,
	})
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap, playing := h.svc.Session().Snapshot()
	if !playing {
		writeJSON(w, http.StatusOK, map[string]string{"status": StatusIdle})
		return
	}
	writeJSON(w, http.StatusOK, Status{
		Status:   StatusPlaying,
		Filename: snap.Filename,
		Elapsed:  snap.Elapsed,
		Viewers:  h.tracker.Count(),
	})
}

// Ping handles POST /ping: registers the caller as a viewer and returns the
// current viewer count. The viewer id is the client's network address.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	h.tracker.Touch(clientID(r))
	writeJSON(w, http.StatusOK, map[string]int{"viewers": h.tracker.Count()})
}

// End handles POST /end.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	h.svc.End()
	if h.metrics != nil {
		h.metrics.IncSessionsEnded()
	}
	h.log.Info("video ended by request")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Video ended"})
}

// Video handles GET /video: streams the playing file, 404 when idle.
func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	path, filename, err := h.svc.ResolvePath()
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var total int64
	if h.stats != nil {
		t, err := h.stats.Total(r.Context())
		if err != nil {
			h.log.Error("read play counter failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		total = t
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_played": total})
}

// Weather handles GET /weather. Upstream failures degrade to an error payload.
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	if h.weather == nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "weather unavailable"})
		return
	}
	report, err := h.weather.Current(r.Context())
	if err != nil {
		h.log.Debug("weather upstream failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) writeUploadError(w http.ResponseWriter, status int, msg string) {
	if h.metrics != nil {
		h.metrics.IncUploadsRejected()
	}
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// clientID derives a viewer identifier from the request's network address.
// Returns "" when the address is unusable; the tracker then assigns a
// synthetic id.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
