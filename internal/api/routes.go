package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-agent/internal/config"
	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	// The media element and the WebSocket client cannot set headers, so
	// these two carry the token as a query parameter instead.
	r.Get("/playback/clip", requireQueryToken(cfg.AuthToken, playbackHandler(cfg)))
	r.Get("/ws", requireQueryToken(cfg.AuthToken, cfg.Hub.Handle))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthToken, cfg.Logger))

		r.Get("/timeline", timelineHandler(cfg))
		r.Post("/clips", importClipHandler(cfg))
		r.Delete("/clips/{id}", removeClipHandler(cfg))
		r.Post("/clips/{id}/select", selectClipHandler(cfg))
		r.Post("/seek", seekHandler(cfg))
		r.Post("/place", placeHandler(cfg))
		r.Post("/events/metadata", metadataEventHandler(cfg))
		r.Post("/events/timeupdate", timeUpdateEventHandler(cfg))
		r.Post("/events/ended", endedEventHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := cfg.Engine.Snapshot()
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
			Clips:   len(snap.Clips),
		})
	}
}

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, SnapshotToResponse(cfg.Engine.Snapshot()))
	}
}

func importClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxImportBytes)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
			return
		}

		file, header, err := r.FormFile("media")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "media file part is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		name := r.FormValue("name")
		if name == "" {
			name = header.Filename
		}

		res, size, err := media.Stage(cfg.MediaDir, header.Filename, file)
		if err != nil {
			cfg.Logger.Error("failed to stage clip media", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to stage media", "INTERNAL_ERROR")
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
				mimeType = byExt
			}
		}

		clip, err := cfg.Engine.ImportClip(name, res, humanize.IBytes(uint64(size)), mimeType)
		if err != nil {
			if rerr := res.Release(); rerr != nil {
				cfg.Logger.Warn("failed to release staged media", "error", rerr)
			}
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusCreated, ImportResponse{ClipID: clip.ID})
	}
}

func removeClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "clip id required", "BAD_REQUEST")
			return
		}

		if err := cfg.Engine.RemoveClip(id); err != nil {
			if errors.Is(err, timeline.ErrClipNotFound) {
				WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func selectClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "clip id required", "BAD_REQUEST")
			return
		}

		cfg.Engine.SelectClip(id)
		WriteJSON(w, http.StatusOK, SnapshotToResponse(cfg.Engine.Snapshot()))
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		cfg.Engine.SeekGlobal(req.Percent)
		WriteJSON(w, http.StatusOK, SnapshotToResponse(cfg.Engine.Snapshot()))
	}
}

func placeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.ClipID == "" {
			WriteError(w, http.StatusBadRequest, "clip_id is required", "BAD_REQUEST")
			return
		}

		pos := timeline.Position(req.Position)
		switch pos {
		case timeline.PositionBefore, timeline.PositionAfter, timeline.PositionEnd:
		case "":
			pos = timeline.PositionEnd
		default:
			WriteError(w, http.StatusBadRequest, "position must be before, after or end", "BAD_REQUEST")
			return
		}

		cfg.Engine.Place(req.ClipID, req.Track, req.AnchorID, pos)
		WriteJSON(w, http.StatusOK, SnapshotToResponse(cfg.Engine.Snapshot()))
	}
}

func metadataEventHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MetadataEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.ClipID == "" {
			WriteError(w, http.StatusBadRequest, "clip_id is required", "BAD_REQUEST")
			return
		}

		cfg.Engine.MetadataReady(req.ClipID, req.DurationS)
		w.WriteHeader(http.StatusNoContent)
	}
}

func timeUpdateEventHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimeUpdateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		cfg.Engine.TimeUpdated(req.Seconds)
		w.WriteHeader(http.StatusNoContent)
	}
}

func endedEventHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Engine.Ended()
		w.WriteHeader(http.StatusNoContent)
	}
}

func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clipID := r.URL.Query().Get("clip_id")
		if clipID == "" {
			WriteError(w, http.StatusBadRequest, "clip_id is required", "BAD_REQUEST")
			return
		}

		path, mimeType, ok := cfg.Engine.ClipMedia(clipID)
		if !ok {
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		}

		if err := cfg.Streamer.ServeClip(w, r, path, mimeType); err != nil {
			cfg.Logger.Error("playback error", "error", err, "clip_id", clipID)
		}
	}
}
