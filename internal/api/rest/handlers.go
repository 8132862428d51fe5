package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mkaji/scenebox/internal/app/override"
	"github.com/mkaji/scenebox/internal/app/store"
	"github.com/mkaji/scenebox/internal/domain/scene"
)

// maxOverrideSecs caps an override window at one day.
const maxOverrideSecs = 86400

type statusResponse struct {
	Rotation       string     `json:"rotation"`
	CurrentScene   string     `json:"current_scene,omitempty"`
	Loading        bool       `json:"loading"`
	OverrideActive bool       `json:"override_active"`
	OverrideScene  string     `json:"override_scene,omitempty"`
	Cursor         int        `json:"cursor"`
	Playlist       []string   `json:"playlist"`
	LastFiredAt    *time.Time `json:"last_fired_at,omitempty"`
	IntervalSecs   int        `json:"interval_secs"`
	SceneCount     int        `json:"scene_count"`
	Subscribers    int        `json:"subscribers"`
}

type sceneInfo struct {
	Name   string       `json:"name"`
	Items  int          `json:"items"`
	Bytes  int          `json:"bytes"`
	Bounds scene.Region `json:"bounds"`
}

type overrideRequest struct {
	Scene        string `json:"scene"`
	DurationSecs int    `json:"duration_secs"`
}

type resumeRequest struct {
	DelaySecs int `json:"delay_secs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.director.Status()
	resp := statusResponse{
		Rotation:       st.RotationState.String(),
		CurrentScene:   st.CurrentScene,
		Loading:        st.Loading,
		OverrideActive: st.OverrideActive,
		OverrideScene:  st.OverrideScene,
		Cursor:         st.Cursor,
		Playlist:       st.Playlist,
		IntervalSecs:   int(st.Interval / time.Second),
		SceneCount:     st.SceneCount,
		Subscribers:    st.Subscribers,
	}
	if resp.Playlist == nil {
		resp.Playlist = []string{}
	}
	if !st.LastFiredAt.IsZero() {
		t := st.LastFiredAt
		resp.LastFiredAt = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	all := s.director.Scenes()
	infos := make([]sceneInfo, 0, len(all))
	for _, sc := range all {
		infos = append(infos, sceneInfo{
			Name:   sc.Name,
			Items:  sc.Items,
			Bytes:  sc.Size(),
			Bounds: sc.Bounds,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": infos})
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Scene == "" {
		writeBadRequest(w, "scene is required")
		return
	}
	if req.DurationSecs < 1 || req.DurationSecs > maxOverrideSecs {
		writeBadRequest(w, "duration_secs must be between 1 and 86400")
		return
	}

	err := s.director.Override(req.Scene, time.Duration(req.DurationSecs)*time.Second)
	switch {
	case errors.Is(err, store.ErrSceneNotFound):
		writeNotFound(w, "no such scene: "+req.Scene)
	case errors.Is(err, override.ErrOverrideActive):
		writeConflict(w, "an override is already active")
	case err != nil:
		writeInternalError(w, "override failed")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"scene":         req.Scene,
			"duration_secs": req.DurationSecs,
		})
	}
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.director.PauseRotation()
	writeJSON(w, http.StatusOK, map[string]string{
		"rotation": s.director.Status().RotationState.String(),
	})
}

// handleResume accepts an optional body; an empty one means resume now.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.DelaySecs < 0 {
		writeBadRequest(w, "delay_secs must not be negative")
		return
	}

	s.director.ResumeRotation(time.Duration(req.DelaySecs) * time.Second)
	writeJSON(w, http.StatusOK, map[string]string{
		"rotation": s.director.Status().RotationState.String(),
	})
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	s.director.UnloadScene()
	w.WriteHeader(http.StatusNoContent)
}
