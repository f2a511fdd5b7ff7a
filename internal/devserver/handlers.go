package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"mewai/internal/generation"
	"mewai/internal/logging"
	"mewai/internal/services"
)

const maxRequestBody = 1 << 20

// startRequest mirrors the backend request model; absent fields take the
// backend defaults.
type startRequest struct {
	Topic          string   `json:"topic"`
	Platforms      []string `json:"platforms"`
	Tone           *string  `json:"tone"`
	Length         *string  `json:"length"`
	GenerateImages *bool    `json:"generate_images"`
}

type startResponse struct {
	ID      string            `json:"id"`
	Status  generation.Status `json:"status"`
	Message string            `json:"message"`
}

type validationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (req startRequest) settings() generation.Settings {
	platforms := req.Platforms
	if platforms == nil {
		for _, p := range generation.Platforms() {
			platforms = append(platforms, string(p))
		}
	}
	tone := string(generation.ToneCasual)
	if req.Tone != nil {
		tone = *req.Tone
	}
	length := string(generation.LengthMedium)
	if req.Length != nil {
		length = *req.Length
	}
	images := true
	if req.GenerateImages != nil {
		images = *req.GenerateImages
	}
	return generation.NewSettings(req.Topic, platforms, tone, length, images)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		s.writeValidation(w, "body", "invalid JSON body: "+err.Error())
		return
	}

	settings := req.settings()
	if err := settings.Validate(); err != nil {
		s.writeValidation(w, "body", validationMessage(err))
		return
	}

	j := &job{
		id:        s.newID(),
		settings:  settings,
		createdAt: s.now(),
		fail:      strings.Contains(strings.ToLower(settings.Topic), "fail"),
	}
	s.jobs.add(j)

	s.logger.Info("generation started",
		logging.String(logging.FieldJobID, j.id),
		logging.String("topic", settings.Topic),
		logging.Bool("simulated_failure", j.fail),
	)
	s.writeJSON(w, http.StatusOK, startResponse{
		ID:      j.id,
		Status:  generation.StatusPending,
		Message: "Generation started",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	j, ok := s.jobs.get(id)
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "Generation task not found")
		return
	}
	s.writeJSON(w, http.StatusOK, j.snapshot(s.now(), s.step))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"detail": message})
}

func (s *Server) writeValidation(w http.ResponseWriter, field, message string) {
	s.writeJSON(w, http.StatusUnprocessableEntity, map[string][]validationDetail{
		"detail": {{Loc: []string{field}, Msg: message, Type: "value_error"}},
	})
}

// validationMessage strips the marker prefix from validation errors.
func validationMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, services.ErrValidation) {
		if idx := strings.LastIndex(msg, ": "); idx >= 0 {
			return msg[idx+2:]
		}
	}
	return msg
}
