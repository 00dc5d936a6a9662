package consultation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"medical-intake/internal/speech"
)

type Handler struct {
	svc      Service
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type CreateConsultationRequest struct {
	PatientID string `json:"patient_id"`
}

type MessageRequest struct {
	Text          string `json:"text"`
	ChecklistStep string `json:"checklist_step"`
}

type TTSRequest struct {
	Text string `json:"text"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error(msg, "error", err)
	http.Error(w, msg+": "+err.Error(), http.StatusInternalServerError)
}

func consultationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	pid, err := uuid.Parse(req.PatientID)
	if err != nil {
		// anonymous patient
		pid = uuid.New()
	}

	c, err := h.svc.CreateConsultation(r.Context(), pid)
	if err != nil {
		h.writeError(w, err, "Failed to create consultation")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"consultation_id": c.ID.String(),
		"patient_id":      c.PatientID.String(),
	})
}

func (h *Handler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetConsultation(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to load consultation")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	turn, err := h.svc.ProcessPatientMessage(r.Context(), id, req.Text, req.ChecklistStep)
	if err != nil {
		h.writeError(w, err, "Processing failed")
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (h *Handler) HandleAudioUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	// Limit upload size (10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "Error retrieving audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		http.Error(w, "Failed to read audio file", http.StatusInternalServerError)
		return
	}

	rec := speech.Recording{
		Data:        buf.Bytes(),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	turn, err := h.svc.ProcessPatientAudio(r.Context(), id, rec, r.FormValue("checklist_step"))
	if err != nil {
		h.writeError(w, err, "Processing failed")
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	if err := h.svc.ResetSession(r.Context(), id); err != nil {
		h.writeError(w, err, "Reset failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClose ends the interview and returns the final consultation.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.CloseSession(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Close failed")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"topics": h.svc.Catalog().Topics()})
}

func (h *Handler) HandleTTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	audioData, err := h.svc.SynthesizeSpeech(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err, "TTS failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audioData)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/catalog", h.HandleCatalog)
	r.Post("/tts", h.HandleTTS)
	r.Route("/consultations", func(r chi.Router) {
		r.Post("/", h.CreateConsultation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetConsultation)
			r.Post("/messages", h.HandleMessage)
			r.Post("/audio", h.HandleAudioUpload)
			r.Post("/reset", h.HandleReset)
			r.Post("/close", h.HandleClose)
			r.Get("/ws", h.HandleLive)
		})
	})
}
