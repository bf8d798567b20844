package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// RESTHandler exposes the authoring and moderator boundaries over plain HTTP.
// Export tooling (CSV/PDF) consumes the point-in-time room snapshot read.
type RESTHandler struct {
	service *app.SessionService
}

func NewRESTHandler(service *app.SessionService) *RESTHandler {
	return &RESTHandler{service: service}
}

// NewRouter wires REST and websocket endpoints into one router.
func NewRouter(service *app.SessionService) *mux.Router {
	rest := NewRESTHandler(service)
	ws := NewWSHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)
	r.HandleFunc("/api/quizzes", rest.CreateQuiz).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms", rest.CreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{roomID}", rest.GetRoom).Methods(http.MethodGet)
	return r
}

// CreateQuiz accepts a fully-formed quiz and returns its identifier.
func (h *RESTHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	id, err := h.service.CreateQuiz(r.Context(), quiz)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type createRoomRequest struct {
	QuizID string `json:"quizId"`
}

// CreateRoom opens a lobby for an existing quiz and returns the first snapshot.
func (h *RESTHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid room payload")
		return
	}
	snap, err := h.service.CreateRoom(r.Context(), req.QuizID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// GetRoom returns a point-in-time snapshot of the room and its quiz.
func (h *RESTHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	snap, err := h.service.Snapshot(r.Context(), roomID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateAnswer):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyQuiz):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
