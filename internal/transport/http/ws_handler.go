package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID   string   `json:"questionId"`
	Value        any      `json:"value"`
	TimeTakenSec *float64 `json:"timeTakenSec"`
}

type answerResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
}

type joinedPayload struct {
	ParticipantID string          `json:"participantId,omitempty"`
	Snapshot      domain.Snapshot `json:"snapshot"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// session use cases. `code`+`name` attaches as a participant; `roomId` alone
// attaches as an observer (moderator screen, leaderboard display). Both get
// the live snapshot feed; commands arrive as typed inbound messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	displayName := r.URL.Query().Get("name")
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" && (code == "" || displayName == "") {
		http.Error(w, "missing roomId, or code and name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var participantID string
	if roomID == "" {
		joined, pid, err := h.service.JoinRoom(r.Context(), code, displayName)
		if err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		participantID = pid
		roomID = joined.Room.ID
		if err := conn.WriteJSON(outboundMessage[joinedPayload]{Type: "joined", Payload: joinedPayload{
			ParticipantID: participantID,
			Snapshot:      joined,
		}}); err != nil {
			return
		}
	}

	snapshots, cancel, err := h.service.Subscribe(r.Context(), roomID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	snapshotsDone := make(chan struct{})

	// A single writer goroutine owns the connection; the snapshot pump and
	// the read loop both feed it through send.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(snapshotsDone)
		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// reply parks on writerDone as well as send: once the writer dies, a
	// peer still pumping inbound messages must not wedge the read loop on a
	// full buffer.
	reply := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

readLoop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			if participantID == "" {
				if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "observers cannot answer"}}) {
					break readLoop
				}
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}) {
					break readLoop
				}
				continue
			}
			answer, snap, err := h.service.SubmitAnswer(r.Context(), roomID, participantID, payload.QuestionID, payload.Value, payload.TimeTakenSec)
			if err != nil {
				if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
					break readLoop
				}
				continue
			}
			if !reply(outboundMessage[any]{Type: "answerResult", Payload: answerResult{
				QuestionID: payload.QuestionID,
				Correct:    answer.IsCorrect,
				Awarded:    answer.PointsAwarded,
				TotalScore: totalScore(snap, participantID),
			}}) {
				break readLoop
			}
		case "start":
			if _, err := h.service.StartQuiz(r.Context(), roomID); err != nil {
				if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
					break readLoop
				}
			}
		case "advance":
			if _, err := h.service.AdvanceQuestion(r.Context(), roomID); err != nil {
				if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
					break readLoop
				}
			}
		case "finish":
			if _, err := h.service.FinishQuiz(r.Context(), roomID); err != nil {
				if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
					break readLoop
				}
			}
		default:
			if !reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}) {
				break readLoop
			}
		}
	}

	close(closeSignals)
	<-snapshotsDone
	close(send)
	<-writerDone
}

func totalScore(snap domain.Snapshot, participantID string) int {
	for _, p := range snap.Room.Participants {
		if p.ID == participantID {
			return p.Score
		}
	}
	return 0
}
