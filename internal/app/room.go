package app

import (
	"sync"
	"time"

	"livequiz-service/internal/domain"
)

// Room is the in-memory state of one live quiz session. All mutations lock
// the room, so operations on different rooms never contend and a reader never
// observes a room mid-mutation. Every successful mutation broadcasts exactly
// one deep-copied snapshot to the room's subscribers.
type Room struct {
	id        string
	code      string
	quiz      domain.Quiz
	createdAt time.Time
	now       func() time.Time

	mu           sync.RWMutex
	status       domain.RoomStatus
	currentIndex int
	participants []*domain.Participant
	byID         map[string]*domain.Participant
	answers      map[string][]domain.SubmittedAnswer
	subscribers  map[chan domain.Snapshot]struct{}
}

// NewRoom is exported for infrastructure layers that need to seed rooms.
func NewRoom(id, code string, quiz domain.Quiz) *Room {
	return newRoomWithClock(id, code, quiz, time.Now)
}

// NewRoomWithClock is test-only for deterministic timestamps.
func NewRoomWithClock(id, code string, quiz domain.Quiz, now func() time.Time) *Room {
	return newRoomWithClock(id, code, quiz, now)
}

func newRoomWithClock(id, code string, quiz domain.Quiz, now func() time.Time) *Room {
	return &Room{
		id:           id,
		code:         code,
		quiz:         quiz,
		createdAt:    now(),
		now:          now,
		status:       domain.StatusLobby,
		currentIndex: -1,
		byID:         make(map[string]*domain.Participant),
		answers:      make(map[string][]domain.SubmittedAnswer),
		subscribers:  make(map[chan domain.Snapshot]struct{}),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Code returns the room's join code.
func (r *Room) Code() string { return r.code }

// join appends a new participant. Joining is allowed at any status; late
// joiners simply cannot answer questions that already passed.
func (r *Room) join(participantID, displayName string) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &domain.Participant{
		ID:          participantID,
		DisplayName: displayName,
		Score:       0,
		Answered:    make(map[string]struct{}),
		JoinedAt:    r.now(),
	}
	r.participants = append(r.participants, p)
	r.byID[participantID] = p
	return r.broadcastLocked()
}

// start moves the room from lobby to running and presents the first question.
func (r *Room) start() (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusLobby {
		return domain.Snapshot{}, domain.ErrInvalidTransition
	}
	r.status = domain.StatusRunning
	r.currentIndex = 0
	return r.broadcastLocked(), nil
}

// advance moves to the next question, or to finished once the sequence is
// exhausted. The index never dangles past the last question.
func (r *Room) advance() (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusRunning {
		return domain.Snapshot{}, domain.ErrInvalidTransition
	}
	r.currentIndex++
	if r.currentIndex >= len(r.quiz.Questions) {
		r.currentIndex = len(r.quiz.Questions) - 1
		r.status = domain.StatusFinished
	}
	return r.broadcastLocked(), nil
}

// finish terminates a running room early, regardless of the current index.
func (r *Room) finish() (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusRunning {
		return domain.Snapshot{}, domain.ErrInvalidTransition
	}
	r.status = domain.StatusFinished
	return r.broadcastLocked(), nil
}

// submit grades and scores one answer. The first submission for a
// (participant, question) pair wins; any later one is rejected with
// ErrDuplicateAnswer and leaves the room untouched.
func (r *Room) submit(participantID, questionID string, value any, timeTakenSec *float64) (domain.SubmittedAnswer, domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[participantID]
	if !ok {
		return domain.SubmittedAnswer{}, domain.Snapshot{}, domain.ErrParticipantNotFound
	}
	question, ok := r.findQuestion(questionID)
	if !ok {
		return domain.SubmittedAnswer{}, domain.Snapshot{}, domain.ErrQuestionNotFound
	}
	if _, answered := p.Answered[questionID]; answered {
		return domain.SubmittedAnswer{}, domain.Snapshot{}, domain.ErrDuplicateAnswer
	}

	correct := Grade(question, value)
	awarded := Score(question, correct, timeTakenSec)

	answer := domain.SubmittedAnswer{
		ParticipantID: participantID,
		QuestionID:    questionID,
		Value:         copyValue(value),
		IsCorrect:     correct,
		PointsAwarded: awarded,
		TimeTakenSec:  copyTime(timeTakenSec),
		SubmittedAt:   r.now(),
	}
	r.answers[questionID] = append(r.answers[questionID], answer)
	p.Answered[questionID] = struct{}{}
	p.Score += awarded

	return answer, r.broadcastLocked(), nil
}

// snapshot returns a read-only copy without mutating anything.
func (r *Room) snapshot() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// subscribe registers an observer channel. The current snapshot is delivered
// immediately so new observers catch up before any mutation-triggered push.
// The returned cancel is idempotent.
func (r *Room) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	// The catch-up must be enqueued while the lock is held: a mutation
	// grabbing the lock between registration and the send would broadcast a
	// newer snapshot ahead of the catch-up, delivering the observer stale
	// state second. The channel is fresh, so the buffered send cannot block.
	ch <- r.snapshotLocked()
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Room) findQuestion(questionID string) (domain.Question, bool) {
	for i := range r.quiz.Questions {
		if r.quiz.Questions[i].ID == questionID {
			return r.quiz.Questions[i], true
		}
	}
	return domain.Question{}, false
}

// broadcastLocked pushes a fresh snapshot to every subscriber without ever
// blocking the mutation: a full buffer sheds the oldest pending snapshot,
// since only the latest state matters to a live view.
func (r *Room) broadcastLocked() domain.Snapshot {
	snap := r.snapshotLocked()
	for ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

// snapshotLocked builds a deep copy: nothing in the returned value aliases
// the room's mutable state.
func (r *Room) snapshotLocked() domain.Snapshot {
	participants := make([]domain.ParticipantView, 0, len(r.participants))
	for _, p := range r.participants {
		participants = append(participants, domain.ParticipantView{
			ID:    p.ID,
			Name:  p.DisplayName,
			Score: p.Score,
		})
	}

	answers := make(map[string][]domain.SubmittedAnswer, len(r.answers))
	for qid, list := range r.answers {
		copied := make([]domain.SubmittedAnswer, len(list))
		for i, a := range list {
			a.Value = copyValue(a.Value)
			a.TimeTakenSec = copyTime(a.TimeTakenSec)
			copied[i] = a
		}
		answers[qid] = copied
	}

	return domain.Snapshot{
		Room: domain.RoomView{
			ID:                   r.id,
			Code:                 r.code,
			Status:               r.status,
			CurrentQuestionIndex: r.currentIndex,
			Participants:         participants,
			AnswersByQuestion:    answers,
			CreatedAt:            r.createdAt,
		},
		Quiz: r.quiz,
	}
}

// copyValue clones the JSON-shaped values clients submit (scalars, string
// maps, slices) so stored and delivered answers share no mutable data with
// the caller or with each other.
func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

func copyTime(t *float64) *float64 {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
