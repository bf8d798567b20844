package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"livequiz-service/internal/domain"
)

// RoomRepository abstracts how live rooms are stored (in-memory, Redis-backed).
// Insert must atomically reserve the room's join code and fail with
// domain.ErrCodeTaken when another active room already holds it.
type RoomRepository interface {
	Insert(room *Room) error
	Get(roomID string) (*Room, bool)
	GetByCode(code string) (*Room, bool)
	Delete(roomID string)
}

// QuizRepository loads and persists quiz content (cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
}

// SessionService is the single entry point for moderator and participant
// callers. It composes the room store with the quiz repository and enforces
// the lobby -> running -> finished lifecycle.
type SessionService struct {
	rooms   RoomRepository
	quizzes QuizRepository
}

func NewSessionService(rooms RoomRepository, quizzes QuizRepository) *SessionService {
	return &SessionService{rooms: rooms, quizzes: quizzes}
}

// CreateQuiz stores a fully-formed quiz and returns its identifier. The
// engine trusts the authoring side for shape validation; answers are the
// only thing it ever inspects.
func (s *SessionService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error) {
	if len(quiz.Questions) == 0 {
		return "", domain.ErrEmptyQuiz
	}
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return "", err
	}
	return quiz.ID, nil
}

// CreateRoom opens a lobby for the given quiz under a freshly allocated join
// code, retrying on the rare collision with another active room.
func (s *SessionService) CreateRoom(ctx context.Context, quizID string) (domain.Snapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	// Guards quizzes seeded behind the engine's back; CreateQuiz already
	// rejects them at authoring time.
	if len(quiz.Questions) == 0 {
		return domain.Snapshot{}, domain.ErrEmptyQuiz
	}

	const maxAttempts = 5
	for i := 0; i < maxAttempts; i++ {
		room := NewRoom(uuid.NewString(), newJoinCode(), quiz)
		if err := s.rooms.Insert(room); err != nil {
			if err == domain.ErrCodeTaken {
				continue
			}
			return domain.Snapshot{}, err
		}
		return room.snapshot(), nil
	}
	return domain.Snapshot{}, fmt.Errorf("allocate join code: %w", domain.ErrCodeTaken)
}

// JoinRoom adds a participant to the room matching code. Codes are typed by
// humans, so matching is case-insensitive. Joining is allowed at any status.
func (s *SessionService) JoinRoom(_ context.Context, code, displayName string) (domain.Snapshot, string, error) {
	room, ok := s.rooms.GetByCode(NormalizeCode(code))
	if !ok {
		return domain.Snapshot{}, "", domain.ErrRoomNotFound
	}
	participantID := uuid.NewString()
	return room.join(participantID, displayName), participantID, nil
}

// StartQuiz moves a lobby room to running and presents the first question.
func (s *SessionService) StartQuiz(_ context.Context, roomID string) (domain.Snapshot, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.Snapshot{}, domain.ErrRoomNotFound
	}
	return room.start()
}

// AdvanceQuestion steps a running room to the next question, finishing the
// room once the sequence is exhausted.
func (s *SessionService) AdvanceQuestion(_ context.Context, roomID string) (domain.Snapshot, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.Snapshot{}, domain.ErrRoomNotFound
	}
	return room.advance()
}

// FinishQuiz terminates a running room early.
func (s *SessionService) FinishQuiz(_ context.Context, roomID string) (domain.Snapshot, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.Snapshot{}, domain.ErrRoomNotFound
	}
	return room.finish()
}

// SubmitAnswer grades, scores and records one answer. The first submission
// for a (participant, question) pair wins; duplicates are rejected.
func (s *SessionService) SubmitAnswer(_ context.Context, roomID, participantID, questionID string, value any, timeTakenSec *float64) (domain.SubmittedAnswer, domain.Snapshot, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.SubmittedAnswer{}, domain.Snapshot{}, domain.ErrRoomNotFound
	}
	return room.submit(participantID, questionID, value, timeTakenSec)
}

// Snapshot returns a point-in-time copy of the room and its quiz.
func (s *SessionService) Snapshot(_ context.Context, roomID string) (domain.Snapshot, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.Snapshot{}, domain.ErrRoomNotFound
	}
	return room.snapshot(), nil
}

// Subscribe returns a channel fed with a snapshot per room mutation, starting
// with an immediate catch-up of the current state. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *SessionService) Subscribe(_ context.Context, roomID string) (<-chan domain.Snapshot, func(), error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	ch, cancel := room.subscribe()
	return ch, cancel, nil
}

// DeleteRoom discards a room and releases its join code for reuse. Room
// retention policy (TTL, reaper) lives outside the engine; this is its hook.
func (s *SessionService) DeleteRoom(_ context.Context, roomID string) {
	s.rooms.Delete(roomID)
}

// NormalizeCode folds a human-entered join code to its canonical form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// newJoinCode returns a short random code suitable for manual entry.
func newJoinCode() string {
	b := make([]byte, 3)
	// crypto/rand.Read only fails when the OS entropy source is broken.
	_, _ = rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}
