package domain

import "time"

// RoomStatus is the lifecycle state of a room. Transitions are forward-only:
// lobby -> running -> finished.
type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusRunning  RoomStatus = "running"
	StatusFinished RoomStatus = "finished"
)

// QuestionKind tags the closed set of question variants.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindFillBlank      QuestionKind = "fill_blank"
	KindMatch          QuestionKind = "match"
)

// DefaultPoints is awarded for a correct answer when a question does not
// configure its own point value.
const DefaultPoints = 10

// MatchPair is one item/target pairing of a match question.
type MatchPair struct {
	Item   string `json:"item"`
	Target string `json:"target"`
}

// Question is one entry of a quiz. Exactly one variant payload is meaningful,
// selected by Kind; the others stay at their zero values.
type Question struct {
	ID           string       `json:"id"`
	Kind         QuestionKind `json:"kind"`
	Prompt       string       `json:"prompt"`
	Points       int          `json:"points"`       // 0 means DefaultPoints
	TimeLimitSec int          `json:"timeLimitSec"` // 0 means no limit

	// multiple_choice
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correctIndex,omitempty"`

	// fill_blank
	Expected string `json:"expected,omitempty"`

	// match
	Pairs []MatchPair `json:"pairs,omitempty"`
}

// BasePoints returns the question's point value with the default applied.
func (q Question) BasePoints() int {
	if q.Points <= 0 {
		return DefaultPoints
	}
	return q.Points
}

// Quiz is an ordered sequence of questions. It is frozen once a room
// references it; question order is presentation order.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Participant is one player in a room. Score only ever grows, and Answered
// tracks which questions already have a recorded submission.
type Participant struct {
	ID          string
	DisplayName string
	Score       int
	Answered    map[string]struct{}
	JoinedAt    time.Time
}

// SubmittedAnswer is the append-only record of one graded submission.
type SubmittedAnswer struct {
	ParticipantID string    `json:"participantId"`
	QuestionID    string    `json:"questionId"`
	Value         any       `json:"value"`
	IsCorrect     bool      `json:"isCorrect"`
	PointsAwarded int       `json:"pointsAwarded"`
	TimeTakenSec  *float64  `json:"timeTakenSec,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// ParticipantView is the snapshot-friendly shape of a participant.
type ParticipantView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoomView is the externally visible shape of a room inside a snapshot.
type RoomView struct {
	ID                   string                       `json:"id"`
	Code                 string                       `json:"code"`
	Status               RoomStatus                   `json:"status"`
	CurrentQuestionIndex int                          `json:"currentQuestionIndex"`
	Participants         []ParticipantView            `json:"participants"`
	AnswersByQuestion    map[string][]SubmittedAnswer `json:"answersByQuestion"`
	CreatedAt            time.Time                    `json:"createdAt"`
}

// Snapshot is a fully self-contained copy of a room plus its quiz, safe for
// observers to retain and read without racing later mutations.
type Snapshot struct {
	Room RoomView `json:"room"`
	Quiz Quiz     `json:"quiz"`
}
