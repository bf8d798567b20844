package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no room matches the given ID or join code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrParticipantNotFound is returned when a user tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in room")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidTransition is returned when an operation violates the
	// lobby -> running -> finished lifecycle.
	ErrInvalidTransition = errors.New("invalid room state transition")
	// ErrDuplicateAnswer is returned when a participant already answered the
	// question; the first submission wins.
	ErrDuplicateAnswer = errors.New("answer already submitted for this question")
	// ErrEmptyQuiz rejects quizzes with no questions; a room built on one
	// could never hold a valid question index.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrCodeTaken signals a join-code collision during room creation so the
	// caller retries with a fresh code.
	ErrCodeTaken = errors.New("join code already in use")
)
