package app

import (
	"math"

	"livequiz-service/internal/domain"
)

// Score computes the points awarded for a graded submission. Incorrect
// answers always score 0. Correct answers score the question's base points,
// decayed linearly by elapsed time when the question carries a time limit:
//
//	points = round(base * max(0.5, 1 - timeTaken/timeLimit))
//
// A correct answer never scores below half the base, and timeTaken is clamped
// to >= 0 so negative times cannot award a bonus. When the question has no
// time limit, or the caller recorded no time, the full base is awarded.
func Score(q domain.Question, isCorrect bool, timeTakenSec *float64) int {
	if !isCorrect {
		return 0
	}
	base := q.BasePoints()
	if q.TimeLimitSec <= 0 || timeTakenSec == nil {
		return base
	}
	taken := *timeTakenSec
	if taken < 0 {
		taken = 0
	}
	ratio := 1 - taken/float64(q.TimeLimitSec)
	if ratio < 0.5 {
		ratio = 0.5
	}
	if ratio > 1 {
		ratio = 1
	}
	return int(math.Round(float64(base) * ratio))
}
