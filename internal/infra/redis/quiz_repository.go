package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

// QuizRepository caches whole quizzes as JSON in Redis and falls back to the
// backing store on a miss. Quizzes carry variant payloads (options, pairs),
// so the full document is cached rather than a per-question projection:
// SET quiz:{quizID} {json}.
type QuizRepository struct {
	client *redis.Client
	store  memory.QuizStore
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuizRepository(client *redis.Client, store memory.QuizStore, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		store:  store,
		ttl:    ttl,
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := r.store.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.fill(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// SaveQuiz writes through to the backing store and primes the Redis cache.
func (r *QuizRepository) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := r.store.SaveQuiz(ctx, quiz); err != nil {
		return err
	}
	r.fill(ctx, quiz)
	return nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

// fill is best-effort; a failed cache write only costs a reload later.
func (r *QuizRepository) fill(ctx context.Context, quiz domain.Quiz) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, r.key(quiz.ID), data, r.ttlWithJitter()).Err()
}

func (r *QuizRepository) key(quizID string) string {
	return fmt.Sprintf("quiz:%s", quizID)
}

// ttlWithJitter uses the global rand source, which is safe for the
// concurrent fills SaveQuiz and singleflight can issue.
func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
