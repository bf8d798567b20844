package app

import (
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

func roomQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Room",
		Questions: []domain.Question{
			{ID: "q1", Kind: domain.KindFillBlank, Expected: "ok", Points: 10},
		},
	}
}

func TestSlowSubscriberDoesNotBlockMutations(t *testing.T) {
	room := NewRoom("room-1", "AB12CD", roomQuiz())

	// Never drained; its buffer will fill.
	_, cancel := room.subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			room.join(pid(i), "player")
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("mutations blocked by a slow subscriber")
	}
}

func TestSlowSubscriberStillSeesLatestState(t *testing.T) {
	now := time.Unix(1700000000, 0)
	room := NewRoomWithClock("room-1", "AB12CD", roomQuiz(), func() time.Time { return now })

	ch, cancel := room.subscribe()
	defer cancel()

	for i := 0; i < 50; i++ {
		room.join(pid(i), "player")
	}

	// Drain everything buffered; the final snapshot must reflect the final
	// participant count even though intermediate pushes were shed.
	var last domain.Snapshot
	for {
		select {
		case snap := <-ch:
			last = snap
			continue
		default:
		}
		break
	}
	if len(last.Room.Participants) != 50 {
		t.Fatalf("latest snapshot has %d participants, want 50", len(last.Room.Participants))
	}
}

func TestSubscribeCatchUpNeverTrailsConcurrentBroadcasts(t *testing.T) {
	room := NewRoom("room-1", "AB12CD", roomQuiz())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			room.join(pid(i), "player")
		}
	}()

	// Observers attach while joins are in flight. Drop-stale delivery may
	// skip snapshots, but each observer must see participant counts that
	// never regress: the catch-up is always the oldest state it receives.
	for i := 0; i < 200; i++ {
		ch, cancel := room.subscribe()
		last := len((<-ch).Room.Participants) // catch-up is always delivered
	drain:
		for {
			select {
			case snap := <-ch:
				if n := len(snap.Room.Participants); n < last {
					t.Fatalf("observer saw participant count regress from %d to %d", last, n)
				} else {
					last = n
				}
			default:
				break drain
			}
		}
		cancel()
	}
	<-done
}

func TestDeterministicTimestamps(t *testing.T) {
	now := time.Unix(1700000000, 0)
	room := NewRoomWithClock("room-1", "AB12CD", roomQuiz(), func() time.Time { return now })

	room.join("p1", "Alice")
	if _, err := room.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	answer, _, err := room.submit("p1", "q1", "ok", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !answer.SubmittedAt.Equal(now) {
		t.Fatalf("submittedAt %v, want clock time %v", answer.SubmittedAt, now)
	}

	snap := room.snapshot()
	if !snap.Room.CreatedAt.Equal(now) {
		t.Fatalf("createdAt %v, want %v", snap.Room.CreatedAt, now)
	}
}

func pid(i int) string {
	return "participant-" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
}
