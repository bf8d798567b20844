package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - It still keeps a local in-memory map of rooms to reuse the in-process
//     broadcast logic; Redis holds the join-code reservations and a liveness
//     marker per room.
//   - SETNX on the code key makes code allocation race-safe even across
//     instances; a collision surfaces as domain.ErrCodeTaken and the service
//     retries with a fresh code.
//   - For true distribution you'd pair this with a pub/sub projector that
//     fans out snapshots across instances.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.RWMutex
	rooms  map[string]*app.Room
	byCode map[string]string
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
		byCode: make(map[string]string),
	}
}

func (s *RoomStore) Insert(room *app.Room) error {
	code := app.NormalizeCode(room.Code())

	reserved, err := s.client.SetNX(context.Background(), s.codeKey(code), room.ID(), s.ttl).Result()
	if err == nil && !reserved {
		return domain.ErrCodeTaken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byCode[code]; taken {
		return domain.ErrCodeTaken
	}
	s.rooms[room.ID()] = room
	s.byCode[code] = room.ID()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.roomKey(room.ID()), "1", s.ttl).Err()
	return nil
}

func (s *RoomStore) Get(roomID string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *RoomStore) GetByCode(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomID, ok := s.byCode[app.NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *RoomStore) Delete(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	code := app.NormalizeCode(room.Code())
	delete(s.byCode, code)
	delete(s.rooms, roomID)
	_ = s.client.Del(context.Background(), s.codeKey(code), s.roomKey(roomID)).Err()
}

func (s *RoomStore) codeKey(code string) string {
	return "room:code:" + code
}

func (s *RoomStore) roomKey(roomID string) string {
	return "room:live:" + roomID
}
