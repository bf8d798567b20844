package memory

import (
	"sync"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// RoomStore is an in-memory implementation of app.RoomRepository. The store
// only guards its own maps; per-room state is guarded by the room itself.
type RoomStore struct {
	mu     sync.RWMutex
	rooms  map[string]*app.Room
	byCode map[string]string // join code -> room ID
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*app.Room),
		byCode: make(map[string]string),
	}
}

func (s *RoomStore) Insert(room *app.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := app.NormalizeCode(room.Code())
	if _, taken := s.byCode[code]; taken {
		return domain.ErrCodeTaken
	}
	s.rooms[room.ID()] = room
	s.byCode[code] = room.ID()
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
	delete(s.byCode, app.NormalizeCode(room.Code()))
	delete(s.rooms, roomID)
}
