// Package room holds PVP rooms and the registry that matches players into them.
package room

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/wordlegame-go/internal/dependencies/clock"
	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
)

// Registry is the process-wide directory of rooms and of which room each
// player sits in
type Registry struct {
	mu      sync.RWMutex
	rooms   map[model.RoomID]*Room
	players map[model.PlayerID]model.RoomID

	words  dictionary.Source
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(words dictionary.Source, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:   make(map[model.RoomID]*Room),
		players: make(map[model.PlayerID]model.RoomID),
		words:   words,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "room_registry")),
	}
}

// CreateRoom opens a room with the creator in seat 1
func (reg *Registry) CreateRoom(cfg model.RoomConfig, creatorID model.PlayerID, creatorName string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.players[creatorID]; ok {
		return nil, model.ErrAlreadyInRoom
	}

	var id model.RoomID
	for {
		id = model.RoomID(reg.random.NewID())
		if _, exists := reg.rooms[id]; !exists {
			break
		}
	}

	r := newRoom(id, cfg, reg.words, reg.clock.Now(), reg.logger)
	if _, err := r.AddPlayer(creatorID, creatorName); err != nil {
		return nil, err
	}
	reg.rooms[id] = r
	reg.players[creatorID] = id

	reg.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("creator", creatorName),
		slog.Int64("creator_id", int64(creatorID)))
	return r, nil
}

// ListAvailable returns rooms that are waiting for a second player, oldest first
func (reg *Registry) ListAvailable() []model.RoomSummary {
	reg.mu.RLock()
	open := lo.Filter(lo.Values(reg.rooms), func(r *Room, _ int) bool {
		return r.available()
	})
	reg.mu.RUnlock()

	sort.Slice(open, func(i, j int) bool {
		if open[i].createdAt.Equal(open[j].createdAt) {
			return open[i].id < open[j].id
		}
		return open[i].createdAt.Before(open[j].createdAt)
	})
	return lo.Map(open, func(r *Room, _ int) model.RoomSummary {
		return r.Summary()
	})
}

// JoinRoom seats a player in a waiting room. When the room fills it starts,
// and the caller is responsible for telling both occupants.
func (reg *Registry) JoinRoom(roomID model.RoomID, playerID model.PlayerID, name string) (*Room, model.Seat, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.players[playerID]; ok {
		return nil, model.SeatNone, model.ErrAlreadyInRoom
	}
	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, model.SeatNone, model.ErrRoomNotFound
	}

	seat, err := r.AddPlayer(playerID, name)
	if err != nil {
		return nil, model.SeatNone, err
	}
	reg.players[playerID] = roomID

	reg.logger.Info("player joined room",
		slog.String("room_id", string(roomID)),
		slog.String("player", name),
		slog.Int("seat", int(seat)))
	return r, seat, nil
}

// RoomFor returns the room a player sits in
func (reg *Registry) RoomFor(playerID model.PlayerID) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	id, ok := reg.players[playerID]
	if !ok {
		return nil, false
	}
	r, ok := reg.rooms[id]
	return r, ok
}

// OpponentID returns the id of the player facing playerID
func (reg *Registry) OpponentID(playerID model.PlayerID) (model.PlayerID, bool) {
	r, ok := reg.RoomFor(playerID)
	if !ok {
		return 0, false
	}
	o, ok := r.Opponent(playerID)
	return o.ID, ok
}

// RemovePlayer takes a player out of their room and deletes the room once
// nobody is left in it
func (reg *Registry) RemovePlayer(playerID model.PlayerID) (*Room, Departure, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id, ok := reg.players[playerID]
	if !ok {
		return nil, Departure{}, false
	}
	delete(reg.players, playerID)

	r, ok := reg.rooms[id]
	if !ok {
		return nil, Departure{}, false
	}

	dep, _ := r.RemovePlayer(playerID)
	if r.IsEmpty() {
		delete(reg.rooms, id)
		reg.logger.Info("room removed", slog.String("room_id", string(id)))
	}
	return r, dep, true
}

// Cleanup deletes empty rooms and returns how many were removed
func (reg *Registry) Cleanup() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	removed := 0
	for id, r := range reg.rooms {
		if r.IsEmpty() {
			delete(reg.rooms, id)
			removed++
		}
	}
	if removed > 0 {
		reg.logger.Info("cleaned up empty rooms", slog.Int("removed", removed))
	}
	return removed
}

// Count returns the number of live rooms
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
