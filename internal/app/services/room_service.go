package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/validation"
)

// RoomService manages the room catalog
type RoomService interface {
	Create(ctx context.Context, actor models.Actor, room *models.Room) (*models.Room, error)
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
}

type roomServiceImpl struct {
	rooms RoomStore
	log   zerolog.Logger
}

// NewRoomService creates a new RoomService
func NewRoomService(stores Stores, log zerolog.Logger) RoomService {
	return &roomServiceImpl{
		rooms: stores.Rooms,
		log:   log.With().Str("component", "room").Logger(),
	}
}

func (s *roomServiceImpl) Create(ctx context.Context, actor models.Actor, room *models.Room) (*models.Room, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can create rooms")
	}

	room.Code = strings.TrimSpace(room.Code)
	room.Building = strings.TrimSpace(room.Building)
	if !validation.NewStringValidation(room.Code).WithMaxLength(32).Validate() {
		return nil, apperrors.NewValidationError("room code is required")
	}
	if !validation.NewNumericValidation(room.Capacity).WithMin(0).Validate() {
		return nil, apperrors.NewValidationError("room capacity cannot be negative")
	}
	features := make([]string, 0, len(room.Features))
	for _, f := range room.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	room.Features = features

	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Int64("roomID", room.ID).Str("code", room.Code).Msg("Room created")
	return room, nil
}

func (s *roomServiceImpl) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	return s.rooms.GetRoomByID(ctx, id)
}

func (s *roomServiceImpl) List(ctx context.Context) ([]models.Room, error) {
	return s.rooms.ListRooms(ctx)
}

// checkRooms fails with ErrRoomNotFound when a slot names a room that is not
// in the catalog
func checkRooms(ctx context.Context, rooms RoomStore, slots []calendar.WeeklySlot) error {
	seen := make(map[int64]bool)
	for _, sl := range slots {
		if sl.RoomID == nil || seen[*sl.RoomID] {
			continue
		}
		if _, err := rooms.GetRoomByID(ctx, *sl.RoomID); err != nil {
			return fmt.Errorf("room %d: %w", *sl.RoomID, err)
		}
		seen[*sl.RoomID] = true
	}
	return nil
}
