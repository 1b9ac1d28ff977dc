package dto

import "github.com/yigit/termsched/internal/app/models"

// CreateRoomRequest represents room creation data
type CreateRoomRequest struct {
	Code     string   `json:"code" binding:"required,max=32" example:"B-101"`
	Building string   `json:"building" binding:"max=100" example:"Engineering"`
	Capacity int      `json:"capacity" binding:"gte=0" example:"40"`
	Features []string `json:"features,omitempty" binding:"omitempty,dive,max=50"`
}

// ToModel converts the request into a room
func (r CreateRoomRequest) ToModel() *models.Room {
	return &models.Room{
		Code:     r.Code,
		Building: r.Building,
		Capacity: r.Capacity,
		Features: r.Features,
	}
}

// RoomResponse represents room information
type RoomResponse struct {
	ID       int64    `json:"id"`
	Code     string   `json:"code"`
	Building string   `json:"building"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
}

// NewRoomResponse maps a room for output
func NewRoomResponse(r *models.Room) RoomResponse {
	features := r.Features
	if features == nil {
		features = []string{}
	}
	return RoomResponse{
		ID:       r.ID,
		Code:     r.Code,
		Building: r.Building,
		Capacity: r.Capacity,
		Features: features,
	}
}

// NewRoomListResponse maps rooms for output
func NewRoomListResponse(rooms []models.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, NewRoomResponse(&rooms[i]))
	}
	return out
}
