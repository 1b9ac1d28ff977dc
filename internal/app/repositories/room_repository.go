package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/dberrors"
)

const roomCodeKey = "rooms_code_key"

var roomColumns = []string{"id", "code", "building", "capacity", "features", "created_at"}

// RoomRepository handles database operations for rooms
type RoomRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateRoom inserts a room and fills in its ID and CreatedAt
func (r *RoomRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	features := room.Features
	if features == nil {
		features = []string{}
	}
	query, args, err := r.sb.Insert("rooms").
		Columns("code", "building", "capacity", "features").
		Values(room.Code, room.Building, room.Capacity, features).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create room query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&room.ID, &room.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, roomCodeKey) {
			return apperrors.ErrRoomAlreadyExists
		}
		return fmt.Errorf("error creating room: %w", err)
	}
	return nil
}

// GetRoomByID retrieves a room by ID
func (r *RoomRepository) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	query, args, err := r.sb.Select(roomColumns...).
		From("rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get room query: %w", err)
	}

	room, err := scanRoom(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("error retrieving room %d: %w", id, err)
	}
	return room, nil
}

// ListRooms returns every room ordered by code
func (r *RoomRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	query, args, err := r.sb.Select(roomColumns...).
		From("rooms").
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list rooms query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	if err := row.Scan(&room.ID, &room.Code, &room.Building, &room.Capacity, &room.Features, &room.CreatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}
