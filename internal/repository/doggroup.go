package repository

import (
	"context"
	"fmt"

	"pawmatch-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DogGroupRepository handles database operations for declared dog groups
type DogGroupRepository struct {
	db *pgxpool.Pool
}

// NewDogGroupRepository creates a new dog group repository
func NewDogGroupRepository(db *pgxpool.Pool) *DogGroupRepository {
	return &DogGroupRepository{db: db}
}

// Create declares a new dog group slot for a user
func (r *DogGroupRepository) Create(ctx context.Context, group *models.DogGroup) error {
	query := `
		INSERT INTO dog_groups (user_id, slot, name, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, group.UserID, group.Slot, group.Name, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dog group: %w", err)
	}
	return nil
}

// ListByUser retrieves all declared dog groups for a user ordered by slot
func (r *DogGroupRepository) ListByUser(ctx context.Context, userID string) ([]*models.DogGroup, error) {
	query := `
		SELECT user_id, slot, name, created_at
		FROM dog_groups
		WHERE user_id = $1
		ORDER BY slot
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dog groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.DogGroup
	for rows.Next() {
		var group models.DogGroup
		if err := rows.Scan(&group.UserID, &group.Slot, &group.Name, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dog group: %w", err)
		}
		groups = append(groups, &group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dog groups: %w", err)
	}

	return groups, nil
}

// NextSlot returns the next free slot number for a user
func (r *DogGroupRepository) NextSlot(ctx context.Context, userID string) (int, error) {
	query := `SELECT COALESCE(MAX(slot), 0) + 1 FROM dog_groups WHERE user_id = $1`
	var slot int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&slot); err != nil {
		return 0, fmt.Errorf("failed to compute next dog slot: %w", err)
	}
	return slot, nil
}
