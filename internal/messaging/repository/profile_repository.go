package repository

import (
	"context"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileRepository definition profile display data access
type ProfileRepository interface {
	// FindByIDs 一次撈齊多個 id 的顯示資料，禁止逐筆查詢
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error)
}

type profileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository create a ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	profiles := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT id, display_name, handle, role FROM profiles WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Handle, &p.Role); err != nil {
			return nil, err
		}
		profiles[p.ID] = p
	}
	return profiles, rows.Err()
}
