package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sidebet/platform/internal/domain"
)

type eventRepo struct{}

// NewEventRepository returns a pgx-backed EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepo{}
}

func (r *eventRepo) Create(ctx context.Context, db DBTX, event *domain.Event) error {
	_, err := db.Exec(ctx, `
		INSERT INTO events (id, category, league, home_team, away_team, status, result, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID,
		event.Category,
		event.League,
		event.HomeTeam,
		event.AwayTeam,
		event.Status,
		event.Result,
		event.StartTime,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error) {
	row := db.QueryRow(ctx, `
		SELECT id, category, league, home_team, away_team, status, result, start_time, created_at
		FROM events WHERE id = $1`, id)

	var e domain.Event
	err := row.Scan(&e.ID, &e.Category, &e.League, &e.HomeTeam, &e.AwayTeam, &e.Status, &e.Result, &e.StartTime, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

func (r *eventRepo) RecordResult(ctx context.Context, db DBTX, eventID uuid.UUID, result string) error {
	_, err := db.Exec(ctx, `
		UPDATE events SET status = 'finished', result = $2
		WHERE id = $1`, eventID, result)
	if err != nil {
		return fmt.Errorf("record event result: %w", err)
	}
	return nil
}
