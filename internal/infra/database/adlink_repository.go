package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

const adLinkColumns = `id, slug, destination, source, medium, campaign, clicks, created_by, created_at`

type AdLinkRepository struct {
	DB *sql.DB
}

func NewAdLinkRepository(db *sql.DB) *AdLinkRepository {
	return &AdLinkRepository{DB: db}
}

func (r *AdLinkRepository) Create(ctx context.Context, l *entity.AdLink) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ad_links (id, slug, destination, source, medium, campaign, clicks, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.Slug, l.Destination, l.Source, l.Medium, l.Campaign, l.Clicks, l.CreatedBy, l.CreatedAt)
	if isUniqueViolation(err) {
		return entity.ErrAdLinkSlugTaken
	}
	return err
}

func (r *AdLinkRepository) List(ctx context.Context) ([]*entity.AdLink, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+adLinkColumns+` FROM ad_links ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*entity.AdLink
	for rows.Next() {
		l, err := scanAdLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *AdLinkRepository) RegisterClick(ctx context.Context, slug string) (*entity.AdLink, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE ad_links SET clicks = clicks + 1 WHERE slug = $1 RETURNING `+adLinkColumns, slug)
	l, err := scanAdLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAdLinkNotFound
	}
	return l, err
}

func scanAdLink(row rowScanner) (*entity.AdLink, error) {
	var l entity.AdLink
	err := row.Scan(&l.ID, &l.Slug, &l.Destination, &l.Source, &l.Medium, &l.Campaign, &l.Clicks, &l.CreatedBy, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
