package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

const petColumns = `
	p.id, p.category, p.title, p.breed, p.color, p.gender, p.has_chip,
	p.latitude, p.longitude, p.address, p.photos, p.owner_id,
	COALESCE(u.full_name, ''), p.found, p.found_at, p.created_at, p.deleted`

// PetRepo implements ports.PetRecordStore and ports.PetRecordWriter with pgx.
type PetRepo struct {
	db            *DB
	maxCandidates int
}

// NewPetRepo creates a new PetRepo. maxCandidates caps QueryAll; zero
// means no cap.
func NewPetRepo(db *DB, maxCandidates int) *PetRepo {
	return &PetRepo{db: db, maxCandidates: maxCandidates}
}

// QueryPage returns one newest-first page of box matches plus the box count.
func (r *PetRepo) QueryPage(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox, page domain.PageRequest) (*domain.RecordPage, error) {
	where, args := whereClause(f, box)

	var total int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM lost_pets p WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count lost pets: %w", err)
	}

	n := len(args)
	args = append(args, page.Size, page.Offset())
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM lost_pets p
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d
	`, petColumns, where, n+1, n+2), args...)
	if err != nil {
		return nil, fmt.Errorf("query lost pets page: %w", err)
	}

	recs, err := collectPets(rows)
	if err != nil {
		return nil, err
	}
	return &domain.RecordPage{Records: recs, TotalInBox: total}, nil
}

// QueryAll returns every box match ordered by planar distance to the box
// centre, so a capped result keeps the nearest candidates.
func (r *PetRepo) QueryAll(ctx context.Context, f domain.FilterSpec, box domain.BoundingBox) (*domain.CandidateSet, error) {
	where, args := whereClause(f, box)
	c := box.Center()

	n := len(args)
	args = append(args, c.Lat, c.Lng)
	query := fmt.Sprintf(`
		SELECT %s
		FROM lost_pets p
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE %s
		ORDER BY power(p.latitude - $%[3]d, 2)
		       + power((p.longitude - $%[4]d) * cos(radians($%[3]d)), 2),
		         p.id
	`, petColumns, where, n+1, n+2)
	if r.maxCandidates > 0 {
		args = append(args, r.maxCandidates+1)
		query += fmt.Sprintf(" LIMIT $%d", n+3)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lost pets: %w", err)
	}
	recs, err := collectPets(rows)
	if err != nil {
		return nil, err
	}

	set := &domain.CandidateSet{Records: recs}
	if r.maxCandidates > 0 && len(recs) > r.maxCandidates {
		set.Records = recs[:r.maxCandidates]
		set.Truncated = true
	}
	return set, nil
}

// GetByID returns a live report.
func (r *PetRepo) GetByID(ctx context.Context, id int64) (*domain.PetRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+petColumns+`
		FROM lost_pets p
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1 AND NOT p.deleted
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get lost pet: %w", err)
	}
	rec, err := pgx.CollectOneRow(rows, scanPet)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lost pet: %w", err)
	}
	return &rec, nil
}

// Insert stores rec and sets its ID and CreatedAt.
func (r *PetRepo) Insert(ctx context.Context, rec *domain.PetRecord) error {
	var createdAt *time.Time
	if !rec.CreatedAt.IsZero() {
		createdAt = &rec.CreatedAt
	}
	photos := rec.Photos
	if photos == nil {
		photos = []string{}
	}

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO lost_pets (category, title, breed, color, gender, has_chip,
		                       latitude, longitude, address, photos, owner_id,
		                       found, found_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, COALESCE($14, now()))
		RETURNING id, created_at
	`, string(rec.Category), rec.Title, rec.Breed, rec.Color, string(rec.Gender), rec.HasChip,
		rec.Location.Lat, rec.Location.Lng, rec.Address, photos, rec.OwnerID,
		rec.Found, rec.FoundAt, createdAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lost pet: %w", err)
	}
	return nil
}

// whereClause renders the box and attribute predicates. It must agree
// with domain.FilterSpec.MatchesAttributes.
func whereClause(f domain.FilterSpec, box domain.BoundingBox) (string, []any) {
	conds := []string{
		"NOT p.deleted",
		"p.found = $1",
		"p.latitude BETWEEN $2 AND $3",
		"p.longitude BETWEEN $4 AND $5",
	}
	args := []any{f.Found, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng}

	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if f.Category != nil {
		add("p.category = $%d", string(*f.Category))
	}
	if t := f.BreedTerm(); t != "" {
		add(`LOWER(p.breed) LIKE '%%' || LOWER($%d) || '%%' ESCAPE '\'`, escapeLike(t))
	}
	if t := f.ColorTerm(); t != "" {
		add(`LOWER(p.color) LIKE '%%' || LOWER($%d) || '%%' ESCAPE '\'`, escapeLike(t))
	}
	if f.Gender != nil {
		add("p.gender = $%d", string(*f.Gender))
	}
	if f.HasChip != nil {
		add("p.has_chip = $%d", *f.HasChip)
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func collectPets(rows pgx.Rows) ([]domain.PetRecord, error) {
	recs, err := pgx.CollectRows(rows, scanPet)
	if err != nil {
		return nil, fmt.Errorf("scan lost pets: %w", err)
	}
	return recs, nil
}

func scanPet(row pgx.CollectableRow) (domain.PetRecord, error) {
	var (
		rec              domain.PetRecord
		category, gender string
	)
	err := row.Scan(
		&rec.ID, &category, &rec.Title, &rec.Breed, &rec.Color, &gender, &rec.HasChip,
		&rec.Location.Lat, &rec.Location.Lng, &rec.Address, &rec.Photos, &rec.OwnerID,
		&rec.OwnerName, &rec.Found, &rec.FoundAt, &rec.CreatedAt, &rec.Deleted,
	)
	rec.Category = domain.PetCategory(category)
	rec.Gender = domain.Gender(gender)
	return rec, err
}
