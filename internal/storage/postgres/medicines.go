package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

const medicineColumns = `id, name, type, price, photo_url, exp_date, created_by, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type medicineRepository struct {
	storage *Storage
}

func (r *medicineRepository) List(ctx context.Context) ([]model.Medicine, error) {
	return r.query(ctx, `SELECT `+medicineColumns+` FROM medicines ORDER BY name`)
}

func (r *medicineRepository) Search(ctx context.Context, query string, limit int) ([]model.Medicine, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
	return r.query(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE name ILIKE $1 ORDER BY name LIMIT $2`, pattern, limit)
}

func (r *medicineRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Medicine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = ANY($1)`, ids)
}

func (r *medicineRepository) Create(ctx context.Context, medicine *model.Medicine) (*model.Medicine, error) {
	const query = `INSERT INTO medicines (id, name, type, price, photo_url, exp_date, created_by)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING created_at`
	created := *medicine
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	err := r.storage.pool.QueryRow(ctx, query, created.ID, created.Name, created.Type, created.Price,
		created.PhotoURL, created.ExpDate, created.CreatedBy).Scan(&created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *medicineRepository) query(ctx context.Context, sql string, args ...any) ([]model.Medicine, error) {
	rows, err := r.storage.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Medicine
	for rows.Next() {
		var m model.Medicine
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Price, &m.PhotoURL, &m.ExpDate, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
