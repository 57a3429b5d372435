package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, template_id, remote_id, fields, photo_url, photo_key, photo_mime, rating, created_at, updated_at, generated_at`

// Create inserts a document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	fields, err := json.Marshal(doc.Values)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	const query = `
INSERT INTO resume_documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.TemplateID,
		doc.RemoteID,
		fields,
		doc.PhotoURL,
		doc.PhotoKey,
		doc.PhotoMime,
		doc.Rating,
		doc.CreatedAt,
		doc.UpdatedAt,
		doc.GeneratedAt,
	)
	return err
}

// GetByID returns a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM resume_documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + documentColumns + `
FROM resume_documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a document.
func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	fields, err := json.Marshal(doc.Values)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	const query = `
UPDATE resume_documents
SET remote_id = $3, fields = $4, photo_url = $5, photo_key = $6, photo_mime = $7, rating = $8, updated_at = $9, generated_at = $10
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.RemoteID,
		fields,
		doc.PhotoURL,
		doc.PhotoKey,
		doc.PhotoMime,
		doc.Rating,
		doc.UpdatedAt,
		doc.GeneratedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Delete removes a document owned by userID.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM resume_documents WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc    Document
		fields []byte
	)
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.TemplateID,
		&doc.RemoteID,
		&fields,
		&doc.PhotoURL,
		&doc.PhotoKey,
		&doc.PhotoMime,
		&doc.Rating,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.GeneratedAt,
	); err != nil {
		return Document{}, err
	}
	doc.Values = map[string]string{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &doc.Values); err != nil {
			return Document{}, fmt.Errorf("decode fields: %w", err)
		}
	}
	return doc, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
