package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

const documentColumns = `id, title, original_file_name, category, org, year,
	recipient, shared_with, owner, shared_folder_id, uploaded_at,
	warranty_start, warranty_expires_at, auto_delete_after,
	mime_type, file_size, download_url, trashed`

type documentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) repositories.RemoteDocumentStore {
	return &documentStore{pool: pool}
}

func (r *documentStore) Upsert(ctx context.Context, doc *entities.Document) error {
	query := `INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			original_file_name = EXCLUDED.original_file_name,
			category = EXCLUDED.category,
			org = EXCLUDED.org,
			year = EXCLUDED.year,
			recipient = EXCLUDED.recipient,
			shared_with = EXCLUDED.shared_with,
			owner = EXCLUDED.owner,
			shared_folder_id = EXCLUDED.shared_folder_id,
			uploaded_at = EXCLUDED.uploaded_at,
			warranty_start = EXCLUDED.warranty_start,
			warranty_expires_at = EXCLUDED.warranty_expires_at,
			auto_delete_after = EXCLUDED.auto_delete_after,
			mime_type = EXCLUDED.mime_type,
			file_size = EXCLUDED.file_size,
			download_url = EXCLUDED.download_url,
			trashed = EXCLUDED.trashed`

	_, err := r.pool.Exec(ctx, query,
		doc.ID, doc.Title, doc.OriginalFileName, doc.Category, doc.Org, doc.Year,
		doc.Recipient, doc.SharedWith, doc.Owner, doc.SharedFolderID, doc.UploadedAt,
		doc.WarrantyStart, doc.WarrantyExpiresAt, doc.AutoDeleteAfter,
		doc.MimeType, doc.FileSize, doc.DownloadURL, doc.Trashed,
	)
	return err
}

func (r *documentStore) Get(ctx context.Context, id string) (*entities.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.pool.QueryRow(ctx, query, id))
}

func (r *documentStore) Owned(ctx context.Context, owner string) ([]*entities.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner = $1 ORDER BY uploaded_at DESC`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func (r *documentStore) SharedWith(ctx context.Context, email string) ([]*entities.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE $1 = ANY(shared_with) AND owner <> $1 ORDER BY uploaded_at DESC`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func (r *documentStore) UnionSharedWith(ctx context.Context, id string, emails ...string) error {
	query := `UPDATE documents
		SET shared_with = ARRAY(SELECT DISTINCT e FROM unnest(shared_with || $2::text[]) AS e)
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, emails)
	return err
}

func (r *documentStore) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

func scanDocument(row pgx.Row) (*entities.Document, error) {
	var doc entities.Document
	err := row.Scan(
		&doc.ID, &doc.Title, &doc.OriginalFileName, &doc.Category, &doc.Org, &doc.Year,
		&doc.Recipient, &doc.SharedWith, &doc.Owner, &doc.SharedFolderID, &doc.UploadedAt,
		&doc.WarrantyStart, &doc.WarrantyExpiresAt, &doc.AutoDeleteAfter,
		&doc.MimeType, &doc.FileSize, &doc.DownloadURL, &doc.Trashed,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]*entities.Document, error) {
	defer rows.Close()
	var docs []*entities.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
