package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

type sharedDocStore struct {
	pool *pgxpool.Pool
}

func NewSharedDocStore(pool *pgxpool.Pool) repositories.SharedDocStore {
	return &sharedDocStore{pool: pool}
}

func (r *sharedDocStore) Upsert(ctx context.Context, rec *entities.SharedDocRecord) error {
	query := `INSERT INTO shared_docs (rec_id, folder_id, owner_email, doc_id, title, file_name,
			category, uploaded_at, warranty_start, warranty_expires_at, org, year, recipient, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (rec_id) DO UPDATE SET
			folder_id = EXCLUDED.folder_id,
			title = EXCLUDED.title,
			file_name = EXCLUDED.file_name,
			category = EXCLUDED.category,
			uploaded_at = EXCLUDED.uploaded_at,
			warranty_start = EXCLUDED.warranty_start,
			warranty_expires_at = EXCLUDED.warranty_expires_at,
			org = EXCLUDED.org,
			year = EXCLUDED.year,
			recipient = EXCLUDED.recipient,
			last_updated = EXCLUDED.last_updated`

	_, err := r.pool.Exec(ctx, query,
		rec.RecID, rec.FolderID, rec.OwnerEmail, rec.DocID, rec.Title, rec.FileName,
		rec.Category, rec.UploadedAt, rec.WarrantyStart, rec.WarrantyExpiresAt,
		rec.Org, rec.Year, rec.Recipient, rec.LastUpdated,
	)
	return err
}

func (r *sharedDocStore) ByFolder(ctx context.Context, folderID string) ([]*entities.SharedDocRecord, error) {
	query := `SELECT rec_id, folder_id, owner_email, doc_id, title, file_name,
			category, uploaded_at, warranty_start, warranty_expires_at, org, year, recipient, last_updated
		FROM shared_docs WHERE folder_id = $1 ORDER BY uploaded_at DESC`

	rows, err := r.pool.Query(ctx, query, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*entities.SharedDocRecord
	for rows.Next() {
		var rec entities.SharedDocRecord
		err := rows.Scan(
			&rec.RecID, &rec.FolderID, &rec.OwnerEmail, &rec.DocID, &rec.Title, &rec.FileName,
			&rec.Category, &rec.UploadedAt, &rec.WarrantyStart, &rec.WarrantyExpiresAt,
			&rec.Org, &rec.Year, &rec.Recipient, &rec.LastUpdated,
		)
		if err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (r *sharedDocStore) Delete(ctx context.Context, recID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM shared_docs WHERE rec_id = $1`, recID)
	return err
}
