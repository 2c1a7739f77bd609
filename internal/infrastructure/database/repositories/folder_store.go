package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

// folderStore persists folder membership in user_folders, one row per
// (user, folder) pair, so a folder is listed from either party's record.
type folderStore struct {
	pool *pgxpool.Pool
}

func NewFolderStore(pool *pgxpool.Pool) repositories.FolderMembershipStore {
	return &folderStore{pool: pool}
}

func (r *folderStore) EnsureUser(ctx context.Context, email string) error {
	query := `INSERT INTO users (id, email, password)
		VALUES (gen_random_uuid()::text, $1, '')
		ON CONFLICT (email) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, email)
	return err
}

func (r *folderStore) EnsureFolder(ctx context.Context, userEmail string, folder *entities.SharedFolder) error {
	query := `INSERT INTO user_folders (user_email, folder_id, folder_name, owner_email, members)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_email, folder_id) DO UPDATE SET
			folder_name = EXCLUDED.folder_name,
			owner_email = EXCLUDED.owner_email`
	_, err := r.pool.Exec(ctx, query, userEmail, folder.ID, folder.Name, folder.Owner, folder.Members)
	return err
}

func (r *folderStore) UnionMembers(ctx context.Context, userEmail, folderID string, members ...string) error {
	query := `UPDATE user_folders
		SET members = ARRAY(SELECT DISTINCT m FROM unnest(members || $3::text[]) AS m)
		WHERE user_email = $1 AND folder_id = $2`
	_, err := r.pool.Exec(ctx, query, userEmail, folderID, members)
	return err
}

func (r *folderStore) Folder(ctx context.Context, userEmail, folderID string) (*entities.SharedFolder, error) {
	query := `SELECT folder_id, folder_name, owner_email, members
		FROM user_folders WHERE user_email = $1 AND folder_id = $2`

	var folder entities.SharedFolder
	err := r.pool.QueryRow(ctx, query, userEmail, folderID).
		Scan(&folder.ID, &folder.Name, &folder.Owner, &folder.Members)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *folderStore) FoldersFor(ctx context.Context, email string) ([]*entities.SharedFolder, error) {
	query := `SELECT folder_id, folder_name, owner_email, members
		FROM user_folders WHERE user_email = $1 ORDER BY folder_name`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*entities.SharedFolder
	for rows.Next() {
		var folder entities.SharedFolder
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.Owner, &folder.Members); err != nil {
			return nil, err
		}
		folders = append(folders, &folder)
	}
	return folders, rows.Err()
}
