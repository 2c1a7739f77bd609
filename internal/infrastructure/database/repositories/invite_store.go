package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

type inviteStore struct {
	db *sqlx.DB
}

func NewInviteStore(db *sqlx.DB) repositories.RemoteInviteStore {
	return &inviteStore{db: db}
}

func (r *inviteStore) Create(ctx context.Context, invite *entities.ShareInvite) error {
	query := `INSERT INTO share_invites (id, folder_id, folder_name, from_email, to_email, status, created_at, updated_at)
		VALUES (:id, :folder_id, :folder_name, :from_email, :to_email, :status, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, invite)
	return err
}

func (r *inviteStore) Get(ctx context.Context, id string) (*entities.ShareInvite, error) {
	query := `SELECT id, folder_id, folder_name, from_email, to_email, status, created_at, updated_at
		FROM share_invites WHERE id = $1`

	var invite entities.ShareInvite
	if err := r.db.GetContext(ctx, &invite, query, id); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteStore) PendingFor(ctx context.Context, email string) ([]*entities.ShareInvite, error) {
	query := `SELECT id, folder_id, folder_name, from_email, to_email, status, created_at, updated_at
		FROM share_invites WHERE to_email = $1 AND status = $2 ORDER BY created_at DESC`

	var invites []*entities.ShareInvite
	if err := r.db.SelectContext(ctx, &invites, query, email, entities.InvitePending); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *inviteStore) AcceptedFor(ctx context.Context, folderID string) ([]*entities.ShareInvite, error) {
	query := `SELECT id, folder_id, folder_name, from_email, to_email, status, created_at, updated_at
		FROM share_invites WHERE folder_id = $1 AND status = $2 ORDER BY created_at`

	var invites []*entities.ShareInvite
	if err := r.db.SelectContext(ctx, &invites, query, folderID, entities.InviteAccepted); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *inviteStore) SetStatus(ctx context.Context, id string, status entities.InviteStatus) error {
	query := `UPDATE share_invites SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}
