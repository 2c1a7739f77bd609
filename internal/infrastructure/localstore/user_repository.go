package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
)

// UserRepository keeps accounts in the local store for deployments without a
// backend. Keyed by email; a secondary scan serves the rare GetByID.
type UserRepository struct {
	store *BoltStore
}

func NewUserRepository(store *BoltStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUsers).Put([]byte(user.Email), data)
	})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user *entities.User
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketUsers).Get([]byte(email))
		if v == nil {
			return fmt.Errorf("user %s not found", email)
		}
		user = &entities.User{}
		return json.Unmarshal(v, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var user *entities.User
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(_, v []byte) error {
			var u entities.User
			if err := json.Unmarshal(v, &u); err != nil {
				return err
			}
			if u.ID == id {
				user = &u
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return user, nil
}

var _ repositories.UserRepository = (*UserRepository)(nil)
