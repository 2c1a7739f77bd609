package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/pkg/logger"
)

// Feed is the NATS-backed change feed. Subjects:
//
//	archive.docs.owned.<email>     documents, delivered to the owner
//	archive.docs.shared.<email>    documents, fanned out per sharedWith member
//	archive.invites.<email>        share invitations, to the recipient
//	archive.members.<owner>.<id>   folder membership snapshots
//	archive.shareddocs.<id>        folder mirror records
//
// Email addresses are sanitized into subject tokens; payloads are JSON.
type Feed struct {
	conn *nats.Conn
}

func NewFeed(url string) (*Feed, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("eco-file-system"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Feed{conn: conn}, nil
}

func (f *Feed) Close() {
	if f.conn != nil {
		f.conn.Close()
	}
}

// token makes a value safe for use inside a NATS subject.
func token(s string) string {
	return strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(s)
}

func (f *Feed) publishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal feed payload: %w", err)
	}
	if err := f.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func subscribeJSON[T any](conn *nats.Conn, subject string, fn func(*T)) (repositories.CancelFunc, error) {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			logger.Warn("bad feed payload", zap.String("subject", subject), zap.Error(err))
			return
		}
		fn(&v)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				logger.Warn("unsubscribe failed", zap.String("subject", subject), zap.Error(err))
			}
		})
	}, nil
}

// PublishDocument fans a document change out to its owner and to every
// sharedWith member.
func (f *Feed) PublishDocument(ctx context.Context, doc *entities.Document) error {
	if err := f.publishJSON("archive.docs.owned."+token(doc.Owner), doc); err != nil {
		return err
	}
	for _, member := range doc.SharedWith {
		if member == doc.Owner {
			continue
		}
		if err := f.publishJSON("archive.docs.shared."+token(member), doc); err != nil {
			return err
		}
	}
	return nil
}

func (f *Feed) SubscribeOwnedDocs(email string, fn func(*entities.Document)) (repositories.CancelFunc, error) {
	return subscribeJSON(f.conn, "archive.docs.owned."+token(email), fn)
}

func (f *Feed) SubscribeSharedDocs(email string, fn func(*entities.Document)) (repositories.CancelFunc, error) {
	return subscribeJSON(f.conn, "archive.docs.shared."+token(email), fn)
}

func (f *Feed) PublishInvite(ctx context.Context, invite *entities.ShareInvite) error {
	return f.publishJSON("archive.invites."+token(invite.ToEmail), invite)
}

func (f *Feed) SubscribeInvites(email string, fn func(*entities.ShareInvite)) (repositories.CancelFunc, error) {
	return subscribeJSON(f.conn, "archive.invites."+token(email), fn)
}

func (f *Feed) PublishMembers(ctx context.Context, owner, folderID string, members []string) error {
	return f.publishJSON("archive.members."+token(owner)+"."+token(folderID), members)
}

func (f *Feed) SubscribeMembers(owner, folderID string, fn func([]string)) (repositories.CancelFunc, error) {
	subject := "archive.members." + token(owner) + "." + token(folderID)
	sub, err := f.conn.Subscribe(subject, func(msg *nats.Msg) {
		var members []string
		if err := json.Unmarshal(msg.Data, &members); err != nil {
			logger.Warn("bad feed payload", zap.String("subject", subject), zap.Error(err))
			return
		}
		fn(members)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				logger.Warn("unsubscribe failed", zap.String("subject", subject), zap.Error(err))
			}
		})
	}, nil
}

func (f *Feed) PublishSharedDoc(ctx context.Context, rec *entities.SharedDocRecord) error {
	return f.publishJSON("archive.shareddocs."+token(rec.FolderID), rec)
}

func (f *Feed) SubscribeFolderDocs(folderID string, fn func(*entities.SharedDocRecord)) (repositories.CancelFunc, error) {
	return subscribeJSON(f.conn, "archive.shareddocs."+token(folderID), fn)
}

var _ repositories.ChangeFeed = (*Feed)(nil)
