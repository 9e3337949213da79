package diary

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager bundles every store behind one handle so wiring stays a
// single constructor call.
type RepositoryManager interface {
	Users() Users
	Diaries() Diaries
	Tags() Tags
	Notifications() Notifications
	RevokedTokens() RevocationStore
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()
}

type mngr struct {
	db            *bun.DB
	users         Users
	diaries       Diaries
	tags          Tags
	notifications Notifications
	revoked       RevocationStore
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	tags := NewTagsRepository(db)
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		diaries:       NewDiariesRepository(db, tags),
		tags:          tags,
		notifications: NewNotificationsRepository(db),
		revoked:       NewRevokedTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager needs a database")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.diaries == nil {
		return errors.New("repository diaries should be initialized")
	}

	if m.tags == nil {
		return errors.New("repository tags should be initialized")
	}

	if m.notifications == nil {
		return errors.New("repository notifications should be initialized")
	}

	if m.revoked == nil {
		return errors.New("repository revokedTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Diaries() Diaries {
	return m.diaries
}

func (m mngr) Tags() Tags {
	return m.tags
}

func (m mngr) Notifications() Notifications {
	return m.notifications
}

func (m mngr) RevokedTokens() RevocationStore {
	return m.revoked
}
