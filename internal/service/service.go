// Package service contains the vault's business rules.
//
// LAYERING:
//
//	handler (HTTP) → service (validation, ownership, sessions) → store (collections) → repository (key-value backend)
//
// Services depend on the small interfaces below rather than on concrete stores, so each
// service can be exercised against any implementation.
package service

import (
	"context"
	"time"

	"github.com/sakif/file-vault/internal/model"
)

// CredentialStore is the account collection. Implemented by *store.CredentialStore.
type CredentialStore interface {
	BootstrapAdmin(ctx context.Context) error
	FindByCredentials(ctx context.Context, email, password string) (*model.Account, error)
	Create(ctx context.Context, name, email, password string) (*model.Account, error)
	UpdateProfile(ctx context.Context, userID, name, profilePicture string) (*model.Account, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	FindByID(ctx context.Context, userID string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
}

// SessionStore is the single active session. Implemented by *store.SessionStore.
type SessionStore interface {
	Restore(ctx context.Context) (*model.User, error)
	Establish(ctx context.Context, user model.User) error
	Clear(ctx context.Context) error
	Current() *model.User
}

// FileStore is the file record collection. Implemented by *store.FileStore.
type FileStore interface {
	ListForUser(ctx context.Context, userID string) ([]model.FileRecord, error)
	ListAll(ctx context.Context) ([]model.FileRecord, error)
	Get(ctx context.Context, fileID string) (*model.FileRecord, error)
	Add(ctx context.Context, userID string, fields model.FileFields) ([]model.FileRecord, error)
	Delete(ctx context.Context, fileID string) error
	DeleteOwned(ctx context.Context, ownerID, fileID string) error
	UpdateOwned(ctx context.Context, ownerID, fileID string, patch model.FilePatch) (*model.FileRecord, error)
}

// Options tunes service behaviour.
type Options struct {
	// Latency is an artificial pause before login, signup and upload, mimicking a
	// remote call. Zero disables it.
	Latency time.Duration
	// Now is the clock used for date filters. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// pause waits for d or until ctx is done, whichever comes first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
