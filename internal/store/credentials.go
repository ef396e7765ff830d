package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
	"github.com/sakif/file-vault/internal/repository"
)

// AdminID is the fixed id of the bootstrap admin account.
const AdminID = "admin-001"

// AdminAccount is the identity BootstrapAdmin guarantees exists.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// DefaultAvatarURL derives a deterministic avatar from a seed (the user's email).
// The seed is appended as is, so URLs stored by earlier versions keep matching.
func DefaultAvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}

// CredentialStore is the flat collection of accounts stored under "users".
//
// Email uniqueness is enforced here, at Create time, by a linear scan. It is not a
// storage constraint: a hand-edited collection can contain duplicates and the first
// match wins on lookup.
type CredentialStore struct {
	mu     sync.Mutex // serializes read-modify-write cycles
	users  collection[model.Account]
	admin  AdminAccount
	opts   options
	logger *slog.Logger
}

func NewCredentialStore(kv repository.KeyValueStore, admin AdminAccount, logger *slog.Logger, opts ...Option) *CredentialStore {
	return &CredentialStore{
		users:  collection[model.Account]{kv: kv, key: repository.KeyUsers, logger: logger},
		admin:  admin,
		opts:   defaultOptions(opts),
		logger: logger,
	}
}

// BootstrapAdmin inserts the admin account unless an account with the admin email
// already exists. Safe to call on every start.
//
// The account gets AdminID unless another account already holds it, which happens
// when the admin email is changed between runs; then it gets a fresh id.
func (s *CredentialStore) BootstrapAdmin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return err
	}
	if indexByEmail(accounts, s.admin.Email) >= 0 {
		return nil
	}

	id := AdminID
	if indexByID(accounts, id) >= 0 {
		id = s.opts.newID()
	}

	accounts = append(accounts, model.Account{
		User: model.User{
			ID:             id,
			Name:           s.admin.Name,
			Email:          s.admin.Email,
			JoinDate:       s.opts.now(),
			ProfilePicture: DefaultAvatarURL(s.admin.Email),
		},
		Password: s.admin.Password,
	})
	if err := s.users.save(ctx, accounts); err != nil {
		return err
	}

	s.logger.Info("admin account created", slog.String("email", s.admin.Email), slog.String("id", id))
	return nil
}

// FindByCredentials returns the account whose email and password both match exactly.
func (s *CredentialStore) FindByCredentials(ctx context.Context, email, password string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Email == email && accounts[i].Password == password {
			return &accounts[i], nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// Create appends a new account. It fails with apperror.ErrConflict when the email is taken.
func (s *CredentialStore) Create(ctx context.Context, name, email, password string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}
	if indexByEmail(accounts, email) >= 0 {
		return nil, apperror.AlreadyExists("user", "email", email)
	}

	account := model.Account{
		User: model.User{
			ID:             s.opts.newID(),
			Name:           name,
			Email:          email,
			JoinDate:       s.opts.now(),
			ProfilePicture: DefaultAvatarURL(email),
		},
		Password: password,
	}
	accounts = append(accounts, account)
	if err := s.users.save(ctx, accounts); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateProfile replaces name and profile picture of the account with userID.
func (s *CredentialStore) UpdateProfile(ctx context.Context, userID, name, profilePicture string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByID(accounts, userID)
	if i < 0 {
		return nil, apperror.NotFound("user", userID)
	}

	accounts[i].Name = name
	accounts[i].ProfilePicture = profilePicture
	if err := s.users.save(ctx, accounts); err != nil {
		return nil, err
	}
	updated := accounts[i]
	return &updated, nil
}

// UpdatePassword replaces the password after checking currentPassword.
// Errors: apperror.ErrNotFound, apperror.ErrWrongPassword.
func (s *CredentialStore) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return err
	}
	i := indexByID(accounts, userID)
	if i < 0 {
		return apperror.NotFound("user", userID)
	}
	if accounts[i].Password != currentPassword {
		return apperror.WrongPassword()
	}

	accounts[i].Password = newPassword
	return s.users.save(ctx, accounts)
}

func (s *CredentialStore) FindByID(ctx context.Context, userID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByID(accounts, userID); i >= 0 {
		return &accounts[i], nil
	}
	return nil, apperror.NotFound("user", userID)
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByEmail(accounts, email); i >= 0 {
		return &accounts[i], nil
	}
	return nil, apperror.NotFound("user", email)
}

// List returns every account in stored order.
func (s *CredentialStore) List(ctx context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.load(ctx)
}

func indexByEmail(accounts []model.Account, email string) int {
	for i := range accounts {
		if accounts[i].Email == email {
			return i
		}
	}
	return -1
}

func indexByID(accounts []model.Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}
