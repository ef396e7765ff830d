package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
	"github.com/sakif/file-vault/internal/repository"
)

// FileStore is the flat collection of file records stored under "files".
//
// The store does no ownership checks: Delete and Update act on any record. Callers
// decide who may touch what (FileService checks the owner, AdminService does not).
type FileStore struct {
	mu     sync.Mutex
	files  collection[model.FileRecord]
	opts   options
	logger *slog.Logger
}

func NewFileStore(kv repository.KeyValueStore, logger *slog.Logger, opts ...Option) *FileStore {
	return &FileStore{
		files:  collection[model.FileRecord]{kv: kv, key: repository.KeyFiles, logger: logger},
		opts:   defaultOptions(opts),
		logger: logger,
	}
}

// ListForUser returns the records uploaded by userID in stored order.
func (s *FileStore) ListForUser(ctx context.Context, userID string) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.files.load(ctx)
	if err != nil {
		return nil, err
	}
	return ownedBy(all, userID), nil
}

// ListAll returns every record regardless of owner.
func (s *FileStore) ListAll(ctx context.Context) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.files.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		normalizeTags(&all[i])
	}
	return all, nil
}

func (s *FileStore) Get(ctx context.Context, fileID string) (*model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.files.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByFileID(all, fileID)
	if i < 0 {
		return nil, apperror.NotFound("file", fileID)
	}
	f := all[i]
	normalizeTags(&f)
	return &f, nil
}

// Add appends a record owned by userID and returns that user's updated list.
// The new record is always the last element.
func (s *FileStore) Add(ctx context.Context, userID string, fields model.FileFields) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.files.load(ctx)
	if err != nil {
		return nil, err
	}

	record := model.FileRecord{
		ID:         s.opts.newID(),
		FileName:   fields.FileName,
		FileType:   fields.FileType,
		FileSize:   fields.FileSize,
		Access:     fields.Access,
		UploadedBy: userID,
		UploadDate: s.opts.now(),
		Tags:       fields.Tags,
		FileURL:    fields.FileURL,
	}
	normalizeTags(&record)

	all = append(all, record)
	if err := s.files.save(ctx, all); err != nil {
		return nil, err
	}

	s.logger.Debug("file record added",
		slog.String("id", record.ID),
		slog.String("owner", userID),
	)
	return ownedBy(all, userID), nil
}

// anyOwner disables the ownership check in remove and patch.
const anyOwner = ""

// Delete removes the record with fileID, whoever owns it.
func (s *FileStore) Delete(ctx context.Context, fileID string) error {
	return s.remove(ctx, anyOwner, fileID)
}

// DeleteOwned removes the record with fileID if ownerID uploaded it. The ownership
// check and the write happen under one lock.
func (s *FileStore) DeleteOwned(ctx context.Context, ownerID, fileID string) error {
	return s.remove(ctx, ownerID, fileID)
}

// Update merges patch into the record with fileID and returns the result.
func (s *FileStore) Update(ctx context.Context, fileID string, patch model.FilePatch) (*model.FileRecord, error) {
	return s.patch(ctx, anyOwner, fileID, patch)
}

// UpdateOwned is Update restricted to records uploaded by ownerID.
func (s *FileStore) UpdateOwned(ctx context.Context, ownerID, fileID string, patch model.FilePatch) (*model.FileRecord, error) {
	return s.patch(ctx, ownerID, fileID, patch)
}

func (s *FileStore) remove(ctx context.Context, ownerID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.files.load(ctx)
	if err != nil {
		return err
	}
	i, err := s.find(all, ownerID, fileID)
	if err != nil {
		return err
	}

	all = append(all[:i], all[i+1:]...)
	return s.files.save(ctx, all)
}

func (s *FileStore) patch(ctx context.Context, ownerID, fileID string, patch model.FilePatch) (*model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.files.load(ctx)
	if err != nil {
		return nil, err
	}
	i, err := s.find(all, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	patch.Apply(&all[i])
	normalizeTags(&all[i])
	if err := s.files.save(ctx, all); err != nil {
		return nil, err
	}
	updated := all[i]
	return &updated, nil
}

// find locates fileID and, unless ownerID is anyOwner, checks who uploaded it.
func (s *FileStore) find(all []model.FileRecord, ownerID, fileID string) (int, error) {
	i := indexByFileID(all, fileID)
	if i < 0 {
		return -1, apperror.NotFound("file", fileID)
	}
	if ownerID != anyOwner && all[i].UploadedBy != ownerID {
		s.logger.Warn("file access denied", slog.String("id", fileID), slog.String("userID", ownerID))
		return -1, apperror.Forbidden("you do not own this file")
	}
	return i, nil
}

func ownedBy(all []model.FileRecord, userID string) []model.FileRecord {
	out := make([]model.FileRecord, 0)
	for _, f := range all {
		if f.UploadedBy == userID {
			normalizeTags(&f)
			out = append(out, f)
		}
	}
	return out
}

func normalizeTags(f *model.FileRecord) {
	if f.Tags == nil {
		f.Tags = model.Tags{}
	}
}

func indexByFileID(all []model.FileRecord, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
