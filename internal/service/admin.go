package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
)

// AdminService provides the vault-wide views. Callers must check the admin policy first.
type AdminService struct {
	users  CredentialStore
	files  FileStore
	logger *slog.Logger
}

func NewAdminService(users CredentialStore, files FileStore, logger *slog.Logger) *AdminService {
	return &AdminService{
		users:  users,
		files:  files,
		logger: logger,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*model.VaultStats, error) {
	accounts, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}
	files, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing files: %w", err)
	}

	stats := &model.VaultStats{
		TotalUsers:     len(accounts),
		TotalFiles:     len(files),
		MostCommonType: "N/A",
	}

	counts := make(map[model.FileType]int)
	var order []model.FileType
	for _, f := range files {
		switch f.Access {
		case model.AccessPublic:
			stats.PublicFiles++
		case model.AccessPrivate:
			stats.PrivateFiles++
		}
		if _, seen := counts[f.FileType]; !seen {
			order = append(order, f.FileType)
		}
		counts[f.FileType]++
	}

	// Strictly greater, so ties go to the type seen first.
	best := 0
	for _, t := range order {
		if counts[t] > best {
			best = counts[t]
			stats.MostCommonType = string(t)
		}
	}
	return stats, nil
}

// Users lists every account without its password, with a count of owned files.
func (s *AdminService) Users(ctx context.Context) ([]model.UserSummary, error) {
	accounts, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}
	files, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing files: %w", err)
	}

	owned := make(map[string]int, len(accounts))
	for _, f := range files {
		owned[f.UploadedBy]++
	}

	out := make([]model.UserSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.UserSummary{User: a.Profile(), FileCount: owned[a.ID]})
	}
	return out, nil
}

// Files lists every record, newest first, with the owner's display name.
func (s *AdminService) Files(ctx context.Context) ([]model.FileSummary, error) {
	accounts, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}
	files, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing files: %w", err)
	}
	sortNewestFirst(files)

	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	out := make([]model.FileSummary, 0, len(files))
	for _, f := range files {
		owner, ok := names[f.UploadedBy]
		if !ok {
			owner = "Unknown"
		}
		out = append(out, model.FileSummary{FileRecord: f, OwnerName: owner})
	}
	return out, nil
}

// DeleteFile removes any user's file.
func (s *AdminService) DeleteFile(ctx context.Context, fileID string) error {
	if err := s.files.Delete(ctx, fileID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/admin: deleting %s: %w", fileID, err)
	}
	s.logger.Info("file deleted by admin", slog.String("id", fileID))
	return nil
}
