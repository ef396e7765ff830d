package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
)

const (
	recentWindow = 7 * 24 * time.Hour
	recentLimit  = 5
)

// extensionTypes maps lower-case file extensions to the stored file type.
var extensionTypes = map[string]model.FileType{
	"pdf":  model.FileTypePDF,
	"doc":  model.FileTypeDOCX,
	"docx": model.FileTypeDOCX,
	"ppt":  model.FileTypePPTX,
	"pptx": model.FileTypePPTX,
	"xls":  model.FileTypeXLSX,
	"xlsx": model.FileTypeXLSX,
	"txt":  model.FileTypeTXT,
	"jpg":  model.FileTypeJPG,
	"jpeg": model.FileTypeJPG,
	"png":  model.FileTypePNG,
}

// DetectFileType derives the file type from a file name's extension.
func DetectFileType(fileName string) model.FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return model.FileTypeOther
}

// SearchFilter narrows a user's file list. Empty fields match everything.
type SearchFilter struct {
	Query    string // case-insensitive substring of the file name or any tag
	FileType model.FileType
	Access   model.Access
	Tag      string // exact tag match
	Range    string // "week", "month" or "year"
}

var rangeWindows = map[string]time.Duration{
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

// FileService implements the signed-in user's file operations.
// Every method takes the acting userID. Ownership is checked by the store's *Owned
// methods, under the same lock as the write.
type FileService struct {
	files  FileStore
	opts   Options
	logger *slog.Logger
}

func NewFileService(files FileStore, opts Options, logger *slog.Logger) *FileService {
	return &FileService{
		files:  files,
		opts:   opts,
		logger: logger,
	}
}

// List returns the user's files, newest first.
func (s *FileService) List(ctx context.Context, userID string) ([]model.FileRecord, error) {
	files, err := s.files.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/files: listing: %w", err)
	}
	sortNewestFirst(files)
	return files, nil
}

// Search applies filter to the user's files and reports the file types and tags
// present across all of that user's files.
func (s *FileService) Search(ctx context.Context, userID string, filter SearchFilter) (*model.SearchResult, error) {
	if filter.FileType != "" && !filter.FileType.Valid() {
		return nil, apperror.ValidationFailed("type", fmt.Sprintf("unknown file type %q", filter.FileType))
	}
	if filter.Access != "" && !filter.Access.Valid() {
		return nil, apperror.ValidationFailed("access", fmt.Sprintf("unknown access level %q", filter.Access))
	}
	var window time.Duration
	if filter.Range != "" {
		w, ok := rangeWindows[filter.Range]
		if !ok {
			return nil, apperror.ValidationFailed("range", fmt.Sprintf("unknown range %q", filter.Range))
		}
		window = w
	}

	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	now := s.opts.now()

	result := &model.SearchResult{
		Files:     []model.FileRecord{},
		FileTypes: []model.FileType{},
		Tags:      []string{},
	}
	for _, f := range all {
		if !slices.Contains(result.FileTypes, f.FileType) {
			result.FileTypes = append(result.FileTypes, f.FileType)
		}
		for _, tag := range f.Tags {
			if !slices.Contains(result.Tags, tag) {
				result.Tags = append(result.Tags, tag)
			}
		}

		if query != "" && !matchesQuery(f, query) {
			continue
		}
		if filter.FileType != "" && f.FileType != filter.FileType {
			continue
		}
		if filter.Access != "" && f.Access != filter.Access {
			continue
		}
		if filter.Tag != "" && !slices.Contains(f.Tags, filter.Tag) {
			continue
		}
		if window > 0 && now.Sub(f.UploadDate) > window {
			continue
		}
		result.Files = append(result.Files, f)
	}

	slices.Sort(result.FileTypes)
	slices.Sort(result.Tags)
	return result, nil
}

func matchesQuery(f model.FileRecord, query string) bool {
	if strings.Contains(strings.ToLower(f.FileName), query) {
		return true
	}
	for _, tag := range f.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Upload validates fields and stores a new record owned by userID.
func (s *FileService) Upload(ctx context.Context, userID string, fields model.FileFields) (*model.FileRecord, error) {
	fields.FileName = strings.TrimSpace(fields.FileName)
	if fields.FileName == "" {
		return nil, apperror.ValidationFailed("fileName", "file name is required")
	}
	if fields.FileType == "" {
		fields.FileType = DetectFileType(fields.FileName)
	}
	if fields.Access == "" {
		fields.Access = model.AccessPrivate
	}
	if err := validateFields(fields.FileType, fields.Access, fields.FileSize); err != nil {
		return nil, err
	}
	fields.Tags = cleanTags(fields.Tags)

	if err := pause(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	files, err := s.files.Add(ctx, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("service/files: adding: %w", err)
	}
	created := files[len(files)-1]

	s.logger.Info("file uploaded",
		slog.String("id", created.ID),
		slog.String("owner", userID),
		slog.String("type", string(created.FileType)),
	)
	return &created, nil
}

// Update applies patch to a file the user owns.
func (s *FileService) Update(ctx context.Context, userID, fileID string, patch model.FilePatch) (*model.FileRecord, error) {
	if patch.FileName != nil {
		name := strings.TrimSpace(*patch.FileName)
		if name == "" {
			return nil, apperror.ValidationFailed("fileName", "file name is required")
		}
		patch.FileName = &name
	}
	var (
		fileType model.FileType
		access   model.Access
		size     int64
	)
	if patch.FileType != nil {
		fileType = *patch.FileType
	}
	if patch.Access != nil {
		access = *patch.Access
	}
	if patch.FileSize != nil {
		size = *patch.FileSize
	}
	if patch.FileType != nil && fileType == "" {
		return nil, apperror.ValidationFailed("fileType", "file type is required")
	}
	if patch.Access != nil && access == "" {
		return nil, apperror.ValidationFailed("access", "access is required")
	}
	if err := validateFields(fileType, access, size); err != nil {
		return nil, err
	}
	if patch.Tags != nil {
		tags := cleanTags(*patch.Tags)
		patch.Tags = &tags
	}

	updated, err := s.files.UpdateOwned(ctx, userID, fileID, patch)
	if err != nil {
		return nil, fmt.Errorf("service/files: updating %s: %w", fileID, err)
	}

	s.logger.Info("file updated", slog.String("id", fileID), slog.String("owner", userID))
	return updated, nil
}

// Delete removes a file the user owns.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	if err := s.files.DeleteOwned(ctx, userID, fileID); err != nil {
		return fmt.Errorf("service/files: deleting %s: %w", fileID, err)
	}

	s.logger.Info("file deleted", slog.String("id", fileID), slog.String("owner", userID))
	return nil
}

// Overview summarises the user's files for the dashboard.
func (s *FileService) Overview(ctx context.Context, userID string) (*model.Overview, error) {
	files, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	ov := &model.Overview{TotalFiles: len(files)}
	for _, f := range files {
		switch f.Access {
		case model.AccessPublic:
			ov.PublicFiles++
		case model.AccessPrivate:
			ov.PrivateFiles++
		}
		if now.Sub(f.UploadDate) <= recentWindow {
			ov.RecentCount++
		}
	}
	ov.Recent = files[:min(recentLimit, len(files))]
	return ov, nil
}

// validateFields checks the enumerated fields. Empty values are skipped so the same
// check serves uploads (after defaults are applied) and partial updates.
func validateFields(fileType model.FileType, access model.Access, size int64) error {
	if fileType != "" && !fileType.Valid() {
		return apperror.ValidationFailed("fileType", fmt.Sprintf("unknown file type %q", fileType))
	}
	if access != "" && !access.Valid() {
		return apperror.ValidationFailed("access", fmt.Sprintf("unknown access level %q", access))
	}
	if size < 0 {
		return apperror.ValidationFailed("fileSize", "file size cannot be negative")
	}
	return nil
}

func cleanTags(tags model.Tags) model.Tags {
	out := model.Tags{}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func sortNewestFirst(files []model.FileRecord) {
	slices.SortStableFunc(files, func(a, b model.FileRecord) int {
		return b.UploadDate.Compare(a.UploadDate)
	})
}
