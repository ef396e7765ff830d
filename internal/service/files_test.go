package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
)

func (f *fixture) upload(t *testing.T, userID string, fields model.FileFields) *model.FileRecord {
	t.Helper()
	rec, err := f.fileSvc.Upload(context.Background(), userID, fields)
	require.NoError(t, err)
	return rec
}

func ids(files []model.FileRecord) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.ID)
	}
	return out
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		fileName string
		want     model.FileType
	}{
		{"report.pdf", model.FileTypePDF},
		{"REPORT.PDF", model.FileTypePDF},
		{"letter.doc", model.FileTypeDOCX},
		{"letter.docx", model.FileTypeDOCX},
		{"deck.ppt", model.FileTypePPTX},
		{"deck.pptx", model.FileTypePPTX},
		{"sheet.xls", model.FileTypeXLSX},
		{"sheet.xlsx", model.FileTypeXLSX},
		{"notes.txt", model.FileTypeTXT},
		{"photo.jpeg", model.FileTypeJPG},
		{"photo.jpg", model.FileTypeJPG},
		{"logo.png", model.FileTypePNG},
		{"archive.tar.gz", model.FileTypeOther},
		{"Makefile", model.FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.fileName))
		})
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name       string
		fields     model.FileFields
		wantErr    error
		wantType   model.FileType
		wantAccess model.Access
		wantTags   model.Tags
	}{
		{
			name:       "defaults applied",
			fields:     model.FileFields{FileName: " notes.txt ", FileSize: 12},
			wantType:   model.FileTypeTXT,
			wantAccess: model.AccessPrivate,
			wantTags:   model.Tags{},
		},
		{
			name:       "explicit values kept",
			fields:     model.FileFields{FileName: "scan", FileType: model.FileTypePDF, Access: model.AccessPublic, Tags: model.Tags{" tax ", "", "2024"}},
			wantType:   model.FileTypePDF,
			wantAccess: model.AccessPublic,
			wantTags:   model.Tags{"tax", "2024"},
		},
		{name: "missing name", fields: model.FileFields{FileName: "  "}, wantErr: apperror.ErrValidation},
		{name: "unknown type", fields: model.FileFields{FileName: "a.bin", FileType: "EXE"}, wantErr: apperror.ErrValidation},
		{name: "unknown access", fields: model.FileFields{FileName: "a.txt", Access: "Shared"}, wantErr: apperror.ErrValidation},
		{name: "negative size", fields: model.FileFields{FileName: "a.txt", FileSize: -1}, wantErr: apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.signup(t, "Ann", "ann@x.com")

			rec, err := f.fileSvc.Upload(context.Background(), u.ID, tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				files, listErr := f.fileSvc.List(context.Background(), u.ID)
				require.NoError(t, listErr)
				assert.Empty(t, files)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.ID, rec.UploadedBy)
			assert.Equal(t, f.clock.Now(), rec.UploadDate)
			assert.Equal(t, tt.wantType, rec.FileType)
			assert.Equal(t, tt.wantAccess, rec.Access)
			assert.Equal(t, tt.wantTags, rec.Tags)

			stored, err := f.files.Get(context.Background(), rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec, stored)
		})
	}
}

func TestList_NewestFirstAndOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ann := f.signup(t, "Ann", "ann@x.com")
	bob := f.signup(t, "Bob", "bob@x.com")

	first := f.upload(t, ann.ID, model.FileFields{FileName: "a.txt"})
	f.clock.Advance(time.Hour)
	f.upload(t, bob.ID, model.FileFields{FileName: "b.txt"})
	f.clock.Advance(time.Hour)
	third := f.upload(t, ann.ID, model.FileFields{FileName: "c.txt"})

	files, err := f.fileSvc.List(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, first.ID}, ids(files))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "Ann", "ann@x.com")

	old := f.upload(t, u.ID, model.FileFields{FileName: "Budget.xlsx", Access: model.AccessPublic, Tags: model.Tags{"finance"}})
	f.clock.Advance(20 * 24 * time.Hour)
	mid := f.upload(t, u.ID, model.FileFields{FileName: "holiday.jpg", Tags: model.Tags{"travel", "Family"}})
	f.clock.Advance(3 * 24 * time.Hour)
	recent := f.upload(t, u.ID, model.FileFields{FileName: "minutes.txt", Tags: model.Tags{"finance", "meetings"}})

	tests := []struct {
		name   string
		filter SearchFilter
		want   []string
	}{
		{name: "no filter", filter: SearchFilter{}, want: []string{recent.ID, mid.ID, old.ID}},
		{name: "query on name ignores case", filter: SearchFilter{Query: "BUDGET"}, want: []string{old.ID}},
		{name: "query on tag", filter: SearchFilter{Query: "family"}, want: []string{mid.ID}},
		{name: "type", filter: SearchFilter{FileType: model.FileTypeJPG}, want: []string{mid.ID}},
		{name: "access", filter: SearchFilter{Access: model.AccessPublic}, want: []string{old.ID}},
		{name: "exact tag", filter: SearchFilter{Tag: "finance"}, want: []string{recent.ID, old.ID}},
		{name: "tag match is exact", filter: SearchFilter{Tag: "fin"}, want: []string{}},
		{name: "last week", filter: SearchFilter{Range: "week"}, want: []string{recent.ID, mid.ID}},
		{name: "last month", filter: SearchFilter{Range: "month"}, want: []string{recent.ID, mid.ID, old.ID}},
		{name: "combined", filter: SearchFilter{Query: "m", Tag: "finance", Range: "week"}, want: []string{recent.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.fileSvc.Search(context.Background(), u.ID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Files))
			assert.Equal(t, []model.FileType{model.FileTypeJPG, model.FileTypeTXT, model.FileTypeXLSX}, res.FileTypes)
			assert.Equal(t, []string{"Family", "finance", "meetings", "travel"}, res.Tags)
		})
	}
}

func TestSearch_RejectsUnknownFilterValues(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "Ann", "ann@x.com")

	for _, filter := range []SearchFilter{
		{FileType: "EXE"},
		{Access: "Shared"},
		{Range: "decade"},
	} {
		_, err := f.fileSvc.Search(context.Background(), u.ID, filter)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.signup(t, "Ann", "ann@x.com")
	bob := f.signup(t, "Bob", "bob@x.com")
	rec := f.upload(t, ann.ID, model.FileFields{FileName: "a.txt", Tags: model.Tags{"x"}})

	name := " renamed.txt "
	access := model.AccessPublic
	tags := model.Tags{" y ", ""}
	updated, err := f.fileSvc.Update(ctx, ann.ID, rec.ID, model.FilePatch{FileName: &name, Access: &access, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", updated.FileName)
	assert.Equal(t, model.AccessPublic, updated.Access)
	assert.Equal(t, model.Tags{"y"}, updated.Tags)
	assert.Equal(t, rec.UploadDate, updated.UploadDate)
	assert.Equal(t, ann.ID, updated.UploadedBy)

	_, err = f.fileSvc.Update(ctx, bob.ID, rec.ID, model.FilePatch{FileName: &name})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.fileSvc.Update(ctx, ann.ID, "missing", model.FilePatch{FileName: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	bad := model.Access("Shared")
	_, err = f.fileSvc.Update(ctx, ann.ID, rec.ID, model.FilePatch{Access: &bad})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	empty := ""
	_, err = f.fileSvc.Update(ctx, ann.ID, rec.ID, model.FilePatch{FileName: &empty})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.signup(t, "Ann", "ann@x.com")
	bob := f.signup(t, "Bob", "bob@x.com")
	rec := f.upload(t, ann.ID, model.FileFields{FileName: "a.txt"})

	assert.ErrorIs(t, f.fileSvc.Delete(ctx, bob.ID, rec.ID), apperror.ErrForbidden)
	require.NoError(t, f.fileSvc.Delete(ctx, ann.ID, rec.ID))
	assert.ErrorIs(t, f.fileSvc.Delete(ctx, ann.ID, rec.ID), apperror.ErrNotFound)

	files, err := f.fileSvc.List(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "Ann", "ann@x.com")

	var want []string
	for i := 0; i < 7; i++ {
		access := model.AccessPrivate
		if i%3 == 0 {
			access = model.AccessPublic
		}
		rec := f.upload(t, u.ID, model.FileFields{FileName: "f.txt", Access: access})
		want = append([]string{rec.ID}, want...)
		f.clock.Advance(2 * 24 * time.Hour)
	}

	ov, err := f.fileSvc.Overview(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, ov.TotalFiles)
	assert.Equal(t, 3, ov.PublicFiles)
	assert.Equal(t, 4, ov.PrivateFiles)
	// Uploaded 2, 4 and 6 days ago.
	assert.Equal(t, 3, ov.RecentCount)
	assert.Equal(t, want[:5], ids(ov.Recent))
}

func TestOverview_Empty(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "Ann", "ann@x.com")

	ov, err := f.fileSvc.Overview(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, ov.TotalFiles)
	assert.Empty(t, ov.Recent)
}
