package model

import (
	"encoding/json"
	"time"
)

// FileType is the coarse document category shown next to a file.
type FileType string

const (
	FileTypePDF   FileType = "PDF"
	FileTypeDOCX  FileType = "DOCX"
	FileTypePPTX  FileType = "PPTX"
	FileTypeXLSX  FileType = "XLSX"
	FileTypeTXT   FileType = "TXT"
	FileTypeJPG   FileType = "JPG"
	FileTypePNG   FileType = "PNG"
	FileTypeOther FileType = "OTHER"
)

// FileTypes lists every valid FileType in display order.
var FileTypes = []FileType{
	FileTypePDF, FileTypeDOCX, FileTypePPTX, FileTypeXLSX,
	FileTypeTXT, FileTypeJPG, FileTypePNG, FileTypeOther,
}

func (t FileType) Valid() bool {
	for _, known := range FileTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Access controls who may see a file. Only the owner can ever edit it.
type Access string

const (
	AccessPublic  Access = "Public"
	AccessPrivate Access = "Private"
)

func (a Access) Valid() bool {
	return a == AccessPublic || a == AccessPrivate
}

// Tags is an ordered list of free-form labels.
//
// The persisted collection may hold anything under "tags" (null, a string,
// a number) if it was written by an older or buggy client. Tags decodes every
// such value as an empty list instead of failing the whole collection, and
// always encodes as a JSON array, never null.
type Tags []string

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		*t = Tags{}
		return nil
	}
	*t = Tags(list)
	return nil
}

// FileRecord describes an uploaded file. Only metadata is kept; FileURL is a
// transient reference supplied by the uploader and may not outlive a restart.
type FileRecord struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   FileType  `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	Access     Access    `json:"access"`
	UploadedBy string    `json:"uploadedBy"`
	UploadDate time.Time `json:"uploadDate"`
	Tags       Tags      `json:"tags"`
	FileURL    string    `json:"fileUrl,omitempty"`
}

// FileFields is the caller-supplied part of a new FileRecord.
// ID, UploadedBy and UploadDate are always assigned by the store.
type FileFields struct {
	FileName string   `json:"fileName"`
	FileType FileType `json:"fileType"`
	FileSize int64    `json:"fileSize"`
	Access   Access   `json:"access"`
	Tags     Tags     `json:"tags"`
	FileURL  string   `json:"fileUrl,omitempty"`
}

// FilePatch is a partial update. Nil fields are left untouched.
type FilePatch struct {
	FileName *string   `json:"fileName,omitempty"`
	FileType *FileType `json:"fileType,omitempty"`
	FileSize *int64    `json:"fileSize,omitempty"`
	Access   *Access   `json:"access,omitempty"`
	Tags     *Tags     `json:"tags,omitempty"`
	FileURL  *string   `json:"fileUrl,omitempty"`
}

// Apply merges the patch into f. Identity fields (ID, UploadedBy, UploadDate)
// cannot be patched.
func (p FilePatch) Apply(f *FileRecord) {
	if p.FileName != nil {
		f.FileName = *p.FileName
	}
	if p.FileType != nil {
		f.FileType = *p.FileType
	}
	if p.FileSize != nil {
		f.FileSize = *p.FileSize
	}
	if p.Access != nil {
		f.Access = *p.Access
	}
	if p.Tags != nil {
		f.Tags = *p.Tags
	}
	if p.FileURL != nil {
		f.FileURL = *p.FileURL
	}
	if f.Tags == nil {
		f.Tags = Tags{}
	}
}
