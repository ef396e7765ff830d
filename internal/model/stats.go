package model

// VaultStats is the admin overview across every user.
type VaultStats struct {
	TotalUsers     int    `json:"totalUsers"`
	TotalFiles     int    `json:"totalFiles"`
	PublicFiles    int    `json:"publicFiles"`
	PrivateFiles   int    `json:"privateFiles"`
	MostCommonType string `json:"mostCommonType"` // "N/A" when there are no files
}

// UserSummary is one row of the admin user listing.
type UserSummary struct {
	User
	FileCount int `json:"fileCount"`
}

// FileSummary is one row of the admin file listing.
type FileSummary struct {
	FileRecord
	OwnerName string `json:"ownerName"`
}

// Overview is the signed-in user's dashboard summary.
type Overview struct {
	TotalFiles   int          `json:"totalFiles"`
	PublicFiles  int          `json:"publicFiles"`
	PrivateFiles int          `json:"privateFiles"`
	RecentCount  int          `json:"recentCount"` // uploaded in the last 7 days
	Recent       []FileRecord `json:"recent"`
}

// SearchResult holds matching files plus the values available to filter on.
type SearchResult struct {
	Files     []FileRecord `json:"files"`
	FileTypes []FileType   `json:"fileTypes"`
	Tags      []string     `json:"tags"`
}
