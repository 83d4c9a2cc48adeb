package models

import "time"

// Patch is one of the user's recent patches.
type Patch struct {
	PatchID           string     `json:"patch_id"`
	PatchNumber       int        `json:"patch_number"`
	Githash           string     `json:"githash"`
	Description       string     `json:"description"`
	Author            string     `json:"author"`
	AuthorDisplayName string     `json:"author_display_name"`
	Status            string     `json:"status"`
	CreateTime        *time.Time `json:"create_time"`
	ProjectIdentifier string     `json:"project_identifier"`
	HasVersion        bool       `json:"has_version"`
	VersionStatus     *string    `json:"version_status"`
}

// PatchList is the result of listing recent patches.
type PatchList struct {
	UserID       string  `json:"user_id"`
	ProjectID    string  `json:"project_id,omitempty"`
	Patches      []Patch `json:"patches"`
	TotalPatches int     `json:"total_patches"`
	Page         int     `json:"page"`
	PageSize     int     `json:"page_size"`
	HasMore      bool    `json:"has_more"`
	NextPage     *int    `json:"next_page"`
}

// PatchInfo is the patch header of a failed jobs report.
type PatchInfo struct {
	PatchID           string     `json:"patch_id"`
	PatchNumber       int        `json:"patch_number"`
	Githash           string     `json:"githash"`
	Description       string     `json:"description"`
	Author            string     `json:"author"`
	AuthorDisplayName string     `json:"author_display_name"`
	Status            string     `json:"status"`
	CreateTime        *time.Time `json:"create_time"`
	ProjectIdentifier string     `json:"project_identifier"`
}

// VersionInfo describes the CI run created for a patch.
type VersionInfo struct {
	VersionID  string     `json:"version_id"`
	Revision   string     `json:"revision"`
	Author     string     `json:"author"`
	CreateTime *time.Time `json:"create_time"`
	Status     string     `json:"status"`
}
