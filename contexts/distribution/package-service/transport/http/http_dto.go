package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UpdatePackageRequest struct {
	Description *string `json:"description"`
	CommitID    *string `json:"commit_id"`
}

type PackageDTO struct {
	BuildNumber  int    `json:"build_number"`
	FileName     string `json:"file_name"`
	DisplayName  string `json:"display_name"`
	BundleID     string `json:"bundle_id"`
	Version      string `json:"version"`
	BuildVersion string `json:"build_version"`
	MinOSVersion string `json:"min_os_version"`
	SizeBytes    int64  `json:"size_bytes"`
	Fingerprint  string `json:"fingerprint"`
	CommitID     string `json:"commit_id,omitempty"`
	Description  string `json:"description,omitempty"`
	DownloadPath string `json:"download_path"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type PackageResponse struct {
	Status string     `json:"status"`
	Data   PackageDTO `json:"data"`
}

type PackageListResponse struct {
	Status string       `json:"status"`
	Data   []PackageDTO `json:"data"`
}
