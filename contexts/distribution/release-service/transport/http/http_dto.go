package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateReleaseRequest struct {
	Environment string `json:"environment"`
	BuildNumber int    `json:"build_number"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled"`
}

type UpdateReleaseRequest struct {
	Description *string `json:"description"`
	Enabled     *bool   `json:"enabled"`
}

type CreateUpgradeRequest struct {
	TargetVersion string `json:"target_version"`
	Description   string `json:"description"`
	Enabled       *bool  `json:"enabled"`
	Mandatory     bool   `json:"mandatory"`
}

type UpdateUpgradeRequest struct {
	Description *string `json:"description"`
	Enabled     *bool   `json:"enabled"`
	Mandatory   *bool   `json:"mandatory"`
}

type ReleaseDTO struct {
	ReleaseNumber int    `json:"release_number"`
	Environment   string `json:"environment"`
	Description   string `json:"description,omitempty"`
	Enabled       bool   `json:"enabled"`
	BuildNumber   int    `json:"build_number"`
	FileName      string `json:"file_name"`
	DisplayName   string `json:"display_name"`
	BundleID      string `json:"bundle_id"`
	Version       string `json:"version"`
	BuildVersion  string `json:"build_version"`
	MinOSVersion  string `json:"min_os_version"`
	SizeBytes     int64  `json:"size_bytes"`
	Fingerprint   string `json:"fingerprint"`
	DownloadPath  string `json:"download_path"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ReleaseResponse struct {
	Status string     `json:"status"`
	Data   ReleaseDTO `json:"data"`
}

type ReleaseListResponse struct {
	Status string       `json:"status"`
	Data   []ReleaseDTO `json:"data"`
}

type UpgradeDTO struct {
	ReleaseNumber int    `json:"release_number"`
	UpgradeNumber int    `json:"upgrade_number"`
	TargetVersion string `json:"target_version"`
	Description   string `json:"description,omitempty"`
	Enabled       bool   `json:"enabled"`
	Mandatory     bool   `json:"mandatory"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type UpgradeResponse struct {
	Status string     `json:"status"`
	Data   UpgradeDTO `json:"data"`
}

type UpgradeListResponse struct {
	Status string       `json:"status"`
	Data   []UpgradeDTO `json:"data"`
}

type UpgradeAdviceResponse struct {
	Status string `json:"status"`
	Data   struct {
		UpgradeAvailable bool   `json:"upgrade_available"`
		Mandatory        bool   `json:"mandatory"`
		TargetVersion    string `json:"target_version,omitempty"`
		Description      string `json:"description,omitempty"`
	} `json:"data"`
}
