package entities

import "time"

// Release publishes one ingested package to one environment. ReleaseNumber
// is the app-scoped sequence assigned at creation.
type Release struct {
	ReleaseID     string
	AppID         string
	ReleaseNumber int
	PackageID     string
	Environment   string
	Description   string
	Enabled       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Upgrade advises installed clients below TargetVersion to update, optionally
// refusing to run until they do. Each upgrade belongs to the release that
// carries the target build; UpgradeNumber is the release-scoped sequence.
type Upgrade struct {
	UpgradeID     string
	ReleaseID     string
	UpgradeNumber int
	TargetVersion string
	Description   string
	Enabled       bool
	Mandatory     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
