package entities

import "time"

// Package is one ingested build artifact. BuildNumber is the app-scoped
// internal sequence assigned at ingestion, independent of any version string
// embedded in the artifact.
type Package struct {
	PackageID    string
	AppID        string
	BuildNumber  int
	FileName     string
	DisplayName  string
	BundleID     string
	Version      string
	BuildVersion string
	MinOSVersion string
	SizeBytes    int64
	Fingerprint  string
	CommitID     string
	Description  string
	StoragePath  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
