package postgresadapter

import (
	"time"

	"hangar/contexts/distribution/package-service/domain/entities"
)

type packageModel struct {
	PackageID    string    `gorm:"column:package_id;primaryKey"`
	AppID        string    `gorm:"column:app_id;uniqueIndex:ux_packages_app_build"`
	BuildNumber  int       `gorm:"column:build_number;uniqueIndex:ux_packages_app_build"`
	FileName     string    `gorm:"column:file_name"`
	DisplayName  string    `gorm:"column:display_name"`
	BundleID     string    `gorm:"column:bundle_id"`
	Version      string    `gorm:"column:version"`
	BuildVersion string    `gorm:"column:build_version"`
	MinOSVersion string    `gorm:"column:min_os_version"`
	SizeBytes    int64     `gorm:"column:size_bytes"`
	Fingerprint  string    `gorm:"column:fingerprint"`
	CommitID     string    `gorm:"column:commit_id"`
	Description  string    `gorm:"column:description"`
	StoragePath  string    `gorm:"column:storage_path"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (packageModel) TableName() string { return "packages" }

// packageSequenceModel is the per-application build-number counter. It only
// ever increments; deleting a package leaves it untouched.
type packageSequenceModel struct {
	AppID      string `gorm:"column:app_id;primaryKey"`
	LastNumber int    `gorm:"column:last_number"`
}

func (packageSequenceModel) TableName() string { return "package_sequences" }

func (m packageModel) toEntity() entities.Package {
	return entities.Package{
		PackageID:    m.PackageID,
		AppID:        m.AppID,
		BuildNumber:  m.BuildNumber,
		FileName:     m.FileName,
		DisplayName:  m.DisplayName,
		BundleID:     m.BundleID,
		Version:      m.Version,
		BuildVersion: m.BuildVersion,
		MinOSVersion: m.MinOSVersion,
		SizeBytes:    m.SizeBytes,
		Fingerprint:  m.Fingerprint,
		CommitID:     m.CommitID,
		Description:  m.Description,
		StoragePath:  m.StoragePath,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func packageModelFromEntity(pkg entities.Package) packageModel {
	return packageModel{
		PackageID:    pkg.PackageID,
		AppID:        pkg.AppID,
		BuildNumber:  pkg.BuildNumber,
		FileName:     pkg.FileName,
		DisplayName:  pkg.DisplayName,
		BundleID:     pkg.BundleID,
		Version:      pkg.Version,
		BuildVersion: pkg.BuildVersion,
		MinOSVersion: pkg.MinOSVersion,
		SizeBytes:    pkg.SizeBytes,
		Fingerprint:  pkg.Fingerprint,
		CommitID:     pkg.CommitID,
		Description:  pkg.Description,
		StoragePath:  pkg.StoragePath,
		CreatedAt:    pkg.CreatedAt.UTC(),
		UpdatedAt:    pkg.UpdatedAt.UTC(),
	}
}
