package postgresadapter

import (
	"time"

	"hangar/contexts/distribution/release-service/domain/entities"
)

type releaseModel struct {
	ReleaseID     string    `gorm:"column:release_id;primaryKey"`
	AppID         string    `gorm:"column:app_id;uniqueIndex:ux_releases_app_number"`
	ReleaseNumber int       `gorm:"column:release_number;uniqueIndex:ux_releases_app_number"`
	PackageID     string    `gorm:"column:package_id;index"`
	Environment   string    `gorm:"column:environment"`
	Description   string    `gorm:"column:description"`
	Enabled       bool      `gorm:"column:enabled"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (releaseModel) TableName() string { return "releases" }

func (m releaseModel) toEntity() entities.Release {
	return entities.Release{
		ReleaseID:     m.ReleaseID,
		AppID:         m.AppID,
		ReleaseNumber: m.ReleaseNumber,
		PackageID:     m.PackageID,
		Environment:   m.Environment,
		Description:   m.Description,
		Enabled:       m.Enabled,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func releaseModelFromEntity(release entities.Release) releaseModel {
	return releaseModel{
		ReleaseID:     release.ReleaseID,
		AppID:         release.AppID,
		ReleaseNumber: release.ReleaseNumber,
		PackageID:     release.PackageID,
		Environment:   release.Environment,
		Description:   release.Description,
		Enabled:       release.Enabled,
		CreatedAt:     release.CreatedAt.UTC(),
		UpdatedAt:     release.UpdatedAt.UTC(),
	}
}

type upgradeModel struct {
	UpgradeID     string    `gorm:"column:upgrade_id;primaryKey"`
	ReleaseID     string    `gorm:"column:release_id;uniqueIndex:ux_upgrades_release_number"`
	UpgradeNumber int       `gorm:"column:upgrade_number;uniqueIndex:ux_upgrades_release_number"`
	TargetVersion string    `gorm:"column:target_version"`
	Description   string    `gorm:"column:description"`
	Enabled       bool      `gorm:"column:enabled"`
	Mandatory     bool      `gorm:"column:mandatory"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (upgradeModel) TableName() string { return "upgrades" }

func (m upgradeModel) toEntity() entities.Upgrade {
	return entities.Upgrade{
		UpgradeID:     m.UpgradeID,
		ReleaseID:     m.ReleaseID,
		UpgradeNumber: m.UpgradeNumber,
		TargetVersion: m.TargetVersion,
		Description:   m.Description,
		Enabled:       m.Enabled,
		Mandatory:     m.Mandatory,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func upgradeModelFromEntity(upgrade entities.Upgrade) upgradeModel {
	return upgradeModel{
		UpgradeID:     upgrade.UpgradeID,
		ReleaseID:     upgrade.ReleaseID,
		UpgradeNumber: upgrade.UpgradeNumber,
		TargetVersion: upgrade.TargetVersion,
		Description:   upgrade.Description,
		Enabled:       upgrade.Enabled,
		Mandatory:     upgrade.Mandatory,
		CreatedAt:     upgrade.CreatedAt.UTC(),
		UpdatedAt:     upgrade.UpdatedAt.UTC(),
	}
}

// releaseSequenceModel is the per-application release-number counter. It only
// ever increments; deleting a release leaves it untouched.
type releaseSequenceModel struct {
	AppID      string `gorm:"column:app_id;primaryKey"`
	LastNumber int    `gorm:"column:last_number"`
}

func (releaseSequenceModel) TableName() string { return "release_sequences" }

// upgradeSequenceModel is the per-release upgrade-number counter.
type upgradeSequenceModel struct {
	ReleaseID  string `gorm:"column:release_id;primaryKey"`
	LastNumber int    `gorm:"column:last_number"`
}

func (upgradeSequenceModel) TableName() string { return "upgrade_sequences" }
