package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	"hangar/contexts/distribution/release-service/domain/entities"
	domainerrors "hangar/contexts/distribution/release-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed release and upgrade store. Sequence values
// come from counter rows advanced under row locks; the unique indexes on
// (app_id, release_number) and (release_id, upgrade_number) backstop racing
// writers.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateRelease(ctx context.Context, release entities.Release) error {
	row := releaseModelFromEntity(release)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return err
	}
	return nil
}

func (r *Repository) GetRelease(ctx context.Context, appID string, releaseNumber int) (entities.Release, bool, error) {
	var row releaseModel
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND release_number = ?", appID, releaseNumber).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Release{}, false, nil
		}
		return entities.Release{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateRelease(ctx context.Context, release entities.Release) error {
	result := r.db.WithContext(ctx).
		Model(&releaseModel{}).
		Where("release_id = ?", release.ReleaseID).
		Updates(map[string]any{
			"description": release.Description,
			"enabled":     release.Enabled,
			"updated_at":  release.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrReleaseNotFound
	}
	return nil
}

// DeleteRelease removes the release and its upgrade records in one
// transaction. The per-release upgrade counter stays behind so its numbers
// are never reissued.
func (r *Repository) DeleteRelease(ctx context.Context, releaseID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("release_id = ?", releaseID).Delete(&upgradeModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("release_id = ?", releaseID).Delete(&releaseModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrReleaseNotFound
		}
		return nil
	})
}

func (r *Repository) ListReleases(ctx context.Context, appID string) ([]entities.Release, error) {
	var rows []releaseModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("release_number DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	releases := make([]entities.Release, 0, len(rows))
	for _, row := range rows {
		releases = append(releases, row.toEntity())
	}
	return releases, nil
}

// NextReleaseNumber advances the per-application counter row under a row
// lock and returns the new value. The counter only ever grows, so numbers
// freed by deleted releases are never handed out again.
func (r *Repository) NextReleaseNumber(ctx context.Context, appID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row releaseSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("app_id = ?", appID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = releaseSequenceModel{AppID: appID, LastNumber: 1}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrConflict
				}
				return err
			}
			next = row.LastNumber
			return nil
		}
		if err != nil {
			return err
		}
		row.LastNumber++
		if err := tx.Model(&releaseSequenceModel{}).
			Where("app_id = ?", appID).
			Update("last_number", row.LastNumber).
			Error; err != nil {
			return err
		}
		next = row.LastNumber
		return nil
	})
	return next, err
}

func (r *Repository) CountPackageReleases(ctx context.Context, packageID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&releaseModel{}).
		Where("package_id = ?", packageID).
		Count(&count).
		Error
	return int(count), err
}

func (r *Repository) CreateUpgrade(ctx context.Context, upgrade entities.Upgrade) error {
	row := upgradeModelFromEntity(upgrade)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return err
	}
	return nil
}

func (r *Repository) GetUpgrade(ctx context.Context, releaseID string, upgradeNumber int) (entities.Upgrade, bool, error) {
	var row upgradeModel
	err := r.db.WithContext(ctx).
		Where("release_id = ? AND upgrade_number = ?", releaseID, upgradeNumber).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Upgrade{}, false, nil
		}
		return entities.Upgrade{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateUpgrade(ctx context.Context, upgrade entities.Upgrade) error {
	result := r.db.WithContext(ctx).
		Model(&upgradeModel{}).
		Where("upgrade_id = ?", upgrade.UpgradeID).
		Updates(map[string]any{
			"description": upgrade.Description,
			"enabled":     upgrade.Enabled,
			"mandatory":   upgrade.Mandatory,
			"updated_at":  upgrade.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUpgradeNotFound
	}
	return nil
}

func (r *Repository) DeleteUpgrade(ctx context.Context, upgradeID string) error {
	result := r.db.WithContext(ctx).
		Where("upgrade_id = ?", upgradeID).
		Delete(&upgradeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUpgradeNotFound
	}
	return nil
}

func (r *Repository) ListUpgrades(ctx context.Context, releaseID string) ([]entities.Upgrade, error) {
	var rows []upgradeModel
	if err := r.db.WithContext(ctx).
		Where("release_id = ?", releaseID).
		Order("upgrade_number DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	upgrades := make([]entities.Upgrade, 0, len(rows))
	for _, row := range rows {
		upgrades = append(upgrades, row.toEntity())
	}
	return upgrades, nil
}

// NextUpgradeNumber advances the per-release counter row under a row lock
// and returns the new value.
func (r *Repository) NextUpgradeNumber(ctx context.Context, releaseID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row upgradeSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("release_id = ?", releaseID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = upgradeSequenceModel{ReleaseID: releaseID, LastNumber: 1}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrConflict
				}
				return err
			}
			next = row.LastNumber
			return nil
		}
		if err != nil {
			return err
		}
		row.LastNumber++
		if err := tx.Model(&upgradeSequenceModel{}).
			Where("release_id = ?", releaseID).
			Update("last_number", row.LastNumber).
			Error; err != nil {
			return err
		}
		next = row.LastNumber
		return nil
	})
	return next, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
