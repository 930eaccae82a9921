package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	"hangar/contexts/distribution/package-service/domain/entities"
	domainerrors "hangar/contexts/distribution/package-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed package store. The unique index on
// (app_id, build_number) is what makes the ingestion sequence safe: the
// second writer of the same number gets ErrConflict and retries.
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

func (r *Repository) CreatePackage(ctx context.Context, pkg entities.Package) error {
	row := packageModelFromEntity(pkg)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return err
	}
	return nil
}

func (r *Repository) GetPackage(ctx context.Context, appID string, buildNumber int) (entities.Package, bool, error) {
	var row packageModel
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND build_number = ?", appID, buildNumber).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Package{}, false, nil
		}
		return entities.Package{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetPackageByID(ctx context.Context, packageID string) (entities.Package, bool, error) {
	var row packageModel
	err := r.db.WithContext(ctx).Where("package_id = ?", packageID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Package{}, false, nil
		}
		return entities.Package{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdatePackage(ctx context.Context, pkg entities.Package) error {
	result := r.db.WithContext(ctx).
		Model(&packageModel{}).
		Where("package_id = ?", pkg.PackageID).
		Updates(map[string]any{
			"commit_id":   pkg.CommitID,
			"description": pkg.Description,
			"updated_at":  pkg.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPackageNotFound
	}
	return nil
}

func (r *Repository) DeletePackage(ctx context.Context, packageID string) error {
	result := r.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Delete(&packageModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPackageNotFound
	}
	return nil
}

func (r *Repository) ListPackages(ctx context.Context, appID string) ([]entities.Package, error) {
	var rows []packageModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("build_number DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	pkgs := make([]entities.Package, 0, len(rows))
	for _, row := range rows {
		pkgs = append(pkgs, row.toEntity())
	}
	return pkgs, nil
}

// NextBuildNumber advances the per-application counter row under a row lock
// and returns the new value. The counter only ever grows, so numbers freed by
// deleted builds are never handed out again.
func (r *Repository) NextBuildNumber(ctx context.Context, appID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row packageSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("app_id = ?", appID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = packageSequenceModel{AppID: appID, LastNumber: 1}
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
		if err := tx.Model(&packageSequenceModel{}).
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
