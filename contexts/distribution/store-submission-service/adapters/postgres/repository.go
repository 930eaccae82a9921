package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the gorm-backed store-account and submission store.
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

func (r *Repository) CreateStoreApp(ctx context.Context, storeApp entities.StoreApp) error {
	row := storeAppModelFromEntity(storeApp)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrStoreAppExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetStoreApp(ctx context.Context, appID string, storeType entities.StoreType) (entities.StoreApp, bool, error) {
	var row storeAppModel
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND store_type = ?", appID, int(storeType)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.StoreApp{}, false, nil
		}
		return entities.StoreApp{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetStoreAppByID(ctx context.Context, storeAppID string) (entities.StoreApp, bool, error) {
	var row storeAppModel
	err := r.db.WithContext(ctx).Where("store_app_id = ?", storeAppID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.StoreApp{}, false, nil
		}
		return entities.StoreApp{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateStoreApp(ctx context.Context, storeApp entities.StoreApp) error {
	row := storeAppModelFromEntity(storeApp)
	result := r.db.WithContext(ctx).
		Model(&storeAppModel{}).
		Where("store_app_id = ?", storeApp.StoreAppID).
		Updates(map[string]any{
			"name":            row.Name,
			"link":            row.Link,
			"access_key":      row.AccessKey,
			"access_secret":   row.AccessSecret,
			"package_name":    row.PackageName,
			"current_version": row.CurrentVersion,
			"updated_at":      row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrStoreAppNotFound
	}
	return nil
}

func (r *Repository) DeleteStoreApp(ctx context.Context, storeAppID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_app_id = ?", storeAppID).Delete(&submissionModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("store_app_id = ?", storeAppID).Delete(&storeAppModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrStoreAppNotFound
		}
		return nil
	})
}

func (r *Repository) ListStoreApps(ctx context.Context, appID string) ([]entities.StoreApp, error) {
	var rows []storeAppModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("store_type ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	storeApps := make([]entities.StoreApp, 0, len(rows))
	for _, row := range rows {
		storeApps = append(storeApps, row.toEntity())
	}
	return storeApps, nil
}

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission) error {
	row := submissionModelFromEntity(submission)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, bool, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, false, nil
		}
		return entities.Submission{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateSubmission(ctx context.Context, submission entities.Submission) error {
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(map[string]any{
			"state":      int(submission.State),
			"task_id":    submission.TaskID,
			"message":    submission.Message,
			"updated_at": submission.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) ListSubmissions(ctx context.Context, storeAppID string) ([]entities.Submission, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).
		Where("store_app_id = ?", storeAppID).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	submissions := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		submissions = append(submissions, row.toEntity())
	}
	return submissions, nil
}

func (r *Repository) CountReleaseSubmissions(ctx context.Context, releaseID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("release_id = ?", releaseID).
		Count(&count).
		Error
	return int(count), err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
