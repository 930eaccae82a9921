package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hangar/contexts/app-catalog/application-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/application-service/domain/errors"
	"hangar/contexts/app-catalog/application-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the gorm-backed adapter. Application creation writes the
// application row, the creator's Manager membership and both deployment keys
// in one transaction.
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

func (r *Repository) CreateApplication(ctx context.Context, app entities.Application, creator entities.Member, keys []entities.DeploymentKey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := applicationModelFromEntity(app)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		member := appMemberModel{
			AppID:     creator.AppID,
			UserID:    creator.UserID,
			Role:      int(creator.Role),
			CreatedAt: creator.CreatedAt.UTC(),
			UpdatedAt: creator.UpdatedAt.UTC(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		for _, key := range keys {
			row := deploymentKeyModel{
				AppID:     key.AppID,
				Name:      key.Name,
				Key:       key.Key,
				CreatedAt: key.CreatedAt.UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetApplication(ctx context.Context, owner ports.OwnerID, name string) (entities.Application, bool, error) {
	query := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name))
	if owner.OrgID != "" {
		query = query.Where("org_id = ?", owner.OrgID)
	} else {
		query = query.Where("owner_user_id = ?", owner.UserID)
	}
	var row applicationModel
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Application{}, false, nil
		}
		return entities.Application{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetApplicationByID(ctx context.Context, appID string) (entities.Application, bool, error) {
	var row applicationModel
	err := r.db.WithContext(ctx).Where("app_id = ?", appID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Application{}, false, nil
		}
		return entities.Application{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateApplication(ctx context.Context, app entities.Application) error {
	row := applicationModelFromEntity(app)
	result := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("app_id = ?", app.AppID).
		Updates(map[string]any{
			"name":         row.Name,
			"display_name": row.DisplayName,
			"description":  row.Description,
			"visibility":   row.Visibility,
			"release_type": row.ReleaseType,
			"icon_path":    row.IconPath,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrApplicationNotFound
	}
	return nil
}

func (r *Repository) DeleteApplication(ctx context.Context, appID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("app_id = ?", appID).Delete(&appMemberModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&deploymentKeyModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("app_id = ?", appID).Delete(&applicationModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrApplicationNotFound
		}
		return nil
	})
}

func (r *Repository) ListApplications(ctx context.Context, owner ports.OwnerID) ([]entities.Application, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if owner.OrgID != "" {
		query = query.Where("org_id = ?", owner.OrgID)
	} else {
		query = query.Where("owner_user_id = ?", owner.UserID)
	}
	var rows []applicationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	apps := make([]entities.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toEntity())
	}
	return apps, nil
}

func (r *Repository) CountOrganizationApplications(ctx context.Context, orgID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("org_id = ?", orgID).
		Count(&count).
		Error
	return int(count), err
}

func (r *Repository) GetMember(ctx context.Context, appID, userID string) (entities.Member, bool, error) {
	var row appMemberModel
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND user_id = ?", appID, userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, false, nil
		}
		return entities.Member{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListMembers(ctx context.Context, appID string) ([]entities.Member, error) {
	var rows []appMemberModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	members := make([]entities.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toEntity())
	}
	return members, nil
}

func (r *Repository) CountMembersWithRole(ctx context.Context, appID string, role access.Role) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&appMemberModel{}).
		Where("app_id = ? AND role = ?", appID, int(role)).
		Count(&count).
		Error
	return int(count), err
}

func (r *Repository) AddMember(ctx context.Context, member entities.Member) error {
	row := appMemberModel{
		AppID:     member.AppID,
		UserID:    member.UserID,
		Role:      int(member.Role),
		CreatedAt: member.CreatedAt.UTC(),
		UpdatedAt: member.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrMemberExists
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateMemberRole(ctx context.Context, appID, userID string, role access.Role, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&appMemberModel{}).
		Where("app_id = ? AND user_id = ?", appID, userID).
		Updates(map[string]any{"role": int(role), "updated_at": now.UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) RemoveMember(ctx context.Context, appID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("app_id = ? AND user_id = ?", appID, userID).
		Delete(&appMemberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) ListDeploymentKeys(ctx context.Context, appID string) ([]entities.DeploymentKey, error) {
	var rows []deploymentKeyModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("name ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	keys := make([]entities.DeploymentKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.toEntity())
	}
	return keys, nil
}

func (r *Repository) FindDeploymentKey(ctx context.Context, appID, environment string) (entities.DeploymentKey, bool, error) {
	var row deploymentKeyModel
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND name = ?", appID, environment).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DeploymentKey{}, false, nil
		}
		return entities.DeploymentKey{}, false, err
	}
	return row.toEntity(), true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
