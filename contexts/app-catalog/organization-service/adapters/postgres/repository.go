package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hangar/contexts/app-catalog/organization-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/organization-service/domain/errors"
	"hangar/contexts/app-catalog/organization-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the gorm-backed adapter. Creation of an organization and its
// first Admin membership runs in one transaction.
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

func (r *Repository) CreateOrganization(ctx context.Context, org entities.Organization, creator entities.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := organizationModelFromEntity(org)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		member := orgMemberModel{
			OrgID:     creator.OrgID,
			UserID:    creator.UserID,
			Role:      int(creator.Role),
			CreatedAt: creator.CreatedAt.UTC(),
			UpdatedAt: creator.UpdatedAt.UTC(),
		}
		return tx.Create(&member).Error
	})
}

func (r *Repository) GetOrganization(ctx context.Context, name string) (entities.Organization, bool, error) {
	var row organizationModel
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, false, nil
		}
		return entities.Organization{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetOrganizationByID(ctx context.Context, orgID string) (entities.Organization, bool, error) {
	var row organizationModel
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, false, nil
		}
		return entities.Organization{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateOrganization(ctx context.Context, org entities.Organization) error {
	row := organizationModelFromEntity(org)
	result := r.db.WithContext(ctx).
		Model(&organizationModel{}).
		Where("org_id = ?", org.OrgID).
		Updates(map[string]any{
			"name":         row.Name,
			"display_name": row.DisplayName,
			"description":  row.Description,
			"visibility":   row.Visibility,
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
		return domainerrors.ErrOrganizationNotFound
	}
	return nil
}

func (r *Repository) DeleteOrganization(ctx context.Context, orgID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", orgID).Delete(&orgMemberModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("org_id = ?", orgID).Delete(&organizationModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrOrganizationNotFound
		}
		return nil
	})
}

func (r *Repository) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	var rows []organizationModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	orgs := make([]entities.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, row.toEntity())
	}
	return orgs, nil
}

func (r *Repository) GetMember(ctx context.Context, orgID, userID string) (entities.Member, bool, error) {
	var row orgMemberModel
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
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

func (r *Repository) ListMembers(ctx context.Context, orgID string) ([]entities.Member, error) {
	var rows []orgMemberModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
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

func (r *Repository) CountMembersWithRole(ctx context.Context, orgID string, role access.Role) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&orgMemberModel{}).
		Where("org_id = ? AND role = ?", orgID, int(role)).
		Count(&count).
		Error
	return int(count), err
}

func (r *Repository) AddMember(ctx context.Context, member entities.Member) error {
	row := orgMemberModel{
		OrgID:     member.OrgID,
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

func (r *Repository) UpdateMemberRole(ctx context.Context, orgID, userID string, role access.Role, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&orgMemberModel{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Updates(map[string]any{"role": int(role), "updated_at": now.UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) RemoveMember(ctx context.Context, orgID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Delete(&orgMemberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) ListMembershipsForUser(ctx context.Context, userID string) ([]entities.Member, error) {
	var rows []orgMemberModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
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

func (r *Repository) FindUserByHandle(ctx context.Context, handle string) (ports.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("handle = ?", strings.TrimSpace(handle)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, false, nil
		}
		return ports.User{}, false, err
	}
	return ports.User{UserID: row.UserID, Handle: row.Handle}, true, nil
}

func (r *Repository) FindUserByID(ctx context.Context, userID string) (ports.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, false, nil
		}
		return ports.User{}, false, err
	}
	return ports.User{UserID: row.UserID, Handle: row.Handle}, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
