package postgresadapter

import (
	"time"

	"hangar/contexts/app-catalog/organization-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type organizationModel struct {
	OrgID       string    `gorm:"column:org_id;primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name"`
	Description string    `gorm:"column:description"`
	Visibility  int       `gorm:"column:visibility"`
	IconPath    string    `gorm:"column:icon_path"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (organizationModel) TableName() string { return "organizations" }

func (m organizationModel) toEntity() entities.Organization {
	return entities.Organization{
		OrgID:       m.OrgID,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Description: m.Description,
		Visibility:  access.Visibility(m.Visibility),
		IconPath:    m.IconPath,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func organizationModelFromEntity(org entities.Organization) organizationModel {
	return organizationModel{
		OrgID:       org.OrgID,
		Name:        org.Name,
		DisplayName: org.DisplayName,
		Description: org.Description,
		Visibility:  int(org.Visibility),
		IconPath:    org.IconPath,
		CreatedAt:   org.CreatedAt.UTC(),
		UpdatedAt:   org.UpdatedAt.UTC(),
	}
}

type orgMemberModel struct {
	OrgID     string    `gorm:"column:org_id;primaryKey"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Role      int       `gorm:"column:role"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (orgMemberModel) TableName() string { return "organization_members" }

func (m orgMemberModel) toEntity() entities.Member {
	return entities.Member{
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Role:      access.Role(m.Role),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type userModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	Handle string `gorm:"column:handle;uniqueIndex"`
}

func (userModel) TableName() string { return "users" }
