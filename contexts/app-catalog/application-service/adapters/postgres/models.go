package postgresadapter

import (
	"database/sql"
	"time"

	"hangar/contexts/app-catalog/application-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type applicationModel struct {
	AppID       string         `gorm:"column:app_id;primaryKey"`
	OwnerUserID sql.NullString `gorm:"column:owner_user_id;uniqueIndex:ux_apps_owner_name"`
	OrgID       sql.NullString `gorm:"column:org_id;uniqueIndex:ux_apps_owner_name"`
	Name        string         `gorm:"column:name;uniqueIndex:ux_apps_owner_name"`
	DisplayName string         `gorm:"column:display_name"`
	Description string         `gorm:"column:description"`
	Visibility  int            `gorm:"column:visibility"`
	OS          int            `gorm:"column:os"`
	Platform    int            `gorm:"column:platform"`
	ReleaseType int            `gorm:"column:release_type"`
	IconPath    string         `gorm:"column:icon_path"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (applicationModel) TableName() string { return "applications" }

func (m applicationModel) toEntity() entities.Application {
	return entities.Application{
		AppID:       m.AppID,
		OwnerUserID: m.OwnerUserID.String,
		OrgID:       m.OrgID.String,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Description: m.Description,
		Visibility:  access.Visibility(m.Visibility),
		OS:          entities.OperatingSystem(m.OS),
		Platform:    entities.Platform(m.Platform),
		ReleaseType: entities.ReleaseType(m.ReleaseType),
		IconPath:    m.IconPath,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func applicationModelFromEntity(app entities.Application) applicationModel {
	return applicationModel{
		AppID:       app.AppID,
		OwnerUserID: nullString(app.OwnerUserID),
		OrgID:       nullString(app.OrgID),
		Name:        app.Name,
		DisplayName: app.DisplayName,
		Description: app.Description,
		Visibility:  int(app.Visibility),
		OS:          int(app.OS),
		Platform:    int(app.Platform),
		ReleaseType: int(app.ReleaseType),
		IconPath:    app.IconPath,
		CreatedAt:   app.CreatedAt.UTC(),
		UpdatedAt:   app.UpdatedAt.UTC(),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type appMemberModel struct {
	AppID     string    `gorm:"column:app_id;primaryKey"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Role      int       `gorm:"column:role"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (appMemberModel) TableName() string { return "application_members" }

func (m appMemberModel) toEntity() entities.Member {
	return entities.Member{
		AppID:     m.AppID,
		UserID:    m.UserID,
		Role:      access.Role(m.Role),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type deploymentKeyModel struct {
	AppID     string    `gorm:"column:app_id;primaryKey"`
	Name      string    `gorm:"column:name;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (deploymentKeyModel) TableName() string { return "deployment_keys" }

func (m deploymentKeyModel) toEntity() entities.DeploymentKey {
	return entities.DeploymentKey{
		AppID:     m.AppID,
		Name:      m.Name,
		Key:       m.Key,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
