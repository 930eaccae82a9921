package postgresadapter

import (
	"time"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
)

type storeAppModel struct {
	StoreAppID     string    `gorm:"column:store_app_id;primaryKey"`
	AppID          string    `gorm:"column:app_id;uniqueIndex:ux_store_apps_app_type"`
	Type           int       `gorm:"column:store_type;uniqueIndex:ux_store_apps_app_type"`
	Name           string    `gorm:"column:name"`
	Link           string    `gorm:"column:link"`
	AccessKey      string    `gorm:"column:access_key"`
	AccessSecret   string    `gorm:"column:access_secret"`
	PackageName    string    `gorm:"column:package_name"`
	CurrentVersion string    `gorm:"column:current_version"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (storeAppModel) TableName() string { return "store_apps" }

func (m storeAppModel) toEntity() entities.StoreApp {
	return entities.StoreApp{
		StoreAppID:     m.StoreAppID,
		AppID:          m.AppID,
		Type:           entities.StoreType(m.Type),
		Name:           m.Name,
		Link:           m.Link,
		AccessKey:      m.AccessKey,
		AccessSecret:   m.AccessSecret,
		PackageName:    m.PackageName,
		CurrentVersion: m.CurrentVersion,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func storeAppModelFromEntity(storeApp entities.StoreApp) storeAppModel {
	return storeAppModel{
		StoreAppID:     storeApp.StoreAppID,
		AppID:          storeApp.AppID,
		Type:           int(storeApp.Type),
		Name:           storeApp.Name,
		Link:           storeApp.Link,
		AccessKey:      storeApp.AccessKey,
		AccessSecret:   storeApp.AccessSecret,
		PackageName:    storeApp.PackageName,
		CurrentVersion: storeApp.CurrentVersion,
		CreatedAt:      storeApp.CreatedAt.UTC(),
		UpdatedAt:      storeApp.UpdatedAt.UTC(),
	}
}

type submissionModel struct {
	SubmissionID string    `gorm:"column:submission_id;primaryKey"`
	StoreAppID   string    `gorm:"column:store_app_id;index"`
	ReleaseID    string    `gorm:"column:release_id;index"`
	State        int       `gorm:"column:state"`
	TaskID       string    `gorm:"column:task_id"`
	Message      string    `gorm:"column:message"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string { return "store_submissions" }

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID: m.SubmissionID,
		StoreAppID:   m.StoreAppID,
		ReleaseID:    m.ReleaseID,
		State:        entities.SubmissionState(m.State),
		TaskID:       m.TaskID,
		Message:      m.Message,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func submissionModelFromEntity(submission entities.Submission) submissionModel {
	return submissionModel{
		SubmissionID: submission.SubmissionID,
		StoreAppID:   submission.StoreAppID,
		ReleaseID:    submission.ReleaseID,
		State:        int(submission.State),
		TaskID:       submission.TaskID,
		Message:      submission.Message,
		CreatedAt:    submission.CreatedAt.UTC(),
		UpdatedAt:    submission.UpdatedAt.UTC(),
	}
}
