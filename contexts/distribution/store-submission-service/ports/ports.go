package ports

import (
	"context"
	"time"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AppRef addresses an application across the context boundary.
type AppRef struct {
	OwnerKind string
	OwnerName string
	AppName   string
}

type Application struct {
	AppID string
	Name  string
}

type Catalog interface {
	Authorize(ctx context.Context, actor access.Actor, ref AppRef, action access.Action) (Application, error)
}

// ReleaseInfo is the release projection this context needs when pushing a
// build to a store.
type ReleaseInfo struct {
	ReleaseID   string
	AppID       string
	Version     string
	StoragePath string
}

// ReleaseDirectory is backed by the release service's repository.
type ReleaseDirectory interface {
	FindRelease(ctx context.Context, appID string, releaseNumber int) (ReleaseInfo, bool, error)
}

// ReviewStatus is a store's answer when polled for a pending submission.
type ReviewStatus int

const (
	ReviewPending ReviewStatus = iota + 1
	ReviewPassed
	ReviewRejected
)

// StoreAdapter speaks one channel's API. Submit returns the store-side task
// id used to poll the result. Transient failures return an error wrapped
// with Transient so the caller retries; a review rejection is permanent.
type StoreAdapter interface {
	Submit(ctx context.Context, storeApp entities.StoreApp, release ReleaseInfo) (taskID string, err error)
	SubmitResult(ctx context.Context, storeApp entities.StoreApp, taskID string) (ReviewStatus, string, error)
	CurrentVersion(ctx context.Context, storeApp entities.StoreApp) (string, error)
}

// AdapterRegistry resolves the adapter for a store type.
type AdapterRegistry interface {
	Adapter(storeType entities.StoreType) (StoreAdapter, bool)
}

type CreateStoreAppInput struct {
	Type         entities.StoreType
	Name         string
	Link         string
	AccessKey    string
	AccessSecret string
	PackageName  string
}

type UpdateStoreAppInput struct {
	Name         *string
	Link         *string
	AccessKey    *string
	AccessSecret *string
	PackageName  *string
}

// Repository stores channel accounts and submissions. CreateStoreApp must
// reject a duplicate (app_id, type) pair with ErrStoreAppExists.
type Repository interface {
	CreateStoreApp(ctx context.Context, storeApp entities.StoreApp) error
	GetStoreApp(ctx context.Context, appID string, storeType entities.StoreType) (entities.StoreApp, bool, error)
	GetStoreAppByID(ctx context.Context, storeAppID string) (entities.StoreApp, bool, error)
	UpdateStoreApp(ctx context.Context, storeApp entities.StoreApp) error
	DeleteStoreApp(ctx context.Context, storeAppID string) error
	ListStoreApps(ctx context.Context, appID string) ([]entities.StoreApp, error)

	CreateSubmission(ctx context.Context, submission entities.Submission) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, bool, error)
	UpdateSubmission(ctx context.Context, submission entities.Submission) error
	ListSubmissions(ctx context.Context, storeAppID string) ([]entities.Submission, error)
	CountReleaseSubmissions(ctx context.Context, releaseID string) (int, error)
}
