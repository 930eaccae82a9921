package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/domain/services"
	"hangar/contexts/distribution/store-submission-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"

	"github.com/Masterminds/semver/v3"
	"github.com/cenkalti/backoff/v4"
)

const storeCallRetries = 3

// Service manages per-store accounts and drives releases through store
// review pipelines. Store calls retry on transient backend failures; a
// review rejection is final and moves the submission to its terminal state.
type Service struct {
	Repo     ports.Repository
	Catalog  ports.Catalog
	Releases ports.ReleaseDirectory
	Adapters ports.AdapterRegistry
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger

	// Backoff builds the retry policy for one store call. Nil means the
	// default exponential policy.
	Backoff func() backoff.BackOff
}

// CreateStoreApp configures a channel account for an application. At most
// one account per store type.
func (s Service) CreateStoreApp(ctx context.Context, actor access.Actor, ref ports.AppRef, input ports.CreateStoreAppInput) (entities.StoreApp, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionModify)
	if err != nil {
		return entities.StoreApp{}, err
	}
	if !input.Type.Valid() {
		return entities.StoreApp{}, domainerrors.ErrInvalidStoreType
	}
	if input.Type == entities.StoreVivo && (input.AccessKey == "" || input.AccessSecret == "" || input.PackageName == "") {
		return entities.StoreApp{}, domainerrors.ErrInvalidRequest
	}
	if input.Type == entities.StoreRawLink && strings.TrimSpace(input.Link) == "" {
		return entities.StoreApp{}, domainerrors.ErrInvalidRequest
	}

	storeAppID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.StoreApp{}, err
	}
	now := s.Clock.Now().UTC()
	storeApp := entities.StoreApp{
		StoreAppID:   storeAppID,
		AppID:        app.AppID,
		Type:         input.Type,
		Name:         strings.TrimSpace(input.Name),
		Link:         strings.TrimSpace(input.Link),
		AccessKey:    input.AccessKey,
		AccessSecret: input.AccessSecret,
		PackageName:  strings.TrimSpace(input.PackageName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateStoreApp(ctx, storeApp); err != nil {
		return entities.StoreApp{}, err
	}
	s.log().Info("store app configured", "app", app.Name, "store", storeApp.Type.String())
	return storeApp, nil
}

// UpdateStoreApp edits account fields. The store type is fixed.
func (s Service) UpdateStoreApp(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType, input ports.UpdateStoreAppInput) (entities.StoreApp, error) {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionModify)
	if err != nil {
		return entities.StoreApp{}, err
	}
	if input.Name != nil {
		storeApp.Name = strings.TrimSpace(*input.Name)
	}
	if input.Link != nil {
		storeApp.Link = strings.TrimSpace(*input.Link)
	}
	if input.AccessKey != nil {
		storeApp.AccessKey = *input.AccessKey
	}
	if input.AccessSecret != nil {
		storeApp.AccessSecret = *input.AccessSecret
	}
	if input.PackageName != nil {
		storeApp.PackageName = strings.TrimSpace(*input.PackageName)
	}
	storeApp.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateStoreApp(ctx, storeApp); err != nil {
		return entities.StoreApp{}, err
	}
	return storeApp, nil
}

// ListStoreApps returns the channels configured for an application.
func (s Service) ListStoreApps(ctx context.Context, actor access.Actor, ref ports.AppRef) ([]entities.StoreApp, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return nil, err
	}
	storeApps, err := s.Repo.ListStoreApps(ctx, app.AppID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(storeApps, func(i, j int) bool { return storeApps[i].Type < storeApps[j].Type })
	return storeApps, nil
}

// DeleteStoreApp removes a channel account.
func (s Service) DeleteStoreApp(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType) error {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionModify)
	if err != nil {
		return err
	}
	return s.Repo.DeleteStoreApp(ctx, storeApp.StoreAppID)
}

// SubmitRelease pushes a release into a store's review pipeline. The
// submission is recorded first, then the store call moves it from Initial to
// SubmitReview with the store-side task id.
func (s Service) SubmitRelease(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType, releaseNumber int) (entities.Submission, error) {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionCreateRelease)
	if err != nil {
		return entities.Submission{}, err
	}
	release, found, err := s.Releases.FindRelease(ctx, storeApp.AppID, releaseNumber)
	if err != nil {
		return entities.Submission{}, err
	}
	if !found {
		return entities.Submission{}, domainerrors.ErrReleaseNotFound
	}
	adapter, ok := s.Adapters.Adapter(storeType)
	if !ok {
		return entities.Submission{}, domainerrors.ErrInvalidStoreType
	}

	submissionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	now := s.Clock.Now().UTC()
	submission := entities.Submission{
		SubmissionID: submissionID,
		StoreAppID:   storeApp.StoreAppID,
		ReleaseID:    release.ReleaseID,
		State:        entities.StateInitial,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}

	taskID, err := backoff.RetryWithData(func() (string, error) {
		taskID, err := adapter.Submit(ctx, storeApp, release)
		if err != nil && !domainerrors.IsTransient(err) {
			return "", backoff.Permanent(err)
		}
		return taskID, err
	}, s.policy(ctx))
	if err != nil {
		submission.Message = err.Error()
		submission.UpdatedAt = s.Clock.Now().UTC()
		if updateErr := s.Repo.UpdateSubmission(ctx, submission); updateErr != nil {
			s.log().Error("submission update failed", "submission", submission.SubmissionID, "error", updateErr)
		}
		return submission, err
	}

	submission.State = entities.StateSubmitReview
	submission.TaskID = taskID
	submission.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}
	s.log().Info("release submitted for review",
		"store", storeType.String(),
		"release", releaseNumber,
		"task", taskID,
	)
	return submission, nil
}

// PollSubmission asks the store for the review verdict and advances the
// submission. A pending verdict leaves it untouched.
func (s Service) PollSubmission(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType, submissionID string) (entities.Submission, error) {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionCreateRelease)
	if err != nil {
		return entities.Submission{}, err
	}
	submission, found, err := s.Repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if !found || submission.StoreAppID != storeApp.StoreAppID {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	if submission.State != entities.StateSubmitReview {
		return entities.Submission{}, domainerrors.ErrInvalidTransition
	}
	adapter, ok := s.Adapters.Adapter(storeType)
	if !ok {
		return entities.Submission{}, domainerrors.ErrInvalidStoreType
	}

	type verdict struct {
		status  ports.ReviewStatus
		message string
	}
	result, err := backoff.RetryWithData(func() (verdict, error) {
		status, message, err := adapter.SubmitResult(ctx, storeApp, submission.TaskID)
		if err != nil && !domainerrors.IsTransient(err) {
			return verdict{}, backoff.Permanent(err)
		}
		return verdict{status: status, message: message}, err
	}, s.policy(ctx))
	if err != nil {
		return entities.Submission{}, err
	}

	switch result.status {
	case ports.ReviewPassed:
		return s.transition(ctx, submission, entities.StateReviewPassed, result.message)
	case ports.ReviewRejected:
		return s.transition(ctx, submission, entities.StateReviewRejected, result.message)
	default:
		return submission, nil
	}
}

// MarkReleased records that a review-passed submission went live on the
// store.
func (s Service) MarkReleased(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType, submissionID string) (entities.Submission, error) {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionCreateRelease)
	if err != nil {
		return entities.Submission{}, err
	}
	submission, found, err := s.Repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if !found || submission.StoreAppID != storeApp.StoreAppID {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return s.transition(ctx, submission, entities.StateReleased, "")
}

// ListSubmissions returns a channel's submissions, newest first.
func (s Service) ListSubmissions(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType) ([]entities.Submission, error) {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionView)
	if err != nil {
		return nil, err
	}
	submissions, err := s.Repo.ListSubmissions(ctx, storeApp.StoreAppID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(submissions, func(i, j int) bool {
		return submissions[i].CreatedAt.After(submissions[j].CreatedAt)
	})
	return submissions, nil
}

// RefreshCurrentVersion pulls the version the store currently serves and
// records it when it moved forward.
func (s Service) RefreshCurrentVersion(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType) (entities.StoreApp, error) {
	storeApp, err := s.requireStoreApp(ctx, actor, ref, storeType, access.ActionModify)
	if err != nil {
		return entities.StoreApp{}, err
	}
	adapter, ok := s.Adapters.Adapter(storeType)
	if !ok {
		return entities.StoreApp{}, domainerrors.ErrInvalidStoreType
	}

	reported, err := backoff.RetryWithData(func() (string, error) {
		version, err := adapter.CurrentVersion(ctx, storeApp)
		if err != nil && !domainerrors.IsTransient(err) {
			return "", backoff.Permanent(err)
		}
		return version, err
	}, s.policy(ctx))
	if err != nil {
		return entities.StoreApp{}, err
	}
	if reported == "" || reported == storeApp.CurrentVersion {
		return storeApp, nil
	}
	if storeApp.CurrentVersion != "" {
		// Only move forward; a store momentarily reporting an older listing
		// must not roll the record back.
		current, currentErr := semver.NewVersion(storeApp.CurrentVersion)
		next, nextErr := semver.NewVersion(reported)
		if currentErr == nil && nextErr == nil && !next.GreaterThan(current) {
			return storeApp, nil
		}
	}
	storeApp.CurrentVersion = reported
	storeApp.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateStoreApp(ctx, storeApp); err != nil {
		return entities.StoreApp{}, err
	}
	return storeApp, nil
}

func (s Service) requireStoreApp(ctx context.Context, actor access.Actor, ref ports.AppRef, storeType entities.StoreType, action access.Action) (entities.StoreApp, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, action)
	if err != nil {
		return entities.StoreApp{}, err
	}
	if !storeType.Valid() {
		return entities.StoreApp{}, domainerrors.ErrInvalidStoreType
	}
	storeApp, found, err := s.Repo.GetStoreApp(ctx, app.AppID, storeType)
	if err != nil {
		return entities.StoreApp{}, err
	}
	if !found {
		return entities.StoreApp{}, domainerrors.ErrStoreAppNotFound
	}
	return storeApp, nil
}

func (s Service) transition(ctx context.Context, submission entities.Submission, to entities.SubmissionState, message string) (entities.Submission, error) {
	if !services.CanTransition(submission.State, to) {
		return entities.Submission{}, domainerrors.ErrInvalidTransition
	}
	submission.State = to
	if message != "" {
		submission.Message = message
	}
	submission.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}
	s.log().Info("submission state changed",
		"submission", submission.SubmissionID,
		"state", submission.State.String(),
	)
	return submission, nil
}

func (s Service) policy(ctx context.Context) backoff.BackOff {
	var policy backoff.BackOff
	if s.Backoff != nil {
		policy = s.Backoff()
	} else {
		policy = backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storeCallRetries)
	}
	return backoff.WithContext(policy, ctx)
}

func (s Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
