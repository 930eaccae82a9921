package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// Store is an in-memory repository plus catalog and release fixtures.
type Store struct {
	mu sync.Mutex

	storeApps   map[string]entities.StoreApp
	submissions map[string]entities.Submission

	apps     map[string]ports.Application
	grants   map[string]map[string]access.Role
	releases map[string]ports.ReleaseInfo

	now    time.Time
	nextID int
}

func NewStore() *Store {
	return &Store{
		storeApps:   make(map[string]entities.StoreApp),
		submissions: make(map[string]entities.Submission),
		apps:        make(map[string]ports.Application),
		grants:      make(map[string]map[string]access.Role),
		releases:    make(map[string]ports.ReleaseInfo),
		now:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("sub_%04d", s.nextID), nil
}

func (s *Store) AddApplication(ref ports.AppRef, app ports.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[refKey(ref)] = app
}

func (s *Store) GrantRole(ref ports.AppRef, userID string, role access.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refKey(ref)
	if s.grants[key] == nil {
		s.grants[key] = make(map[string]access.Role)
	}
	s.grants[key][userID] = role
}

func (s *Store) AddRelease(appID string, releaseNumber int, release ports.ReleaseInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases[fmt.Sprintf("%s/%d", appID, releaseNumber)] = release
}

func (s *Store) Authorize(ctx context.Context, actor access.Actor, ref ports.AppRef, action access.Action) (ports.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refKey(ref)
	app, ok := s.apps[key]
	if !ok {
		return ports.Application{}, domainerrors.ErrApplicationNotFound
	}
	if action == access.ActionView {
		return app, nil
	}
	min, ok := access.MinimumRole(access.KindApplication, action)
	if !ok {
		return ports.Application{}, domainerrors.ErrInvalidRequest
	}
	role, held := s.grants[key][actor.UserID]
	if !held || !role.AtLeast(min) {
		return ports.Application{}, domainerrors.ErrForbidden
	}
	return app, nil
}

func (s *Store) FindRelease(ctx context.Context, appID string, releaseNumber int) (ports.ReleaseInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	release, ok := s.releases[fmt.Sprintf("%s/%d", appID, releaseNumber)]
	return release, ok, nil
}

func (s *Store) CreateStoreApp(ctx context.Context, storeApp entities.StoreApp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.storeApps {
		if existing.AppID == storeApp.AppID && existing.Type == storeApp.Type {
			return domainerrors.ErrStoreAppExists
		}
	}
	s.storeApps[storeApp.StoreAppID] = storeApp
	return nil
}

func (s *Store) GetStoreApp(ctx context.Context, appID string, storeType entities.StoreType) (entities.StoreApp, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, storeApp := range s.storeApps {
		if storeApp.AppID == appID && storeApp.Type == storeType {
			return storeApp, true, nil
		}
	}
	return entities.StoreApp{}, false, nil
}

func (s *Store) GetStoreAppByID(ctx context.Context, storeAppID string) (entities.StoreApp, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	storeApp, ok := s.storeApps[storeAppID]
	return storeApp, ok, nil
}

func (s *Store) UpdateStoreApp(ctx context.Context, storeApp entities.StoreApp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.storeApps[storeApp.StoreAppID]; !ok {
		return domainerrors.ErrStoreAppNotFound
	}
	s.storeApps[storeApp.StoreAppID] = storeApp
	return nil
}

func (s *Store) DeleteStoreApp(ctx context.Context, storeAppID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.storeApps[storeAppID]; !ok {
		return domainerrors.ErrStoreAppNotFound
	}
	delete(s.storeApps, storeAppID)
	return nil
}

func (s *Store) ListStoreApps(ctx context.Context, appID string) ([]entities.StoreApp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	storeApps := make([]entities.StoreApp, 0)
	for _, storeApp := range s.storeApps {
		if storeApp.AppID == appID {
			storeApps = append(storeApps, storeApp)
		}
	}
	return storeApps, nil
}

func (s *Store) CreateSubmission(ctx context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[submission.SubmissionID] = submission
	return nil
}

func (s *Store) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.submissions[submissionID]
	return submission, ok, nil
}

func (s *Store) UpdateSubmission(ctx context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[submission.SubmissionID]; !ok {
		return domainerrors.ErrSubmissionNotFound
	}
	s.submissions[submission.SubmissionID] = submission
	return nil
}

func (s *Store) ListSubmissions(ctx context.Context, storeAppID string) ([]entities.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submissions := make([]entities.Submission, 0)
	for _, submission := range s.submissions {
		if submission.StoreAppID == storeAppID {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

func (s *Store) CountReleaseSubmissions(ctx context.Context, releaseID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, submission := range s.submissions {
		if submission.ReleaseID == releaseID {
			count++
		}
	}
	return count, nil
}

func refKey(ref ports.AppRef) string {
	return ref.OwnerKind + "/" + ref.OwnerName + "/" + ref.AppName
}
