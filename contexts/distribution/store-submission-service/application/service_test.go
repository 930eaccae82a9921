package application

import (
	"context"
	"errors"
	"testing"

	"hangar/contexts/distribution/store-submission-service/adapters/memory"
	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"

	"github.com/cenkalti/backoff/v4"
)

var demoRef = ports.AppRef{OwnerKind: "user", OwnerName: "owner", AppName: "demo"}

// scriptedAdapter plays back configured answers and counts calls.
type scriptedAdapter struct {
	submitErrs    []error
	taskID        string
	submitCalls   int
	resultStatus  ports.ReviewStatus
	resultMessage string
	resultErrs    []error
	resultCalls   int
	version       string
	versionErrs   []error
	versionCalls  int
}

func (a *scriptedAdapter) Submit(ctx context.Context, storeApp entities.StoreApp, release ports.ReleaseInfo) (string, error) {
	call := a.submitCalls
	a.submitCalls++
	if call < len(a.submitErrs) && a.submitErrs[call] != nil {
		return "", a.submitErrs[call]
	}
	return a.taskID, nil
}

func (a *scriptedAdapter) SubmitResult(ctx context.Context, storeApp entities.StoreApp, taskID string) (ports.ReviewStatus, string, error) {
	call := a.resultCalls
	a.resultCalls++
	if call < len(a.resultErrs) && a.resultErrs[call] != nil {
		return 0, "", a.resultErrs[call]
	}
	return a.resultStatus, a.resultMessage, nil
}

func (a *scriptedAdapter) CurrentVersion(ctx context.Context, storeApp entities.StoreApp) (string, error) {
	call := a.versionCalls
	a.versionCalls++
	if call < len(a.versionErrs) && a.versionErrs[call] != nil {
		return "", a.versionErrs[call]
	}
	return a.version, nil
}

type singleAdapterRegistry struct {
	adapter ports.StoreAdapter
}

func (r singleAdapterRegistry) Adapter(storeType entities.StoreType) (ports.StoreAdapter, bool) {
	return r.adapter, r.adapter != nil
}

func newService(t *testing.T, adapter ports.StoreAdapter) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddApplication(demoRef, ports.Application{AppID: "app_1", Name: "demo"})
	store.GrantRole(demoRef, "user_mgr_1", access.AppManager)
	store.GrantRole(demoRef, "user_dev_1", access.AppDeveloper)
	store.AddRelease("app_1", 1, ports.ReleaseInfo{
		ReleaseID:   "release_1",
		AppID:       "app_1",
		Version:     "1.2.3",
		StoragePath: "users/owner/apps/demo/packages/7/demo.apk",
	})
	return Service{
		Repo:     store,
		Catalog:  store,
		Releases: store,
		Adapters: singleAdapterRegistry{adapter: adapter},
		Clock:    store,
		IDGen:    store,
		Backoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
		},
	}, store
}

func mustCreateVivoApp(t *testing.T, service Service) entities.StoreApp {
	t.Helper()
	storeApp, err := service.CreateStoreApp(context.Background(), access.User("user_mgr_1"), demoRef, ports.CreateStoreAppInput{
		Type:         entities.StoreVivo,
		Name:         "Demo on Vivo",
		AccessKey:    "ak",
		AccessSecret: "sk",
		PackageName:  "com.example.demo",
	})
	if err != nil {
		t.Fatalf("create store app: %v", err)
	}
	return storeApp
}

func TestCreateStoreAppValidation(t *testing.T) {
	service, _ := newService(t, &scriptedAdapter{})
	mgr := access.User("user_mgr_1")

	if _, err := service.CreateStoreApp(context.Background(), mgr, demoRef, ports.CreateStoreAppInput{Type: entities.StoreVivo}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("vivo without credentials: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := service.CreateStoreApp(context.Background(), mgr, demoRef, ports.CreateStoreAppInput{Type: entities.StoreRawLink}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("raw link without url: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := service.CreateStoreApp(context.Background(), access.User("user_dev_1"), demoRef, ports.CreateStoreAppInput{Type: entities.StoreRawLink, Link: "https://example.com"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("developer configuring stores: expected ErrForbidden, got %v", err)
	}

	mustCreateVivoApp(t, service)
	if _, err := service.CreateStoreApp(context.Background(), mgr, demoRef, ports.CreateStoreAppInput{
		Type:         entities.StoreVivo,
		AccessKey:    "ak2",
		AccessSecret: "sk2",
		PackageName:  "com.example.demo",
	}); !errors.Is(err, domainerrors.ErrStoreAppExists) {
		t.Fatalf("second vivo account: expected ErrStoreAppExists, got %v", err)
	}
}

func TestSubmitReleaseRetriesTransientFailures(t *testing.T) {
	adapter := &scriptedAdapter{
		submitErrs: []error{
			domainerrors.Transient(errors.New("store timeout")),
			domainerrors.Transient(errors.New("store timeout")),
		},
		taskID: "task_99",
	}
	service, _ := newService(t, adapter)
	mustCreateVivoApp(t, service)

	submission, err := service.SubmitRelease(context.Background(), access.User("user_mgr_1"), demoRef, entities.StoreVivo, 1)
	if err != nil {
		t.Fatalf("submit release: %v", err)
	}
	if submission.State != entities.StateSubmitReview {
		t.Fatalf("expected SubmitReview state, got %v", submission.State)
	}
	if submission.TaskID != "task_99" {
		t.Fatalf("task id not recorded: %q", submission.TaskID)
	}
	if adapter.submitCalls != 3 {
		t.Fatalf("expected 2 retries then success, got %d calls", adapter.submitCalls)
	}
}

func TestSubmitReleasePermanentFailureStopsRetrying(t *testing.T) {
	adapter := &scriptedAdapter{
		submitErrs: []error{errors.New("package name mismatch")},
	}
	service, _ := newService(t, adapter)
	mustCreateVivoApp(t, service)

	submission, err := service.SubmitRelease(context.Background(), access.User("user_mgr_1"), demoRef, entities.StoreVivo, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if adapter.submitCalls != 1 {
		t.Fatalf("permanent failure must not retry, got %d calls", adapter.submitCalls)
	}
	if submission.State != entities.StateInitial {
		t.Fatalf("failed submission should stay Initial, got %v", submission.State)
	}
	if submission.Message == "" {
		t.Fatal("failure message should be recorded")
	}
}

func TestPollSubmissionVerdicts(t *testing.T) {
	adapter := &scriptedAdapter{taskID: "task_1", resultStatus: ports.ReviewPending}
	service, _ := newService(t, adapter)
	mustCreateVivoApp(t, service)
	mgr := access.User("user_mgr_1")

	submission, err := service.SubmitRelease(context.Background(), mgr, demoRef, entities.StoreVivo, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	polled, err := service.PollSubmission(context.Background(), mgr, demoRef, entities.StoreVivo, submission.SubmissionID)
	if err != nil {
		t.Fatalf("poll pending: %v", err)
	}
	if polled.State != entities.StateSubmitReview {
		t.Fatalf("pending verdict must not advance, got %v", polled.State)
	}

	adapter.resultStatus = ports.ReviewPassed
	polled, err = service.PollSubmission(context.Background(), mgr, demoRef, entities.StoreVivo, submission.SubmissionID)
	if err != nil {
		t.Fatalf("poll passed: %v", err)
	}
	if polled.State != entities.StateReviewPassed {
		t.Fatalf("expected ReviewPassed, got %v", polled.State)
	}

	released, err := service.MarkReleased(context.Background(), mgr, demoRef, entities.StoreVivo, submission.SubmissionID)
	if err != nil {
		t.Fatalf("mark released: %v", err)
	}
	if released.State != entities.StateReleased {
		t.Fatalf("expected Released, got %v", released.State)
	}
}

func TestRejectionIsTerminal(t *testing.T) {
	adapter := &scriptedAdapter{taskID: "task_1", resultStatus: ports.ReviewRejected, resultMessage: "missing privacy policy"}
	service, _ := newService(t, adapter)
	mustCreateVivoApp(t, service)
	mgr := access.User("user_mgr_1")

	submission, err := service.SubmitRelease(context.Background(), mgr, demoRef, entities.StoreVivo, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rejected, err := service.PollSubmission(context.Background(), mgr, demoRef, entities.StoreVivo, submission.SubmissionID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if rejected.State != entities.StateReviewRejected {
		t.Fatalf("expected ReviewRejected, got %v", rejected.State)
	}
	if rejected.Message != "missing privacy policy" {
		t.Fatalf("reviewer message not recorded: %q", rejected.Message)
	}

	if _, err := service.MarkReleased(context.Background(), mgr, demoRef, entities.StoreVivo, submission.SubmissionID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("releasing a rejected submission: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := service.PollSubmission(context.Background(), mgr, demoRef, entities.StoreVivo, submission.SubmissionID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("polling a rejected submission: expected ErrInvalidTransition, got %v", err)
	}
}

func TestRefreshCurrentVersionMovesForwardOnly(t *testing.T) {
	adapter := &scriptedAdapter{version: "1.4.0"}
	service, _ := newService(t, adapter)
	mustCreateVivoApp(t, service)
	mgr := access.User("user_mgr_1")

	storeApp, err := service.RefreshCurrentVersion(context.Background(), mgr, demoRef, entities.StoreVivo)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if storeApp.CurrentVersion != "1.4.0" {
		t.Fatalf("version not recorded: %q", storeApp.CurrentVersion)
	}

	adapter.version = "1.3.0"
	storeApp, err = service.RefreshCurrentVersion(context.Background(), mgr, demoRef, entities.StoreVivo)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if storeApp.CurrentVersion != "1.4.0" {
		t.Fatalf("older listing must not roll the record back, got %q", storeApp.CurrentVersion)
	}

	adapter.version = "1.5.0"
	storeApp, err = service.RefreshCurrentVersion(context.Background(), mgr, demoRef, entities.StoreVivo)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if storeApp.CurrentVersion != "1.5.0" {
		t.Fatalf("newer listing should advance, got %q", storeApp.CurrentVersion)
	}
}
