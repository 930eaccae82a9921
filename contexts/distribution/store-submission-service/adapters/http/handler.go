package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hangar/contexts/distribution/store-submission-service/application"
	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/ports"
	httptransport "hangar/contexts/distribution/store-submission-service/transport/http"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateStoreAppHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, req httptransport.CreateStoreAppRequest) (httptransport.StoreAppResponse, error) {
	storeType, ok := entities.ParseStoreType(req.Type)
	if !ok {
		return httptransport.StoreAppResponse{}, domainerrors.ErrInvalidStoreType
	}
	storeApp, err := h.Service.CreateStoreApp(ctx, actor, ref, ports.CreateStoreAppInput{
		Type:         storeType,
		Name:         strings.TrimSpace(req.Name),
		Link:         strings.TrimSpace(req.Link),
		AccessKey:    strings.TrimSpace(req.AccessKey),
		AccessSecret: strings.TrimSpace(req.AccessSecret),
		PackageName:  strings.TrimSpace(req.PackageName),
	})
	if err != nil {
		return httptransport.StoreAppResponse{}, err
	}
	return httptransport.StoreAppResponse{Status: "success", Data: storeAppDTO(storeApp)}, nil
}

func (h Handler) UpdateStoreAppHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw string, req httptransport.UpdateStoreAppRequest) (httptransport.StoreAppResponse, error) {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return httptransport.StoreAppResponse{}, domainerrors.ErrInvalidStoreType
	}
	storeApp, err := h.Service.UpdateStoreApp(ctx, actor, ref, storeType, ports.UpdateStoreAppInput{
		Name:         req.Name,
		Link:         req.Link,
		AccessKey:    req.AccessKey,
		AccessSecret: req.AccessSecret,
		PackageName:  req.PackageName,
	})
	if err != nil {
		return httptransport.StoreAppResponse{}, err
	}
	return httptransport.StoreAppResponse{Status: "success", Data: storeAppDTO(storeApp)}, nil
}

func (h Handler) ListStoreAppsHandler(ctx context.Context, actor access.Actor, ref ports.AppRef) (httptransport.StoreAppListResponse, error) {
	storeApps, err := h.Service.ListStoreApps(ctx, actor, ref)
	if err != nil {
		return httptransport.StoreAppListResponse{}, err
	}
	resp := httptransport.StoreAppListResponse{Status: "success", Data: []httptransport.StoreAppDTO{}}
	for _, storeApp := range storeApps {
		resp.Data = append(resp.Data, storeAppDTO(storeApp))
	}
	return resp, nil
}

func (h Handler) DeleteStoreAppHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw string) error {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return domainerrors.ErrInvalidStoreType
	}
	return h.Service.DeleteStoreApp(ctx, actor, ref, storeType)
}

func (h Handler) SubmitReleaseHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw string, req httptransport.SubmitReleaseRequest) (httptransport.SubmissionResponse, error) {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return httptransport.SubmissionResponse{}, domainerrors.ErrInvalidStoreType
	}
	submission, err := h.Service.SubmitRelease(ctx, actor, ref, storeType, req.ReleaseNumber)
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Status: "success", Data: submissionDTO(submission)}, nil
}

func (h Handler) PollSubmissionHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw, submissionID string) (httptransport.SubmissionResponse, error) {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return httptransport.SubmissionResponse{}, domainerrors.ErrInvalidStoreType
	}
	submission, err := h.Service.PollSubmission(ctx, actor, ref, storeType, strings.TrimSpace(submissionID))
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Status: "success", Data: submissionDTO(submission)}, nil
}

func (h Handler) MarkReleasedHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw, submissionID string) (httptransport.SubmissionResponse, error) {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return httptransport.SubmissionResponse{}, domainerrors.ErrInvalidStoreType
	}
	submission, err := h.Service.MarkReleased(ctx, actor, ref, storeType, strings.TrimSpace(submissionID))
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Status: "success", Data: submissionDTO(submission)}, nil
}

func (h Handler) ListSubmissionsHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw string) (httptransport.SubmissionListResponse, error) {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return httptransport.SubmissionListResponse{}, domainerrors.ErrInvalidStoreType
	}
	submissions, err := h.Service.ListSubmissions(ctx, actor, ref, storeType)
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	resp := httptransport.SubmissionListResponse{Status: "success", Data: []httptransport.SubmissionDTO{}}
	for _, submission := range submissions {
		resp.Data = append(resp.Data, submissionDTO(submission))
	}
	return resp, nil
}

func (h Handler) RefreshCurrentVersionHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, storeTypeRaw string) (httptransport.StoreAppResponse, error) {
	storeType, ok := entities.ParseStoreType(storeTypeRaw)
	if !ok {
		return httptransport.StoreAppResponse{}, domainerrors.ErrInvalidStoreType
	}
	storeApp, err := h.Service.RefreshCurrentVersion(ctx, actor, ref, storeType)
	if err != nil {
		return httptransport.StoreAppResponse{}, err
	}
	return httptransport.StoreAppResponse{Status: "success", Data: storeAppDTO(storeApp)}, nil
}

func storeAppDTO(storeApp entities.StoreApp) httptransport.StoreAppDTO {
	return httptransport.StoreAppDTO{
		Type:           storeApp.Type.String(),
		Name:           storeApp.Name,
		Link:           storeApp.Link,
		PackageName:    storeApp.PackageName,
		CurrentVersion: storeApp.CurrentVersion,
		CreatedAt:      storeApp.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      storeApp.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func submissionDTO(submission entities.Submission) httptransport.SubmissionDTO {
	return httptransport.SubmissionDTO{
		SubmissionID: submission.SubmissionID,
		State:        submission.State.String(),
		TaskID:       submission.TaskID,
		Message:      submission.Message,
		CreatedAt:    submission.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    submission.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
