package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hangar/contexts/app-catalog/application-service/application"
	"hangar/contexts/app-catalog/application-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/application-service/domain/errors"
	"hangar/contexts/app-catalog/application-service/ports"
	httptransport "hangar/contexts/app-catalog/application-service/transport/http"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateApplicationHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, req httptransport.CreateApplicationRequest) (httptransport.ApplicationResponse, error) {
	visibility := access.VisibilityPrivate
	if strings.TrimSpace(req.Visibility) != "" {
		parsed, ok := access.ParseVisibility(req.Visibility)
		if !ok {
			return httptransport.ApplicationResponse{}, domainerrors.ErrInvalidVisibility
		}
		visibility = parsed
	}
	os, ok := entities.ParseOperatingSystem(req.OS)
	if !ok {
		return httptransport.ApplicationResponse{}, domainerrors.ErrInvalidRequest
	}
	platform, ok := entities.ParsePlatform(req.Platform)
	if !ok {
		return httptransport.ApplicationResponse{}, domainerrors.ErrInvalidRequest
	}
	releaseType := entities.ReleaseTypeProduction
	if strings.TrimSpace(req.ReleaseType) != "" {
		parsed, ok := entities.ParseReleaseType(req.ReleaseType)
		if !ok {
			return httptransport.ApplicationResponse{}, domainerrors.ErrInvalidRequest
		}
		releaseType = parsed
	}
	view, err := h.Service.CreateApplication(ctx, actor, owner, ports.CreateApplicationInput{
		Name:        strings.TrimSpace(req.Name),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Description: req.Description,
		Visibility:  visibility,
		OS:          os,
		Platform:    platform,
		ReleaseType: releaseType,
	})
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Status: "success", Data: applicationDTO(owner, view)}, nil
}

func (h Handler) GetApplicationHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) (httptransport.ApplicationResponse, error) {
	view, err := h.Service.GetApplication(ctx, actor, owner, strings.TrimSpace(name))
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Status: "success", Data: applicationDTO(owner, view)}, nil
}

func (h Handler) ListApplicationsHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, top, skip int) (httptransport.ApplicationListResponse, error) {
	views, err := h.Service.ListApplications(ctx, actor, owner, top, skip)
	if err != nil {
		return httptransport.ApplicationListResponse{}, err
	}
	resp := httptransport.ApplicationListResponse{Status: "success", Data: []httptransport.ApplicationDTO{}}
	for _, view := range views {
		resp.Data = append(resp.Data, applicationDTO(owner, view))
	}
	return resp, nil
}

func (h Handler) UpdateApplicationHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string, req httptransport.UpdateApplicationRequest) (httptransport.ApplicationResponse, error) {
	input := ports.UpdateApplicationInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
	}
	if req.Visibility != nil {
		visibility, ok := access.ParseVisibility(*req.Visibility)
		if !ok {
			return httptransport.ApplicationResponse{}, domainerrors.ErrInvalidVisibility
		}
		input.Visibility = &visibility
	}
	if req.ReleaseType != nil {
		releaseType, ok := entities.ParseReleaseType(*req.ReleaseType)
		if !ok {
			return httptransport.ApplicationResponse{}, domainerrors.ErrInvalidRequest
		}
		input.ReleaseType = &releaseType
	}
	view, err := h.Service.UpdateApplication(ctx, actor, owner, strings.TrimSpace(name), input)
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Status: "success", Data: applicationDTO(owner, view)}, nil
}

func (h Handler) DeleteApplicationHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) error {
	return h.Service.DeleteApplication(ctx, actor, owner, strings.TrimSpace(name))
}

func (h Handler) SetIconHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string, data []byte, ext string) (httptransport.IconResponse, error) {
	iconPath, err := h.Service.SetIcon(ctx, actor, owner, strings.TrimSpace(name), data, ext)
	if err != nil {
		return httptransport.IconResponse{}, err
	}
	resp := httptransport.IconResponse{Status: "success"}
	resp.Data.IconPath = iconPath
	return resp, nil
}

func (h Handler) DeleteIconHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) error {
	return h.Service.DeleteIcon(ctx, actor, owner, strings.TrimSpace(name))
}

func (h Handler) ListDeploymentKeysHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) (httptransport.DeploymentKeyListResponse, error) {
	keys, err := h.Service.ListDeploymentKeys(ctx, actor, owner, strings.TrimSpace(name))
	if err != nil {
		return httptransport.DeploymentKeyListResponse{}, err
	}
	resp := httptransport.DeploymentKeyListResponse{Status: "success", Data: []httptransport.DeploymentKeyDTO{}}
	for _, key := range keys {
		resp.Data = append(resp.Data, httptransport.DeploymentKeyDTO{
			Name:      key.Name,
			Key:       key.Key,
			CreatedAt: key.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (h Handler) ListMembersHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) (httptransport.MemberListResponse, error) {
	views, err := h.Service.ListMembers(ctx, actor, owner, strings.TrimSpace(name))
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	resp := httptransport.MemberListResponse{Status: "success", Data: []httptransport.MemberDTO{}}
	for _, view := range views {
		resp.Data = append(resp.Data, memberDTO(view))
	}
	return resp, nil
}

func (h Handler) AddMemberHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string, req httptransport.AddMemberRequest) (httptransport.MemberResponse, error) {
	view, err := h.Service.AddMember(ctx, actor, owner, strings.TrimSpace(name), strings.TrimSpace(req.Handle), req.Role)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{Status: "success", Data: memberDTO(view)}, nil
}

func (h Handler) UpdateMemberRoleHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name, handle string, req httptransport.UpdateMemberRoleRequest) (httptransport.MemberResponse, error) {
	view, err := h.Service.UpdateMemberRole(ctx, actor, owner, strings.TrimSpace(name), strings.TrimSpace(handle), req.Role)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{Status: "success", Data: memberDTO(view)}, nil
}

func (h Handler) RemoveMemberHandler(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name, handle string) error {
	return h.Service.RemoveMember(ctx, actor, owner, strings.TrimSpace(name), strings.TrimSpace(handle))
}

func applicationDTO(owner ports.OwnerRef, view ports.ApplicationView) httptransport.ApplicationDTO {
	app := view.Application
	return httptransport.ApplicationDTO{
		Owner:       owner.Name,
		OwnerKind:   string(owner.Kind),
		Name:        app.Name,
		DisplayName: app.DisplayName,
		Description: app.Description,
		Visibility:  app.Visibility.String(),
		OS:          app.OS.String(),
		Platform:    app.Platform.String(),
		ReleaseType: app.ReleaseType.String(),
		IconPath:    app.IconPath,
		Role:        view.Role,
		CreatedAt:   app.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   app.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func memberDTO(view ports.MemberView) httptransport.MemberDTO {
	return httptransport.MemberDTO{
		Handle:    view.Handle,
		Role:      access.ApplicationRoles.Name(view.Member.Role),
		CreatedAt: view.Member.CreatedAt.UTC().Format(time.RFC3339),
	}
}
