package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hangar/contexts/app-catalog/organization-service/application"
	domainerrors "hangar/contexts/app-catalog/organization-service/domain/errors"
	"hangar/contexts/app-catalog/organization-service/ports"
	httptransport "hangar/contexts/app-catalog/organization-service/transport/http"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateOrganizationHandler(ctx context.Context, actor access.Actor, req httptransport.CreateOrganizationRequest) (httptransport.OrganizationResponse, error) {
	visibility, ok := access.ParseVisibility(req.Visibility)
	if !ok && strings.TrimSpace(req.Visibility) != "" {
		return httptransport.OrganizationResponse{}, domainerrors.ErrInvalidVisibility
	}
	if !ok {
		visibility = access.VisibilityPrivate
	}
	view, err := h.Service.CreateOrganization(ctx, actor, ports.CreateOrganizationInput{
		Name:        strings.TrimSpace(req.Name),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Description: req.Description,
		Visibility:  visibility,
	})
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return httptransport.OrganizationResponse{Status: "success", Data: organizationDTO(view)}, nil
}

func (h Handler) GetOrganizationHandler(ctx context.Context, actor access.Actor, name string) (httptransport.OrganizationResponse, error) {
	view, err := h.Service.GetOrganization(ctx, actor, strings.TrimSpace(name))
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return httptransport.OrganizationResponse{Status: "success", Data: organizationDTO(view)}, nil
}

func (h Handler) ListOrganizationsHandler(ctx context.Context, actor access.Actor, top, skip int) (httptransport.OrganizationListResponse, error) {
	views, err := h.Service.ListOrganizations(ctx, actor, top, skip)
	if err != nil {
		return httptransport.OrganizationListResponse{}, err
	}
	resp := httptransport.OrganizationListResponse{Status: "success", Data: []httptransport.OrganizationDTO{}}
	for _, view := range views {
		resp.Data = append(resp.Data, organizationDTO(view))
	}
	return resp, nil
}

func (h Handler) UpdateOrganizationHandler(ctx context.Context, actor access.Actor, name string, req httptransport.UpdateOrganizationRequest) (httptransport.OrganizationResponse, error) {
	input := ports.UpdateOrganizationInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
	}
	if req.Visibility != nil {
		visibility, ok := access.ParseVisibility(*req.Visibility)
		if !ok {
			return httptransport.OrganizationResponse{}, domainerrors.ErrInvalidVisibility
		}
		input.Visibility = &visibility
	}
	view, err := h.Service.UpdateOrganization(ctx, actor, strings.TrimSpace(name), input)
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return httptransport.OrganizationResponse{Status: "success", Data: organizationDTO(view)}, nil
}

func (h Handler) DeleteOrganizationHandler(ctx context.Context, actor access.Actor, name string) error {
	return h.Service.DeleteOrganization(ctx, actor, strings.TrimSpace(name))
}

func (h Handler) SetIconHandler(ctx context.Context, actor access.Actor, name string, data []byte, ext string) (httptransport.IconResponse, error) {
	iconPath, err := h.Service.SetIcon(ctx, actor, strings.TrimSpace(name), data, ext)
	if err != nil {
		return httptransport.IconResponse{}, err
	}
	resp := httptransport.IconResponse{Status: "success"}
	resp.Data.IconPath = iconPath
	return resp, nil
}

func (h Handler) DeleteIconHandler(ctx context.Context, actor access.Actor, name string) error {
	return h.Service.DeleteIcon(ctx, actor, strings.TrimSpace(name))
}

func (h Handler) ListMembersHandler(ctx context.Context, actor access.Actor, name string) (httptransport.MemberListResponse, error) {
	views, err := h.Service.ListMembers(ctx, actor, strings.TrimSpace(name))
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	resp := httptransport.MemberListResponse{Status: "success", Data: []httptransport.MemberDTO{}}
	for _, view := range views {
		resp.Data = append(resp.Data, memberDTO(view))
	}
	return resp, nil
}

func (h Handler) AddMemberHandler(ctx context.Context, actor access.Actor, name string, req httptransport.AddMemberRequest) (httptransport.MemberResponse, error) {
	view, err := h.Service.AddMember(ctx, actor, strings.TrimSpace(name), strings.TrimSpace(req.Handle), req.Role)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{Status: "success", Data: memberDTO(view)}, nil
}

func (h Handler) UpdateMemberRoleHandler(ctx context.Context, actor access.Actor, name, handle string, req httptransport.UpdateMemberRoleRequest) (httptransport.MemberResponse, error) {
	view, err := h.Service.UpdateMemberRole(ctx, actor, strings.TrimSpace(name), strings.TrimSpace(handle), req.Role)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{Status: "success", Data: memberDTO(view)}, nil
}

func (h Handler) RemoveMemberHandler(ctx context.Context, actor access.Actor, name, handle string) error {
	return h.Service.RemoveMember(ctx, actor, strings.TrimSpace(name), strings.TrimSpace(handle))
}

func organizationDTO(view ports.OrganizationView) httptransport.OrganizationDTO {
	org := view.Organization
	return httptransport.OrganizationDTO{
		Name:        org.Name,
		DisplayName: org.DisplayName,
		Description: org.Description,
		Visibility:  org.Visibility.String(),
		IconPath:    org.IconPath,
		Role:        view.Role,
		CreatedAt:   org.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   org.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func memberDTO(view ports.MemberView) httptransport.MemberDTO {
	return httptransport.MemberDTO{
		Handle:    view.Handle,
		Role:      access.OrganizationRoles.Name(view.Member.Role),
		CreatedAt: view.Member.CreatedAt.UTC().Format(time.RFC3339),
	}
}
