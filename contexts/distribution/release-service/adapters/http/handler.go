package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hangar/contexts/distribution/release-service/application"
	"hangar/contexts/distribution/release-service/domain/entities"
	"hangar/contexts/distribution/release-service/ports"
	httptransport "hangar/contexts/distribution/release-service/transport/http"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateReleaseHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, req httptransport.CreateReleaseRequest) (httptransport.ReleaseResponse, error) {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	view, err := h.Service.CreateRelease(ctx, actor, ref, ports.CreateReleaseInput{
		Environment: strings.TrimSpace(req.Environment),
		BuildNumber: req.BuildNumber,
		Description: req.Description,
		Enabled:     enabled,
	})
	if err != nil {
		return httptransport.ReleaseResponse{}, err
	}
	return httptransport.ReleaseResponse{Status: "success", Data: releaseDTO(view)}, nil
}

func (h Handler) GetReleaseHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int) (httptransport.ReleaseResponse, error) {
	view, err := h.Service.GetRelease(ctx, actor, ref, releaseNumber)
	if err != nil {
		return httptransport.ReleaseResponse{}, err
	}
	return httptransport.ReleaseResponse{Status: "success", Data: releaseDTO(view)}, nil
}

func (h Handler) ListReleasesHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, top, skip int) (httptransport.ReleaseListResponse, error) {
	views, err := h.Service.ListReleases(ctx, actor, ref, top, skip)
	if err != nil {
		return httptransport.ReleaseListResponse{}, err
	}
	resp := httptransport.ReleaseListResponse{Status: "success", Data: []httptransport.ReleaseDTO{}}
	for _, view := range views {
		resp.Data = append(resp.Data, releaseDTO(view))
	}
	return resp, nil
}

func (h Handler) LatestReleaseHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, environment string) (httptransport.ReleaseResponse, error) {
	view, err := h.Service.LatestRelease(ctx, actor, ref, strings.TrimSpace(environment))
	if err != nil {
		return httptransport.ReleaseResponse{}, err
	}
	return httptransport.ReleaseResponse{Status: "success", Data: releaseDTO(view)}, nil
}

func (h Handler) UpdateReleaseHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int, req httptransport.UpdateReleaseRequest) (httptransport.ReleaseResponse, error) {
	view, err := h.Service.UpdateRelease(ctx, actor, ref, releaseNumber, ports.UpdateReleaseInput{
		Description: req.Description,
		Enabled:     req.Enabled,
	})
	if err != nil {
		return httptransport.ReleaseResponse{}, err
	}
	return httptransport.ReleaseResponse{Status: "success", Data: releaseDTO(view)}, nil
}

func (h Handler) DeleteReleaseHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int) error {
	return h.Service.DeleteRelease(ctx, actor, ref, releaseNumber)
}

func (h Handler) CreateUpgradeHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int, req httptransport.CreateUpgradeRequest) (httptransport.UpgradeResponse, error) {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	upgrade, err := h.Service.CreateUpgrade(ctx, actor, ref, releaseNumber, ports.CreateUpgradeInput{
		TargetVersion: strings.TrimSpace(req.TargetVersion),
		Description:   req.Description,
		Enabled:       enabled,
		Mandatory:     req.Mandatory,
	})
	if err != nil {
		return httptransport.UpgradeResponse{}, err
	}
	return httptransport.UpgradeResponse{Status: "success", Data: upgradeDTO(releaseNumber, upgrade)}, nil
}

func (h Handler) UpdateUpgradeHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber, upgradeNumber int, req httptransport.UpdateUpgradeRequest) (httptransport.UpgradeResponse, error) {
	upgrade, err := h.Service.UpdateUpgrade(ctx, actor, ref, releaseNumber, upgradeNumber, ports.UpdateUpgradeInput{
		Description: req.Description,
		Enabled:     req.Enabled,
		Mandatory:   req.Mandatory,
	})
	if err != nil {
		return httptransport.UpgradeResponse{}, err
	}
	return httptransport.UpgradeResponse{Status: "success", Data: upgradeDTO(releaseNumber, upgrade)}, nil
}

func (h Handler) ListUpgradesHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber, top, skip int) (httptransport.UpgradeListResponse, error) {
	upgrades, err := h.Service.ListUpgrades(ctx, actor, ref, releaseNumber, top, skip)
	if err != nil {
		return httptransport.UpgradeListResponse{}, err
	}
	resp := httptransport.UpgradeListResponse{Status: "success", Data: []httptransport.UpgradeDTO{}}
	for _, upgrade := range upgrades {
		resp.Data = append(resp.Data, upgradeDTO(releaseNumber, upgrade))
	}
	return resp, nil
}

func (h Handler) DeleteUpgradeHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber, upgradeNumber int) error {
	return h.Service.DeleteUpgrade(ctx, actor, ref, releaseNumber, upgradeNumber)
}

func (h Handler) CheckUpgradeHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, environment, currentVersion string) (httptransport.UpgradeAdviceResponse, error) {
	advice, err := h.Service.CheckUpgrade(ctx, actor, ref, strings.TrimSpace(environment), strings.TrimSpace(currentVersion))
	if err != nil {
		return httptransport.UpgradeAdviceResponse{}, err
	}
	resp := httptransport.UpgradeAdviceResponse{Status: "success"}
	resp.Data.UpgradeAvailable = advice.UpgradeAvailable
	resp.Data.Mandatory = advice.Mandatory
	resp.Data.TargetVersion = advice.TargetVersion
	resp.Data.Description = advice.Description
	return resp, nil
}

func releaseDTO(view ports.ReleaseView) httptransport.ReleaseDTO {
	release := view.Release
	pkg := view.Package
	return httptransport.ReleaseDTO{
		ReleaseNumber: release.ReleaseNumber,
		Environment:   release.Environment,
		Description:   release.Description,
		Enabled:       release.Enabled,
		BuildNumber:   pkg.BuildNumber,
		FileName:      pkg.FileName,
		DisplayName:   pkg.DisplayName,
		BundleID:      pkg.BundleID,
		Version:       pkg.Version,
		BuildVersion:  pkg.BuildVersion,
		MinOSVersion:  pkg.MinOSVersion,
		SizeBytes:     pkg.SizeBytes,
		Fingerprint:   pkg.Fingerprint,
		DownloadPath:  pkg.StoragePath,
		CreatedAt:     release.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     release.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func upgradeDTO(releaseNumber int, upgrade entities.Upgrade) httptransport.UpgradeDTO {
	return httptransport.UpgradeDTO{
		ReleaseNumber: releaseNumber,
		UpgradeNumber: upgrade.UpgradeNumber,
		TargetVersion: upgrade.TargetVersion,
		Description:   upgrade.Description,
		Enabled:       upgrade.Enabled,
		Mandatory:     upgrade.Mandatory,
		CreatedAt:     upgrade.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     upgrade.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
