package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"hangar/contexts/distribution/package-service/application"
	"hangar/contexts/distribution/package-service/domain/entities"
	"hangar/contexts/distribution/package-service/ports"
	httptransport "hangar/contexts/distribution/package-service/transport/http"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) UploadPackageHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, fileName string, data []byte, description, commitID string) (httptransport.PackageResponse, error) {
	pkg, err := h.Service.UploadPackage(ctx, actor, ref, ports.UploadInput{
		FileName:    fileName,
		Data:        data,
		Description: description,
		CommitID:    commitID,
	})
	if err != nil {
		return httptransport.PackageResponse{}, err
	}
	return httptransport.PackageResponse{Status: "success", Data: packageDTO(pkg)}, nil
}

func (h Handler) GetPackageHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, buildNumber int) (httptransport.PackageResponse, error) {
	pkg, err := h.Service.GetPackage(ctx, actor, ref, buildNumber)
	if err != nil {
		return httptransport.PackageResponse{}, err
	}
	return httptransport.PackageResponse{Status: "success", Data: packageDTO(pkg)}, nil
}

func (h Handler) ListPackagesHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, top, skip int) (httptransport.PackageListResponse, error) {
	pkgs, err := h.Service.ListPackages(ctx, actor, ref, top, skip)
	if err != nil {
		return httptransport.PackageListResponse{}, err
	}
	resp := httptransport.PackageListResponse{Status: "success", Data: []httptransport.PackageDTO{}}
	for _, pkg := range pkgs {
		resp.Data = append(resp.Data, packageDTO(pkg))
	}
	return resp, nil
}

func (h Handler) UpdatePackageHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, buildNumber int, req httptransport.UpdatePackageRequest) (httptransport.PackageResponse, error) {
	pkg, err := h.Service.UpdatePackage(ctx, actor, ref, buildNumber, ports.UpdatePackageInput{
		Description: req.Description,
		CommitID:    req.CommitID,
	})
	if err != nil {
		return httptransport.PackageResponse{}, err
	}
	return httptransport.PackageResponse{Status: "success", Data: packageDTO(pkg)}, nil
}

func (h Handler) DeletePackageHandler(ctx context.Context, actor access.Actor, ref ports.AppRef, buildNumber int) error {
	return h.Service.DeletePackage(ctx, actor, ref, buildNumber)
}

func packageDTO(pkg entities.Package) httptransport.PackageDTO {
	return httptransport.PackageDTO{
		BuildNumber:  pkg.BuildNumber,
		FileName:     pkg.FileName,
		DisplayName:  pkg.DisplayName,
		BundleID:     pkg.BundleID,
		Version:      pkg.Version,
		BuildVersion: pkg.BuildVersion,
		MinOSVersion: pkg.MinOSVersion,
		SizeBytes:    pkg.SizeBytes,
		Fingerprint:  pkg.Fingerprint,
		CommitID:     pkg.CommitID,
		Description:  pkg.Description,
		DownloadPath: pkg.StoragePath,
		CreatedAt:    pkg.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    pkg.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
