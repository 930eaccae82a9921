package parsers

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
	"hangar/contexts/distribution/package-service/ports"

	"howett.net/plist"
)

// maxArchiveEntries bounds the directory scan so a crafted archive cannot
// make ingestion walk millions of entries.
const maxArchiveEntries = 10000

var (
	ipaInfoPlistPattern = regexp.MustCompile(`^Payload/[^/]+\.app/Info\.plist$`)
	ipaIconPattern      = regexp.MustCompile(`^Payload/[^/]+\.app/AppIcon60x60@3x\.png$`)
)

type bundleInfo struct {
	CFBundleDisplayName        string `plist:"CFBundleDisplayName"`
	CFBundleName               string `plist:"CFBundleName"`
	CFBundleIdentifier         string `plist:"CFBundleIdentifier"`
	CFBundleVersion            string `plist:"CFBundleVersion"`
	CFBundleShortVersionString string `plist:"CFBundleShortVersionString"`
	MinimumOSVersion           string `plist:"MinimumOSVersion"`
}

// appleOSNames are the target systems whose artifacts ship as IPA-style
// bundles.
var appleOSNames = map[string]bool{"iOS": true, "macOS": true, "tvOS": true}

// IPAParser reads iOS application archives: a zip whose top-level Payload
// directory holds exactly one .app bundle with an Info.plist.
type IPAParser struct{}

func (IPAParser) CanParse(fileName, os, platform string, data []byte) bool {
	if os != "" && !appleOSNames[os] {
		return false
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return strings.HasSuffix(strings.ToLower(fileName), ".ipa")
	}
	for i, file := range reader.File {
		if i >= maxArchiveEntries {
			break
		}
		if ipaInfoPlistPattern.MatchString(file.Name) {
			return true
		}
	}
	return strings.HasSuffix(strings.ToLower(fileName), ".ipa")
}

func (IPAParser) Parse(fileName string, data []byte) (ports.ParsedPackage, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}

	var infoFile, iconFile *zip.File
	for i, file := range reader.File {
		if i >= maxArchiveEntries {
			break
		}
		switch {
		case infoFile == nil && ipaInfoPlistPattern.MatchString(file.Name):
			infoFile = file
		case iconFile == nil && ipaIconPattern.MatchString(file.Name):
			iconFile = file
		}
	}
	if infoFile == nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}

	raw, err := readZipFile(infoFile)
	if err != nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	var info bundleInfo
	if _, err := plist.Unmarshal(raw, &info); err != nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	// A bundle without an identifier or any version key is not an app.
	if info.CFBundleIdentifier == "" {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	version := info.CFBundleShortVersionString
	if version == "" {
		version = info.CFBundleVersion
	}
	if version == "" {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}

	displayName := info.CFBundleDisplayName
	if displayName == "" {
		displayName = info.CFBundleName
	}
	parsed := ports.ParsedPackage{
		DisplayName:  displayName,
		BundleID:     info.CFBundleIdentifier,
		Version:      version,
		BuildVersion: info.CFBundleVersion,
		MinOSVersion: info.MinimumOSVersion,
	}
	if iconFile != nil {
		// A missing or unreadable icon never fails ingestion.
		if icon, err := readZipFile(iconFile); err == nil {
			parsed.Icon = icon
		}
	}
	return parsed, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
