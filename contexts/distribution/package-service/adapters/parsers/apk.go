package parsers

import (
	"bytes"
	"image/png"
	"strconv"
	"strings"

	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
	"hangar/contexts/distribution/package-service/ports"

	"github.com/shogo82148/androidbinary/apk"
)

// APKParser reads Android packages through their binary AndroidManifest.xml.
type APKParser struct{}

func (APKParser) CanParse(fileName, os, platform string, data []byte) bool {
	if os != "" && os != "Android" {
		return false
	}
	pkg, err := apk.OpenZipReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return strings.HasSuffix(strings.ToLower(fileName), ".apk")
	}
	pkg.Close()
	return true
}

func (APKParser) Parse(fileName string, data []byte) (ports.ParsedPackage, error) {
	pkg, err := apk.OpenZipReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	defer pkg.Close()

	manifest := pkg.Manifest()
	version, err := manifest.VersionName.String()
	if err != nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	versionCode, err := manifest.VersionCode.Int32()
	if err != nil {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	parsed := ports.ParsedPackage{
		BundleID:     pkg.PackageName(),
		Version:      version,
		BuildVersion: strconv.Itoa(int(versionCode)),
	}
	if parsed.BundleID == "" || parsed.Version == "" {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	// A manifest without a minSdkVersion is valid; the field just stays empty.
	if minSDK, err := manifest.SDK.Min.Int32(); err == nil {
		parsed.MinOSVersion = strconv.Itoa(int(minSDK))
	}
	if label, err := pkg.Label(nil); err == nil {
		parsed.DisplayName = label
	}
	if icon, err := pkg.Icon(nil); err == nil && icon != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, icon); err == nil {
			parsed.Icon = buf.Bytes()
		}
	}
	return parsed, nil
}
