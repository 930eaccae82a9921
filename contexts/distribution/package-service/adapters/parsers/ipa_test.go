package parsers

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
)

const demoInfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleDisplayName</key>
	<string>Demo</string>
	<key>CFBundleIdentifier</key>
	<string>com.example.demo</string>
	<key>CFBundleVersion</key>
	<string>42</string>
	<key>CFBundleShortVersionString</key>
	<string>1.2.3</string>
	<key>MinimumOSVersion</key>
	<string>12.0</string>
</dict>
</plist>`

func buildIPA(t *testing.T, withIcon bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("Payload/Demo.app/Info.plist")
	if err != nil {
		t.Fatalf("create plist entry: %v", err)
	}
	if _, err := entry.Write([]byte(demoInfoPlist)); err != nil {
		t.Fatalf("write plist: %v", err)
	}
	if withIcon {
		icon, err := w.Create("Payload/Demo.app/AppIcon60x60@3x.png")
		if err != nil {
			t.Fatalf("create icon entry: %v", err)
		}
		if _, err := icon.Write([]byte{0x89, 0x50, 0x4e, 0x47}); err != nil {
			t.Fatalf("write icon: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestIPAParserExtractsBundleInfo(t *testing.T) {
	parsed, err := IPAParser{}.Parse("demo.ipa", buildIPA(t, true))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.DisplayName != "Demo" {
		t.Errorf("display name: got %q", parsed.DisplayName)
	}
	if parsed.BundleID != "com.example.demo" {
		t.Errorf("bundle id: got %q", parsed.BundleID)
	}
	if parsed.Version != "1.2.3" {
		t.Errorf("version: got %q", parsed.Version)
	}
	if parsed.BuildVersion != "42" {
		t.Errorf("build version: got %q", parsed.BuildVersion)
	}
	if parsed.MinOSVersion != "12.0" {
		t.Errorf("min os: got %q", parsed.MinOSVersion)
	}
	if len(parsed.Icon) == 0 {
		t.Error("icon bytes missing")
	}
}

func TestIPAParserWithoutIcon(t *testing.T) {
	parsed, err := IPAParser{}.Parse("demo.ipa", buildIPA(t, false))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Icon != nil {
		t.Fatalf("expected no icon, got %d bytes", len(parsed.Icon))
	}
}

func TestIPAParserRejectsArchiveWithoutPayload(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, _ := w.Create("README.txt")
	entry.Write([]byte("not an app"))
	w.Close()

	if _, err := (IPAParser{}).Parse("demo.ipa", buf.Bytes()); !errors.Is(err, domainerrors.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
}

func TestRegistryProbesContentBeforeExtension(t *testing.T) {
	// A valid IPA behind a misleading name still parses as an IPA.
	parsed, err := NewRegistry().Parse("build.zip", "iOS", "ObjectiveCSwift", buildIPA(t, false))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.BundleID != "com.example.demo" {
		t.Fatalf("bundle id: got %q", parsed.BundleID)
	}
}

func TestRegistryRejectsUnknownFormat(t *testing.T) {
	if _, err := NewRegistry().Parse("notes.txt", "", "", []byte("plain text")); !errors.Is(err, domainerrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := NewRegistry().Parse("empty.ipa", "iOS", "ObjectiveCSwift", nil); !errors.Is(err, domainerrors.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage for empty input, got %v", err)
	}
}

func TestIPAParserRejectsPlistWithoutRequiredKeys(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("Payload/Demo.app/Info.plist")
	if err != nil {
		t.Fatalf("create plist entry: %v", err)
	}
	bare := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>Demo</string>
</dict>
</plist>`
	if _, err := entry.Write([]byte(bare)); err != nil {
		t.Fatalf("write plist: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	if _, err := (IPAParser{}).Parse("demo.ipa", buf.Bytes()); !errors.Is(err, domainerrors.ErrMalformedPackage) {
		t.Fatalf("identifier-less bundle: expected ErrMalformedPackage, got %v", err)
	}
}

func TestIPAParserFallsBackToBundleVersion(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("Payload/Demo.app/Info.plist")
	if err != nil {
		t.Fatalf("create plist entry: %v", err)
	}
	plistBody := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.example.demo</string>
	<key>CFBundleVersion</key>
	<string>42</string>
</dict>
</plist>`
	if _, err := entry.Write([]byte(plistBody)); err != nil {
		t.Fatalf("write plist: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	parsed, err := IPAParser{}.Parse("demo.ipa", buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Version != "42" {
		t.Fatalf("version should fall back to CFBundleVersion, got %q", parsed.Version)
	}
}

func TestRegistryHonorsDeclaredOS(t *testing.T) {
	// An Android application must not ingest an iOS bundle, however the
	// file is named.
	if _, err := NewRegistry().Parse("demo.ipa", "Android", "JavaKotlin", buildIPA(t, false)); !errors.Is(err, domainerrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for iOS bundle on Android app, got %v", err)
	}
	// Apps without a declared OS keep the content-first behavior.
	if _, err := NewRegistry().Parse("demo.ipa", "", "", buildIPA(t, false)); err != nil {
		t.Fatalf("parse without declared OS: %v", err)
	}
}
