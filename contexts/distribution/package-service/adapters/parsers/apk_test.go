package parsers

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
)

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestAPKParserRejectsArchiveWithoutManifest(t *testing.T) {
	data := buildZip(t, map[string][]byte{"classes.dex": []byte("dex")})
	if _, err := (APKParser{}).Parse("demo.apk", data); !errors.Is(err, domainerrors.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
}

func TestAPKParserRejectsGarbageBytes(t *testing.T) {
	if _, err := (APKParser{}).Parse("demo.apk", []byte("not a zip")); !errors.Is(err, domainerrors.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
}

func TestAPKParserProbe(t *testing.T) {
	// Unreadable bytes fall back to the extension.
	if !(APKParser{}).CanParse("demo.apk", "", "", []byte("not a zip")) {
		t.Fatal("extension fallback should claim .apk names")
	}
	if (APKParser{}).CanParse("demo.bin", "", "", []byte("not a zip")) {
		t.Fatal("unknown extension with unreadable bytes should not be claimed")
	}
	// The declared OS gates the probe before any content inspection.
	if (APKParser{}).CanParse("demo.apk", "iOS", "ObjectiveCSwift", []byte("not a zip")) {
		t.Fatal("an iOS application must not claim APK artifacts")
	}
}

func TestRegistryRoutesAPKNamesToAPKParser(t *testing.T) {
	// A broken archive with an .apk name reaches the APK parser and fails
	// there, rather than being rejected as an unknown format.
	data := buildZip(t, map[string][]byte{"classes.dex": []byte("dex")})
	if _, err := NewRegistry().Parse("demo.apk", "Android", "JavaKotlin", data); !errors.Is(err, domainerrors.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
}
