package entities

import (
	"strings"
	"time"

	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// OperatingSystem is the OS an application targets.
type OperatingSystem int

const (
	OSAndroid OperatingSystem = 1
	OSiOS     OperatingSystem = 2
	OSMacOS   OperatingSystem = 3
	OSTizen   OperatingSystem = 4
	OSTvOS    OperatingSystem = 5
	OSWindows OperatingSystem = 6
	OSLinux   OperatingSystem = 7
)

var osNames = map[OperatingSystem]string{
	OSAndroid: "Android",
	OSiOS:     "iOS",
	OSMacOS:   "macOS",
	OSTizen:   "Tizen",
	OSTvOS:    "tvOS",
	OSWindows: "Windows",
	OSLinux:   "Linux",
}

func (o OperatingSystem) Valid() bool { _, ok := osNames[o]; return ok }
func (o OperatingSystem) String() string {
	if name, ok := osNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOperatingSystem maps a wire spelling to an OS value.
func ParseOperatingSystem(raw string) (OperatingSystem, bool) {
	for value, name := range osNames {
		if strings.EqualFold(strings.TrimSpace(raw), name) {
			return value, true
		}
	}
	return 0, false
}

// Platform is the toolchain the application is built with.
type Platform int

const (
	PlatformJavaKotlin      Platform = 1
	PlatformObjectiveCSwift Platform = 2
	PlatformUWP             Platform = 3
	PlatformCordova         Platform = 4
	PlatformReactNative     Platform = 5
	PlatformXamarin         Platform = 6
	PlatformUnity           Platform = 7
	PlatformElectron        Platform = 8
	PlatformWPF             Platform = 9
	PlatformWinForms        Platform = 10
)

var platformNames = map[Platform]string{
	PlatformJavaKotlin:      "JavaKotlin",
	PlatformObjectiveCSwift: "ObjectiveCSwift",
	PlatformUWP:             "UWP",
	PlatformCordova:         "Cordova",
	PlatformReactNative:     "ReactNative",
	PlatformXamarin:         "Xamarin",
	PlatformUnity:           "Unity",
	PlatformElectron:        "Electron",
	PlatformWPF:             "WPF",
	PlatformWinForms:        "WinForms",
}

func (p Platform) Valid() bool { _, ok := platformNames[p]; return ok }
func (p Platform) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}
	return "unknown"
}

func ParsePlatform(raw string) (Platform, bool) {
	for value, name := range platformNames {
		if strings.EqualFold(strings.TrimSpace(raw), name) {
			return value, true
		}
	}
	return 0, false
}

// ReleaseType classifies the distribution channel of an application.
type ReleaseType int

const (
	ReleaseTypeAlpha      ReleaseType = 1
	ReleaseTypeBeta       ReleaseType = 2
	ReleaseTypeEnterprise ReleaseType = 3
	ReleaseTypeProduction ReleaseType = 4
	ReleaseTypeStore      ReleaseType = 5
)

var releaseTypeNames = map[ReleaseType]string{
	ReleaseTypeAlpha:      "Alpha",
	ReleaseTypeBeta:       "Beta",
	ReleaseTypeEnterprise: "Enterprise",
	ReleaseTypeProduction: "Production",
	ReleaseTypeStore:      "Store",
}

func (r ReleaseType) Valid() bool { return r >= ReleaseTypeAlpha && r <= ReleaseTypeStore }

func (r ReleaseType) String() string {
	if name, ok := releaseTypeNames[r]; ok {
		return name
	}
	return "unknown"
}

func ParseReleaseType(raw string) (ReleaseType, bool) {
	for value, name := range releaseTypeNames {
		if strings.EqualFold(strings.TrimSpace(raw), name) {
			return value, true
		}
	}
	return 0, false
}

// Application is a distributable app owned either by a user (personal) or by
// an organization, never both. Name is a slug unique within the owner's
// namespace.
type Application struct {
	AppID       string
	OwnerUserID string
	OrgID       string
	Name        string
	DisplayName string
	Description string
	Visibility  access.Visibility
	OS          OperatingSystem
	Platform    Platform
	ReleaseType ReleaseType
	IconPath    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrgOwned reports whether the application lives in an organization
// namespace.
func (a Application) OrgOwned() bool { return a.OrgID != "" }

// Member is one user's role on one application. Unique per (app, user).
// Organization-owned applications additionally derive effective roles from
// the owning organization's membership, see the application service.
type Member struct {
	AppID     string
	UserID    string
	Role      access.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeploymentKey targets releases at one rollout environment. Exactly two are
// created with the application (staging, production) and are immutable after
// that.
type DeploymentKey struct {
	AppID     string
	Name      string
	Key       string
	CreatedAt time.Time
}

const (
	EnvironmentStaging    = "staging"
	EnvironmentProduction = "production"
)
