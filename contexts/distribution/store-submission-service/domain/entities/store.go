package entities

import "time"

// StoreType identifies an external distribution channel.
type StoreType int

const (
	StoreRawLink StoreType = iota + 1
	StoreAppStore
	StoreGooglePlay
	StoreMicrosoft
	StoreVivo
)

var storeTypeNames = map[StoreType]string{
	StoreRawLink:    "RawLink",
	StoreAppStore:   "AppStore",
	StoreGooglePlay: "GooglePlay",
	StoreMicrosoft:  "MicrosoftStore",
	StoreVivo:       "Vivo",
}

func (t StoreType) Valid() bool { _, ok := storeTypeNames[t]; return ok }

func (t StoreType) String() string {
	if name, ok := storeTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

func ParseStoreType(raw string) (StoreType, bool) {
	for t, name := range storeTypeNames {
		if name == raw {
			return t, true
		}
	}
	return 0, false
}

// StoreApp is an application's account on one channel. At most one per
// (app, store type) pair.
type StoreApp struct {
	StoreAppID     string
	AppID          string
	Type           StoreType
	Name           string
	Link           string
	AccessKey      string
	AccessSecret   string
	PackageName    string
	CurrentVersion string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmissionState tracks a release through a store's review pipeline.
type SubmissionState int

const (
	StateInitial SubmissionState = iota + 1
	StateSubmitReview
	StateReviewPassed
	StateReviewRejected
	StateReleased
)

var submissionStateNames = map[SubmissionState]string{
	StateInitial:        "Initial",
	StateSubmitReview:   "SubmitReview",
	StateReviewPassed:   "ReviewPassed",
	StateReviewRejected: "ReviewRejected",
	StateReleased:       "Released",
}

func (s SubmissionState) Valid() bool { _, ok := submissionStateNames[s]; return ok }

func (s SubmissionState) String() string {
	if name, ok := submissionStateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Submission is one release pushed through one store's review pipeline.
type Submission struct {
	SubmissionID string
	StoreAppID   string
	ReleaseID    string
	State        SubmissionState
	TaskID       string
	Message      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
