package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateStoreAppRequest struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	Link         string `json:"link"`
	AccessKey    string `json:"access_key"`
	AccessSecret string `json:"access_secret"`
	PackageName  string `json:"package_name"`
}

type UpdateStoreAppRequest struct {
	Name         *string `json:"name"`
	Link         *string `json:"link"`
	AccessKey    *string `json:"access_key"`
	AccessSecret *string `json:"access_secret"`
	PackageName  *string `json:"package_name"`
}

type SubmitReleaseRequest struct {
	ReleaseNumber int `json:"release_number"`
}

type StoreAppDTO struct {
	Type           string `json:"type"`
	Name           string `json:"name"`
	Link           string `json:"link,omitempty"`
	PackageName    string `json:"package_name,omitempty"`
	CurrentVersion string `json:"current_version,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type StoreAppResponse struct {
	Status string      `json:"status"`
	Data   StoreAppDTO `json:"data"`
}

type StoreAppListResponse struct {
	Status string        `json:"status"`
	Data   []StoreAppDTO `json:"data"`
}

type SubmissionDTO struct {
	SubmissionID string `json:"submission_id"`
	State        string `json:"state"`
	TaskID       string `json:"task_id,omitempty"`
	Message      string `json:"message,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type SubmissionResponse struct {
	Status string        `json:"status"`
	Data   SubmissionDTO `json:"data"`
}

type SubmissionListResponse struct {
	Status string          `json:"status"`
	Data   []SubmissionDTO `json:"data"`
}
