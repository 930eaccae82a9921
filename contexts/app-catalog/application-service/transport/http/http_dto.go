package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateApplicationRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	OS          string `json:"os"`
	Platform    string `json:"platform"`
	ReleaseType string `json:"release_type"`
}

type UpdateApplicationRequest struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility"`
	ReleaseType *string `json:"release_type"`
}

type AddMemberRequest struct {
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type ApplicationDTO struct {
	Owner       string `json:"owner"`
	OwnerKind   string `json:"owner_kind"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	OS          string `json:"os"`
	Platform    string `json:"platform"`
	ReleaseType string `json:"release_type"`
	IconPath    string `json:"icon_path,omitempty"`
	Role        string `json:"role,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ApplicationResponse struct {
	Status string         `json:"status"`
	Data   ApplicationDTO `json:"data"`
}

type ApplicationListResponse struct {
	Status string           `json:"status"`
	Data   []ApplicationDTO `json:"data"`
}

type MemberDTO struct {
	Handle    string `json:"handle"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type MemberResponse struct {
	Status string    `json:"status"`
	Data   MemberDTO `json:"data"`
}

type MemberListResponse struct {
	Status string      `json:"status"`
	Data   []MemberDTO `json:"data"`
}

type DeploymentKeyDTO struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	CreatedAt string `json:"created_at"`
}

type DeploymentKeyListResponse struct {
	Status string             `json:"status"`
	Data   []DeploymentKeyDTO `json:"data"`
}

type IconResponse struct {
	Status string `json:"status"`
	Data   struct {
		IconPath string `json:"icon_path"`
	} `json:"data"`
}
