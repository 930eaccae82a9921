package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility"`
}

type AddMemberRequest struct {
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type OrganizationDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	IconPath    string `json:"icon_path,omitempty"`
	Role        string `json:"role,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type OrganizationResponse struct {
	Status string          `json:"status"`
	Data   OrganizationDTO `json:"data"`
}

type OrganizationListResponse struct {
	Status string            `json:"status"`
	Data   []OrganizationDTO `json:"data"`
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

type IconResponse struct {
	Status string `json:"status"`
	Data   struct {
		IconPath string `json:"icon_path"`
	} `json:"data"`
}
