package dto

// CreateProfileRequest starts a profile run for one company.
type CreateProfileRequest struct {
	CompanyName string `json:"company_name"`
}
