package domain

// CaregiverProfile is the identity-provider profile of the signed-in caregiver
type CaregiverProfile struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"max=200"`
	Picture string `json:"picture" validate:"omitempty,url"`
	Sub     string `json:"sub"`
}

// Label is the caregiver name written into sessions, falling back to the email
func (p CaregiverProfile) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}
