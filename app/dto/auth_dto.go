package dto

// LoginRequest represents the operator login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// OperatorDTO represents the authenticated operator in responses
type OperatorDTO struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Scope     string `json:"scope"`
	CompanyID *uint  `json:"company_id,omitempty"`
}

// LoginResponse represents the operator login response
type LoginResponse struct {
	Message     string      `json:"message"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	Operator    OperatorDTO `json:"operator"`
}
