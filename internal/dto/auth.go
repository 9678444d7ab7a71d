package dto

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorPayload is the backend error body. Detail is either a string or a list of validation issues.
type ErrorPayload struct {
	Detail interface{} `json:"detail"`
}
