package dto

// LoginForm is the gateway login body.
type LoginForm struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the gateway registration body.
type RegisterForm struct {
	Phone           string `json:"phone" validate:"required,len=11,numeric"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"omitempty,max=64"`
}

// PinsRequest replaces the dashboard selection.
type PinsRequest struct {
	IDs []string `json:"ids"`
}

// ExportForm requests an archive export.
type ExportForm struct {
	Format string `json:"format" validate:"omitempty,oneof=csv pdf xlsx CSV PDF XLSX"`
	Tab    string `json:"tab"`
	Query  string `json:"q"`
	Title  string `json:"title" validate:"omitempty,max=120"`
}
