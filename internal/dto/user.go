package dto

// UserProfileRecord is the profile as returned by the backend; any field may be null.
type UserProfileRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StudentID  string `json:"student_id"`
	Avatar     string `json:"avatar"`
	Grade      string `json:"grade"`
	Major      string `json:"major"`
	University string `json:"university"`
	Phone      string `json:"phone,omitempty"`
}

// UserProfileUpdateRequest is the body of PUT /users/profile; only set fields are sent.
type UserProfileUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	StudentID  *string `json:"student_id,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	Grade      *string `json:"grade,omitempty"`
	Major      *string `json:"major,omitempty"`
	University *string `json:"university,omitempty"`
}
