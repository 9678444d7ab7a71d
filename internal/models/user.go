package models

// UserProfile is the signed-in student's profile. Absent fields are empty strings.
type UserProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StudentID  string `json:"studentId"`
	Avatar     string `json:"avatar"`
	Grade      string `json:"grade"`
	Major      string `json:"major"`
	University string `json:"university"`
	Phone      string `json:"phone,omitempty"`
}

// UserProfilePatch carries a partial profile edit. Nil fields are left untouched.
type UserProfilePatch struct {
	Name       *string `json:"name,omitempty"`
	StudentID  *string `json:"studentId,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	Grade      *string `json:"grade,omitempty"`
	Major      *string `json:"major,omitempty"`
	University *string `json:"university,omitempty"`
}

// Empty reports whether no field is set.
func (p UserProfilePatch) Empty() bool {
	return p.Name == nil && p.StudentID == nil && p.Avatar == nil && p.Grade == nil &&
		p.Major == nil && p.University == nil
}
