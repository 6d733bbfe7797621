package dto

import (
	"strings"

	membersDto "library_backend/internals/features/members/dto"
	helper "library_backend/internals/helpers"
)

type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FullName   string  `json:"fullName"`
	MemberType string  `json:"memberType"`
	Phone      *string `json:"phone"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.MemberType = strings.ToLower(strings.TrimSpace(r.MemberType))
	r.Phone = helper.TrimPtr(r.Phone)
}

func (r RegisterRequest) Validate() error {
	fe := helper.FieldErrors{}
	checkEmail(fe, r.Email)
	checkPassword(fe, "password", r.Password)
	fe.RequireText("fullName", r.FullName, 150)
	membersDto.CheckMemberType(fe, r.MemberType)
	return fe.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	fe := helper.FieldErrors{}
	if strings.TrimSpace(r.Email) == "" {
		fe.Add("email", "is required")
	}
	if r.Password == "" {
		fe.Add("password", "is required")
	}
	return fe.Err()
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	fe := helper.FieldErrors{}
	checkEmail(fe, strings.TrimSpace(r.Email))
	return fe.Err()
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	fe := helper.FieldErrors{}
	if strings.TrimSpace(r.Token) == "" {
		fe.Add("token", "is required")
	}
	checkPassword(fe, "newPassword", r.NewPassword)
	return fe.Err()
}

// CreateStaffRequest is used by the operator CLI.
type CreateStaffRequest struct {
	Email    string
	FullName string
	Password string
	Role     string
}

func (r CreateStaffRequest) Validate() error {
	fe := helper.FieldErrors{}
	checkEmail(fe, r.Email)
	fe.RequireText("fullName", r.FullName, 150)
	checkPassword(fe, "password", r.Password)
	fe.Check("role", r.Role, "oneof=librarian admin", "must be librarian or admin")
	return fe.Err()
}

func checkEmail(fe helper.FieldErrors, email string) {
	if email == "" {
		fe.Add("email", "is required")
		return
	}
	fe.Check("email", email, "email,max=255", "must be a valid email address")
}

func checkPassword(fe helper.FieldErrors, field, pw string) {
	if pw == "" {
		fe.Add(field, "is required")
		return
	}
	fe.Check(field, pw, "min=8,max=72", "must be 8 to 72 characters")
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	User        any    `json:"user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	fe := helper.FieldErrors{}
	if r.OldPassword == "" {
		fe.Add("oldPassword", "is required")
	}
	checkPassword(fe, "newPassword", r.NewPassword)
	if r.OldPassword != "" && r.OldPassword == r.NewPassword {
		fe.Add("newPassword", "must differ from the current password")
	}
	return fe.Err()
}
