package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"library_backend/internals/constants"
	"library_backend/internals/features/members/model"
	helper "library_backend/internals/helpers"
)

type CreateMemberRequest struct {
	UserID     uuid.UUID  `json:"userId"`
	MemberType string     `json:"memberType"`
	Phone      *string    `json:"phone"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

func (r *CreateMemberRequest) Normalize() {
	r.MemberType = strings.ToLower(strings.TrimSpace(r.MemberType))
	r.Phone = helper.TrimPtr(r.Phone)
}

func (r CreateMemberRequest) Validate() error {
	fe := helper.FieldErrors{}
	fe.RequireUUID("userId", r.UserID)
	CheckMemberType(fe, r.MemberType)
	if r.Phone != nil {
		fe.Check("phone", *r.Phone, "max=30", "is too long")
	}
	return fe.Err()
}

func CheckMemberType(fe helper.FieldErrors, t string) {
	if !constants.IsValidMemberType(t) {
		fe.Add("memberType", "must be one of student, faculty, public")
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	fe := helper.FieldErrors{}
	if !model.IsValidMemberStatus(strings.TrimSpace(r.Status)) {
		fe.Add("status", "must be one of active, suspended, expired")
	}
	return fe.Err()
}

type ListMembersQuery struct {
	Status     string
	MemberType string
}
