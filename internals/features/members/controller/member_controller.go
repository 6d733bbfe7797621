package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/members/dto"
	"library_backend/internals/features/members/service"
	helper "library_backend/internals/helpers"
)

type MemberController struct {
	DB  *gorm.DB
	svc *service.MemberService
}

func NewMemberController(db *gorm.DB) *MemberController {
	return &MemberController{DB: db, svc: service.NewMemberService(db)}
}

// POST /members
func (mc *MemberController) Create(c *fiber.Ctx) error {
	var req dto.CreateMemberRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := mc.svc.Create(c.UserContext(), nil, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "member created", m)
}

// GET /members?status=&memberType=
func (mc *MemberController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := mc.svc.List(c.UserContext(), dto.ListMembersQuery{
		Status:     c.Query("status"),
		MemberType: c.Query("memberType"),
	}, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "members", rows, helper.BuildPagination(total, paging, len(rows)))
}

// GET /members/:id
func (mc *MemberController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helper.EnsureSelfOrStaff(me, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := mc.svc.FindMemberByID(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "member", m)
}

// PATCH /members/:id/status
func (mc *MemberController) UpdateStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateStatusRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := mc.svc.UpdateStatus(c.UserContext(), id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "member status updated", m)
}
