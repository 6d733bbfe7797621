package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/transactions/dto"
	"library_backend/internals/features/transactions/service"
	helper "library_backend/internals/helpers"
)

type TransactionController struct {
	DB  *gorm.DB
	svc *service.TransactionService
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{DB: db, svc: service.NewTransactionService(db)}
}

func NewTransactionControllerWith(svc *service.TransactionService) *TransactionController {
	return &TransactionController{DB: svc.DB, svc: svc}
}

// POST /transactions/issue
func (tc *TransactionController) Issue(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.IssueRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := tc.svc.Issue(c.UserContext(), req, me.UserID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "book issued", res)
}

// PUT /transactions/:id/return
func (tc *TransactionController) Return(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := tc.svc.Return(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "book returned", res)
}

// PUT /transactions/:id/renew
func (tc *TransactionController) Renew(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	existing, err := tc.svc.FindByID(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helper.EnsureSelfOrStaff(me, existing.TransactionMemberID); err != nil {
		return helper.JsonAppError(c, err)
	}
	t, err := tc.svc.Renew(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "loan renewed", t)
}

// PUT /transactions/:id/lost
func (tc *TransactionController) MarkLost(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.LostRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := tc.svc.MarkLost(c.UserContext(), id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "loan marked lost", res)
}

// GET /transactions/member/:id?status=
func (tc *TransactionController) ListByMember(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	memberID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helper.EnsureSelfOrStaff(me, memberID); err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := tc.svc.ListByMember(c.UserContext(), memberID, dto.ListQuery{Status: c.Query("status")})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "loans", rows)
}

// GET /transactions/overdue
func (tc *TransactionController) ListOverdue(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := tc.svc.ListOverdue(c.UserContext(), p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "overdue loans", rows, helper.BuildPagination(total, p, len(rows)))
}
