package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/fines/dto"
	"library_backend/internals/features/fines/service"
	helper "library_backend/internals/helpers"
)

type FineController struct {
	DB  *gorm.DB
	svc *service.FineService
}

func NewFineController(db *gorm.DB, gateway service.PaymentGateway) *FineController {
	return &FineController{DB: db, svc: service.NewFineService(db, gateway)}
}

func NewFineControllerWith(svc *service.FineService) *FineController {
	return &FineController{DB: svc.DB, svc: svc}
}

// POST /fines
func (fc *FineController) Create(c *fiber.Ctx) error {
	var req dto.CreateFineRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	f, err := fc.svc.Create(c.UserContext(), nil, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "fine recorded", f)
}

// GET /fines/:id
func (fc *FineController) GetByID(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	f, err := fc.svc.FindByID(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helper.EnsureSelfOrStaff(me, f.FineMemberID); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "fine", f)
}

// GET /fines/member/:id?status=
func (fc *FineController) ListByMember(c *fiber.Ctx) error {
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
	rows, err := fc.svc.ListByMember(c.UserContext(), memberID, dto.ListFinesQuery{Status: c.Query("status")})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "fines", rows)
}

// POST /fines/:id/pay
func (fc *FineController) Pay(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.PayFineRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	f, err := fc.svc.Pay(c.UserContext(), id, req.Amount)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "payment recorded", f)
}

// PUT /fines/:id/waive
func (fc *FineController) Waive(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.WaiveFineRequest
	if len(c.Body()) > 0 {
		if err := helper.BindJSON(c, &req); err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	f, err := fc.svc.Waive(c.UserContext(), id, me.UserID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "fine waived", f)
}

// POST /fines/:id/checkout
func (fc *FineController) Checkout(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	f, err := fc.svc.FindByID(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helper.EnsureSelfOrStaff(me, f.FineMemberID); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := fc.svc.Checkout(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "checkout created", res)
}

// POST /fines/notification (gateway callback, no JWT)
func (fc *FineController) Notification(c *fiber.Ctx) error {
	var n dto.GatewayNotification
	if err := helper.BindJSON(c, &n); err != nil {
		return helper.JsonAppError(c, err)
	}
	n.OrderID = strings.TrimSpace(n.OrderID)
	f, err := fc.svc.HandleNotification(c.UserContext(), n)
	if errors.Is(err, service.ErrBadSignature) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
	}
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "notification processed", f)
}
