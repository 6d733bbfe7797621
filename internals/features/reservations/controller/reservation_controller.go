package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/reservations/dto"
	"library_backend/internals/features/reservations/service"
	helper "library_backend/internals/helpers"
)

type ReservationController struct {
	DB  *gorm.DB
	svc *service.ReservationService
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db, svc: service.NewReservationService(db)}
}

// NewReservationControllerWith is used by tests that need a custom clock or limits.
func NewReservationControllerWith(svc *service.ReservationService) *ReservationController {
	return &ReservationController{DB: svc.DB, svc: svc}
}

// POST /reservations
func (rc *ReservationController) Create(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateReservationRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := req.Validate(me.IsStaff()); err != nil {
		return helper.JsonAppError(c, err)
	}

	memberID := me.MemberID
	if me.IsStaff() {
		memberID = *req.MemberID
	} else if req.MemberID != nil && *req.MemberID != me.MemberID {
		return helper.JsonError(c, fiber.StatusForbidden, "members may only reserve for themselves")
	}
	if err := helper.EnsureSelfOrStaff(me, memberID); err != nil {
		return helper.JsonAppError(c, err)
	}

	r, err := rc.svc.Create(c.UserContext(), req.BookID, memberID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "reservation created", r)
}

// DELETE /reservations/:id
func (rc *ReservationController) Cancel(c *fiber.Ctx) error {
	me, err := helper.CurrentUser(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	existing, err := rc.svc.FindByID(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helper.EnsureSelfOrStaff(me, existing.ReservationMemberID); err != nil {
		return helper.JsonAppError(c, err)
	}

	r, err := rc.svc.Cancel(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "reservation cancelled", r)
}

// PUT /reservations/:id/fulfill
func (rc *ReservationController) Fulfill(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	r, err := rc.svc.Fulfill(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "reservation fulfilled", r)
}

// GET /reservations/member/:id
func (rc *ReservationController) ListByMember(c *fiber.Ctx) error {
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
	rows, err := rc.svc.GetByMember(c.UserContext(), memberID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "reservations", rows)
}

// GET /reservations/book/:id
func (rc *ReservationController) ListByBook(c *fiber.Ctx) error {
	bookID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := rc.svc.GetByBook(c.UserContext(), bookID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "reservation queue", dto.ToQueue(rows))
}

// GET /reservations/book/:id/next
func (rc *ReservationController) NextInQueue(c *fiber.Ctx) error {
	bookID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	r, err := rc.svc.GetNextInQueue(c.UserContext(), nil, bookID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if r == nil {
		return helper.JsonOK(c, "queue is empty", nil)
	}
	return helper.JsonOK(c, "next reservation", r)
}

// POST /reservations/expire
func (rc *ReservationController) Expire(c *fiber.Ctx) error {
	n, err := rc.svc.ExpireOld(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "expiry sweep finished", dto.ExpireResult{ExpiredCount: n})
}
