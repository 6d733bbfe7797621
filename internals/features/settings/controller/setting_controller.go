package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/settings/dto"
	"library_backend/internals/features/settings/service"
	helper "library_backend/internals/helpers"
)

type SettingController struct {
	DB  *gorm.DB
	svc *service.SettingService
}

func NewSettingController(db *gorm.DB) *SettingController {
	return &SettingController{DB: db, svc: service.NewSettingService(db)}
}

// GET /settings
func (sc *SettingController) List(c *fiber.Ctx) error {
	rows, err := sc.svc.List(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "loan policies", rows)
}

// GET /settings/:memberType
func (sc *SettingController) GetByMemberType(c *fiber.Ctx) error {
	memberType := strings.ToLower(strings.TrimSpace(c.Params("memberType")))
	row, err := sc.svc.FindByMemberType(c.UserContext(), nil, memberType)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "loan policy", fiber.Map{
		"setting": row,
		"terms":   service.LoanTerms(*row),
	})
}

// PUT /settings/:memberType
func (sc *SettingController) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertSettingRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	memberType := strings.ToLower(strings.TrimSpace(c.Params("memberType")))
	row, err := sc.svc.Upsert(c.UserContext(), memberType, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "loan policy updated", row)
}
