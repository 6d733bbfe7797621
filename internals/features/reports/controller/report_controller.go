package controller

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/reports/dto"
	"library_backend/internals/features/reports/service"
	helper "library_backend/internals/helpers"
)

type ReportController struct {
	DB  *gorm.DB
	svc *service.ReportService
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, svc: service.NewReportService(db)}
}

func NewReportControllerWith(svc *service.ReportService) *ReportController {
	return &ReportController{DB: svc.DB, svc: svc}
}

// GET /reports/dashboard?from=&to=
func (rc *ReportController) Dashboard(c *fiber.Ctx) error {
	r, err := dto.ParseRange(c.Query("from"), c.Query("to"), rc.svc.Now())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	d, err := rc.svc.Dashboard(c.UserContext(), r)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "dashboard", d)
}

// GET /reports/overdue
func (rc *ReportController) Overdue(c *fiber.Ctx) error {
	rows, err := rc.svc.Overdue(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "overdue loans", rows)
}

// GET /reports/export?kind=transactions|fines&from=&to=
func (rc *ReportController) Export(c *fiber.Ctx) error {
	kind := strings.ToLower(strings.TrimSpace(c.Query("kind")))
	if err := dto.ValidateExportKind(kind); err != nil {
		return helper.JsonAppError(c, err)
	}
	r, err := dto.ParseRange(c.Query("from"), c.Query("to"), rc.svc.Now())
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	var buf bytes.Buffer
	if err := rc.svc.ExportCSV(c.UserContext(), kind, r, &buf); err != nil {
		return helper.JsonAppError(c, err)
	}
	name := fmt.Sprintf("%s_%s_%s.csv", kind, r.From.Format("20060102"), r.To.AddDate(0, 0, -1).Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(buf.Bytes())
}
