package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	fineController "library_backend/internals/features/fines/controller"
	fineRoute "library_backend/internals/features/fines/route"
	reportRoute "library_backend/internals/features/reports/route"
	reservationRoute "library_backend/internals/features/reservations/route"
	transactionRoute "library_backend/internals/features/transactions/route"
)

// CirculationRoutes covers reservations, loans, fines and reports.
func CirculationRoutes(private fiber.Router, db *gorm.DB, fines *fineController.FineController) {
	reservationRoute.ReservationRoutes(private, db)
	transactionRoute.TransactionRoutes(private, db)
	fineRoute.FineRoutes(private, fines)
	reportRoute.ReportRoutes(private, db)
}
