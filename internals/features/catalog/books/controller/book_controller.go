package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/catalog/books/dto"
	"library_backend/internals/features/catalog/books/service"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
)

type BookController struct {
	DB  *gorm.DB
	svc *service.BookService
}

func NewBookController(db *gorm.DB) *BookController {
	return &BookController{DB: db, svc: service.NewBookService(db)}
}

// POST /books
func (bc *BookController) Create(c *fiber.Ctx) error {
	var req dto.CreateBookRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	b, err := bc.svc.Create(c.UserContext(), req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "book created", b)
}

// GET /books?q=&author=&category=&available=&page=&per_page=
func (bc *BookController) List(c *fiber.Ctx) error {
	q := dto.ListBooksQuery{
		Q:        c.Query("q"),
		Author:   c.Query("author"),
		Category: c.Query("category"),
	}
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return helper.JsonAppError(c, apperror.Validation(map[string][]string{"available": {"must be true or false"}}))
		}
		q.Available = &v
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := bc.svc.List(c.UserContext(), q, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "books", rows, helper.BuildPagination(total, paging, len(rows)))
}

// GET /books/:id
func (bc *BookController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	b, err := bc.svc.FindBookByID(c.UserContext(), nil, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "book", b)
}

// PATCH /books/:id
func (bc *BookController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateBookRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	b, err := bc.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "book updated", b)
}

// DELETE /books/:id
func (bc *BookController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := bc.svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "book deleted", fiber.Map{"id": id})
}

// POST /books/:id/cover (multipart field "cover")
func (bc *BookController) UploadCover(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	fh, err := c.FormFile("cover")
	if err != nil {
		return helper.JsonAppError(c, apperror.Validation(map[string][]string{"cover": {"image file is required"}}))
	}
	b, err := bc.svc.SetCover(c.UserContext(), id, fh)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "cover uploaded", b)
}
