package service

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library_backend/internals/configs"
	"library_backend/internals/features/catalog/books/dto"
	"library_backend/internals/features/catalog/books/model"
	helper "library_backend/internals/helpers"
	"library_backend/internals/helpers/apperror"
)

const duplicateISBN = "a book with this ISBN already exists"

type BookService struct {
	DB       *gorm.DB
	CoverDir string
	CoverURL string
	Now      func() time.Time
}

func NewBookService(db *gorm.DB) *BookService {
	return &BookService{
		DB:       db,
		CoverDir: configs.App.CoverDir,
		CoverURL: configs.App.CoverPublicURL,
		Now:      time.Now,
	}
}

func (s *BookService) now() time.Time { return s.Now().UTC() }

func (s *BookService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.DB.WithContext(ctx)
}

// FindBookByID returns NotFound for missing and soft-deleted books alike.
func (s *BookService) FindBookByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.BookModel, error) {
	var b model.BookModel
	err := s.conn(ctx, tx).
		Where("book_id = ? AND book_is_deleted = ?", id, false).
		Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("book not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BookService) Create(ctx context.Context, req dto.CreateBookRequest) (*model.BookModel, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b := req.ToModel()
	if err := s.DB.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, helper.MapDBError(err, "", duplicateISBN)
	}
	log.Printf("[BOOK] created %s (%s) with %d copies", b.BookID, b.BookISBN, b.BookTotalCopies)
	return &b, nil
}

func (s *BookService) List(ctx context.Context, q dto.ListBooksQuery, p helper.Paging) ([]model.BookModel, int64, error) {
	base := s.DB.WithContext(ctx).Model(&model.BookModel{}).Where("book_is_deleted = ?", false)

	if strings.TrimSpace(q.Q) != "" {
		like := helper.LikePattern(q.Q)
		base = base.Where("(LOWER(book_title) LIKE ? OR LOWER(book_author) LIKE ? OR LOWER(book_isbn) LIKE ?)", like, like, like)
	}
	if strings.TrimSpace(q.Author) != "" {
		base = base.Where("LOWER(book_author) LIKE ?", helper.LikePattern(q.Author))
	}
	if strings.TrimSpace(q.Category) != "" {
		base = base.Where("LOWER(book_category) = ?", strings.ToLower(strings.TrimSpace(q.Category)))
	}
	if q.Available != nil {
		if *q.Available {
			base = base.Where("book_available_copies > 0")
		} else {
			base = base.Where("book_available_copies = 0")
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.BookModel
	if err := base.
		Order("book_title ASC").
		Order("book_id ASC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update applies descriptive changes and shifts availableCopies by any totalCopies delta.
func (s *BookService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateBookRequest) (*model.BookModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *model.BookModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.FindBookByID(ctx, helper.ForUpdate(tx), id)
		if err != nil {
			return err
		}

		if cols := req.Columns(); len(cols) > 0 {
			if err := tx.Model(&model.BookModel{}).
				Where("book_id = ?", id).
				Updates(cols).Error; err != nil {
				return helper.MapDBError(err, "", duplicateISBN)
			}
		}

		if req.TotalCopies != nil && *req.TotalCopies != b.BookTotalCopies {
			delta := *req.TotalCopies - b.BookTotalCopies
			res := tx.Model(&model.BookModel{}).
				Where("book_id = ? AND book_available_copies + ? >= 0", id, delta).
				Updates(map[string]any{
					"book_total_copies":     gorm.Expr("book_total_copies + ?", delta),
					"book_available_copies": gorm.Expr("book_available_copies + ?", delta),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperror.InvalidState(
					"cannot set total copies to %d while %d copies are on loan",
					*req.TotalCopies, b.OnLoan())
			}
		}

		out, err = s.FindBookByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete soft-deletes a book. Books with copies on loan cannot be removed.
func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.FindBookByID(ctx, helper.ForUpdate(tx), id)
		if err != nil {
			return err
		}
		if n := b.OnLoan(); n > 0 {
			return apperror.InvalidState("cannot delete '%s' while %d copies are on loan", b.BookTitle, n)
		}
		now := s.now()
		if err := tx.Model(&model.BookModel{}).
			Where("book_id = ?", id).
			Updates(map[string]any{
				"book_is_deleted": true,
				"book_deleted_at": now,
			}).Error; err != nil {
			return err
		}
		log.Printf("[BOOK] soft-deleted %s", id)
		return nil
	})
}

// SetCover stores an uploaded image as WebP and records its public URL on the book.
func (s *BookService) SetCover(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader) (*model.BookModel, error) {
	b, err := s.FindBookByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	rel, err := helper.SaveImageAsWebP(s.CoverDir, "books/"+id.String(), fh)
	if err != nil {
		return nil, apperror.Validation(map[string][]string{"cover": {err.Error()}})
	}
	url := strings.TrimRight(s.CoverURL, "/") + "/" + rel
	if err := s.DB.WithContext(ctx).Model(&model.BookModel{}).
		Where("book_id = ?", id).
		Update("book_cover_image_url", url).Error; err != nil {
		return nil, err
	}
	b.BookCoverImageURL = &url
	return b, nil
}

// CheckoutCopy takes one copy off the shelf.
func (s *BookService) CheckoutCopy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := s.conn(ctx, tx).Model(&model.BookModel{}).
		Where("book_id = ? AND book_is_deleted = ? AND book_available_copies > 0", id, false).
		Update("book_available_copies", gorm.Expr("book_available_copies - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		b, err := s.FindBookByID(ctx, tx, id)
		if err != nil {
			return err
		}
		return apperror.InvalidState("no copies of '%s' are available", b.BookTitle)
	}
	return nil
}

// ReturnCopy puts one copy back, never exceeding totalCopies.
func (s *BookService) ReturnCopy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := s.conn(ctx, tx).Model(&model.BookModel{}).
		Where("book_id = ? AND book_available_copies < book_total_copies", id).
		Update("book_available_copies", gorm.Expr("book_available_copies + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.InvalidState("all copies of book %s are already on the shelf", id)
	}
	return nil
}

// WriteOffCopy removes a lost copy from the collection. The copy was on loan,
// so availableCopies is unchanged.
func (s *BookService) WriteOffCopy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := s.conn(ctx, tx).Model(&model.BookModel{}).
		Where("book_id = ? AND book_total_copies > book_available_copies", id).
		Update("book_total_copies", gorm.Expr("book_total_copies - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.InvalidState("book %s has no copies on loan to write off", id)
	}
	return nil
}
