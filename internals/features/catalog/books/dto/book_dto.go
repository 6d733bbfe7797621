package dto

import (
	"strings"

	"library_backend/internals/features/catalog/books/model"
	helper "library_backend/internals/helpers"
)

type CreateBookRequest struct {
	ISBN            string  `json:"isbn"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publicationYear"`
	Category        *string `json:"category"`
	ShelfLocation   *string `json:"shelfLocation"`
	TotalCopies     int     `json:"totalCopies"`
}

// NormalizeISBN strips separators so "978-0-306-40615-7" and "9780306406157" collide.
func NormalizeISBN(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

func (r *CreateBookRequest) Normalize() {
	r.ISBN = NormalizeISBN(r.ISBN)
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Publisher = helper.TrimPtr(r.Publisher)
	r.Category = helper.TrimPtr(r.Category)
	r.ShelfLocation = helper.TrimPtr(r.ShelfLocation)
}

func (r CreateBookRequest) Validate() error {
	fe := helper.FieldErrors{}
	checkISBN(fe, r.ISBN)
	fe.RequireText("title", r.Title, 255)
	fe.RequireText("author", r.Author, 255)
	fe.Check("totalCopies", r.TotalCopies, "gte=0,lte=10000", "must be between 0 and 10000")
	if r.PublicationYear != nil {
		fe.Check("publicationYear", *r.PublicationYear, "gte=1000,lte=2100", "is not a plausible year")
	}
	return fe.Err()
}

func checkISBN(fe helper.FieldErrors, isbn string) {
	if isbn == "" {
		fe.Add("isbn", "is required")
		return
	}
	fe.Check("isbn", isbn, "alphanum,min=10,max=13", "must be a 10 or 13 character ISBN")
}

func (r CreateBookRequest) ToModel() model.BookModel {
	return model.BookModel{
		BookISBN:            r.ISBN,
		BookTitle:           r.Title,
		BookAuthor:          r.Author,
		BookPublisher:       r.Publisher,
		BookPublicationYear: r.PublicationYear,
		BookCategory:        r.Category,
		BookShelfLocation:   r.ShelfLocation,
		BookTotalCopies:     r.TotalCopies,
		BookAvailableCopies: r.TotalCopies,
	}
}

// UpdateBookRequest is a partial update; nil fields are left untouched.
type UpdateBookRequest struct {
	ISBN            *string `json:"isbn"`
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publicationYear"`
	Category        *string `json:"category"`
	ShelfLocation   *string `json:"shelfLocation"`
	TotalCopies     *int    `json:"totalCopies"`
}

func (r UpdateBookRequest) Validate() error {
	fe := helper.FieldErrors{}
	if r.ISBN != nil {
		checkISBN(fe, NormalizeISBN(*r.ISBN))
	}
	if r.Title != nil {
		fe.RequireText("title", *r.Title, 255)
	}
	if r.Author != nil {
		fe.RequireText("author", *r.Author, 255)
	}
	if r.TotalCopies != nil {
		fe.Check("totalCopies", *r.TotalCopies, "gte=0,lte=10000", "must be between 0 and 10000")
	}
	if r.PublicationYear != nil {
		fe.Check("publicationYear", *r.PublicationYear, "gte=1000,lte=2100", "is not a plausible year")
	}
	return fe.Err()
}

// Columns returns the descriptive columns to update. Copy counts are handled separately.
func (r UpdateBookRequest) Columns() map[string]any {
	cols := map[string]any{}
	if r.ISBN != nil {
		cols["book_isbn"] = NormalizeISBN(*r.ISBN)
	}
	if r.Title != nil {
		cols["book_title"] = strings.TrimSpace(*r.Title)
	}
	if r.Author != nil {
		cols["book_author"] = strings.TrimSpace(*r.Author)
	}
	if r.Publisher != nil {
		cols["book_publisher"] = helper.TrimPtr(r.Publisher)
	}
	if r.PublicationYear != nil {
		cols["book_publication_year"] = *r.PublicationYear
	}
	if r.Category != nil {
		cols["book_category"] = helper.TrimPtr(r.Category)
	}
	if r.ShelfLocation != nil {
		cols["book_shelf_location"] = helper.TrimPtr(r.ShelfLocation)
	}
	return cols
}

type ListBooksQuery struct {
	Q         string
	Author    string
	Category  string
	Available *bool
}
