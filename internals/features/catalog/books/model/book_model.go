package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookModel struct {
	BookID              uuid.UUID  `gorm:"column:book_id;type:uuid;primaryKey" json:"id"`
	BookISBN            string     `gorm:"column:book_isbn;type:varchar(20);uniqueIndex;not null" json:"isbn"`
	BookTitle           string     `gorm:"column:book_title;type:varchar(255);not null" json:"title"`
	BookAuthor          string     `gorm:"column:book_author;type:varchar(255);not null" json:"author"`
	BookPublisher       *string    `gorm:"column:book_publisher;type:varchar(255)" json:"publisher,omitempty"`
	BookPublicationYear *int       `gorm:"column:book_publication_year" json:"publicationYear,omitempty"`
	BookCategory        *string    `gorm:"column:book_category;type:varchar(100);index" json:"category,omitempty"`
	BookShelfLocation   *string    `gorm:"column:book_shelf_location;type:varchar(50)" json:"shelfLocation,omitempty"`
	BookCoverImageURL   *string    `gorm:"column:book_cover_image_url" json:"coverImageUrl,omitempty"`
	BookTotalCopies     int        `gorm:"column:book_total_copies;not null;default:0" json:"totalCopies"`
	BookAvailableCopies int        `gorm:"column:book_available_copies;not null;default:0" json:"availableCopies"`
	BookIsDeleted       bool       `gorm:"column:book_is_deleted;not null;default:false;index" json:"isDeleted"`
	BookDeletedAt       *time.Time `gorm:"column:book_deleted_at" json:"deletedAt,omitempty"`
	BookCreatedAt       time.Time  `gorm:"column:book_created_at;autoCreateTime" json:"createdAt"`
	BookUpdatedAt       time.Time  `gorm:"column:book_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (BookModel) TableName() string { return "books" }

func (b *BookModel) BeforeCreate(tx *gorm.DB) error {
	if b.BookID == uuid.Nil {
		b.BookID = uuid.New()
	}
	return nil
}

// OnLoan is the number of copies currently checked out.
func (b BookModel) OnLoan() int { return b.BookTotalCopies - b.BookAvailableCopies }
