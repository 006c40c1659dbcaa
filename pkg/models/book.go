package models

import (
	"database/sql/driver"
	"time"

	"github.com/uptrace/bun"
)

const (
	MaterialTypeEBook     = "E_BOOK"
	MaterialTypeAudioBook = "AUDIO_BOOK"
)

const (
	FormatPDF  = "PDF"
	FormatEPUB = "EPUB"
	FormatTEXT = "TEXT"
	FormatMP3  = "MP3"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                  string       `bun:",pk" json:"_id"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
	Name                string       `json:"name"`
	AuthorID            string       `json:"authorId"`
	TranslatorID        *string      `json:"translatorId"`
	CategoryIDs         StringList   `bun:"category_ids" json:"category"`
	SubCategoryIDs      StringList   `bun:"subcategory_ids" json:"subCategory"`
	LibraryIDs          StringList   `bun:"library_ids" json:"library"`
	ISBN                *string      `bun:"isbn" json:"isbn"`
	CoverImageKey       *string      `json:"-"`
	CoverImage          *string      `bun:"-" json:"coverImage"`
	AdditionalImageKeys StringList   `json:"-"`
	AdditionalImages    []string     `bun:"-" json:"additionalImages"`
	Description         string       `json:"description"`
	Publisher           string       `json:"publisher"`
	PublishDate         *string      `json:"publishDate"`
	Language            string       `json:"language"`
	LanguageCode        string       `json:"languageCode"`
	FirstPublisher      string       `json:"firstPublisher"`
	AccessType          string       `json:"accessType"`
	SeriesNumber        *int         `json:"seriesNumber"`
	ViewInLibrary       bool         `json:"viewInLibrary"`
	Series              StringList   `json:"series"`
	Material            MaterialList `json:"material"`
	IsActive            bool         `json:"is_active"`
	Deleted             bool         `json:"deleted"`

	Author *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}

// Material groups a book's formats by medium.
type Material struct {
	Type          string    `json:"type"`
	TotalDuration *string   `json:"totalDuration,omitempty"`
	Formats       []*Format `json:"formats"`
}

// Format is one encoding of a book. A format carries either a complete source
// for the whole work, chapters, or both.
type Format struct {
	FormatType     string     `json:"formatType"`
	Publisher      string     `json:"Publisher"`
	PublishedDate  *string    `json:"PublishedDate"`
	CompleteSource *Source    `json:"completeSource"`
	Chapters       []*Chapter `json:"chapters"`
}

type Chapter struct {
	ChapterNumber int       `json:"chapterNumber"`
	ChapterName   string    `json:"chapterName"`
	Source        []*Source `json:"source"`
}

// Source points at a stored content file. URL is nil when no file was
// supplied for the slot.
type Source struct {
	Voice    *string `json:"voice,omitempty"`
	Duration *string `json:"duration,omitempty"`
	URL      *string `json:"source"`
	Key      *string `json:"key,omitempty"`
}

// MaterialList is stored as a JSON document in a TEXT column.
type MaterialList []*Material

func (m MaterialList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return valueJSON([]*Material(m))
}

func (m *MaterialList) Scan(src interface{}) error {
	*m = MaterialList{}
	return scanJSON(src, (*[]*Material)(m))
}

// Keys returns the blob keys of every resolved source.
func (m MaterialList) Keys() []string {
	keys := []string{}
	for _, material := range m {
		for _, format := range material.Formats {
			if format.CompleteSource != nil && format.CompleteSource.Key != nil {
				keys = append(keys, *format.CompleteSource.Key)
			}
			for _, chapter := range format.Chapters {
				for _, source := range chapter.Source {
					if source.Key != nil {
						keys = append(keys, *source.Key)
					}
				}
			}
		}
	}
	return keys
}
