package books

import (
	"mime/multipart"

	"github.com/kusalwijekoon97/ml-be/pkg/materials"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
)

// Form fields that carry images rather than material sources.
const (
	coverImageField       = "coverImage"
	additionalImagesField = "additionalImages"
)

type StoreBookPayload struct {
	Name           string          `json:"name" validate:"required,max=500" mod:"trim"`
	Author         string          `json:"author" validate:"required" mod:"trim"`
	Translator     *string         `json:"translator" mod:"trim"`
	Category       []string        `json:"category" validate:"dive,required"`
	SubCategory    []string        `json:"subCategory" validate:"dive,required"`
	Library        []string        `json:"library" validate:"dive,required"`
	ISBN           *string         `json:"isbn" mod:"trim"`
	Description    string          `json:"description"`
	Publisher      string          `json:"publisher" mod:"trim"`
	PublishDate    *string         `json:"publishDate" validate:"omitempty,date"`
	Language       string          `json:"language" mod:"trim"`
	LanguageCode   string          `json:"languageCode" mod:"trim"`
	FirstPublisher string          `json:"firstPublisher" mod:"trim"`
	AccessType     string          `json:"accessType" mod:"trim"`
	SeriesNumber   *int            `json:"seriesNumber" validate:"omitempty,min=0"`
	ViewInLibrary  bool            `json:"viewInLibrary"`
	Series         []string        `json:"series"`
	Material       materials.Input `json:"material"`

	FormFiles     map[string]*multipart.FileHeader   `json:"-"`
	FormFileLists map[string][]*multipart.FileHeader `json:"-"`
}

// UpdateBookPayload covers the general fields. Material is write-once and
// cannot be submitted here.
type UpdateBookPayload struct {
	Name           *string   `json:"name" validate:"omitempty,notblank,max=500" mod:"trim"`
	Author         *string   `json:"author" validate:"omitempty,notblank" mod:"trim"`
	Translator     *string   `json:"translator" mod:"trim"`
	Category       *[]string `json:"category" validate:"omitempty,dive,required"`
	SubCategory    *[]string `json:"subCategory" validate:"omitempty,dive,required"`
	Library        *[]string `json:"library" validate:"omitempty,dive,required"`
	ISBN           *string   `json:"isbn" mod:"trim"`
	Description    *string   `json:"description"`
	Publisher      *string   `json:"publisher" mod:"trim"`
	PublishDate    *string   `json:"publishDate" validate:"omitempty,date"`
	Language       *string   `json:"language" mod:"trim"`
	LanguageCode   *string   `json:"languageCode" mod:"trim"`
	FirstPublisher *string   `json:"firstPublisher" mod:"trim"`
	AccessType     *string   `json:"accessType" mod:"trim"`
	SeriesNumber   *int      `json:"seriesNumber" validate:"omitempty,min=0"`
	ViewInLibrary  *bool     `json:"viewInLibrary"`
	Series         *[]string `json:"series"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type ListBooksQuery struct {
	respond.PageQuery
	Category string `query:"category" mod:"trim"`
	Author   string `query:"author" mod:"trim"`
	Library  string `query:"library" mod:"trim"`
}
