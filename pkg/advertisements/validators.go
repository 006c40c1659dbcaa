package advertisements

import (
	"mime/multipart"

	"github.com/kusalwijekoon97/ml-be/pkg/respond"
)

const imageField = "advertisement"

type StoreAdvertisementPayload struct {
	IsActive *bool `json:"is_active"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type UpdateAdvertisementPayload struct {
	IsActive *bool `json:"is_active"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type ListAdvertisementsQuery struct {
	respond.PageQuery
}
