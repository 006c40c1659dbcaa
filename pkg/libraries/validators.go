package libraries

import "github.com/kusalwijekoon97/ml-be/pkg/respond"

type StoreLibraryPayload struct {
	Name string `json:"name" validate:"required,max=200" mod:"trim"`
}

type UpdateLibraryPayload struct {
	Name      string  `json:"name" validate:"required,max=200" mod:"trim"`
	Librarian *string `json:"librarian" mod:"trim"`
}

type ListLibrariesQuery struct {
	respond.PageQuery
}
