package materialtypes

import "github.com/kusalwijekoon97/ml-be/pkg/respond"

type StoreMaterialTypePayload struct {
	Name string `json:"name" validate:"required,max=100" mod:"trim"`
}

type UpdateMaterialTypePayload struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=100" mod:"trim"`
	IsActive *bool   `json:"is_active"`
}

type ListMaterialTypesQuery struct {
	respond.PageQuery
}
