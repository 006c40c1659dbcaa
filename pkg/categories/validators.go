package categories

import "github.com/kusalwijekoon97/ml-be/pkg/respond"

type SubCategoryInput struct {
	ID   *string `json:"_id"`
	Name string  `json:"name" validate:"required,max=200" mod:"trim"`
}

type StoreCategoryPayload struct {
	Name          string             `json:"name" validate:"required,max=200" mod:"trim"`
	Library       []string           `json:"library" validate:"dive,required"`
	SubCategories []SubCategoryInput `json:"subCategories" validate:"dive"`
}

type UpdateCategoryPayload struct {
	Name     *string   `json:"name" validate:"omitempty,notblank,max=200" mod:"trim"`
	Library  *[]string `json:"library" validate:"omitempty,dive,required"`
	IsActive *bool     `json:"is_active"`
	// SubCategories, when present, is reconciled against the current
	// children: entries with an _id are updated, entries without one are
	// created and children that are left out are removed.
	SubCategories *[]SubCategoryInput `json:"subCategories" validate:"omitempty,dive"`
}

type ListCategoriesQuery struct {
	respond.PageQuery
}

type SearchCategoriesQuery struct {
	Name    string `query:"name" mod:"trim"`
	Library string `query:"library" mod:"trim"`
}

type StoreSubCategoryPayload struct {
	Name           string `json:"name" validate:"required,max=200" mod:"trim"`
	ParentCategory string `json:"parentCategory" validate:"required" mod:"trim"`
}

type UpdateSubCategoryPayload struct {
	Name           string  `json:"name" validate:"required,max=200" mod:"trim"`
	ParentCategory *string `json:"parentCategory" validate:"omitempty,notblank" mod:"trim"`
}

type SearchSubCategoriesQuery struct {
	Name     string `query:"name" mod:"trim"`
	Category string `query:"category" mod:"trim"`
}
