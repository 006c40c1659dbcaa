package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID            string         `bun:",pk" json:"_id"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Name          string         `json:"name"`
	LibraryIDs    StringList     `bun:"library_ids" json:"library"`
	IsActive      bool           `json:"is_active"`
	Deleted       bool           `json:"deleted"`
	SubCategories []*SubCategory `bun:"rel:has-many,join:id=category_id" json:"subCategories"`
}

// SubCategoryIDs returns the ids of the category's children in order.
func (c *Category) SubCategoryIDs() []string {
	ids := make([]string, 0, len(c.SubCategories))
	for _, sub := range c.SubCategories {
		ids = append(ids, sub.ID)
	}
	return ids
}

type SubCategory struct {
	bun.BaseModel `bun:"table:subcategories,alias:sc"`

	ID         string    `bun:",pk" json:"_id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CategoryID string    `json:"parentCategory"`
	Name       string    `json:"name"`
	SubSlug    string    `json:"sub_slug"`
	SortOrder  int       `json:"-"`
	IsActive   bool      `json:"is_active"`
	Category   *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}
