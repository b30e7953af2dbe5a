package domain

import (
	"time"

	"github.com/google/uuid"
)

type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "Active"
	CategoryInactive CategoryStatus = "Inactive"
)

func (s CategoryStatus) Valid() bool {
	return s == CategoryActive || s == CategoryInactive
}

type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	Name      string         `gorm:"column:category_name;size:140;uniqueIndex;not null" json:"categoryName"`
	Image     string         `gorm:"column:category_image;size:255" json:"categoryImage"`
	Status    CategoryStatus `gorm:"column:category_status;type:varchar(10);index;not null" json:"categoryStatus"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (c *Category) IsActive() bool { return c != nil && c.Status == CategoryActive }

type CategoryPatch struct {
	Name   Optional[string]
	Status Optional[CategoryStatus]
	Image  Optional[string]
}

func (p CategoryPatch) Empty() bool {
	return !p.Name.Set && !p.Status.Set && !p.Image.Set
}

func (c *Category) Apply(p CategoryPatch) {
	if v, ok := p.Name.Get(); ok {
		c.Name = v
	}
	if v, ok := p.Status.Get(); ok {
		c.Status = v
	}
	if v, ok := p.Image.Get(); ok {
		c.Image = v
	}
}
