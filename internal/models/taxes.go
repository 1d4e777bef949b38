package models

// Taxes is the annual tax snapshot, at most one row per property.
type Taxes struct {
	PropertyKey string   `gorm:"type:varchar(32);primaryKey" json:"property_key"`
	Amount      *float64 `gorm:"type:decimal(14,2)" json:"amount,omitempty"`

	Property Property `gorm:"foreignKey:PropertyKey;references:PropertyKey;constraint:OnDelete:CASCADE" json:"-"`
}

func (Taxes) TableName() string {
	return "taxes"
}
