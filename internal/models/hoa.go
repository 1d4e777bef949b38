package models

// Hoa is one HOA dues scenario for a property.
type Hoa struct {
	PropertyKey  string   `gorm:"type:varchar(32);primaryKey" json:"property_key"`
	ScenarioRank int      `gorm:"type:smallint;primaryKey" json:"scenario_rank"`
	HoaAmount    *float64 `gorm:"type:decimal(12,2)" json:"hoa_amount,omitempty"`
	HoaFlag      *bool    `gorm:"type:boolean" json:"hoa_flag,omitempty"`

	Property Property `gorm:"foreignKey:PropertyKey;references:PropertyKey;constraint:OnDelete:CASCADE" json:"-"`
}

func (Hoa) TableName() string {
	return "hoa"
}
