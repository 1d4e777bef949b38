package models

// Valuation is one valuation scenario for a property. Ranks are contiguous
// from 1 in source order.
type Valuation struct {
	PropertyKey  string   `gorm:"type:varchar(32);primaryKey" json:"property_key"`
	ScenarioRank int      `gorm:"type:smallint;primaryKey" json:"scenario_rank"`
	ListPrice    *float64 `gorm:"type:decimal(14,2)" json:"list_price,omitempty"`
	PreviousRent *float64 `gorm:"type:decimal(14,2)" json:"previous_rent,omitempty"`
	ARV          *float64 `gorm:"column:arv;type:decimal(14,2)" json:"arv,omitempty"`
	ExpectedRent *float64 `gorm:"type:decimal(14,2)" json:"expected_rent,omitempty"`
	RentZestimate *float64 `gorm:"type:decimal(14,2)" json:"rent_zestimate,omitempty"`
	LowFMR       *float64 `gorm:"column:low_fmr;type:decimal(14,2)" json:"low_fmr,omitempty"`
	HighFMR      *float64 `gorm:"column:high_fmr;type:decimal(14,2)" json:"high_fmr,omitempty"`
	RedfinValue  *float64 `gorm:"type:decimal(14,2)" json:"redfin_value,omitempty"`
	Zestimate    *float64 `gorm:"type:decimal(14,2)" json:"zestimate,omitempty"`

	Property Property `gorm:"foreignKey:PropertyKey;references:PropertyKey;constraint:OnDelete:CASCADE" json:"-"`
}

func (Valuation) TableName() string {
	return "valuation"
}
