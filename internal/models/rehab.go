package models

// Rehab is one rehab scenario for a property: cost estimates plus work-item
// flags.
type Rehab struct {
	PropertyKey       string   `gorm:"type:varchar(32);primaryKey" json:"property_key"`
	ScenarioRank      int      `gorm:"type:smallint;primaryKey" json:"scenario_rank"`
	UnderwritingRehab *float64 `gorm:"type:decimal(14,2)" json:"underwriting_rehab,omitempty"`
	RehabCalculation  *float64 `gorm:"type:decimal(14,2)" json:"rehab_calculation,omitempty"`
	Paint             *bool    `gorm:"type:boolean" json:"paint,omitempty"`
	FlooringFlag      *bool    `gorm:"type:boolean" json:"flooring_flag,omitempty"`
	FoundationFlag    *bool    `gorm:"type:boolean" json:"foundation_flag,omitempty"`
	RoofFlag          *bool    `gorm:"type:boolean" json:"roof_flag,omitempty"`
	HVACFlag          *bool    `gorm:"column:hvac_flag;type:boolean" json:"hvac_flag,omitempty"`
	KitchenFlag       *bool    `gorm:"type:boolean" json:"kitchen_flag,omitempty"`
	BathroomFlag      *bool    `gorm:"type:boolean" json:"bathroom_flag,omitempty"`
	AppliancesFlag    *bool    `gorm:"type:boolean" json:"appliances_flag,omitempty"`
	WindowsFlag       *bool    `gorm:"type:boolean" json:"windows_flag,omitempty"`
	LandscapingFlag   *bool    `gorm:"type:boolean" json:"landscaping_flag,omitempty"`
	TrashoutFlag      *bool    `gorm:"type:boolean" json:"trashout_flag,omitempty"`

	Property Property `gorm:"foreignKey:PropertyKey;references:PropertyKey;constraint:OnDelete:CASCADE" json:"-"`
}

func (Rehab) TableName() string {
	return "rehab"
}
