package models

// Leads holds sales-funnel status and financial ratios, at most one row
// per property.
type Leads struct {
	PropertyKey          string   `gorm:"type:varchar(32);primaryKey" json:"property_key"`
	ReviewedStatus       *string  `gorm:"type:varchar(100)" json:"reviewed_status,omitempty"`
	MostRecentStatus     *string  `gorm:"type:varchar(100)" json:"most_recent_status,omitempty"`
	Source               *string  `gorm:"type:varchar(100)" json:"source,omitempty"`
	Occupancy            *string  `gorm:"type:varchar(100)" json:"occupancy,omitempty"`
	NetYield             *float64 `gorm:"type:decimal(6,3)" json:"net_yield,omitempty"`
	IRR                  *float64 `gorm:"column:irr;type:decimal(6,3)" json:"irr,omitempty"`
	SellingReason        *string  `gorm:"type:varchar(255)" json:"selling_reason,omitempty"`
	SellerRetainedBroker *bool    `gorm:"type:boolean" json:"seller_retained_broker,omitempty"`
	FinalReviewer        *string  `gorm:"type:varchar(100)" json:"final_reviewer,omitempty"`

	Property Property `gorm:"foreignKey:PropertyKey;references:PropertyKey;constraint:OnDelete:CASCADE" json:"-"`
}

func (Leads) TableName() string {
	return "leads"
}
