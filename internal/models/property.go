package models

import "time"

// Property is the parent row, one per unique normalized address. All child
// tables hang off PropertyKey with cascading deletes.
type Property struct {
	PropertyKey        string   `gorm:"type:varchar(32);primaryKey" json:"property_key"`
	PropertyTitle      *string  `gorm:"type:varchar(255)" json:"property_title,omitempty"`
	Address            *string  `gorm:"type:varchar(255)" json:"address,omitempty"`
	Market             *string  `gorm:"type:varchar(100)" json:"market,omitempty"`
	Flood              *string  `gorm:"type:varchar(50)" json:"flood,omitempty"`
	StreetAddress      *string  `gorm:"type:varchar(255)" json:"street_address,omitempty"`
	City               *string  `gorm:"type:varchar(100)" json:"city,omitempty"`
	State              *string  `gorm:"type:char(2)" json:"state,omitempty"`
	ZipCode            *string  `gorm:"type:char(5)" json:"zip_code,omitempty"`
	PropertyType       *string  `gorm:"type:varchar(100)" json:"property_type,omitempty"`
	Highway            *string  `gorm:"type:varchar(50)" json:"highway,omitempty"`
	Train              *string  `gorm:"type:varchar(50)" json:"train,omitempty"`
	TaxRate            *float64 `gorm:"type:decimal(7,4)" json:"tax_rate,omitempty"`
	SqftBasement       *int     `gorm:"type:int" json:"sqft_basement,omitempty"`
	HTW                *string  `gorm:"column:htw;type:varchar(50)" json:"htw,omitempty"`
	Pool               *bool    `gorm:"type:boolean" json:"pool,omitempty"`
	Commercial         *bool    `gorm:"type:boolean" json:"commercial,omitempty"`
	Water              *string  `gorm:"type:varchar(50)" json:"water,omitempty"`
	Sewage             *string  `gorm:"type:varchar(50)" json:"sewage,omitempty"`
	YearBuilt          *int     `gorm:"type:smallint" json:"year_built,omitempty"`
	SqftMixedUse       *int     `gorm:"type:int" json:"sqft_mixed_use,omitempty"`
	SqftTotal          *int     `gorm:"type:int" json:"sqft_total,omitempty"`
	Parking            *string  `gorm:"type:varchar(50)" json:"parking,omitempty"`
	Bed                *int     `gorm:"type:smallint" json:"bed,omitempty"`
	Bath               *float64 `gorm:"type:decimal(3,1)" json:"bath,omitempty"`
	Basement           *bool    `gorm:"type:boolean" json:"basement,omitempty"`
	Layout             *string  `gorm:"type:varchar(50)" json:"layout,omitempty"`
	RentRestricted     *bool    `gorm:"type:boolean" json:"rent_restricted,omitempty"`
	NeighborhoodRating *int     `gorm:"type:smallint" json:"neighborhood_rating,omitempty"`
	Latitude           *float64 `gorm:"type:decimal(10,6)" json:"latitude,omitempty"`
	Longitude          *float64 `gorm:"type:decimal(10,6)" json:"longitude,omitempty"`
	Subdivision        *string  `gorm:"type:varchar(255)" json:"subdivision,omitempty"`
	SchoolAverage      *float64 `gorm:"type:decimal(4,2)" json:"school_average,omitempty"`

	// Set once on first insert, preserved across reloads.
	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// TableName pins the singular table name from the schema.
func (Property) TableName() string {
	return "property"
}
