package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"property-etl/internal/transform"
)

// PqStore persists bundles into PostgreSQL over database/sql.
type PqStore struct {
	conn *sql.DB
}

func NewPqStore(host, port, user, password, dbname, sslmode string) (*PqStore, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &PqStore{conn: conn}, nil
}

// NewPqStoreFromDB wraps an existing connection.
func NewPqStoreFromDB(conn *sql.DB) *PqStore {
	return &PqStore{conn: conn}
}

func (s *PqStore) Close() error {
	return s.conn.Close()
}

// InitSchema creates the six tables with cascading foreign keys.
func (s *PqStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS property (
		property_key VARCHAR(32) PRIMARY KEY,
		property_title VARCHAR(255),
		address VARCHAR(255),
		market VARCHAR(100),
		flood VARCHAR(50),
		street_address VARCHAR(255),
		city VARCHAR(100),
		state CHAR(2),
		zip_code CHAR(5),
		property_type VARCHAR(100),
		highway VARCHAR(50),
		train VARCHAR(50),
		tax_rate DECIMAL(7,4),
		sqft_basement INTEGER,
		htw VARCHAR(50),
		pool BOOLEAN,
		commercial BOOLEAN,
		water VARCHAR(50),
		sewage VARCHAR(50),
		year_built SMALLINT,
		sqft_mixed_use INTEGER,
		sqft_total INTEGER,
		parking VARCHAR(50),
		bed SMALLINT,
		bath DECIMAL(3,1),
		basement BOOLEAN,
		layout VARCHAR(50),
		rent_restricted BOOLEAN,
		neighborhood_rating SMALLINT,
		latitude DECIMAL(10,6),
		longitude DECIMAL(10,6),
		subdivision VARCHAR(255),
		school_average DECIMAL(4,2),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS leads (
		property_key VARCHAR(32) PRIMARY KEY
			REFERENCES property(property_key) ON DELETE CASCADE,
		reviewed_status VARCHAR(100),
		most_recent_status VARCHAR(100),
		source VARCHAR(100),
		occupancy VARCHAR(100),
		net_yield DECIMAL(6,3),
		irr DECIMAL(6,3),
		selling_reason VARCHAR(255),
		seller_retained_broker BOOLEAN,
		final_reviewer VARCHAR(100)
	);

	CREATE TABLE IF NOT EXISTS valuation (
		property_key VARCHAR(32) NOT NULL
			REFERENCES property(property_key) ON DELETE CASCADE,
		scenario_rank SMALLINT NOT NULL,
		list_price DECIMAL(14,2),
		previous_rent DECIMAL(14,2),
		arv DECIMAL(14,2),
		expected_rent DECIMAL(14,2),
		rent_zestimate DECIMAL(14,2),
		low_fmr DECIMAL(14,2),
		high_fmr DECIMAL(14,2),
		redfin_value DECIMAL(14,2),
		zestimate DECIMAL(14,2),
		PRIMARY KEY (property_key, scenario_rank)
	);

	CREATE TABLE IF NOT EXISTS rehab (
		property_key VARCHAR(32) NOT NULL
			REFERENCES property(property_key) ON DELETE CASCADE,
		scenario_rank SMALLINT NOT NULL,
		underwriting_rehab DECIMAL(14,2),
		rehab_calculation DECIMAL(14,2),
		paint BOOLEAN,
		flooring_flag BOOLEAN,
		foundation_flag BOOLEAN,
		roof_flag BOOLEAN,
		hvac_flag BOOLEAN,
		kitchen_flag BOOLEAN,
		bathroom_flag BOOLEAN,
		appliances_flag BOOLEAN,
		windows_flag BOOLEAN,
		landscaping_flag BOOLEAN,
		trashout_flag BOOLEAN,
		PRIMARY KEY (property_key, scenario_rank)
	);

	CREATE TABLE IF NOT EXISTS hoa (
		property_key VARCHAR(32) NOT NULL
			REFERENCES property(property_key) ON DELETE CASCADE,
		scenario_rank SMALLINT NOT NULL,
		hoa_amount DECIMAL(12,2),
		hoa_flag BOOLEAN,
		PRIMARY KEY (property_key, scenario_rank)
	);

	CREATE TABLE IF NOT EXISTS taxes (
		property_key VARCHAR(32) PRIMARY KEY
			REFERENCES property(property_key) ON DELETE CASCADE,
		amount DECIMAL(14,2)
	);
	`
	_, err := s.conn.Exec(query)
	return err
}

// ListKeys returns every property key currently stored.
func (s *PqStore) ListKeys() ([]string, error) {
	rows, err := s.conn.Query("SELECT property_key FROM property")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DeleteProperty removes one parent row; the cascade constraints take the
// child rows with it.
func (s *PqStore) DeleteProperty(key string) error {
	_, err := s.conn.Exec("DELETE FROM property WHERE property_key = $1", key)
	return wrapLoadError(key, err)
}

// SaveBundle writes one property and its children in a single transaction,
// upserting the parent and replacing each child row set.
func (s *PqStore) SaveBundle(b transform.Bundle) error {
	key := b.Property.PropertyKey

	tx, err := s.conn.Begin()
	if err != nil {
		return wrapLoadError(key, err)
	}
	if err := s.saveBundleTx(tx, b); err != nil {
		tx.Rollback()
		return wrapLoadError(key, err)
	}
	return wrapLoadError(key, tx.Commit())
}

func (s *PqStore) saveBundleTx(tx *sql.Tx, b transform.Bundle) error {
	key := b.Property.PropertyKey
	p := b.Property

	// Parent first: children reference it. created_at only lands on
	// insert; the conflict branch leaves it untouched.
	query := `
	INSERT INTO property (
		property_key, property_title, address, market, flood,
		street_address, city, state, zip_code, property_type,
		highway, train, tax_rate, sqft_basement, htw,
		pool, commercial, water, sewage, year_built,
		sqft_mixed_use, sqft_total, parking, bed, bath,
		basement, layout, rent_restricted, neighborhood_rating,
		latitude, longitude, subdivision, school_average, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, $33, $34)
	ON CONFLICT (property_key) DO UPDATE SET
		property_title = EXCLUDED.property_title,
		address = EXCLUDED.address,
		market = EXCLUDED.market,
		flood = EXCLUDED.flood,
		street_address = EXCLUDED.street_address,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		zip_code = EXCLUDED.zip_code,
		property_type = EXCLUDED.property_type,
		highway = EXCLUDED.highway,
		train = EXCLUDED.train,
		tax_rate = EXCLUDED.tax_rate,
		sqft_basement = EXCLUDED.sqft_basement,
		htw = EXCLUDED.htw,
		pool = EXCLUDED.pool,
		commercial = EXCLUDED.commercial,
		water = EXCLUDED.water,
		sewage = EXCLUDED.sewage,
		year_built = EXCLUDED.year_built,
		sqft_mixed_use = EXCLUDED.sqft_mixed_use,
		sqft_total = EXCLUDED.sqft_total,
		parking = EXCLUDED.parking,
		bed = EXCLUDED.bed,
		bath = EXCLUDED.bath,
		basement = EXCLUDED.basement,
		layout = EXCLUDED.layout,
		rent_restricted = EXCLUDED.rent_restricted,
		neighborhood_rating = EXCLUDED.neighborhood_rating,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		subdivision = EXCLUDED.subdivision,
		school_average = EXCLUDED.school_average
	`
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.Exec(query,
		p.PropertyKey, p.PropertyTitle, p.Address, p.Market, p.Flood,
		p.StreetAddress, p.City, p.State, p.ZipCode, p.PropertyType,
		p.Highway, p.Train, p.TaxRate, p.SqftBasement, p.HTW,
		p.Pool, p.Commercial, p.Water, p.Sewage, p.YearBuilt,
		p.SqftMixedUse, p.SqftTotal, p.Parking, p.Bed, p.Bath,
		p.Basement, p.Layout, p.RentRestricted, p.NeighborhoodRating,
		p.Latitude, p.Longitude, p.Subdivision, p.SchoolAverage, createdAt,
	); err != nil {
		return err
	}

	// Replace semantics for every child table.
	for _, table := range []string{"leads", "valuation", "rehab", "hoa", "taxes"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE property_key = $1", key); err != nil {
			return err
		}
	}

	if l := b.Leads; l != nil {
		if _, err := tx.Exec(`
		INSERT INTO leads (
			property_key, reviewed_status, most_recent_status, source,
			occupancy, net_yield, irr, selling_reason,
			seller_retained_broker, final_reviewer
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.PropertyKey, l.ReviewedStatus, l.MostRecentStatus, l.Source,
			l.Occupancy, l.NetYield, l.IRR, l.SellingReason,
			l.SellerRetainedBroker, l.FinalReviewer,
		); err != nil {
			return err
		}
	}

	for _, v := range b.Valuations {
		if _, err := tx.Exec(`
		INSERT INTO valuation (
			property_key, scenario_rank, list_price, previous_rent, arv,
			expected_rent, rent_zestimate, low_fmr, high_fmr,
			redfin_value, zestimate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			v.PropertyKey, v.ScenarioRank, v.ListPrice, v.PreviousRent, v.ARV,
			v.ExpectedRent, v.RentZestimate, v.LowFMR, v.HighFMR,
			v.RedfinValue, v.Zestimate,
		); err != nil {
			return err
		}
	}

	for _, r := range b.Rehabs {
		if _, err := tx.Exec(`
		INSERT INTO rehab (
			property_key, scenario_rank, underwriting_rehab, rehab_calculation,
			paint, flooring_flag, foundation_flag, roof_flag, hvac_flag,
			kitchen_flag, bathroom_flag, appliances_flag, windows_flag,
			landscaping_flag, trashout_flag
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			r.PropertyKey, r.ScenarioRank, r.UnderwritingRehab, r.RehabCalculation,
			r.Paint, r.FlooringFlag, r.FoundationFlag, r.RoofFlag, r.HVACFlag,
			r.KitchenFlag, r.BathroomFlag, r.AppliancesFlag, r.WindowsFlag,
			r.LandscapingFlag, r.TrashoutFlag,
		); err != nil {
			return err
		}
	}

	for _, h := range b.Hoas {
		if _, err := tx.Exec(`
		INSERT INTO hoa (property_key, scenario_rank, hoa_amount, hoa_flag)
		VALUES ($1, $2, $3, $4)`,
			h.PropertyKey, h.ScenarioRank, h.HoaAmount, h.HoaFlag,
		); err != nil {
			return err
		}
	}

	if t := b.Taxes; t != nil {
		if _, err := tx.Exec(`
		INSERT INTO taxes (property_key, amount) VALUES ($1, $2)`,
			t.PropertyKey, t.Amount,
		); err != nil {
			return err
		}
	}

	return nil
}
