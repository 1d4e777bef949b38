package transform

import (
	"property-etl/internal/fieldmap"
	"property-etl/internal/models"
)

// Bundle holds every entity derived from one canonical record, ready for
// an idempotent load: the parent property, the optional 1:1 children, and
// the ranked scenario children.
type Bundle struct {
	Property   models.Property
	Leads      *models.Leads
	Valuations []models.Valuation
	Rehabs     []models.Rehab
	Hoas       []models.Hoa
	Taxes      *models.Taxes
}

// FanOut splits a canonical record into the parent/child entity shapes.
// All-null scenarios are discarded and the survivors get contiguous ranks
// from 1 in source order. The optional 1:1 entities are emitted only when
// at least one of their fields is non-null.
func FanOut(rec *CanonicalRecord, key string) Bundle {
	return Bundle{
		Property:   fanProperty(rec, key),
		Leads:      fanLeads(rec, key),
		Valuations: fanValuations(rec, key),
		Rehabs:     fanRehabs(rec, key),
		Hoas:       fanHoas(rec, key),
		Taxes:      fanTaxes(rec, key),
	}
}

func fanProperty(rec *CanonicalRecord, key string) models.Property {
	return models.Property{
		PropertyKey:        key,
		PropertyTitle:      rec.Str("property_title"),
		Address:            rec.Str("address"),
		Market:             rec.Str("market"),
		Flood:              rec.Str("flood"),
		StreetAddress:      rec.Str("street_address"),
		City:               rec.Str("city"),
		State:              rec.Str("state"),
		ZipCode:            rec.Str("zip_code"),
		PropertyType:       rec.Str("property_type"),
		Highway:            rec.Str("highway"),
		Train:              rec.Str("train"),
		TaxRate:            rec.Dec("tax_rate"),
		SqftBasement:       rec.IntVal("sqft_basement"),
		HTW:                rec.Str("htw"),
		Pool:               rec.BoolVal("pool"),
		Commercial:         rec.BoolVal("commercial"),
		Water:              rec.Str("water"),
		Sewage:             rec.Str("sewage"),
		YearBuilt:          rec.IntVal("year_built"),
		SqftMixedUse:       rec.IntVal("sqft_mixed_use"),
		SqftTotal:          rec.IntVal("sqft_total"),
		Parking:            rec.Str("parking"),
		Bed:                rec.IntVal("bed"),
		Bath:               rec.Dec("bath"),
		Basement:           rec.BoolVal("basement"),
		Layout:             rec.Str("layout"),
		RentRestricted:     rec.BoolVal("rent_restricted"),
		NeighborhoodRating: rec.IntVal("neighborhood_rating"),
		Latitude:           rec.Dec("latitude"),
		Longitude:          rec.Dec("longitude"),
		Subdivision:        rec.Str("subdivision"),
		SchoolAverage:      rec.Dec("school_average"),
	}
}

func fanLeads(rec *CanonicalRecord, key string) *models.Leads {
	leads := models.Leads{
		PropertyKey:          key,
		ReviewedStatus:       rec.Str("reviewed_status"),
		MostRecentStatus:     rec.Str("most_recent_status"),
		Source:               rec.Str("source"),
		Occupancy:            rec.Str("occupancy"),
		NetYield:             rec.Dec("net_yield"),
		IRR:                  rec.Dec("irr"),
		SellingReason:        rec.Str("selling_reason"),
		SellerRetainedBroker: rec.BoolVal("seller_retained_broker"),
		FinalReviewer:        rec.Str("final_reviewer"),
	}
	if leads.ReviewedStatus == nil && leads.MostRecentStatus == nil && leads.Source == nil &&
		leads.Occupancy == nil && leads.NetYield == nil && leads.IRR == nil &&
		leads.SellingReason == nil && leads.SellerRetainedBroker == nil && leads.FinalReviewer == nil {
		return nil
	}
	return &leads
}

func fanTaxes(rec *CanonicalRecord, key string) *models.Taxes {
	amount := rec.Dec("amount")
	if amount == nil {
		return nil
	}
	return &models.Taxes{PropertyKey: key, Amount: amount}
}

func fanValuations(rec *CanonicalRecord, key string) []models.Valuation {
	var rows []models.Valuation
	for _, s := range survivors(rec.Scenarios(fieldmap.TableValuation)) {
		rows = append(rows, models.Valuation{
			PropertyKey:   key,
			ScenarioRank:  len(rows) + 1,
			ListPrice:     s["list_price"].Dec,
			PreviousRent:  s["previous_rent"].Dec,
			ARV:           s["arv"].Dec,
			ExpectedRent:  s["expected_rent"].Dec,
			RentZestimate: s["rent_zestimate"].Dec,
			LowFMR:        s["low_fmr"].Dec,
			HighFMR:       s["high_fmr"].Dec,
			RedfinValue:   s["redfin_value"].Dec,
			Zestimate:     s["zestimate"].Dec,
		})
	}
	return rows
}

func fanRehabs(rec *CanonicalRecord, key string) []models.Rehab {
	var rows []models.Rehab
	for _, s := range survivors(rec.Scenarios(fieldmap.TableRehab)) {
		rows = append(rows, models.Rehab{
			PropertyKey:       key,
			ScenarioRank:      len(rows) + 1,
			UnderwritingRehab: s["underwriting_rehab"].Dec,
			RehabCalculation:  s["rehab_calculation"].Dec,
			Paint:             s["paint"].Bool,
			FlooringFlag:      s["flooring_flag"].Bool,
			FoundationFlag:    s["foundation_flag"].Bool,
			RoofFlag:          s["roof_flag"].Bool,
			HVACFlag:          s["hvac_flag"].Bool,
			KitchenFlag:       s["kitchen_flag"].Bool,
			BathroomFlag:      s["bathroom_flag"].Bool,
			AppliancesFlag:    s["appliances_flag"].Bool,
			WindowsFlag:       s["windows_flag"].Bool,
			LandscapingFlag:   s["landscaping_flag"].Bool,
			TrashoutFlag:      s["trashout_flag"].Bool,
		})
	}
	return rows
}

func fanHoas(rec *CanonicalRecord, key string) []models.Hoa {
	var rows []models.Hoa
	for _, s := range survivors(rec.Scenarios(fieldmap.TableHoa)) {
		rows = append(rows, models.Hoa{
			PropertyKey:  key,
			ScenarioRank: len(rows) + 1,
			HoaAmount:    s["hoa_amount"].Dec,
			HoaFlag:      s["hoa_flag"].Bool,
		})
	}
	return rows
}

// survivors drops scenarios whose every field is null.
func survivors(scenarios []Scenario) []Scenario {
	var kept []Scenario
	for _, s := range scenarios {
		if !s.IsNull() {
			kept = append(kept, s)
		}
	}
	return kept
}
