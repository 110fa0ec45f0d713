package domain

// Plant is a single catalog entry. Instances are immutable once fetched from
// the upstream catalog; the rest of the codebase only reads them.
type Plant struct {
	ID          string
	Name        string
	Description string
	Category    string

	GrowZoneNumber       int
	WateringIntervalDays int
	ImageURL             string
}
