package types

import "fmt"

// GeographyPoint is a WGS84 coordinate pair. It is stored as two plain
// columns so the schema works on both Postgres and SQLite.
type GeographyPoint struct {
	Lat float64 `json:"latitude" gorm:"column:latitude"`
	Lng float64 `json:"longitude" gorm:"column:longitude"`
}

// Validate checks the coordinates are within WGS84 bounds.
func (g GeographyPoint) Validate() error {
	if g.Lat < -90 || g.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", g.Lat)
	}
	if g.Lng < -180 || g.Lng > 180 {
		return fmt.Errorf("longitude %f out of range", g.Lng)
	}
	return nil
}
