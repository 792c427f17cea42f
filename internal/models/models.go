package models

import (
	"strconv"
	"strings"
)

// Document type labels used in metadata. Every indexed document carries
// exactly one of them.
const (
	TypeShelter   = "shelter"
	TypeGuideline = "disaster_guideline"
)

type Document struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// Shelter is a per-query view over shelter document metadata. Distance is
// kilometers from a reference point, 0 when no reference point exists.
type Shelter struct {
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	Capacity        int     `json:"capacity"`
	ShelterType     string  `json:"shelter_type"`
	FacilityType    string  `json:"facility_type"`
	OperatingStatus string  `json:"operating_status,omitempty"`
	Distance        float64 `json:"distance"`
}

// StructuredData is the map-display payload attached to a tool answer.
// Coordinates is [lat, lon], nil when no center could be computed.
type StructuredData struct {
	Location     string    `json:"location"`
	LocationType string    `json:"location_type,omitempty"`
	Coordinates  []float64 `json:"coordinates,omitempty"`
	Shelters     []Shelter `json:"shelters"`
	TotalCount   int       `json:"total_count"`
}

// ToolResult is what every tool returns: prose plus an optional payload.
type ToolResult struct {
	Text           string          `json:"text"`
	StructuredData *StructuredData `json:"structured_data"`
}

// Place is a geocoding result.
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

// MetaString returns a string metadata field, or fallback when missing.
func (d Document) MetaString(key, fallback string) string {
	if v, ok := d.Metadata[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// MetaFloat coerces a metadata field to float64. Missing or malformed
// values become 0, which downstream code treats as "unknown".
func (d Document) MetaFloat(key string) float64 {
	switch v := d.Metadata[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

// MetaInt coerces a metadata field to a non-negative int. Malformed and
// missing values default to 0; the record is kept either way.
func (d Document) MetaInt(key string) int {
	n := int(d.MetaFloat(key))
	if n < 0 {
		return 0
	}
	return n
}

// ShelterFromDocument builds the per-query shelter view from metadata.
func ShelterFromDocument(d Document) Shelter {
	return Shelter{
		Name:            d.MetaString("facility_name", "N/A"),
		Address:         d.MetaString("address", "N/A"),
		Lat:             d.MetaFloat("lat"),
		Lon:             d.MetaFloat("lon"),
		Capacity:        d.MetaInt("capacity"),
		ShelterType:     d.MetaString("shelter_type", "N/A"),
		FacilityType:    d.MetaString("facility_type", "N/A"),
		OperatingStatus: d.MetaString("operating_status", "N/A"),
	}
}
