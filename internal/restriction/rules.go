package restriction

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fleetops/internal/domain"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleTable is the declarative set of per-city legal restrictions. New
// cities and zones are added as data, not code.
type RuleTable struct {
	Cities []CityRules `yaml:"cities"`
}

// CityRules holds the restrictions registered for one city.
type CityRules struct {
	Name            string           `yaml:"name"`
	Zone            CircleZone       `yaml:"zone"`
	TimeBans        []TimeBan        `yaml:"time_bans"`
	WeightLimitsKg  WeightLimits     `yaml:"weight_limits_kg"`
	RestrictedZones []RestrictedZone `yaml:"restricted_zones"`
}

// CircleZone is the circular region a city's rules apply to.
type CircleZone struct {
	Center   LatLng  `yaml:"center"`
	RadiusKm float64 `yaml:"radius_km"`
}

// LatLng is a coordinate pair in the rule file.
type LatLng struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// TimeBan is a time-of-day window during which trucks may not depart.
type TimeBan struct {
	Days        []string `yaml:"days"` // Three-letter weekday names; empty means every day.
	Start       string   `yaml:"start"`
	End         string   `yaml:"end"`
	Description string   `yaml:"description"`
}

// WeightLimits are the tiered weight caps for a city.
type WeightLimits struct {
	InnerCity float64 `yaml:"inner_city"`
	RingRoad  float64 `yaml:"ring_road"`
	Highway   float64 `yaml:"highway"`
}

// RestrictedZone is a polygonal no-go area inside a city.
type RestrictedZone struct {
	Name    string   `yaml:"name"`
	Polygon []LatLng `yaml:"polygon"`
}

// DefaultRules parses the embedded rule table.
func DefaultRules() (*RuleTable, error) {
	return parseRules(defaultRulesYAML)
}

// LoadRules reads a rule table from the given YAML file, falling back to
// the embedded defaults when path is empty.
func LoadRules(path string) (*RuleTable, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return parseRules(data)
}

func parseRules(data []byte) (*RuleTable, error) {
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	for i := range table.Cities {
		city := &table.Cities[i]
		if city.Zone.RadiusKm <= 0 {
			return nil, fmt.Errorf("rule table: city %q has no zone radius", city.Name)
		}
		for _, ban := range city.TimeBans {
			if _, err := parseClock(ban.Start); err != nil {
				return nil, fmt.Errorf("rule table: city %q: %w", city.Name, err)
			}
			if _, err := parseClock(ban.End); err != nil {
				return nil, fmt.Errorf("rule table: city %q: %w", city.Name, err)
			}
		}
	}
	return &table, nil
}

// appliesOn reports whether the ban is active on the given weekday.
func (b TimeBan) appliesOn(day time.Weekday) bool {
	if len(b.Days) == 0 {
		return true
	}
	short := day.String()[:3]
	for _, d := range b.Days {
		if strings.EqualFold(d, short) {
			return true
		}
	}
	return false
}

// contains reports whether the given time-of-day falls inside the window.
func (b TimeBan) contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	start, _ := parseClock(b.Start)
	end, _ := parseClock(b.End)
	return minute >= start && minute < end
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}

func (z RestrictedZone) polygonPoints() []domain.GeoPoint {
	points := make([]domain.GeoPoint, 0, len(z.Polygon))
	for _, p := range z.Polygon {
		points = append(points, domain.GeoPoint{Lat: p.Lat, Lng: p.Lng})
	}
	return points
}
