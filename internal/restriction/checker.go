package restriction

import (
	"fmt"
	"sort"
	"time"

	"fleetops/internal/domain"
	"fleetops/internal/geo"
)

// alternativeClocks are the candidate departure slots offered when a time
// ban blocks the requested departure: early morning, midday, late evening.
var alternativeClocks = []struct{ hour, minute int }{
	{4, 30},
	{11, 0},
	{21, 30},
}

// RouteQuery describes a candidate route to check.
type RouteQuery struct {
	Origin      domain.Location
	Destination domain.Location
	DepartAt    time.Time
}

// VehicleSpec carries the physical properties the rules care about.
type VehicleSpec struct {
	WeightKg float64
	HeightM  float64
	WidthM   float64
	LengthM  float64
}

// Result is the structured outcome of a compliance check. Violations are
// ordered blocking first. AlternativeTimes is populated whenever at least
// one blocking violation exists.
type Result struct {
	Violations       []domain.Violation
	Warnings         []string
	AlternativeTimes []time.Time
}

// Blocked reports whether any violation prevents the route as planned.
func (r Result) Blocked() bool {
	for _, v := range r.Violations {
		if v.Blocking() {
			return true
		}
	}
	return false
}

// Checker evaluates routes against a rule table. It is pure: identical
// inputs always produce the identical violation set, and the only clock it
// consults is the supplied departure time.
type Checker struct {
	table *RuleTable
}

// NewChecker creates a checker over the given rule table.
func NewChecker(table *RuleTable) *Checker {
	return &Checker{table: table}
}

// Check evaluates the route and vehicle against every city whose zone
// contains the origin or destination.
func (c *Checker) Check(query RouteQuery, spec VehicleSpec) Result {
	var result Result

	for _, city := range c.table.Cities {
		if !c.cityTouches(city, query) {
			continue
		}

		c.checkTimeBans(city, query, &result)
		c.checkWeight(city, spec, &result)
		c.checkRestrictedZones(city, query, &result)
	}

	// Blocking violations come before warnings.
	sort.SliceStable(result.Violations, func(i, j int) bool {
		return result.Violations[i].Blocking() && !result.Violations[j].Blocking()
	})

	if result.Blocked() {
		result.AlternativeTimes = c.alternativeTimes(query)
	}

	return result
}

// cityTouches reports whether the route's origin or destination falls
// inside the city's registered zone.
func (c *Checker) cityTouches(city CityRules, query RouteQuery) bool {
	center := domain.GeoPoint{Lat: city.Zone.Center.Lat, Lng: city.Zone.Center.Lng}
	return geo.InCircle(query.Origin.Lat, query.Origin.Lng, center, city.Zone.RadiusKm) ||
		geo.InCircle(query.Destination.Lat, query.Destination.Lng, center, city.Zone.RadiusKm)
}

func (c *Checker) checkTimeBans(city CityRules, query RouteQuery, result *Result) {
	for _, ban := range city.TimeBans {
		if !ban.appliesOn(query.DepartAt.Weekday()) || !ban.contains(query.DepartAt) {
			continue
		}

		suggested := c.firstLegalAlternative(query)
		result.Violations = append(result.Violations, domain.Violation{
			Type:     domain.ViolationTypeTimeBan,
			Severity: domain.ViolationSeverityError,
			City:     city.Name,
			Description: fmt.Sprintf("%s: departure at %s falls inside the %s–%s truck ban (%s)",
				city.Name, query.DepartAt.Format("15:04"), ban.Start, ban.End, ban.Description),
			SuggestedAt: suggested,
		})
	}
}

func (c *Checker) checkWeight(city CityRules, spec VehicleSpec, result *Result) {
	limit := city.WeightLimitsKg.InnerCity
	if limit <= 0 || spec.WeightKg <= limit {
		return
	}

	msg := fmt.Sprintf("%s: vehicle weight %.0f kg exceeds the inner-city limit of %.0f kg; use ring road or highway routing",
		city.Name, spec.WeightKg, limit)
	result.Violations = append(result.Violations, domain.Violation{
		Type:        domain.ViolationTypeWeightLimit,
		Severity:    domain.ViolationSeverityWarning,
		City:        city.Name,
		Description: msg,
	})
	result.Warnings = append(result.Warnings, msg)
}

func (c *Checker) checkRestrictedZones(city CityRules, query RouteQuery, result *Result) {
	for _, zone := range city.RestrictedZones {
		polygon := zone.polygonPoints()
		if len(polygon) < 3 {
			continue
		}

		inOrigin := geo.InPolygon(query.Origin.Lat, query.Origin.Lng, polygon)
		inDest := geo.InPolygon(query.Destination.Lat, query.Destination.Lng, polygon)
		if !inOrigin && !inDest {
			continue
		}

		result.Violations = append(result.Violations, domain.Violation{
			Type:     domain.ViolationTypeRestrictedZone,
			Severity: domain.ViolationSeverityError,
			City:     city.Name,
			Zone:     zone.Name,
			Description: fmt.Sprintf("%s: route touches restricted zone %q",
				city.Name, zone.Name),
		})
	}
}

// alternativeTimes returns the candidate departure slots on the same date
// that fall outside every matching ban window.
func (c *Checker) alternativeTimes(query RouteQuery) []time.Time {
	var out []time.Time
	for _, clock := range alternativeClocks {
		candidate := time.Date(
			query.DepartAt.Year(), query.DepartAt.Month(), query.DepartAt.Day(),
			clock.hour, clock.minute, 0, 0, query.DepartAt.Location(),
		)
		if c.legalDeparture(query, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

// firstLegalAlternative picks the earliest legal candidate slot, or the
// zero time if every slot is banned.
func (c *Checker) firstLegalAlternative(query RouteQuery) time.Time {
	for _, t := range c.alternativeTimes(query) {
		return t
	}
	return time.Time{}
}

// legalDeparture reports whether the candidate time avoids every ban
// window of every city the route touches.
func (c *Checker) legalDeparture(query RouteQuery, candidate time.Time) bool {
	for _, city := range c.table.Cities {
		if !c.cityTouches(city, query) {
			continue
		}
		for _, ban := range city.TimeBans {
			if ban.appliesOn(candidate.Weekday()) && ban.contains(candidate) {
				return false
			}
		}
	}
	return true
}
