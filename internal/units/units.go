// Package units provides shared constants and validation for player speed units.
package units

// Unit constants. Provider tracking data reports speeds in m/s.
const (
	MPS = "mps"
	KPH = "kph"
	MPH = "mph"
)

// ValidUnits contains all valid unit values accepted by the API.
var ValidUnits = []string{MPS, KPH, MPH}

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ValidUnitsString returns a comma-separated list of valid units for error messages.
func ValidUnitsString() string {
	return "mps, kph, mph"
}

// ConvertSpeed converts a speed from meters per second to the target units.
// Unknown units fall back to m/s rather than failing so a bad query parameter
// never breaks a stats response.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KPH:
		return speedMPS * 3.6
	case MPH:
		return speedMPS * 2.23694
	case MPS:
		return speedMPS
	default:
		return speedMPS
	}
}
