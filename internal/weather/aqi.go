package weather

// AqiLabel maps the ordinal 1-5 air quality index to its category label.
// Any other value yields "N/A".
func AqiLabel(index int) string {
	switch index {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Very Poor"
	default:
		return "N/A"
	}
}

// AqiSevere reports whether the index is in the Poor or Very Poor tier, the
// threshold used by the extreme-weather alert.
func AqiSevere(index int) bool {
	return index > 3 && index <= 5
}
