package dataset

// categories.go - IUCN Red List categorical vocabularies

// RiskCategories lists the IUCN extinction-risk categories from most to
// least threatened. Chart axes follow this order rather than count order.
var RiskCategories = []string{"EX", "EW", "CR", "EN", "VU", "NT", "LC", "DD"}

// TrendCategories lists the IUCN population-trend labels.
var TrendCategories = []string{"INCREASING", "STABLE", "DECREASING", "UNKNOWN", "UNSPECIFIED"}

// RiskOrder returns the position of a risk category in RiskCategories.
// Unknown categories sort after the known ones; the registry is external
// data and may carry values outside the published vocabulary.
func RiskOrder(cat string) int {
	for i, c := range RiskCategories {
		if c == cat {
			return i
		}
	}
	return len(RiskCategories)
}

// TrendOrder returns the position of a trend label in TrendCategories,
// with unknown labels after the known ones.
func TrendOrder(trend string) int {
	for i, c := range TrendCategories {
		if c == trend {
			return i
		}
	}
	return len(TrendCategories)
}
