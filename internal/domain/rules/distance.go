package rules

import (
	"fmt"
	"math"
)

func DistanceLabel(km float64) string {
	if km < 0 || math.IsNaN(km) {
		return ""
	}
	if km < 1 {
		return "a menos de 1 km"
	}
	return fmt.Sprintf("a %d km", int(math.Round(km)))
}
