package enums

import "strings"

type GenderPreference string

const (
	GenderPreferenceAll       GenderPreference = "all"
	GenderPreferenceFemale    GenderPreference = "female"
	GenderPreferenceMale      GenderPreference = "male"
	GenderPreferenceNonBinary GenderPreference = "nonbinary"
)

func ParseGenderPreference(input string) (GenderPreference, bool) {
	switch GenderPreference(strings.ToLower(strings.TrimSpace(input))) {
	case "", GenderPreferenceAll:
		return GenderPreferenceAll, true
	case GenderPreferenceFemale:
		return GenderPreferenceFemale, true
	case GenderPreferenceMale:
		return GenderPreferenceMale, true
	case GenderPreferenceNonBinary, "non_binary", "non-binary":
		return GenderPreferenceNonBinary, true
	default:
		return "", false
	}
}

func (g GenderPreference) Accepts(gender string) bool {
	if g == "" || g == GenderPreferenceAll {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(gender), string(g))
}
