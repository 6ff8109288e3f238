package entity

// Platform identifies the source marketplace whose fee schedule applies.
type Platform int

const (
	PlatformEcoAuc     Platform = 1
	PlatformBrandAuc   Platform = 2
	PlatformStarBuyers Platform = 3
)

func (p Platform) Valid() bool {
	return p == PlatformEcoAuc || p == PlatformBrandAuc || p == PlatformStarBuyers
}

func (p Platform) String() string {
	switch p {
	case PlatformEcoAuc:
		return "ecoauc"
	case PlatformBrandAuc:
		return "brandauc"
	case PlatformStarBuyers:
		return "starbuyers"
	default:
		return "unknown"
	}
}
