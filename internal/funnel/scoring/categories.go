package scoring

// Attribute keys read from provider records.
const (
	AttrPriceTier    = "price-tier"
	AttrCuisines     = "cuisines"
	AttrAmbience     = "ambience"
	AttrServices     = "services"
	AttrServiceAreas = "service-areas"
	AttrAvailability = "availability"
	AttrFrequencies  = "frequencies"
	AttrSpecialties  = "specialties"
	AttrFormats      = "formats"
)

var restaurantsConfig = Config{
	Constraints: []Constraint{
		{Question: "budget", Attribute: AttrPriceTier, Mode: AtMost, Scale: []string{"casual", "mid-range", "fine-dining"}},
	},
	Preferences: []Preference{
		{Question: "budget", Attribute: AttrPriceTier, Weight: 2},
		{Question: "cuisine", Attribute: AttrCuisines, Weight: 3},
		{Question: "ambience", Attribute: AttrAmbience, Weight: 1},
	},
}

var homeConfig = Config{
	Constraints: []Constraint{
		{Question: "service", Attribute: AttrServices, Mode: MustInclude},
		{Question: "area", Attribute: AttrServiceAreas, Mode: MustInclude},
	},
	Preferences: []Preference{
		{Question: "urgency", Attribute: AttrAvailability, Weight: 2, Any: []string{"flexible"}},
		{Question: "frequency", Attribute: AttrFrequencies, Weight: 1},
	},
}

var healthConfig = Config{
	Constraints: []Constraint{
		{Question: "focus", Attribute: AttrSpecialties, Mode: MustInclude},
		{Question: "area", Attribute: AttrServiceAreas, Mode: MustInclude},
		{Question: "price", Attribute: AttrPriceTier, Mode: AtMost, Scale: []string{"budget", "standard", "premium"}},
	},
	Preferences: []Preference{
		{Question: "format", Attribute: AttrFormats, Weight: 2},
		{Question: "price", Attribute: AttrPriceTier, Weight: 1},
	},
}
