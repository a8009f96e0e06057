package catalog

import "provider-funnel/internal/models"

const (
	RestaurantsCafes = "restaurants-cafes"
	HomeServices     = "home-services"
	HealthWellness   = "health-wellness"
)

// Shared option sets.
var (
	areaOptions = []models.Option{
		{Value: "north", Label: "North"},
		{Value: "south", Label: "South"},
		{Value: "east", Label: "East"},
		{Value: "west", Label: "West"},
		{Value: "central", Label: "City centre"},
	}
)

func init() {
	Register(Restaurants())
	Register(Home())
	Register(Health())
}

// Restaurants asks for a budget and a cuisine; fine dining unlocks an ambience follow-up.
func Restaurants() Catalog {
	return New(
		models.Category{ID: RestaurantsCafes, Name: "Restaurants & Cafes"},
		models.Question{
			ID:     "budget",
			Prompt: "What kind of budget do you have in mind?",
			Options: []models.Option{
				{Value: "casual", Label: "Casual"},
				{Value: "mid-range", Label: "Mid-range"},
				{Value: "fine-dining", Label: "Fine dining"},
			},
		},
		models.Question{
			ID:     "cuisine",
			Prompt: "Which cuisine are you after?",
			Options: []models.Option{
				{Value: "italian", Label: "Italian"},
				{Value: "japanese", Label: "Japanese"},
				{Value: "indian", Label: "Indian"},
				{Value: "mexican", Label: "Mexican"},
				{Value: "cafe", Label: "Coffee & brunch"},
			},
		},
		models.Question{
			ID:     "ambience",
			Prompt: "What's the occasion?",
			Options: []models.Option{
				{Value: "romantic", Label: "Romantic"},
				{Value: "business", Label: "Business"},
				{Value: "family", Label: "Family"},
			},
			When: answered("budget", "fine-dining"),
		},
	)
}

// Home covers trades and cleaners. Cleaning jobs ask how often the visit recurs.
func Home() Catalog {
	return New(
		models.Category{ID: HomeServices, Name: "Home Services"},
		models.Question{
			ID:     "service",
			Prompt: "What do you need help with?",
			Options: []models.Option{
				{Value: "plumbing", Label: "Plumbing"},
				{Value: "electrical", Label: "Electrical"},
				{Value: "cleaning", Label: "Cleaning"},
				{Value: "landscaping", Label: "Gardening & landscaping"},
			},
		},
		models.Question{
			ID:     "frequency",
			Prompt: "How often should the cleaner come?",
			Options: []models.Option{
				{Value: "one-off", Label: "Just once"},
				{Value: "weekly", Label: "Weekly"},
				{Value: "monthly", Label: "Monthly"},
			},
			When: answered("service", "cleaning"),
		},
		models.Question{
			ID:     "urgency",
			Prompt: "How soon do you need someone?",
			Options: []models.Option{
				{Value: "emergency", Label: "Today"},
				{Value: "this-week", Label: "This week"},
				{Value: "flexible", Label: "I'm flexible"},
			},
		},
		models.Question{
			ID:      "area",
			Prompt:  "Where is the job?",
			Options: areaOptions,
		},
	)
}

// Health covers gyms, clinics and coaches. Only in-person sessions ask for an area.
func Health() Catalog {
	return New(
		models.Category{ID: HealthWellness, Name: "Health & Wellness"},
		models.Question{
			ID:     "focus",
			Prompt: "What would you like to work on?",
			Options: []models.Option{
				{Value: "fitness", Label: "Fitness"},
				{Value: "physio", Label: "Physiotherapy"},
				{Value: "nutrition", Label: "Nutrition"},
				{Value: "mental-health", Label: "Mental health"},
			},
		},
		models.Question{
			ID:     "format",
			Prompt: "In person or online?",
			Options: []models.Option{
				{Value: "in-person", Label: "In person"},
				{Value: "online", Label: "Online"},
			},
		},
		models.Question{
			ID:      "area",
			Prompt:  "Which part of town suits you?",
			Options: areaOptions,
			When:    answered("format", "in-person"),
		},
		models.Question{
			ID:     "price",
			Prompt: "What price range works for you?",
			Options: []models.Option{
				{Value: "budget", Label: "Budget"},
				{Value: "standard", Label: "Standard"},
				{Value: "premium", Label: "Premium"},
			},
		},
	)
}
