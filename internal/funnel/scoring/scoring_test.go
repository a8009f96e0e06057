package scoring

import (
	"testing"

	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func restaurant(id, tier string, cuisines ...string) models.Provider {
	return models.Provider{
		ID:       id,
		Category: catalog.RestaurantsCafes,
		Name:     id,
		Attributes: map[string][]string{
			AttrPriceTier: {tier},
			AttrCuisines:  cuisines,
		},
	}
}

func ids(result []models.ScoredProvider) []string {
	out := make([]string, len(result))
	for i, r := range result {
		out[i] = r.Provider.ID
	}
	return out
}

var fineDining = models.AnswerSet{"budget": "fine-dining", "cuisine": "italian", "ambience": "romantic"}

func TestScore_Deterministic(t *testing.T) {
	providers := []models.Provider{
		restaurant("a", "casual", "italian"),
		restaurant("b", "fine-dining", "japanese"),
		restaurant("c", "mid-range", "italian"),
		restaurant("d", "casual", "italian"),
	}

	first, err := Score(catalog.RestaurantsCafes, fineDining, providers)
	require.NoError(t, err)
	second, err := Score(catalog.RestaurantsCafes, fineDining, providers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(first))
}

func TestScore_FeaturedBreaksEqualScores(t *testing.T) {
	plain := restaurant("plain", "fine-dining", "italian")
	featured := restaurant("featured", "fine-dining", "italian")
	featured.Featured = true

	result, err := Score(catalog.RestaurantsCafes, fineDining, []models.Provider{plain, featured})
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, result[0].Score, result[1].Score)
	assert.Equal(t, []string{"featured", "plain"}, ids(result))
}

func TestScore_FeaturedDoesNotBeatHigherScore(t *testing.T) {
	featured := restaurant("featured", "fine-dining", "japanese")
	featured.Featured = true
	italian := restaurant("italian", "casual", "italian")

	result, err := Score(catalog.RestaurantsCafes, fineDining, []models.Provider{featured, italian})
	require.NoError(t, err)

	assert.Equal(t, []string{"italian", "featured"}, ids(result))
	assert.Equal(t, 50.0, result[0].Score)
	assert.Equal(t, 33.33, result[1].Score)
}

func TestScore_CuisineWeight(t *testing.T) {
	answers := models.AnswerSet{"budget": "casual", "cuisine": "italian"}
	providers := []models.Provider{
		restaurant("japanese", "casual", "japanese"),
		restaurant("italian", "casual", "italian"),
	}

	result, err := Score(catalog.RestaurantsCafes, answers, providers)
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, "italian", result[0].Provider.ID)
	assert.Equal(t, 100.0, result[0].Score)
	assert.Equal(t, 40.0, result[1].Score)
}

func TestScore_RatingBreaksTies(t *testing.T) {
	unrated := restaurant("unrated", "casual", "cafe")
	rated := restaurant("rated", "casual", "cafe")
	rated.Rating = rating(3.5)

	result, err := Score(catalog.RestaurantsCafes,
		models.AnswerSet{"budget": "casual", "cuisine": "cafe"},
		[]models.Provider{unrated, rated})
	require.NoError(t, err)

	assert.Equal(t, []string{"rated", "unrated"}, ids(result))
}

func TestScore_InputOrderIsFinalTieBreak(t *testing.T) {
	providers := []models.Provider{
		restaurant("first", "casual", "mexican"),
		restaurant("second", "casual", "mexican"),
		restaurant("third", "casual", "mexican"),
	}

	result, err := Score(catalog.RestaurantsCafes, models.AnswerSet{"budget": "casual", "cuisine": "mexican"}, providers)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, ids(result))
}

func TestScore_HardConstraints(t *testing.T) {
	tests := []struct {
		name     string
		category string
		answers  models.AnswerSet
		provider models.Provider
		admitted bool
	}{
		{
			name:     "price above budget ceiling",
			category: catalog.RestaurantsCafes,
			answers:  models.AnswerSet{"budget": "casual", "cuisine": "italian"},
			provider: restaurant("p", "fine-dining", "italian"),
		},
		{
			name:     "price below budget ceiling",
			category: catalog.RestaurantsCafes,
			answers:  models.AnswerSet{"budget": "mid-range", "cuisine": "italian"},
			provider: restaurant("p", "casual", "italian"),
			admitted: true,
		},
		{
			name:     "missing price tier",
			category: catalog.RestaurantsCafes,
			answers:  models.AnswerSet{"budget": "mid-range", "cuisine": "italian"},
			provider: models.Provider{ID: "p", Category: catalog.RestaurantsCafes,
				Attributes: map[string][]string{AttrCuisines: {"italian"}}},
		},
		{
			name:     "service not offered",
			category: catalog.HomeServices,
			answers:  models.AnswerSet{"service": "plumbing", "urgency": "flexible", "area": "north"},
			provider: models.Provider{ID: "p", Category: catalog.HomeServices,
				Attributes: map[string][]string{AttrServices: {"electrical"}, AttrServiceAreas: {"north"}}},
		},
		{
			name:     "outside service area",
			category: catalog.HomeServices,
			answers:  models.AnswerSet{"service": "plumbing", "urgency": "flexible", "area": "north"},
			provider: models.Provider{ID: "p", Category: catalog.HomeServices,
				Attributes: map[string][]string{AttrServices: {"plumbing"}, AttrServiceAreas: {"south"}}},
		},
		{
			name:     "specialty missing despite matching format",
			category: catalog.HealthWellness,
			answers:  models.AnswerSet{"focus": "physio", "format": "online", "price": "premium"},
			provider: models.Provider{ID: "p", Category: catalog.HealthWellness,
				Attributes: map[string][]string{AttrFormats: {"online"}, AttrPriceTier: {"standard"}}},
		},
		{
			name:     "gated out area imposes nothing",
			category: catalog.HealthWellness,
			answers:  models.AnswerSet{"focus": "physio", "format": "online", "price": "premium"},
			provider: models.Provider{ID: "p", Category: catalog.HealthWellness,
				Attributes: map[string][]string{AttrSpecialties: {"physio"}, AttrPriceTier: {"standard"}}},
			admitted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Score(tt.category, tt.answers, []models.Provider{tt.provider})
			require.NoError(t, err)
			if tt.admitted {
				assert.Len(t, result, 1)
			} else {
				assert.Empty(t, result)
			}
		})
	}
}

func TestScore_WildcardPreference(t *testing.T) {
	p := models.Provider{ID: "p", Category: catalog.HomeServices,
		Attributes: map[string][]string{
			AttrServices:     {"cleaning"},
			AttrServiceAreas: {"east"},
			AttrFrequencies:  {"weekly"},
		}}

	result, err := Score(catalog.HomeServices,
		models.AnswerSet{"service": "cleaning", "frequency": "weekly", "urgency": "flexible", "area": "east"},
		[]models.Provider{p})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 100.0, result[0].Score)
}

func TestScore_EmptyResult(t *testing.T) {
	result, err := Score(catalog.RestaurantsCafes, fineDining, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestScore_ContractViolations(t *testing.T) {
	_, err := Score(catalog.RestaurantsCafes, models.AnswerSet{"budget": "fine-dining", "cuisine": "italian"}, nil)
	assert.ErrorIs(t, err, ErrIncompleteAnswers)

	stray := restaurant("stray", "casual", "italian")
	stray.Category = catalog.HomeServices
	_, err = Score(catalog.RestaurantsCafes, fineDining, []models.Provider{stray})
	assert.ErrorIs(t, err, ErrCategoryMismatch)

	_, err = Score("pet-care", models.AnswerSet{}, nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestScore_RejectsAnswersTheCatalogNeverProduces(t *testing.T) {
	providers := []models.Provider{
		restaurant("a", "casual", "italian"),
		restaurant("b", "casual", "italian"),
	}

	tests := []struct {
		name     string
		answers  models.AnswerSet
		question string
		reason   string
	}{
		{"gated-out follow-up", models.AnswerSet{"budget": "casual", "cuisine": "italian", "ambience": "romantic"}, "ambience", catalog.ReasonInactiveQuestion},
		{"unknown option", models.AnswerSet{"budget": "bogus", "cuisine": "italian"}, "budget", catalog.ReasonUnknownOption},
		{"retired question", models.AnswerSet{"budget": "casual", "cuisine": "italian", "seating": "outdoor"}, "seating", catalog.ReasonRetiredQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Score(catalog.RestaurantsCafes, tt.answers, providers)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidAnswers)

			var bad *catalog.InvalidAnswer
			require.ErrorAs(t, err, &bad)
			assert.Equal(t, tt.question, bad.QuestionID)
			assert.Equal(t, tt.reason, bad.Reason)
		})
	}
}
