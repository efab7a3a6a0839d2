package config

const (
	CategoryInformation = "🕯️ Information"
	CategoryUtilities   = "📢 Utilities"
	CategoryModeration  = "🛡️ Moderation"
	CategorySettings    = "⚙️ Settings"
	CategoryMaintenance = "🛠️ Maintenance"
)

// Help output lists categories by ascending weight; unknown categories go last.
var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryUtilities:   10,
	CategoryModeration:  30,
	CategorySettings:    50,
	CategoryMaintenance: 60,
}

// CategoryWeight returns the sort weight of category.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 1000
}
