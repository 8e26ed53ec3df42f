package catalog

// Audience is a target group a description can be written for
type Audience struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
}

// Audiences lists the selectable target groups in display order
var Audiences = []Audience{
	{ID: "students", Name: "Students", Description: "Budget-friendly, practical solutions", Icon: "🎓", Color: "#3B82F6"},
	{ID: "budget-conscious", Name: "Budget-Conscious Consumers", Description: "Value-focused, cost-effective options", Icon: "💰", Color: "#22C55E"},
	{ID: "gamers", Name: "Gamers", Description: "Performance-driven, cutting-edge tech", Icon: "🎮", Color: "#A855F7"},
	{ID: "professionals", Name: "Business Professionals", Description: "Productivity-focused, reliable solutions", Icon: "💼", Color: "#6B7280"},
	{ID: "tech-enthusiasts", Name: "Tech Enthusiasts", Description: "Innovation-focused, premium features", Icon: "⚡", Color: "#EAB308"},
	{ID: "families", Name: "Families", Description: "Safety-focused, user-friendly design", Icon: "👪", Color: "#EC4899"},
}

// AudienceByID looks up an audience
func AudienceByID(id string) (Audience, bool) {
	for _, a := range Audiences {
		if a.ID == id {
			return a, true
		}
	}
	return Audience{}, false
}
