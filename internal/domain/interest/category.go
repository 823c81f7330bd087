package interest

// CategoryGeneral is assigned when no matched term has a known category.
const CategoryGeneral = "general"

var categories = map[string]string{
	"technology": "technology", "tech": "technology", "software": "technology",
	"programming": "technology", "computer": "technology", "artificial": "technology",
	"machine": "technology", "robotics": "technology", "startup": "technology",
	"internet": "technology", "cybersecurity": "technology", "cloud": "technology",
	"gadgets": "technology", "smartphone": "technology", "blockchain": "technology",

	"business": "business", "finance": "business", "economy": "business",
	"market": "business", "markets": "business", "stocks": "business",
	"investing": "business", "banking": "business", "trade": "business",
	"crypto": "business", "entrepreneurship": "business",

	"sports": "sports", "football": "sports", "soccer": "sports", "basketball": "sports",
	"tennis": "sports", "cricket": "sports", "baseball": "sports", "olympics": "sports",
	"racing": "sports", "golf": "sports",

	"science": "science", "physics": "science", "biology": "science",
	"chemistry": "science", "space": "science", "astronomy": "science",
	"research": "science", "climate": "science",

	"health": "health", "medicine": "health", "fitness": "health",
	"nutrition": "health", "wellness": "health", "mental": "health",

	"entertainment": "entertainment", "movies": "entertainment", "music": "entertainment",
	"gaming": "entertainment", "celebrity": "entertainment", "television": "entertainment",

	"politics": "politics", "election": "politics", "government": "politics",
	"policy": "politics",
}

// CategoryOf returns the category for term, or CategoryGeneral when unmapped.
func CategoryOf(term string) string {
	if c, ok := categories[normalizeTerm(term)]; ok {
		return c
	}
	return CategoryGeneral
}
