package interest

// stopWords are high-frequency words that carry no topical signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {}, "our": {}, "out": {},
	"day": {}, "get": {}, "has": {}, "him": {}, "his": {}, "how": {}, "man": {}, "new": {},
	"now": {}, "old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "boy": {}, "did": {},
	"its": {}, "let": {}, "put": {}, "say": {}, "she": {}, "too": {}, "use": {}, "that": {},
	"with": {}, "have": {}, "this": {}, "will": {}, "your": {}, "from": {}, "they": {},
	"know": {}, "want": {}, "been": {}, "good": {}, "much": {}, "some": {}, "time": {},
	"very": {}, "when": {}, "come": {}, "here": {}, "just": {}, "like": {}, "long": {},
	"make": {}, "many": {}, "over": {}, "such": {}, "take": {}, "than": {}, "them": {},
	"well": {}, "were": {}, "what": {}, "about": {}, "after": {}, "again": {}, "also": {},
	"could": {}, "every": {}, "first": {}, "into": {}, "more": {}, "most": {}, "only": {},
	"other": {}, "said": {}, "says": {}, "their": {}, "there": {}, "these": {}, "thing": {},
	"think": {}, "those": {}, "through": {}, "under": {}, "where": {}, "which": {},
	"while": {}, "would": {}, "year": {}, "years": {}, "being": {}, "because": {},
	"before": {}, "should": {}, "still": {}, "today": {}, "news": {}, "article": {},
}

// IsStopWord reports whether term is in the stop-word set.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}
