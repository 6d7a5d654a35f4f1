package analyzer

// Lexicon holds the fixed word lists the heuristics match against.
// Entries are lower case. All lists except SelfWords match by substring
// containment against each lower-cased token.
type Lexicon struct {
	FillerWords             []string
	HesitationMarkers       []string
	EmotionalWords          []string
	ContradictionIndicators []string
	TimeWords               []string
	CertaintyWords          []string
	UncertaintyWords        []string

	// SelfWords match whole tokens only
	SelfWords map[string]bool
}

// DefaultLexicon returns the English lexicon used by New
func DefaultLexicon() Lexicon {
	return Lexicon{
		FillerWords:             getFillerWords(),
		HesitationMarkers:       getHesitationMarkers(),
		EmotionalWords:          getEmotionalWords(),
		ContradictionIndicators: getContradictionIndicators(),
		TimeWords:               getTimeWords(),
		CertaintyWords:          getCertaintyWords(),
		UncertaintyWords:        getUncertaintyWords(),
		SelfWords:               getSelfWords(),
	}
}

// clone copies every list so an Analyzer never shares backing arrays with its caller
func (l Lexicon) clone() Lexicon {
	self := make(map[string]bool, len(l.SelfWords))
	for word, ok := range l.SelfWords {
		self[word] = ok
	}
	return Lexicon{
		FillerWords:             append([]string(nil), l.FillerWords...),
		HesitationMarkers:       append([]string(nil), l.HesitationMarkers...),
		EmotionalWords:          append([]string(nil), l.EmotionalWords...),
		ContradictionIndicators: append([]string(nil), l.ContradictionIndicators...),
		TimeWords:               append([]string(nil), l.TimeWords...),
		CertaintyWords:          append([]string(nil), l.CertaintyWords...),
		UncertaintyWords:        append([]string(nil), l.UncertaintyWords...),
		SelfWords:               self,
	}
}

// getFillerWords returns conversational padding terms.
// Multi-word entries never match a whitespace-split token.
func getFillerWords() []string {
	return []string{
		"um", "uh", "er", "ah", "like", "you know", "i mean", "basically",
		"actually", "literally", "sort of", "kind of", "well", "so",
	}
}

// getHesitationMarkers returns pause and disfluency markers
func getHesitationMarkers() []string {
	return []string{
		"um", "uh", "er", "ah", "hmm", "well", "...", "pause", "silence",
	}
}

// getEmotionalWords returns positive and negative emotion words
func getEmotionalWords() []string {
	return []string{
		// positive
		"happy", "joy", "excited", "pleased", "confident", "sure", "certain",
		"glad", "relieved", "calm", "peaceful", "comfortable",
		// negative
		"angry", "mad", "furious", "upset", "sad", "depressed", "worried",
		"anxious", "nervous", "scared", "afraid", "fearful", "terrified",
		"confused", "uncertain", "doubtful", "suspicious", "concerned",
	}
}

// getContradictionIndicators returns self-correction and qualification connectives
func getContradictionIndicators() []string {
	return []string{
		"but", "however", "although", "though", "actually", "wait", "no",
		"i mean", "what i meant was", "let me correct", "sorry", "i misspoke",
	}
}

// getTimeWords returns temporal reference words
func getTimeWords() []string {
	return []string{
		"yesterday", "today", "tomorrow", "morning", "afternoon", "evening",
		"night", "before", "after", "when", "then", "during",
	}
}

// getCertaintyWords returns assertive certainty markers
func getCertaintyWords() []string {
	return []string{
		"definitely", "certainly", "certain", "absolutely", "sure", "positive", "know", "remember",
	}
}

// getUncertaintyWords returns hedging markers
func getUncertaintyWords() []string {
	return []string{
		"maybe", "perhaps", "might", "could", "possibly", "think", "believe", "guess",
	}
}

// getSelfWords returns first person singular pronouns
func getSelfWords() map[string]bool {
	words := []string{"i", "me", "my", "myself", "mine"}

	selfWords := make(map[string]bool)
	for _, word := range words {
		selfWords[word] = true
	}
	return selfWords
}
