package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zombar/statementanalyzer/internal/models"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
	vowelGroup       = regexp.MustCompile(`[aeiouy]+`)
)

// Preprocess tokenizes text and computes its linguistic statistics.
// Empty or whitespace-only text yields the zero state with empty lists.
func (a *Analyzer) Preprocess(text string) models.LinguisticFeatures {
	if strings.TrimSpace(text) == "" {
		return emptyLinguisticFeatures()
	}

	words := extractWords(text)
	wordCount := len(words)
	sentenceCount := max(len(splitSentences(text)), 1)
	avgWordsPerSentence := float64(wordCount) / float64(sentenceCount)

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}
	avgSyllablesPerWord := ratio(syllables, wordCount)

	readability := 206.835 - 1.015*avgWordsPerSentence - 84.6*avgSyllablesPerWord

	fillers := matchWords(words, a.lexicon.FillerWords)
	hesitations := matchWords(words, a.lexicon.HesitationMarkers)
	emotional := matchWords(words, a.lexicon.EmotionalWords)
	contradictions := matchWords(words, a.lexicon.ContradictionIndicators)

	complexity := calculateComplexity(avgWordsPerSentence, avgSyllablesPerWord, len(fillers), len(hesitations))

	return models.LinguisticFeatures{
		WordCount:               wordCount,
		SentenceCount:           sentenceCount,
		AvgWordsPerSentence:     round2(avgWordsPerSentence),
		AvgSyllablesPerWord:     round2(avgSyllablesPerWord),
		ReadabilityScore:        round2(readability),
		FillerWords:             fillers,
		FillerWordCount:         len(fillers),
		HesitationMarkers:       hesitations,
		HesitationCount:         len(hesitations),
		EmotionalWords:          emotional,
		EmotionalWordCount:      len(emotional),
		ComplexityScore:         round2(complexity),
		RepetitionCount:         countRepetitions(words),
		ContradictionIndicators: contradictions,
	}
}

func emptyLinguisticFeatures() models.LinguisticFeatures {
	return models.LinguisticFeatures{
		FillerWords:             []string{},
		HesitationMarkers:       []string{},
		EmotionalWords:          []string{},
		ContradictionIndicators: []string{},
	}
}

// extractWords lower-cases text and splits it on whitespace runs.
// Punctuation stays attached to its word.
func extractWords(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// splitSentences splits on runs of . ! ? and drops blank candidates
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// countSyllables estimates syllables from vowel groups (y counts as a vowel)
func countSyllables(word string) int {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= 3 {
		return 1
	}

	syllables := len(vowelGroup.FindAllString(word, -1))
	if syllables == 0 {
		syllables = 1
	}

	// Silent e
	if strings.HasSuffix(word, "e") {
		syllables--
	}

	return max(syllables, 1)
}

// matchWords returns, in order, every word containing any of the lexicon entries
func matchWords(words, lexicon []string) []string {
	matches := []string{}
	for _, word := range words {
		if containsAny(word, lexicon) {
			matches = append(matches, word)
		}
	}
	return matches
}

func containsAny(word string, lexicon []string) bool {
	for _, entry := range lexicon {
		if strings.Contains(word, entry) {
			return true
		}
	}
	return false
}

func countMatches(words, lexicon []string) int {
	count := 0
	for _, word := range words {
		if containsAny(word, lexicon) {
			count++
		}
	}
	return count
}

// calculateComplexity blends sentence length and word length into 0-100,
// penalized by fillers and hesitations
func calculateComplexity(avgWordsPerSentence, avgSyllablesPerWord float64, fillerCount, hesitationCount int) float64 {
	sentenceComplexity := min(avgWordsPerSentence/20, 1)
	wordComplexity := min(avgSyllablesPerWord/3, 1)
	fillerPenalty := min(float64(fillerCount)/10, 0.5)
	hesitationPenalty := min(float64(hesitationCount)/5, 0.5)

	complexity := (sentenceComplexity+wordComplexity)*50 - (fillerPenalty+hesitationPenalty)*25
	return clamp(complexity, 0, 100)
}

// countRepetitions counts every repeat occurrence of words longer than three characters
func countRepetitions(words []string) int {
	seen := make(map[string]int)
	repetitions := 0
	for _, word := range words {
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		seen[word]++
		if seen[word] > 1 {
			repetitions++
		}
	}
	return repetitions
}
