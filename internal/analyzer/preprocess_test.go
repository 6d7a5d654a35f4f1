package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessEmptyText(t *testing.T) {
	a := New()

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		l := a.Preprocess(text)

		assert.Equal(t, 0, l.WordCount)
		assert.Equal(t, 0, l.SentenceCount)
		assert.Zero(t, l.AvgWordsPerSentence)
		assert.Zero(t, l.AvgSyllablesPerWord)
		assert.Zero(t, l.ReadabilityScore)
		assert.Zero(t, l.ComplexityScore)
		assert.Zero(t, l.RepetitionCount)
		assert.NotNil(t, l.FillerWords)
		assert.Empty(t, l.FillerWords)
		assert.Empty(t, l.HesitationMarkers)
		assert.Empty(t, l.EmotionalWords)
		assert.Empty(t, l.ContradictionIndicators)
	}
}

func TestExtractWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple text", "Hello world", []string{"hello", "world"}},
		{"punctuation stays attached", "Hello, world!", []string{"hello,", "world!"}},
		{"whitespace runs", "  one \t two\n\nthree ", []string{"one", "two", "three"}},
		{"empty string", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := extractWords(tt.input)
			assert.ElementsMatch(t, tt.expected, words)
		})
	}
}

func TestSentenceCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"single sentence", "Hello world.", 1},
		{"multiple sentences", "Hello. How are you? I'm fine!", 3},
		{"no punctuation", "Hello world", 1},
		{"punctuation runs", "Wait... what?! No.", 3},
		{"only punctuation", "...", 1},
	}

	a := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Preprocess(tt.input).SentenceCount)
		})
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word     string
		expected int
	}{
		{"i", 1},
		{"the", 1},
		{"sky", 1},
		{"make", 1},
		{"certain", 2},
		{"yesterday", 3},
		{"rhythm", 1},
		{"banana", 3},
		{"tree", 1},
		{"1234", 1},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, countSyllables(tt.word))
		})
	}
}

func TestCountRepetitions(t *testing.T) {
	tests := []struct {
		name     string
		words    []string
		expected int
	}{
		{"no repeats", []string{"apple", "banana", "cherry"}, 0},
		{"short words ignored", []string{"the", "the", "the", "and", "and"}, 0},
		{"each repeat counts", []string{"there", "there", "there", "now", "now"}, 2},
		{"multiple words", []string{"green", "house", "green", "house", "green"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countRepetitions(tt.words))
		})
	}
}

func TestWordCategoriesUseSubstringMatch(t *testing.T) {
	l := New().Preprocess("Nobody likes the weather, but honestly I was sorry.")

	// "nobody" holds "no", "likes" holds "like", "weather," holds "er"
	assert.Contains(t, l.ContradictionIndicators, "nobody")
	assert.Contains(t, l.ContradictionIndicators, "but")
	assert.Contains(t, l.ContradictionIndicators, "sorry.")
	assert.Contains(t, l.FillerWords, "likes")
	assert.Contains(t, l.HesitationMarkers, "weather,")
	assert.Equal(t, len(l.ContradictionIndicators), l.ContradictionCount())
}

func TestComplexityScore(t *testing.T) {
	tests := []struct {
		name                string
		avgWordsPerSentence float64
		avgSyllablesPerWord float64
		fillers             int
		hesitations         int
		expected            float64
	}{
		{"plain", 10, 1.5, 0, 0, 50},
		{"saturated", 40, 6, 0, 0, 100},
		{"penalties capped", 40, 6, 50, 50, 75},
		{"never negative", 1, 1, 20, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateComplexity(tt.avgWordsPerSentence, tt.avgSyllablesPerWord, tt.fillers, tt.hesitations)
			assert.InDelta(t, tt.expected, got, 0.001)
		})
	}
}

func TestPreprocessRoundsToTwoDecimals(t *testing.T) {
	l := New().Preprocess("One two three. Four five six seven.")

	assert.Equal(t, 7, l.WordCount)
	assert.Equal(t, 2, l.SentenceCount)
	assert.Equal(t, 3.5, l.AvgWordsPerSentence)
	for _, v := range []float64{l.AvgSyllablesPerWord, l.ReadabilityScore, l.ComplexityScore} {
		assert.Equal(t, round2(v), v)
	}
}

func TestPreprocessLongTranscript(t *testing.T) {
	text := strings.Repeat("The witness described the vehicle in detail. ", 200)
	l := New().Preprocess(text)

	assert.Equal(t, 1400, l.WordCount)
	assert.Equal(t, 200, l.SentenceCount)
	assert.Equal(t, 7.0, l.AvgWordsPerSentence)
}
