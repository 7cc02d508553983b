// Package tfidf provides a local, corpus-fitted embedder.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	errNotPrepared = errors.New("tfidf embedder not prepared")
	tokenPattern   = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
)

// Embedder maps text onto L2-normalised TF-IDF vectors over a vocabulary
// fitted by Prepare. Term frequencies are log-scaled (1 + ln tf) so a word
// repeated in one segment does not dominate it. The same text always
// yields the same vector.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
	stopwords  map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{stopwords: defaultStopwords()}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare fits the vocabulary and smoothed IDF weights to corpus,
// replacing any previous fit.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		for term := range e.termCounts(text) {
			df[term]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return nil
}

// Dimension is the vocabulary size, 0 before Prepare.
func (e *Embedder) Dimension() int { return len(e.idf) }

// EmbedAll embeds every text, preserving order and count.
func (e *Embedder) EmbedAll(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Embed returns the vector for text. Text without any known term yields
// the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if e.vocabulary == nil {
		return nil, errNotPrepared
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, len(e.idf))
	for term, count := range e.termCounts(text) {
		if idx, ok := e.vocabulary[term]; ok {
			vec[idx] = (1 + math.Log(float64(count))) * e.idf[idx]
		}
	}
	// summed in index order so equal texts give bit-identical vectors
	sumSq := 0.0
	for _, w := range vec {
		sumSq += w * w
	}
	if sumSq == 0 {
		return vec, nil
	}
	l2 := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] /= l2
	}
	return vec, nil
}

// termCounts lowercases text and counts every non-stopword token.
func (e *Embedder) termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := e.stopwords[tok]; !stop {
			counts[tok]++
		}
	}
	return counts
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too",
		"very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "how", "why", "when", "where", "do", "does", "did",
		"le", "la", "les", "un", "une", "des", "du", "de", "et", "ou", "est", "sont", "dans", "sur", "par",
		"pour", "avec", "que", "qui", "ce", "cette", "ces", "en", "au", "aux",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
