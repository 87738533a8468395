// Package recommend ranks catalog entries by textual similarity using TF-IDF
// weighted term vectors and cosine similarity.
package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/james-bowman/nlp"
	"github.com/james-bowman/nlp/measures/pairwise"
	"gonum.org/v1/gonum/mat"
)

// Document is one rankable text with its identity.
type Document struct {
	ID   uint
	Text string
}

type scored struct {
	id    uint
	score float64
}

// Rank returns up to limit document ids from corpus ordered by descending
// similarity to target. The target id itself is never returned; equal scores
// are ordered by id.
func Rank(target Document, corpus []Document, limit int) []uint {
	if limit <= 0 || len(corpus) == 0 {
		return []uint{}
	}

	scores, err := similarities(target.Text, corpus)
	if err != nil {
		scores = make([]float64, len(corpus))
	}

	results := make([]scored, 0, len(corpus))
	for i, doc := range corpus {
		if doc.ID == target.ID {
			continue
		}
		results = append(results, scored{id: doc.ID, score: scores[i]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].id < results[j].id
	})

	if len(results) > limit {
		results = results[:limit]
	}
	ids := make([]uint, len(results))
	for i, r := range results {
		ids[i] = r.id
	}
	return ids
}

// similarities fits a TF-IDF pipeline on the corpus and returns the cosine
// similarity of every corpus document to text, in corpus order.
func similarities(text string, corpus []Document) ([]float64, error) {
	scores := make([]float64, len(corpus))

	texts := make([]string, len(corpus))
	hasTerms := false
	for i, doc := range corpus {
		texts[i] = doc.Text
		hasTerms = hasTerms || len(tokenize(doc.Text)) > 0
	}
	// An empty vocabulary yields a matrix with no rows.
	if !hasTerms || len(tokenize(text)) == 0 {
		return scores, nil
	}

	vectoriser := nlp.NewCountVectoriser()
	vectoriser.Tokeniser = tokeniser{}
	pipeline := nlp.NewPipeline(vectoriser, nlp.NewTfidfTransformer())

	docs, err := pipeline.FitTransform(texts...)
	if err != nil {
		return nil, err
	}
	query, err := pipeline.Transform(text)
	if err != nil {
		return nil, err
	}

	docMatrix := mat.DenseCopyOf(docs)
	queryVec := mat.DenseCopyOf(query).ColView(0)
	for i := range corpus {
		score := pairwise.CosineSimilarity(queryVec, docMatrix.ColView(i))
		if math.IsNaN(score) {
			score = 0
		}
		scores[i] = score
	}
	return scores, nil
}

// tokeniser splits text the same way for fitting and querying.
type tokeniser struct{}

func (tokeniser) ForEachIn(text string, f func(token string)) {
	for _, token := range tokenize(text) {
		f(token)
	}
}

func (tokeniser) Tokenise(text string) []string {
	return tokenize(text)
}

// tokenize lower-cases text and keeps alphanumeric runs of two or more
// characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
