package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/crawlab-team/bm25"
	"golang.org/x/sync/singleflight"

	"github.com/hivelab/hive-advisor-go/internal/logger"
)

// Document is one indexable passage with its filter metadata.
type Document struct {
	Text     string
	Metadata map[string]string
}

// KeywordStore is a BM25 index over knowledge-base passages.
type KeywordStore struct {
	name string
	log  *logger.Logger

	mu          sync.RWMutex
	docs        []Document
	bm25Okapi   *bm25.BM25Okapi
	initialized bool

	rebuild singleflight.Group
}

// NewKeywordStore creates an empty store; call Build before searching.
func NewKeywordStore(name string, log *logger.Logger) *KeywordStore {
	return &KeywordStore{name: name, log: log}
}

// Name returns the store name used in metrics and logs.
func (s *KeywordStore) Name() string {
	return s.name
}

// Build (re)indexes the given documents. BM25 needs the full corpus
// for IDF, so every build is a full rebuild; concurrent calls collapse
// into one.
func (s *KeywordStore) Build(docs []Document) error {
	_, err, _ := s.rebuild.Do("build", func() (any, error) {
		kept := make([]Document, 0, len(docs))
		corpus := make([]string, 0, len(docs))
		for _, doc := range docs {
			if strings.TrimSpace(doc.Text) == "" {
				continue
			}
			kept = append(kept, doc)
			corpus = append(corpus, doc.Text)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if len(corpus) == 0 {
			s.docs = nil
			s.bm25Okapi = nil
			s.initialized = true
			return nil, nil
		}

		// k1=1.5, b=0.75 are standard BM25 parameters.
		okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s index: %w", s.name, err)
		}

		s.docs = kept
		s.bm25Okapi = okapi
		s.initialized = true

		if s.log != nil {
			s.log.WithField("docs", len(corpus)).WithField("store", s.name).Info("keyword index built")
		}
		return nil, nil
	})
	return err
}

// Search scores all documents against the query and returns the topN
// best, highest score first. An unbuilt or empty store returns nil.
func (s *KeywordStore) Search(ctx context.Context, query string, topN int) ([]Result, error) {
	if s == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized || s.bm25Okapi == nil {
		return nil, nil
	}

	tokenizedQuery := tokenize(query)
	if len(tokenizedQuery) == 0 {
		return nil, nil
	}

	scores, err := s.bm25Okapi.GetScores(tokenizedQuery)
	if err != nil {
		return nil, fmt.Errorf("%s scoring failed: %w", s.name, err)
	}

	type scoredDoc struct {
		docID int
		score float64
	}
	var scoredDocs []scoredDoc
	for docID, score := range scores {
		if score > 0 {
			scoredDocs = append(scoredDocs, scoredDoc{docID: docID, score: score})
		}
	}

	sort.Slice(scoredDocs, func(i, j int) bool {
		return scoredDocs[i].score > scoredDocs[j].score
	})

	if topN > 0 && len(scoredDocs) > topN {
		scoredDocs = scoredDocs[:topN]
	}

	results := make([]Result, 0, len(scoredDocs))
	for rank, sd := range scoredDocs {
		doc := s.docs[sd.docID]
		results = append(results, Result{
			Text:       doc.Text,
			Score:      sd.score,
			Confidence: rankConfidence(rank + 1),
			Metadata:   doc.Metadata,
		})
	}
	return results, nil
}

// Count returns the number of indexed documents.
func (s *KeywordStore) Count() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// rankConfidence converts a 1-indexed rank into a bounded confidence.
// BM25 scores are unbounded and query-dependent, so rank is the proxy:
// rank 1 -> 0.95, rank 5 -> 0.80, rank 10 -> 0.67.
func rankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

// tokenize lowercases and splits on anything that is not a letter or
// digit. The knowledge base is English; no further analysis needed.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
