package retrieval

import (
	"context"
	"testing"
)

func buildTestStore(t *testing.T) *KeywordStore {
	t.Helper()
	store := NewKeywordStore(StoreDetails, nil)
	docs := []Document{
		{
			Text:     "Machine Learning covers supervised and unsupervised learning, model evaluation and feature engineering.",
			Metadata: map[string]string{MetaCourseCode: "ACE6313", MetaProgramme: "Applied AI"},
		},
		{
			Text:     "Deep Learning introduces neural networks, backpropagation and convolutional architectures.",
			Metadata: map[string]string{MetaCourseCode: "ACE6283", MetaProgramme: "Applied AI"},
		},
		{
			Text:     "Data Communications and Networking explains protocol stacks, routing and transport.",
			Metadata: map[string]string{MetaCourseCode: "ACE6143"},
		},
		{Text: "   "},
	}
	if err := store.Build(docs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return store
}

func TestKeywordStoreSearch(t *testing.T) {
	store := buildTestStore(t)
	ctx := context.Background()

	// Blank documents are dropped at build time.
	if store.Count() != 3 {
		t.Errorf("Count = %d, want 3", store.Count())
	}

	results, err := store.Search(ctx, "neural networks backpropagation", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Search returned no results")
	}
	if results[0].Metadata[MetaCourseCode] != "ACE6283" {
		t.Errorf("top result = %q, want ACE6283", results[0].Metadata[MetaCourseCode])
	}
	if results[0].Confidence != rankConfidence(1) {
		t.Errorf("top confidence = %v, want %v", results[0].Confidence, rankConfidence(1))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score at index %d", i)
		}
	}
}

func TestKeywordStoreSearchTopN(t *testing.T) {
	store := buildTestStore(t)

	results, err := store.Search(context.Background(), "learning networks routing", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) > 1 {
		t.Errorf("Search returned %d results, want at most 1", len(results))
	}
}

func TestKeywordStoreEmptyQuery(t *testing.T) {
	store := buildTestStore(t)

	for _, query := range []string{"", "   ", "!!!"} {
		results, err := store.Search(context.Background(), query, 5)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", query, err)
		}
		if results != nil {
			t.Errorf("Search(%q) = %v, want nil", query, results)
		}
	}
}

func TestKeywordStoreUnbuilt(t *testing.T) {
	store := NewKeywordStore(StoreStructure, nil)

	results, err := store.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results != nil {
		t.Errorf("Search on unbuilt store = %v, want nil", results)
	}
}

func TestKeywordStoreCanceledContext(t *testing.T) {
	store := buildTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Search(ctx, "networks", 5); err == nil {
		t.Error("Search with canceled context succeeded, want error")
	}
}

func TestRankConfidence(t *testing.T) {
	t.Parallel()

	if got := rankConfidence(1); got <= rankConfidence(2) {
		t.Errorf("confidence must decrease with rank: rank1=%v rank2=%v", got, rankConfidence(2))
	}
	if got := rankConfidence(0); got != 0 {
		t.Errorf("rankConfidence(0) = %v, want 0", got)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := tokenize("Can I take ACE6313, or not?")
	want := []string{"can", "i", "take", "ace6313", "or", "not"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
