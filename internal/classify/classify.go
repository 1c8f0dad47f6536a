// Package classify turns free text into a label from a closed vocabulary.
//
// Callers depend on the Classifier interface only, so the keyword tables
// used today can be replaced by a learned model without touching them.
package classify

import "strings"

// Result is the outcome of classifying one piece of text.
type Result struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Hits       int      `json:"hits"`
	Matched    []string `json:"matched,omitempty"`
}

// Classifier maps text to a label and a confidence in [0,1].
type Classifier interface {
	Classify(text string) Result
}

// Func adapts a plain function to the Classifier interface.
type Func func(text string) Result

func (f Func) Classify(text string) Result { return f(text) }

// Bucket is one label and the keywords that vote for it.
type Bucket struct {
	Label    string
	Keywords []string
}

// Mode selects how bucket hits are turned into a label.
type Mode int

const (
	// MostHits picks the bucket with the strictly greatest hit count; earlier
	// buckets win ties.
	MostHits Mode = iota
	// FirstMatch picks the first bucket, in declaration order, with any hit.
	FirstMatch
)

// Count is the number of keyword hits for one bucket.
type Count struct {
	Label string
	Hits  int
}

// KeywordClassifier matches lower-cased keywords as substrings of the
// lower-cased input. Keywords may be in any script, including emoji.
type KeywordClassifier struct {
	buckets    []Bucket
	fallback   string
	mode       Mode
	saturation int
}

// NewKeywordClassifier builds a classifier over buckets. Text with no hits is
// labelled fallback. Confidence is hits/saturation capped at 1; a saturation
// of zero or less means any hit is full confidence.
func NewKeywordClassifier(mode Mode, fallback string, saturation int, buckets ...Bucket) *KeywordClassifier {
	normalized := make([]Bucket, len(buckets))
	for i, b := range buckets {
		kws := make([]string, len(b.Keywords))
		for j, kw := range b.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		normalized[i] = Bucket{Label: b.Label, Keywords: kws}
	}
	return &KeywordClassifier{
		buckets:    normalized,
		fallback:   fallback,
		mode:       mode,
		saturation: saturation,
	}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	res := Result{Label: c.fallback}

	var matched []string
	for _, b := range c.buckets {
		hits, words := matchBucket(lower, b)
		if hits == 0 {
			continue
		}
		if c.mode == FirstMatch {
			res.Label = b.Label
			res.Hits = hits
			matched = words
			break
		}
		if hits > res.Hits {
			res.Label = b.Label
			res.Hits = hits
			matched = words
		}
	}

	res.Matched = dedupe(matched)
	res.Confidence = c.confidence(res.Hits)
	return res
}

// Counts returns per-bucket hit counts in declaration order.
func (c *KeywordClassifier) Counts(text string) []Count {
	lower := strings.ToLower(text)
	out := make([]Count, len(c.buckets))
	for i, b := range c.buckets {
		hits, _ := matchBucket(lower, b)
		out[i] = Count{Label: b.Label, Hits: hits}
	}
	return out
}

// Labels returns the bucket labels in declaration order.
func (c *KeywordClassifier) Labels() []string {
	out := make([]string, len(c.buckets))
	for i, b := range c.buckets {
		out[i] = b.Label
	}
	return out
}

func (c *KeywordClassifier) confidence(hits int) float64 {
	if hits <= 0 {
		return 0
	}
	if c.saturation <= 0 {
		return 1
	}
	conf := float64(hits) / float64(c.saturation)
	if conf > 1 {
		return 1
	}
	return conf
}

func matchBucket(lower string, b Bucket) (int, []string) {
	hits := 0
	var words []string
	for _, kw := range b.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			hits++
			words = append(words, kw)
		}
	}
	return hits, words
}

func dedupe(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
