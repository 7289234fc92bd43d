package matcher

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Document is the extracted text of one source file.
type Document struct {
	ID   string
	Text string
}

// Corpus is an ordered, normalized set of documents. Order decides which
// document wins when a name resolves in more than one.
type Corpus struct {
	docs []Document
}

// NewCorpus normalizes the given documents, keeping their order.
func NewCorpus(docs []Document) *Corpus {
	c := &Corpus{docs: make([]Document, 0, len(docs))}
	for _, d := range docs {
		c.docs = append(c.docs, Document{ID: d.ID, Text: NormalizeText(d.Text)})
	}
	return c
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// Documents returns a copy of the normalized documents.
func (c *Corpus) Documents() []Document {
	if c == nil {
		return nil
	}
	return append([]Document(nil), c.docs...)
}

// Result maps query names to the number found for them.
type Result map[string]string

// Option configures a Resolver.
type Option func(*Resolver)

// WithFuzzyThreshold sets the minimum fuzzy score (0-100). Default: 70.
func WithFuzzyThreshold(score int) Option {
	return func(r *Resolver) { r.threshold = score }
}

// WithWindow sets how many characters past the name the trailing policy scans.
// Default: 50.
func WithWindow(n int) Option {
	return func(r *Resolver) { r.extractor.Window = n }
}

// WithPolicy selects the number extraction policy. Default: PolicyTrailing.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) { r.extractor.Policy = p }
}

// WithOffByOne toggles the minus-one correction of the trailing policy.
// Default: enabled.
func WithOffByOne(enabled bool) Option {
	return func(r *Resolver) { r.extractor.OffByOne = enabled }
}

// WithFuzzyMatcher replaces the partial-ratio matcher. The threshold option
// is ignored by custom matchers.
func WithFuzzyMatcher(m FuzzyMatcher) Option {
	return func(r *Resolver) { r.fuzzy = m }
}

// WithLogger sets the logger used for per-name diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress registers a callback invoked after each processed name.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Resolver) { r.progress = fn }
}

// Resolver associates query names with numbers found in a corpus.
type Resolver struct {
	threshold int
	fuzzy     FuzzyMatcher
	extractor Extractor
	logger    *zap.Logger
	progress  func(done, total int)
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		threshold: DefaultFuzzyThreshold,
		extractor: Extractor{Policy: PolicyTrailing, Window: DefaultWindow, OffByOne: true},
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.fuzzy == nil {
		r.fuzzy = PartialRatio{Threshold: r.threshold}
	}
	return r
}

// Resolve looks up every name in the corpus. Names without a number are
// absent from the result.
func (r *Resolver) Resolve(names []string, corpus *Corpus) Result {
	res, _ := r.ResolveContext(context.Background(), names, corpus)
	return res
}

// ResolveContext is Resolve with cancellation between names. A cancelled run
// returns the context error and no result.
func (r *Resolver) ResolveContext(ctx context.Context, names []string, corpus *Corpus) (Result, error) {
	result := make(Result)
	seen := make(map[string]bool, len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !seen[name] {
			seen[name] = true
			r.resolveInto(result, name, corpus)
		}
		if r.progress != nil {
			r.progress(i+1, len(names))
		}
	}
	return result, nil
}

func (r *Resolver) resolveInto(result Result, name string, corpus *Corpus) {
	query := NormalizeText(strings.TrimSpace(name))
	if query == "" {
		return
	}
	n, doc, ok := r.resolveName(query, corpus)
	if !ok {
		r.logger.Info("no match or number found", zap.String("name", name))
		return
	}
	result[name] = strconv.Itoa(n)
	r.logger.Info("name resolved", zap.String("name", name), zap.String("document", doc), zap.Int("number", n))
}

// resolveName walks the corpus in order: exact search first, fuzzy search
// only for documents where the exact search found nothing.
func (r *Resolver) resolveName(query string, corpus *Corpus) (int, string, bool) {
	if corpus == nil {
		return 0, "", false
	}
	for _, doc := range corpus.docs {
		if offsets := exactOffsets(query, doc.Text); len(offsets) > 0 {
			matches := make([]Match, len(offsets))
			for i, off := range offsets {
				matches[i] = Match{Offset: off, Length: len(query)}
			}
			r.logger.Debug("exact match", zap.String("document", doc.ID), zap.Int("occurrences", len(offsets)))
			if n, ok := r.extractor.Extract(doc.Text, matches); ok {
				return n, doc.ID, true
			}
			continue
		}

		fz := r.fuzzy.Match(query, doc.Text)
		if !fz.Matched {
			continue
		}
		r.logger.Debug("fuzzy match", zap.String("document", doc.ID), zap.Int("score", fz.Score))
		if n, ok := r.extractor.Extract(doc.Text, []Match{{Offset: fz.Offset, Length: fz.Length}}); ok {
			return n, doc.ID, true
		}
	}
	return 0, "", false
}
