package xref

import "context"

// The direct-identifier families each carry the bracketed isoform annotation
// on a different tuple field; the per-family layouts below reproduce the
// source databases' genuinely different shapes.

type ensemblExtractor struct{}

func (ensemblExtractor) Source() string { return "Ensembl" }

func (ensemblExtractor) Columns() []string {
	return []string{ColEnsemblProtein, ColEnsemblTranscript, ColEnsemblGene}
}

// Extract reads (transcriptId, proteinId, geneId) tuples. The gene field may
// carry the bracketed annotation after a ". " separator.
func (e ensemblExtractor) Extract(_ context.Context, rc *Context) Table {
	b := newKeyedBuilder(e.Columns())
	for _, f := range rc.Record.CrossRefsFor(e.Source()) {
		if len(f) < 3 {
			continue
		}
		key := resolveKey(f[2], rc)
		gene := stripVersion(dotTailPattern.ReplaceAllString(f[2], ""))
		b.add(key, []string{stripVersion(f[1]), stripVersion(f[0]), gene})
	}
	return b.table()
}

type refseqExtractor struct{}

func (refseqExtractor) Source() string { return "RefSeq" }

func (refseqExtractor) Columns() []string {
	return []string{ColRefSeqProtein, ColRefSeqTranscript}
}

// Extract reads (proteinId, transcriptId) tuples; the transcript field may
// carry the bracketed annotation.
func (e refseqExtractor) Extract(_ context.Context, rc *Context) Table {
	b := newKeyedBuilder(e.Columns())
	for _, f := range rc.Record.CrossRefsFor(e.Source()) {
		if len(f) < 2 {
			continue
		}
		key := resolveKey(f[1], rc)
		transcript := stripVersion(dotTailPattern.ReplaceAllString(f[1], ""))
		b.add(key, []string{stripVersion(f[0]), transcript})
	}
	return b.table()
}

type ccdsExtractor struct{}

func (ccdsExtractor) Source() string { return "CCDS" }

func (ccdsExtractor) Columns() []string { return []string{ColCCDS} }

// Extract reads single-identifier tuples; a second field, when present,
// carries the bracketed annotation.
func (e ccdsExtractor) Extract(_ context.Context, rc *Context) Table {
	b := newKeyedBuilder(e.Columns())
	for _, f := range rc.Record.CrossRefsFor(e.Source()) {
		if len(f) == 0 {
			continue
		}
		var annotated string
		if len(f) > 1 {
			annotated = f[1]
		}
		b.add(resolveKey(annotated, rc), []string{stripVersion(f[0])})
	}
	return b.table()
}
