package xref

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// aggregate shortens single-column aggregate construction.
func aggregate(column, value string) Table {
	return Table{Columns: []string{column}, Aggregate: map[string]Value{column: String(value)}}
}

// Evidence codes kept by the GO extractor: experimental, high-throughput,
// and phylogenetically inferred annotations. Electronic and other
// computational codes are dropped.
var goEvidenceAllowed = map[string]bool{
	"EXP": true, "IDA": true, "IPI": true, "IMP": true, "IGI": true,
	"IEP": true, "HTP": true, "HDA": true, "HMP": true, "HGI": true,
	"HEP": true, "IBA": true, "IBD": true, "IKR": true, "IRD": true,
}

var goAspectColumns = []struct {
	column string
	aspect string
}{
	{ColGOComponent, "C"},
	{ColGOFunction, "F"},
	{ColGOProcess, "P"},
}

type goExtractor struct{}

func (goExtractor) Source() string { return "GO" }

func (goExtractor) Columns() []string {
	return []string{ColGOComponent, ColGOFunction, ColGOProcess}
}

// Extract groups tuples by aspect (the one-letter prefix of the term field)
// and keeps the allow-listed evidence codes, formatting each survivor as
// "GOID>term|evidence". Entry order within an aspect follows input order.
func (e goExtractor) Extract(_ context.Context, rc *Context) Table {
	tuples := rc.Record.CrossRefsFor(e.Source())
	if len(tuples) == 0 {
		return NullTable(e.Columns())
	}
	byAspect := map[string][]string{}
	for _, f := range tuples {
		if len(f) < 3 {
			continue
		}
		aspect, _, _ := strings.Cut(f[1], ":")
		evidence, _, _ := strings.Cut(f[2], ":")
		if !goEvidenceAllowed[evidence] {
			continue
		}
		byAspect[aspect] = append(byAspect[aspect], f[0]+">"+cleanText(f[1])+"|"+f[2])
	}
	cells := make(map[string]Value, len(goAspectColumns))
	for _, ac := range goAspectColumns {
		if entries := byAspect[ac.aspect]; len(entries) > 0 {
			cells[ac.column] = String(strings.Join(entries, ";"))
		} else {
			cells[ac.column] = Value{}
		}
	}
	return Table{Columns: e.Columns(), Aggregate: cells}
}

type keggExtractor struct{}

func (keggExtractor) Source() string { return "KEGG" }

func (keggExtractor) Columns() []string { return []string{ColKEGG} }

// Extract resolves each pathway identifier through the annotation cache. A
// failed or empty lookup skips that identifier only; it never fails the record.
func (e keggExtractor) Extract(ctx context.Context, rc *Context) Table {
	tuples := rc.Record.CrossRefsFor(e.Source())
	if len(tuples) == 0 || rc.Pathways == nil {
		return NullTable(e.Columns())
	}
	var entries []string
	for _, f := range tuples {
		if len(f) == 0 {
			continue
		}
		res := rc.Pathways.Lookup(ctx, f[0])
		if res.Known && res.Text != "" {
			entries = append(entries, res.Text)
		}
	}
	if len(entries) == 0 {
		return NullTable(e.Columns())
	}
	return aggregate(ColKEGG, strings.Join(entries, ";"))
}

var subfamilyPattern = regexp.MustCompile(`:.*$`)

type pantherExtractor struct{}

func (pantherExtractor) Source() string { return "PANTHER" }

func (pantherExtractor) Columns() []string { return []string{ColPANTHER} }

// Extract matches each family identifier against the classification table.
// The family carries one value per accession, so the last matching tuple
// wins; tuples without a match are skipped.
func (e pantherExtractor) Extract(_ context.Context, rc *Context) Table {
	tuples := rc.Record.CrossRefsFor(e.Source())
	if len(tuples) == 0 || rc.Families == nil {
		return NullTable(e.Columns())
	}
	value := Value{}
	for _, f := range tuples {
		if len(f) == 0 {
			continue
		}
		c, ok := rc.Families.MatchPrefix(f[0])
		if !ok {
			continue
		}
		family := subfamilyPattern.ReplaceAllString(c.FamilyID, "")
		value = String(family + ">" + cleanText(c.Description))
	}
	if !value.Valid {
		return NullTable(e.Columns())
	}
	return aggregate(ColPANTHER, value.S)
}

var (
	trailingBracket = regexp.MustCompile(`\s*\[[^\]]*\]\s*$`)
	trailingPeriod  = regexp.MustCompile(`\s*\.\s*$`)
)

type reactomeExtractor struct{}

func (reactomeExtractor) Source() string { return "Reactome" }

func (reactomeExtractor) Columns() []string { return []string{ColReactome} }

// Extract formats each tuple as "pathwayId>description", stripping a trailing
// bracketed qualifier and trailing period from the description.
func (e reactomeExtractor) Extract(_ context.Context, rc *Context) Table {
	tuples := rc.Record.CrossRefsFor(e.Source())
	if len(tuples) == 0 {
		return NullTable(e.Columns())
	}
	entries := make([]string, 0, len(tuples))
	for _, f := range tuples {
		if len(f) == 0 {
			continue
		}
		desc := strings.Join(f[1:], "|")
		desc = trailingBracket.ReplaceAllString(desc, "")
		desc = trailingPeriod.ReplaceAllString(desc, "")
		entries = append(entries, f[0]+">"+cleanText(desc))
	}
	if len(entries) == 0 {
		return NullTable(e.Columns())
	}
	return aggregate(ColReactome, strings.Join(entries, ";"))
}

type corumExtractor struct{}

func (corumExtractor) Source() string { return "CORUM" }

func (corumExtractor) Columns() []string { return []string{ColCORUM} }

// Extract lists the complexes whose member set contains the primary
// accession. The family is only populated for records that carry a CORUM
// cross-reference.
func (e corumExtractor) Extract(_ context.Context, rc *Context) Table {
	tuples := rc.Record.CrossRefsFor(e.Source())
	if len(tuples) == 0 || rc.Complexes == nil {
		return NullTable(e.Columns())
	}
	complexes := rc.Complexes.Containing(rc.Record.Accession())
	if len(complexes) == 0 {
		return NullTable(e.Columns())
	}
	entries := make([]string, 0, len(complexes))
	for _, c := range complexes {
		entries = append(entries, cleanText(fmt.Sprintf("compID_%d>%s", c.ID, c.Name)))
	}
	return aggregate(ColCORUM, strings.Join(entries, ";"))
}

var diseasePattern = regexp.MustCompile(`DISEASE:\s*([^\[]+)\[(MIM:\d+)\]\s*:`)

type mimExtractor struct{}

func (mimExtractor) Source() string { return "MIM" }

func (mimExtractor) Columns() []string { return []string{ColOMIM} }

// Extract derives disease names from the record's comment lines. The family
// is only populated for records that carry a MIM cross-reference.
func (e mimExtractor) Extract(_ context.Context, rc *Context) Table {
	if len(rc.Record.CrossRefsFor(e.Source())) == 0 {
		return NullTable(e.Columns())
	}
	var entries []string
	for _, comment := range rc.Record.Comments {
		if !strings.Contains(comment, "DISEASE:") {
			continue
		}
		for _, m := range diseasePattern.FindAllStringSubmatch(comment, -1) {
			entries = append(entries, cleanText(m[2]+">"+strings.TrimSpace(m[1])))
		}
	}
	if len(entries) == 0 {
		return NullTable(e.Columns())
	}
	return aggregate(ColOMIM, strings.Join(entries, ";"))
}

type drugbankExtractor struct{}

func (drugbankExtractor) Source() string { return "DrugBank" }

func (drugbankExtractor) Columns() []string { return []string{ColDrugBank} }

func (e drugbankExtractor) Extract(_ context.Context, rc *Context) Table {
	tuples := rc.Record.CrossRefsFor(e.Source())
	if len(tuples) == 0 {
		return NullTable(e.Columns())
	}
	entries := make([]string, 0, len(tuples))
	for _, f := range tuples {
		if len(f) == 0 {
			continue
		}
		entries = append(entries, f[0]+">"+cleanText(strings.Join(f[1:], "|")))
	}
	if len(entries) == 0 {
		return NullTable(e.Columns())
	}
	return aggregate(ColDrugBank, strings.Join(entries, ";"))
}
