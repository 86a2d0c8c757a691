package extdata

import (
	"fmt"
	"sort"
	"strings"
)

// Species identifies one supported proteome: the common name used on the
// command line plus the identifiers the dataset URLs are built from.
type Species struct {
	Name       string
	Scientific string
	Taxonomy   string
	Proteome   string
}

var speciesRegistry = map[string]Species{
	"human":     {Name: "human", Scientific: "Homo sapiens", Taxonomy: "9606", Proteome: "UP000005640"},
	"mouse":     {Name: "mouse", Scientific: "Mus musculus", Taxonomy: "10090", Proteome: "UP000000589"},
	"rat":       {Name: "rat", Scientific: "Rattus norvegicus", Taxonomy: "10116", Proteome: "UP000002494"},
	"pig":       {Name: "pig", Scientific: "Sus scrofa", Taxonomy: "9823", Proteome: "UP000008227"},
	"rabbit":    {Name: "rabbit", Scientific: "Oryctolagus cuniculus", Taxonomy: "9986", Proteome: "UP000001811"},
	"zebrafish": {Name: "zebrafish", Scientific: "Danio rerio", Taxonomy: "7955", Proteome: "UP000000437"},
	"ecoli":     {Name: "ecoli", Scientific: "Escherichia coli", Taxonomy: "562", Proteome: "UP000000558"},
}

// LookupSpecies resolves a species by its common name (case-insensitive).
func LookupSpecies(name string) (Species, error) {
	sp, ok := speciesRegistry[strings.ToLower(name)]
	if !ok {
		return Species{}, fmt.Errorf("unknown species %q, expected one of: %s", name, strings.Join(SpeciesNames(), ", "))
	}
	return sp, nil
}

// SpeciesNames lists the supported species names in sorted order.
func SpeciesNames() []string {
	names := make([]string, 0, len(speciesRegistry))
	for name := range speciesRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
