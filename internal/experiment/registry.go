package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rklab/internal/integrators"
	"github.com/san-kum/rklab/internal/problems"
	"github.com/san-kum/rklab/internal/reference"
)

// referenceMethod runs the same solver as the reference baseline.
const referenceMethod = "reference"

// Method is a named stepper together with its legend label and plot style.
type Method struct {
	Name  string
	Label string
	// Style uses the usual marker shorthand: "+", "x", or a color letter
	// followed by a marker such as "rs" for red squares.
	Style string
	New   func(substeps int) integrators.Stepper
}

type Registry struct {
	methods map[string]*Method
	aliases map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		methods: make(map[string]*Method),
		aliases: make(map[string]string),
	}

	r.methods["euler"] = &Method{
		Name: "euler", Label: "EULER", Style: "+",
		New: func(int) integrators.Stepper { return integrators.NewEuler() },
	}
	r.methods["midpoint"] = &Method{
		Name: "midpoint", Label: "RK2", Style: "x",
		New: func(int) integrators.Stepper { return integrators.NewMidpoint() },
	}
	r.methods[referenceMethod] = &Method{
		Name: referenceMethod, Label: "RK45", Style: "rs",
		New: func(substeps int) integrators.Stepper { return reference.NewDormandPrince(substeps) },
	}

	r.aliases["rk1"] = "euler"
	r.aliases["rk2"] = "midpoint"
	r.aliases["rk45"] = "reference"

	return r
}

func (r *Registry) GetMethod(name string) (*Method, error) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	m, ok := r.methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown method: %s (available: %v)", name, r.ListMethods())
	}
	return m, nil
}

func (r *Registry) GetProblem(name string) (*problems.Problem, error) {
	return problems.Lookup(name)
}

func (r *Registry) ListMethods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMethods compares both fixed-step methods with the reference.
func DefaultMethods() []string {
	return []string{"euler", "midpoint", "reference"}
}
