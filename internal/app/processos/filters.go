package processos

import (
	"strings"
	"time"

	"github.com/gestao-licitacoes/tracker/internal/format"
)

// FilterBySearch keeps processes whose numero, objeto or secretaria
// contains the term, case-insensitively. An empty term is the identity.
func FilterBySearch(list []Process, term string) []Process {
	term = strings.TrimSpace(term)
	if term == "" {
		return list
	}
	t := strings.ToLower(term)
	out := make([]Process, 0, len(list))
	for _, p := range list {
		if containsFold(p.Numero, t) || containsFold(p.Objeto, t) || containsFold(p.Secretaria, t) {
			out = append(out, p)
		}
	}
	return out
}

// Active keeps processes that are not yet finalized.
func Active(list []Process) []Process {
	out := make([]Process, 0, len(list))
	for _, p := range list {
		if p.Status != StatusFinalizado {
			out = append(out, p)
		}
	}
	return out
}

// Finalized keeps finalized processes.
func Finalized(list []Process) []Process {
	out := make([]Process, 0, len(list))
	for _, p := range list {
		if p.Status == StatusFinalizado {
			out = append(out, p)
		}
	}
	return out
}

// AdvancedFilter is a conjunction over its provided constraints; zero
// fields are vacuously true. Date bounds are inclusive and compared on
// normalized opening dates; value bounds are inclusive and compared on
// the parsed valorEstimado.
type AdvancedFilter struct {
	Numero      string
	Objeto      string
	Secretaria  string
	Responsavel string
	Status      Status

	DataInicio time.Time
	DataFim    time.Time

	ValorMin *float64
	ValorMax *float64
}

func (f AdvancedFilter) IsZero() bool {
	return f.Numero == "" && f.Objeto == "" && f.Secretaria == "" &&
		f.Responsavel == "" && f.Status == "" &&
		f.DataInicio.IsZero() && f.DataFim.IsZero() &&
		f.ValorMin == nil && f.ValorMax == nil
}

// Apply returns the processes satisfying every provided constraint.
func (f AdvancedFilter) Apply(list []Process) []Process {
	if f.IsZero() {
		return list
	}
	out := make([]Process, 0, len(list))
	for _, p := range list {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f AdvancedFilter) matches(p Process) bool {
	if f.Numero != "" && !containsFold(p.Numero, strings.ToLower(f.Numero)) {
		return false
	}
	if f.Objeto != "" && !containsFold(p.Objeto, strings.ToLower(f.Objeto)) {
		return false
	}
	if f.Secretaria != "" && !containsFold(p.Secretaria, strings.ToLower(f.Secretaria)) {
		return false
	}
	if f.Responsavel != "" && !containsFold(p.Responsavel, strings.ToLower(f.Responsavel)) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}

	if !f.DataInicio.IsZero() || !f.DataFim.IsZero() {
		// A record whose date does not normalize passes the bound, same
		// as every other absent constraint.
		if opened, ok := ParseOpeningDate(p.DataAbertura); ok {
			if !f.DataInicio.IsZero() && opened.Before(f.DataInicio) {
				return false
			}
			if !f.DataFim.IsZero() && opened.After(f.DataFim) {
				return false
			}
		}
	}

	if f.ValorMin != nil || f.ValorMax != nil {
		if v, ok := format.Amount(p.ValorEstimado); ok {
			if f.ValorMin != nil && v < *f.ValorMin {
				return false
			}
			if f.ValorMax != nil && v > *f.ValorMax {
				return false
			}
		}
	}
	return true
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
