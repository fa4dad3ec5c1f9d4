// Package processos owns the procurement process records: the entity
// model, the session snapshot store, its persistence gateway and the pure
// view filters derived from a snapshot.
package processos

import (
	"sort"
	"time"
)

// Status is the closed lifecycle set of a process. Any status may follow
// any other; the set itself is validated, the transitions are not.
type Status string

const (
	StatusEmAnalise           Status = "em-analise"
	StatusAguardandoDocumento Status = "aguardando-documento"
	StatusPublicado           Status = "publicado"
	StatusFinalizado          Status = "finalizado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusEmAnalise, StatusAguardandoDocumento, StatusPublicado, StatusFinalizado:
		return true
	default:
		return false
	}
}

// Label returns the display name used on timeline entries.
func (s Status) Label() string {
	switch s {
	case StatusEmAnalise:
		return "Em Análise"
	case StatusAguardandoDocumento:
		return "Aguardando Documento"
	case StatusPublicado:
		return "Publicado"
	case StatusFinalizado:
		return "Finalizado"
	default:
		return string(s)
	}
}

// TimelineEvent is one entry of a process history. Entries are immutable
// once appended and their insertion order is the canonical history order.
type TimelineEvent struct {
	Data        string `json:"data"`
	Evento      string `json:"evento"`
	Responsavel string `json:"responsavel"`
	Detalhes    string `json:"detalhes"`
}

// Process is a procurement case. DataAbertura and ValorEstimado keep the
// pt-BR presentation strings the records were stored with.
type Process struct {
	ID            string          `json:"id"`
	Numero        string          `json:"numero"`
	Objeto        string          `json:"objeto"`
	Secretaria    string          `json:"secretaria"`
	Status        Status          `json:"status"`
	DataAbertura  string          `json:"dataAbertura"`
	PrazoFinal    string          `json:"prazoFinal"`
	Responsavel   string          `json:"responsavel"`
	ValorEstimado string          `json:"valorEstimado"`
	Observacoes   string          `json:"observacoes"`
	Timeline      []TimelineEvent `json:"timeline"`
}

const (
	// DateLayout is the pt-BR opening date format ("31/12/2025").
	DateLayout = "02/01/2006"
	// TimestampLayout is the pt-BR timeline timestamp format.
	TimestampLayout = "02/01/2006 15:04:05"

	isoDateLayout = "2006-01-02"
)

// SeedEvent is the timeline entry every process starts with.
func SeedEvent(now time.Time) TimelineEvent {
	return TimelineEvent{
		Data:        now.Format(TimestampLayout),
		Evento:      "Processo Iniciado",
		Responsavel: "Sistema",
		Detalhes:    "Processo criado via formulário",
	}
}

// Clone returns a deep copy; the timeline slice is never shared.
func (p Process) Clone() Process {
	c := p
	if p.Timeline != nil {
		c.Timeline = make([]TimelineEvent, len(p.Timeline))
		copy(c.Timeline, p.Timeline)
	}
	return c
}

// ParseOpeningDate normalizes an opening date string to a real date. Both
// the pt-BR form ("31/12/2025") and the ISO form of date inputs
// ("2025-12-31") are accepted.
func ParseOpeningDate(s string) (time.Time, bool) {
	for _, layout := range []string{DateLayout, isoDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByOpeningDateDesc orders a process list newest first. Dates are
// normalized before comparison; records whose date does not parse sort
// after parseable ones, by descending raw string.
func SortByOpeningDateDesc(list []Process) {
	sort.SliceStable(list, func(i, j int) bool {
		di, oki := ParseOpeningDate(list[i].DataAbertura)
		dj, okj := ParseOpeningDate(list[j].DataAbertura)
		switch {
		case oki && okj:
			if !di.Equal(dj) {
				return di.After(dj)
			}
			return list[i].DataAbertura > list[j].DataAbertura
		case oki:
			return true
		case okj:
			return false
		default:
			return list[i].DataAbertura > list[j].DataAbertura
		}
	})
}
