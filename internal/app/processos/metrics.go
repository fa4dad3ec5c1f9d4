package processos

import "github.com/gestao-licitacoes/tracker/internal/platform/metrics"

var (
	snapshotSize = metrics.NewGauge(metrics.Opts{
		Name: "processos_snapshot_size",
		Help: "Process records currently held in the session snapshot.",
	})
	mutationsTotal = metrics.NewCounterVec(metrics.Opts{
		Name: "processos_mutations_total",
		Help: "Store mutations by operation and result.",
	}, []string{"operation", "result"})
)

func init() {
	metrics.Default.MustRegister(snapshotSize, mutationsTotal)
}
