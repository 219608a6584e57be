package compare

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer receives purely diagnostic checkpoints from a running
// comparison. Implementations must not influence control flow; the engine
// ignores anything they do.
type Observer interface {
	// ValidationDone fires once both inputs passed validation.
	ValidationDone(leftName, rightName string, hasDuplicateKeys bool)
	// JoinComplete fires after the outer alignment with the partition counts.
	JoinComplete(matched, leftOnly, rightOnly int64)
	// ColumnCompared fires after each per-column statistic is computed.
	ColumnCompared(stat ColumnStat)
}

type nopObserver struct{}

func (nopObserver) ValidationDone(string, string, bool) {}
func (nopObserver) JoinComplete(int64, int64, int64)    {}
func (nopObserver) ColumnCompared(ColumnStat)           {}

// NopObserver returns the no-op observer used when Options.Observer is nil.
func NopObserver() Observer { return nopObserver{} }

type zapObserver struct {
	log *zap.Logger
}

// NewZapObserver returns an observer that logs checkpoints through zap.
// Every entry carries a generated run_id so concurrent comparisons can be
// told apart in the logs.
func NewZapObserver(log *zap.Logger) Observer {
	return &zapObserver{log: log.With(zap.String("run_id", uuid.NewString()))}
}

func (o *zapObserver) ValidationDone(leftName, rightName string, hasDuplicateKeys bool) {
	o.log.Info("comparison inputs validated",
		zap.String("left", leftName),
		zap.String("right", rightName),
		zap.Bool("duplicate_keys", hasDuplicateKeys),
	)
}

func (o *zapObserver) JoinComplete(matched, leftOnly, rightOnly int64) {
	o.log.Info("outer alignment complete",
		zap.Int64("matched", matched),
		zap.Int64("left_only", leftOnly),
		zap.Int64("right_only", rightOnly),
	)
}

func (o *zapObserver) ColumnCompared(stat ColumnStat) {
	o.log.Debug("column compared",
		zap.String("column", stat.Column),
		zap.Int64("match_count", stat.MatchCount),
		zap.Int64("mismatch_count", stat.MismatchCount),
		zap.Bool("types_compatible", stat.TypesCompatible),
		zap.Float64("max_diff", stat.MaxDiff),
		zap.Int64("null_diff", stat.NullDiff),
	)
}
