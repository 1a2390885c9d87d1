package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zhemu6/AlterEgo/internal/metrics"
)

// QueryTracer records per-statement latency and failures. Labels carry only
// the leading SQL verb to keep metric cardinality bounded.
type QueryTracer struct{}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

type traceKey struct{}

type traceInfo struct {
	start time.Time
	verb  string
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceInfo{start: time.Now(), verb: queryVerb(data.SQL)})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	info, ok := ctx.Value(traceKey{}).(traceInfo)
	if !ok {
		return
	}

	metrics.DBQueryDuration.WithLabelValues(info.verb).Observe(time.Since(info.start).Seconds())
	if data.Err != nil {
		metrics.DBErrorsTotal.WithLabelValues(info.verb).Inc()
	}
}

func queryVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToUpper(fields[0])
}
