package rdb

import (
	"context"
	"sync"
	"time"

	"github.com/hatlonely/litemap/log/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StatementHook 每条语句执行完成后调用，err 为引擎返回的原始错误
type StatementHook func(sql string, elapsed time.Duration, err error)

// statementMetrics 封装 prometheus 指标
type statementMetrics struct {
	statementCounter   *prometheus.CounterVec
	statementDuration  *prometheus.HistogramVec
	activeStatements   prometheus.Gauge
	batchSizeHistogram prometheus.Histogram
}

func newStatementMetrics(name string, registerer prometheus.Registerer) (*statementMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	var err error
	metrics := &statementMetrics{}
	if metrics.statementCounter, err = register(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_statements_total",
			Help: "Total number of executed statements",
		},
		[]string{"operation", "status"},
	)); err != nil {
		return nil, err
	}
	if metrics.statementDuration, err = register(registerer, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name + "_statement_duration_seconds",
			Help:    "Duration of statements in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)); err != nil {
		return nil, err
	}
	if metrics.activeStatements, err = register(registerer, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: name + "_active_statements",
			Help: "Number of statements in flight",
		},
	)); err != nil {
		return nil, err
	}
	if metrics.batchSizeHistogram, err = register(registerer, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    name + "_batch_size",
			Help:    "Number of items in batch inserts",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		},
	)); err != nil {
		return nil, err
	}

	return metrics, nil
}

// register 同名指标已注册时复用已有的收集器，多个上下文可以共享一个 Name
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	if err := registerer.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, errors.Wrap(err, "failed to register metrics")
	}
	return collector, nil
}

// monitor 记录每条语句的耗时和结果
type monitor struct {
	name    string
	logger  logger.Logger
	metrics *statementMetrics
	tracer  trace.Tracer

	mu    sync.RWMutex
	hooks []StatementHook
}

func newMonitor(options *MonitorOptions, l logger.Logger) (*monitor, error) {
	m := &monitor{name: options.Name}
	if m.name == "" {
		m.name = "rdb"
	}

	if options.EnableLogging && l != nil {
		m.logger = l.WithGroup("rdb")
	}
	if options.EnableMetrics {
		metrics, err := newStatementMetrics(m.name, options.Registerer)
		if err != nil {
			return nil, err
		}
		m.metrics = metrics
	}
	if options.EnableTracing {
		m.tracer = otel.Tracer("rdb." + m.name)
	}

	return m, nil
}

func (m *monitor) addHook(hook StatementHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// observe operation 为 exec 或 query
func (m *monitor) observe(ctx context.Context, operation string, sql string, fn func(context.Context) error) error {
	start := time.Now()

	var span trace.Span
	if m.tracer != nil {
		ctx, span = m.tracer.Start(ctx, "rdb."+operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("component", m.name),
				attribute.String("db.system", "sqlite"),
				attribute.String("db.statement", sql),
			),
		)
		defer span.End()
	}

	if m.metrics != nil {
		m.metrics.activeStatements.Inc()
		defer m.metrics.activeStatements.Dec()
	}

	err := fn(ctx)
	elapsed := time.Since(start)

	if span != nil {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if m.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.metrics.statementCounter.WithLabelValues(operation, status).Inc()
		m.metrics.statementDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}

	if m.logger != nil {
		if err != nil {
			m.logger.ErrorContext(ctx, "statement failed",
				"component", m.name,
				"sql", sql,
				"elapsed", elapsed,
				"error", err.Error(),
			)
		} else {
			m.logger.DebugContext(ctx, "statement completed",
				"component", m.name,
				"sql", sql,
				"elapsed", elapsed,
			)
		}
	}

	m.mu.RLock()
	hooks := m.hooks
	m.mu.RUnlock()
	for _, hook := range hooks {
		hook(sql, elapsed, err)
	}

	return err
}

func (m *monitor) observeBatchSize(size int) {
	if m.metrics != nil {
		m.metrics.batchSizeHistogram.Observe(float64(size))
	}
}

// warn 记录不影响返回值的错误，比如回滚失败
func (m *monitor) warn(ctx context.Context, msg string, err error) {
	if m.logger != nil && err != nil {
		m.logger.WarnContext(ctx, msg, "component", m.name, "error", err.Error())
	}
}
