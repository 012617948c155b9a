package rdb

import (
	"time"

	"github.com/hatlonely/litemap/log/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// Options 映射上下文配置
type Options struct {
	// 驱动：sqlite (modernc.org/sqlite)，sqlite3 (github.com/mattn/go-sqlite3，需要 cgo)
	Driver string `cfg:"driver" def:"sqlite" validate:"omitempty,oneof=sqlite sqlite3"`

	// 数据库文件路径，":memory:" 为内存数据库
	Path string `cfg:"path" def:":memory:"`

	// 保留表名和列名中的变音符号，默认去除
	KeepDiacritics bool `cfg:"keepDiacritics"`

	// time.Time 以 UnixNano 存为 BIGINT
	StoreDateTimeAsTicks bool `cfg:"storeDateTimeAsTicks"`

	// 打开连接后设置 PRAGMA busy_timeout，0 表示不设置
	BusyTimeout time.Duration `cfg:"busyTimeout" validate:"gte=0"`

	Monitor MonitorOptions `cfg:"monitor"`

	// 为空时使用 log.Default()
	Logger *logger.SLogOptions `cfg:"logger"`
}

// MonitorOptions 语句观测配置
type MonitorOptions struct {
	// Name 组件名称标识，用于所有观测维度
	// - Metrics: 作为指标名前缀
	// - Logging: 作为 component 字段值
	// - Tracing: 作为 tracer 名称和 span 的 component 属性
	Name string `cfg:"name" def:"rdb"`

	// EnableLogging 每条语句以 debug 级别记录，失败以 error 级别记录
	EnableLogging bool `cfg:"enableLogging" def:"true"`

	EnableMetrics bool `cfg:"enableMetrics"`
	EnableTracing bool `cfg:"enableTracing"`

	// Registerer 注册指标，为空时使用 prometheus.DefaultRegisterer
	Registerer prometheus.Registerer `cfg:"-"`
}
