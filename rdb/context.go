package rdb

import (
	"context"
	"database/sql"
	"io"
	"reflect"
	"sync"

	"github.com/hatlonely/litemap/cfg"
	"github.com/hatlonely/litemap/log"
	"github.com/hatlonely/litemap/log/logger"
	"github.com/hatlonely/litemap/rdb/query"
	"github.com/hatlonely/litemap/rdb/schema"
	"github.com/pkg/errors"
)

// Context 映射上下文，持有表结构缓存和一个延迟打开的连接
//
// 同一个上下文上的操作串行执行，批量插入的事务不会混入其他调用的语句
type Context struct {
	options *Options
	cache   *schema.Cache
	monitor *monitor
	logger  logger.Logger

	mu     sync.Mutex
	db     *sql.DB
	ownsDB bool
	conn   *sql.Conn
	closed bool
}

// NewContextWithOptions 创建上下文，连接在第一次执行语句时打开
//
// options 中的零值按 def tag 处理，需要关闭日志等布尔选项时请显式构造完整的 Options
func NewContextWithOptions(options *Options) (*Context, error) {
	if options == nil {
		options = &Options{}
		if err := cfg.SetDefaults(options); err != nil {
			return nil, errors.WithMessage(err, "failed to set default options")
		}
	}
	if err := cfg.Validate(options); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	c, err := newContext(options)
	if err != nil {
		return nil, err
	}
	c.ownsDB = true
	return c, nil
}

// InMemory 使用默认配置创建内存数据库上下文
func InMemory() (*Context, error) {
	return NewContextWithOptions(nil)
}

// NewContextWithDB 使用已有的 *sql.DB，Close 时不会关闭 db
func NewContextWithDB(db *sql.DB, options *Options) (*Context, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if options == nil {
		options = &Options{}
	}
	c, err := newContext(options)
	if err != nil {
		return nil, err
	}
	c.db = db
	return c, nil
}

func newContext(options *Options) (*Context, error) {
	l, err := log.NewLoggerWithOptions(options.Logger)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create logger")
	}
	m, err := newMonitor(&options.Monitor, l)
	if err != nil {
		return nil, err
	}

	return &Context{
		options: options,
		cache: schema.NewCache(schema.NewMapper(schema.MapperOptions{
			RemoveDiacritics:     !options.KeepDiacritics,
			StoreDateTimeAsTicks: options.StoreDateTimeAsTicks,
		})),
		monitor: m,
		logger:  l,
	}, nil
}

// Schema 返回类型对应的表结构，同一类型只构建一次
func (c *Context) Schema(t reflect.Type) (*schema.Table, error) {
	return c.cache.Get(t)
}

// Cache 表结构缓存，随上下文一起释放
func (c *Context) Cache() *schema.Cache {
	return c.cache
}

// OnStatement 注册语句钩子，可以注册多个，按注册顺序调用
func (c *Context) OnStatement(hook StatementHook) {
	if hook != nil {
		c.monitor.addHook(hook)
	}
}

// Database 数据库级别的 PRAGMA 操作
func (c *Context) Database() *Database {
	return &Database{ctx: c}
}

// Close 关闭连接，之后的操作返回 ErrClosed
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
		c.conn = nil
	}
	if c.db != nil && c.ownsDB {
		errs = append(errs, c.db.Close())
	}
	if c.options.Logger != nil {
		if closer, ok := c.logger.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	for _, err := range errs {
		if err != nil {
			return errors.Wrap(err, "failed to close context")
		}
	}
	return nil
}

// do 串行执行 fn，需要时打开连接
func (c *Context) do(ctx context.Context, fn func(conn *sql.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := c.connLocked(ctx)
	if err != nil {
		return err
	}
	return fn(conn)
}

func (c *Context) connLocked(ctx context.Context) (*sql.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	if c.db == nil {
		driver := c.options.Driver
		if driver == "" {
			driver = DriverSQLite
		}
		path := c.options.Path
		if path == "" {
			path = MemoryPath
		}
		db, err := sql.Open(driver, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s database %s", driver, path)
		}
		// 内存数据库只存在于一个连接上
		db.SetMaxOpenConns(1)
		c.db = db
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open connection")
	}

	if c.options.BusyTimeout > 0 {
		if _, err := c.exec(ctx, conn, query.SetBusyTimeout(c.options.BusyTimeout)); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	c.conn = conn
	return conn, nil
}

// execer 由 *sql.Conn 和 *sql.Tx 实现
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exec 执行语句并返回影响行数，引擎错误原样返回
func (c *Context) exec(ctx context.Context, e execer, stmt query.Statement) (int64, error) {
	var rows int64
	err := c.monitor.observe(ctx, "exec", stmt.SQL, func(ctx context.Context) error {
		result, err := e.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	return rows, err
}

// scalar 执行返回单行单列的语句
func (c *Context) scalar(ctx context.Context, e execer, stmt query.Statement, dest any) error {
	return c.monitor.observe(ctx, "query", stmt.SQL, func(ctx context.Context) error {
		return e.QueryRowContext(ctx, stmt.SQL, stmt.Args()...).Scan(dest)
	})
}

// inTx 在事务中执行 fn，fn 返回错误或 ctx 被取消时回滚
//
// 事务内的语句不跟随 ctx 取消，取消只在语句之间通过 tx.checkpoint 检查，检查到后先回滚再返回
func (c *Context) inTx(ctx context.Context, conn *sql.Conn, fn func(tx *txScope) error) error {
	sqlTx, err := conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return err
	}

	tx := &txScope{ctx: ctx, tx: sqlTx}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.monitor.warn(ctx, "rollback failed", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		// 提交失败时事务可能仍然打开
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.monitor.warn(ctx, "rollback failed", rbErr)
		}
		return err
	}
	return nil
}

type txScope struct {
	ctx context.Context
	tx  *sql.Tx
}

// checkpoint 在发出下一条语句前检查取消
func (t *txScope) checkpoint() error {
	return t.ctx.Err()
}

// detached 事务内语句使用的 context，保留 ctx 的值但不会被取消
func (t *txScope) detached() context.Context {
	return context.WithoutCancel(t.ctx)
}
