package rdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/hatlonely/litemap/rdb/query"
)

// Database 数据库级别的操作，和表操作共用上下文的连接
type Database struct {
	ctx *Context
}

func (d *Database) SQLiteVersion(ctx context.Context) (string, error) {
	var version string
	err := d.scalar(ctx, query.SQLiteVersion(), &version)
	return version, err
}

func (d *Database) UserVersion(ctx context.Context) (int, error) {
	var version int
	err := d.scalar(ctx, query.UserVersion(), &version)
	return version, err
}

func (d *Database) SetUserVersion(ctx context.Context, version int) error {
	return d.exec(ctx, query.SetUserVersion(version))
}

func (d *Database) Vacuum(ctx context.Context) error {
	return d.exec(ctx, query.Vacuum())
}

// EnableWAL 返回设置后的日志模式，内存数据库始终为 memory
func (d *Database) EnableWAL(ctx context.Context) (string, error) {
	var mode string
	err := d.scalar(ctx, query.JournalMode(true), &mode)
	return mode, err
}

func (d *Database) DisableWAL(ctx context.Context) (string, error) {
	var mode string
	err := d.scalar(ctx, query.JournalMode(false), &mode)
	return mode, err
}

func (d *Database) BusyTimeout(ctx context.Context) (time.Duration, error) {
	var ms int64
	err := d.scalar(ctx, query.BusyTimeout(), &ms)
	return time.Duration(ms) * time.Millisecond, err
}

// SetBusyTimeout 只对当前连接生效，重新打开后使用 Options.BusyTimeout
func (d *Database) SetBusyTimeout(ctx context.Context, timeout time.Duration) error {
	return d.exec(ctx, query.SetBusyTimeout(timeout))
}

func (d *Database) exec(ctx context.Context, stmt query.Statement) error {
	return d.ctx.do(ctx, func(conn *sql.Conn) error {
		_, err := d.ctx.exec(ctx, conn, stmt)
		return err
	})
}

func (d *Database) scalar(ctx context.Context, stmt query.Statement, dest any) error {
	return d.ctx.do(ctx, func(conn *sql.Conn) error {
		return d.ctx.scalar(ctx, conn, stmt, dest)
	})
}
