package rdb

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/hatlonely/litemap/rdb/query"
	"github.com/hatlonely/litemap/rdb/schema"
	"github.com/pkg/errors"
)

// Table 类型 T 对应的表
type Table[T any] struct {
	ctx    *Context
	schema *schema.Table
}

// TableOf 返回 T 对应的表，表结构从上下文的缓存中获取
func TableOf[T any](c *Context) (*Table[T], error) {
	table, err := c.Schema(schema.TypeOf[T]())
	if err != nil {
		return nil, err
	}
	return &Table[T]{ctx: c, schema: table}, nil
}

func (t *Table[T]) Schema() *schema.Table {
	return t.schema
}

// Create 建表和索引，所有语句在一个事务中执行
func (t *Table[T]) Create(ctx context.Context) error {
	stmts := query.CreateTable(t.schema)
	return t.ctx.do(ctx, func(conn *sql.Conn) error {
		return t.ctx.inTx(ctx, conn, func(tx *txScope) error {
			for _, stmt := range stmts {
				if err := tx.checkpoint(); err != nil {
					return err
				}
				if _, err := t.ctx.exec(tx.detached(), tx.tx, stmt); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (t *Table[T]) Drop(ctx context.Context) error {
	return t.ctx.do(ctx, func(conn *sql.Conn) error {
		_, err := t.ctx.exec(ctx, conn, query.Drop(t.schema))
		return err
	})
}

func (t *Table[T]) Exists(ctx context.Context) (bool, error) {
	var count int64
	err := t.ctx.do(ctx, func(conn *sql.Conn) error {
		return t.ctx.scalar(ctx, conn, query.Exists(t.schema), &count)
	})
	return count > 0, err
}

func (t *Table[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := t.ctx.do(ctx, func(conn *sql.Conn) error {
		return t.ctx.scalar(ctx, conn, query.Count(t.schema), &count)
	})
	return count, err
}

// Insert 插入一行，表有自增列时把分配的值写回 item
//
// 写回时字段宽度放不下返回 ErrIdentityOverflow，此时行已经插入
func (t *Table[T]) Insert(ctx context.Context, item *T) (int64, error) {
	if item == nil {
		return 0, errors.WithMessage(query.ErrItemType, "nil item")
	}
	stmt, err := query.Insert(t.schema, item)
	if err != nil {
		return 0, err
	}

	var rows, id int64
	err = t.ctx.do(ctx, func(conn *sql.Conn) error {
		if rows, err = t.ctx.exec(ctx, conn, stmt); err != nil {
			return err
		}
		if !t.schema.HasAutoIncrement() {
			return nil
		}
		// 已经插入，不再跟随取消
		return t.ctx.scalar(context.WithoutCancel(ctx), conn, query.LastInsertRowID(), &id)
	})
	if err != nil {
		return rows, err
	}

	if err := t.writeBack(item, id); err != nil {
		return rows, err
	}
	return rows, nil
}

// InsertAll 在一个事务中逐行插入，任意一行失败则回滚并返回该错误
//
// 提交成功后按输入顺序把自增值写回 items，返回影响行数之和
func (t *Table[T]) InsertAll(ctx context.Context, items []*T) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	stmts := make([]query.Statement, 0, len(items))
	for i, item := range items {
		if item == nil {
			return 0, errors.WithMessagef(query.ErrItemType, "item %d is nil", i)
		}
		stmt, err := query.Insert(t.schema, item)
		if err != nil {
			return 0, errors.WithMessagef(err, "item %d", i)
		}
		stmts = append(stmts, stmt)
	}
	t.ctx.monitor.observeBatchSize(len(items))

	autoIncrement := t.schema.HasAutoIncrement()
	ids := make([]int64, len(items))
	var total int64
	err := t.ctx.do(ctx, func(conn *sql.Conn) error {
		return t.ctx.inTx(ctx, conn, func(tx *txScope) error {
			for i, stmt := range stmts {
				if err := tx.checkpoint(); err != nil {
					return err
				}
				rows, err := t.ctx.exec(tx.detached(), tx.tx, stmt)
				if err != nil {
					return err
				}
				total += rows

				if autoIncrement {
					if err := t.ctx.scalar(tx.detached(), tx.tx, query.LastInsertRowID(), &ids[i]); err != nil {
						return err
					}
				}
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	if autoIncrement {
		for i, item := range items {
			if err := t.writeBack(item, ids[i]); err != nil {
				return total, errors.WithMessagef(err, "item %d", i)
			}
		}
	}
	return total, nil
}

func (t *Table[T]) writeBack(item *T, id int64) error {
	column, ok := t.schema.AutoIncrementColumn()
	if !ok {
		return nil
	}
	if !column.SetIdentity(reflect.ValueOf(item).Elem(), id) {
		return errors.WithMessagef(ErrIdentityOverflow, "%d does not fit %s.%s (%s)",
			id, t.schema.Name(), column.Name, column.FieldType)
	}
	return nil
}
