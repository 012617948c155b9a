package query

import (
	"fmt"
	"time"
)

// PRAGMA 不支持参数绑定，数值直接写入语句

func SQLiteVersion() Statement {
	return Statement{SQL: "SELECT sqlite_version();"}
}

func UserVersion() Statement {
	return Statement{SQL: "PRAGMA user_version;"}
}

func SetUserVersion(version int) Statement {
	return Statement{SQL: fmt.Sprintf("PRAGMA user_version = %d;", version)}
}

func Vacuum() Statement {
	return Statement{SQL: "VACUUM;"}
}

// JournalMode 设置日志模式，返回设置后的模式
func JournalMode(wal bool) Statement {
	if wal {
		return Statement{SQL: "PRAGMA journal_mode = WAL;"}
	}
	return Statement{SQL: "PRAGMA journal_mode = DELETE;"}
}

func BusyTimeout() Statement {
	return Statement{SQL: "PRAGMA busy_timeout;"}
}

// SetBusyTimeout 精度为毫秒，负数按 0 处理
func SetBusyTimeout(timeout time.Duration) Statement {
	ms := timeout.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return Statement{SQL: fmt.Sprintf("PRAGMA busy_timeout = %d;", ms)}
}
