package query

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hatlonely/litemap/rdb/schema"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

type User struct {
	ID     int64  `orm:"id,autoincrement"`
	Name   string `orm:"name,notnull,maxlen=32,collate=nocase,unique"`
	Group  string `orm:"group,index=idx_group_age:0"`
	Age    int32  `orm:"age,index=idx_group_age:1"`
	Avatar []byte `orm:"avatar"`
}

func (User) TableName() string {
	return "users"
}

type Membership struct {
	UserID  int64  `orm:"user_id,pk"`
	GroupID int64  `orm:"group_id,pk"`
	Role    string `orm:"role,collate=rtrim"`
}

type Plain struct {
	Key   string `orm:"key]"`
	Value string `orm:"value"`
}

type OnlyID struct {
	ID int64 `orm:"id,autoincrement"`
}

func mustMap[T any](t *testing.T) *schema.Table {
	table, err := schema.NewMapper(schema.MapperOptions{}).Map(schema.TypeOf[T]())
	if err != nil {
		t.Fatalf("map %s: %v", schema.TypeOf[T](), err)
	}
	return table
}

func TestEscape(t *testing.T) {
	Convey("测试 Escape", t, func() {
		So(Escape("users"), ShouldEqual, "[users]")
		So(Escape("group"), ShouldEqual, "[group]")
		So(Escape("a b"), ShouldEqual, "[a b]")
		So(Escape("key]"), ShouldEqual, `"key]"`)
		So(Escape(`a"]b`), ShouldEqual, `"a""]b"`)
	})
}

func TestCreateTable(t *testing.T) {
	Convey("测试 CreateTable", t, func() {
		Convey("自增主键和索引", func() {
			statements := CreateTable(mustMap[User](t))
			So(len(statements), ShouldEqual, 3)
			So(statements[0].SQL, ShouldEqual, "CREATE TABLE IF NOT EXISTS [users](\n"+
				"[id] INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,\n"+
				"[name] VARCHAR(32) NOT NULL COLLATE NOCASE,\n"+
				"[group] VARCHAR,\n"+
				"[age] INTEGER NOT NULL,\n"+
				"[avatar] BLOB\n"+
				");")
			So(statements[1].SQL, ShouldEqual, "CREATE UNIQUE INDEX IF NOT EXISTS [uk_name] ON [users]([name]);")
			So(statements[2].SQL, ShouldEqual, "CREATE INDEX IF NOT EXISTS [idx_group_age] ON [users]([group], [age]);")
			So(statements[0].Params, ShouldBeEmpty)
		})

		Convey("复合主键", func() {
			statements := CreateTable(mustMap[Membership](t))
			So(len(statements), ShouldEqual, 1)
			So(statements[0].SQL, ShouldEqual, "CREATE TABLE IF NOT EXISTS [Membership](\n"+
				"[user_id] BIGINT NOT NULL,\n"+
				"[group_id] BIGINT NOT NULL,\n"+
				"[role] VARCHAR COLLATE RTRIM,\n"+
				"PRIMARY KEY([user_id], [group_id])\n"+
				");")
		})

		Convey("没有主键", func() {
			statements := CreateTable(mustMap[Plain](t))
			So(statements[0].SQL, ShouldEqual, "CREATE TABLE IF NOT EXISTS [Plain](\n"+
				"\"key]\" VARCHAR,\n"+
				"[value] VARCHAR\n"+
				");")
		})
	})
}

func TestInsert(t *testing.T) {
	Convey("测试 Insert", t, func() {
		table := mustMap[User](t)

		Convey("单行", func() {
			stmt, err := Insert(table, &User{ID: 9, Name: "alice", Group: "admin", Age: 30})
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "INSERT INTO [users] ([name], [group], [age], [avatar]) VALUES (@p0_0, @p0_1, @p0_2, @p0_3);")
			So(len(stmt.Params), ShouldEqual, 4)
			So(stmt.Params[0], ShouldResemble, Param{Name: "p0_0", Value: "alice", Kind: ParamValue})
			So(stmt.Params[2].Value, ShouldEqual, int32(30))
			So(stmt.Params[3].Kind, ShouldEqual, ParamBlob)
			So(stmt.Params[3].Value, ShouldBeNil)
		})

		Convey("多行参数名不冲突", func() {
			stmt, err := Insert(table, User{Name: "a"}, &User{Name: "b", Avatar: []byte{0xff}})
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "INSERT INTO [users] ([name], [group], [age], [avatar]) VALUES "+
				"(@p0_0, @p0_1, @p0_2, @p0_3), (@p1_0, @p1_1, @p1_2, @p1_3);")
			So(len(stmt.Params), ShouldEqual, 8)
			So(stmt.Params[4].Name, ShouldEqual, "p1_0")
			So(stmt.Params[4].Value, ShouldEqual, "b")
			So(stmt.Params[7].Value, ShouldResemble, []byte{0xff})

			args := stmt.Args()
			So(len(args), ShouldEqual, 8)
			So(args[4], ShouldResemble, sql.Named("p1_0", "b"))
		})

		Convey("只有自增列", func() {
			table := mustMap[OnlyID](t)
			stmt, err := Insert(table, &OnlyID{})
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "INSERT INTO [OnlyID] DEFAULT VALUES;")
			So(stmt.Args(), ShouldBeNil)

			_, err = Insert(table, &OnlyID{}, &OnlyID{})
			So(errors.Is(err, ErrNoInsertableColumns), ShouldBeTrue)
		})

		Convey("错误", func() {
			_, err := Insert(table)
			So(errors.Is(err, ErrNoItems), ShouldBeTrue)

			_, err = Insert(table, &Plain{})
			So(errors.Is(err, ErrItemType), ShouldBeTrue)

			var user *User
			_, err = Insert(table, user)
			So(errors.Is(err, ErrItemType), ShouldBeTrue)

			_, err = Insert(table, nil)
			So(errors.Is(err, ErrItemType), ShouldBeTrue)
		})
	})
}

func TestTableStatements(t *testing.T) {
	Convey("测试整表语句", t, func() {
		table := mustMap[User](t)

		So(Drop(table).SQL, ShouldEqual, "DROP TABLE IF EXISTS [users];")
		So(Count(table).SQL, ShouldEqual, "SELECT COUNT(*) FROM [users];")
		So(LastInsertRowID().SQL, ShouldEqual, "SELECT last_insert_rowid();")

		exists := Exists(table)
		So(exists.SQL, ShouldEqual, "SELECT COUNT(name) FROM sqlite_master WHERE type = 'table' AND name = @name;")
		So(exists.Params, ShouldResemble, []Param{{Name: "name", Value: "users"}})
	})
}

func TestPragmaStatements(t *testing.T) {
	Convey("测试 PRAGMA 语句", t, func() {
		So(SQLiteVersion().SQL, ShouldEqual, "SELECT sqlite_version();")
		So(UserVersion().SQL, ShouldEqual, "PRAGMA user_version;")
		So(SetUserVersion(7).SQL, ShouldEqual, "PRAGMA user_version = 7;")
		So(Vacuum().SQL, ShouldEqual, "VACUUM;")
		So(JournalMode(true).SQL, ShouldEqual, "PRAGMA journal_mode = WAL;")
		So(JournalMode(false).SQL, ShouldEqual, "PRAGMA journal_mode = DELETE;")
		So(BusyTimeout().SQL, ShouldEqual, "PRAGMA busy_timeout;")
		So(SetBusyTimeout(1500*time.Millisecond).SQL, ShouldEqual, "PRAGMA busy_timeout = 1500;")
		So(SetBusyTimeout(-time.Second).SQL, ShouldEqual, "PRAGMA busy_timeout = 0;")
	})
}
