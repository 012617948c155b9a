package schema

import (
	"database/sql"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

type Color int

const (
	ColorRed Color = iota + 1
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	}
	return "unknown"
}

type Person struct {
	ID       int64     `orm:"id,autoincrement"`
	Name     string    `orm:"name,notnull,maxlen=64,collate=nocase,index=idx_name_age:0"`
	Age      int32     `orm:"age,index=idx_name_age:1"`
	Email    *string   `orm:"email,unique"`
	Score    float64   `orm:"score"`
	Active   bool      `orm:"active"`
	Birthday time.Time `orm:"birthday"`
	Avatar   []byte    `orm:"avatar"`
	Color    Color     `orm:"color"`
	Initial  Char      `orm:"initial"`
	Ignored  string    `orm:"-"`
	secret   string
}

func (Person) TableName() string {
	return "people"
}

type AllTypes struct {
	I8       int8
	I16      int16
	I32      int32
	I64      int64
	I        int
	U8       uint8
	F32      float32
	NullI64  sql.NullInt64
	NullStr  sql.NullString
	PtrI32   *int32
	PtrStr   *string `orm:",notnull"`
	UUID     uuid.UUID
	NullUUID uuid.NullUUID
	Dec      decimal.Decimal
	NullDec  decimal.NullDecimal
	NullTime sql.NullTime
}

type Audit struct {
	CreatedBy string
	UpdatedBy string
}

type Document struct {
	Audit
	ID    int    `orm:"pk"`
	Title string `orm:"title"`
}

type Tagged struct {
	_ struct{} `table:"tagged_items"`
	X int
}

type CremeBrulee struct {
	Prenom string `orm:"prénom"`
}

func (CremeBrulee) TableName() string {
	return "crèmeBrûlée"
}

type OrderedIndex struct {
	A string `orm:"a,index=ix:2"`
	B string `orm:"b,index=ix:1"`
	C string `orm:"c,index=ix:1"`
	D string `orm:"d,index"`
}

type CompositeKey struct {
	UserID   int64  `orm:"user_id,pk"`
	Platform string `orm:"platform,pk"`
}

type Unsupported struct {
	Data map[string]string
}

type BadAutoIncrement struct {
	ID string `orm:"id,autoincrement"`
}

type EnumAutoIncrement struct {
	ID Color `orm:"id,autoincrement"`
}

type TwoAutoIncrements struct {
	A int64 `orm:"a,autoincrement"`
	B int64 `orm:"b,autoincrement"`
}

type MixedIndex struct {
	A int `orm:"a,index=ix"`
	B int `orm:"b,unique=ix"`
}

type BadMaxLength struct {
	Name string `orm:"name,maxlen=abc"`
}

type UnknownOption struct {
	Name string `orm:"name,primarykey"`
}

type BadCollation struct {
	Name string `orm:"name,collate=latin1"`
}

func TestMapper_Map(t *testing.T) {
	Convey("测试 Mapper.Map", t, func() {
		mapper := NewMapper(MapperOptions{})

		Convey("解析列定义", func() {
			table, err := mapper.Map(TypeOf[Person]())
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "people")
			So(table.Type(), ShouldEqual, reflect.TypeOf(Person{}))

			columns := table.Columns()
			So(len(columns), ShouldEqual, 10)

			names := make([]string, 0, len(columns))
			for _, column := range columns {
				names = append(names, column.Name)
			}
			So(names, ShouldResemble, []string{"id", "name", "age", "email", "score", "active", "birthday", "avatar", "color", "initial"})

			id := columns[0]
			So(id.SQLType, ShouldEqual, "BIGINT")
			So(id.IsPrimaryKey, ShouldBeTrue)
			So(id.IsAutoIncrement, ShouldBeTrue)
			So(id.IsNullable, ShouldBeFalse)

			name := columns[1]
			So(name.SQLType, ShouldEqual, "VARCHAR(64)")
			So(name.IsNullable, ShouldBeFalse)
			So(name.Collation, ShouldEqual, CollationNoCase)

			So(columns[2].SQLType, ShouldEqual, "INTEGER")
			So(columns[2].IsNullable, ShouldBeFalse)
			So(columns[3].SQLType, ShouldEqual, "VARCHAR")
			So(columns[3].IsNullable, ShouldBeTrue)
			So(columns[4].SQLType, ShouldEqual, "DOUBLE")
			So(columns[5].SQLType, ShouldEqual, "BOOLEAN")
			So(columns[6].SQLType, ShouldEqual, "DATETIME")
			So(columns[6].IsNullable, ShouldBeFalse)
			So(columns[7].SQLType, ShouldEqual, "BLOB")
			So(columns[7].IsNullable, ShouldBeTrue)
			So(columns[7].IsBlob(), ShouldBeTrue)
			So(columns[8].SQLType, ShouldEqual, "INTEGER")
			So(columns[9].SQLType, ShouldEqual, "CHARACTER")

			auto, ok := table.AutoIncrementColumn()
			So(ok, ShouldBeTrue)
			So(auto.Name, ShouldEqual, "id")
			So(len(table.InsertColumns()), ShouldEqual, 9)
		})

		Convey("解析索引", func() {
			table, err := mapper.Map(TypeOf[Person]())
			So(err, ShouldBeNil)

			indexes := table.Indexes()
			So(len(indexes), ShouldEqual, 2)
			So(indexes[0].Name, ShouldEqual, "idx_name_age")
			So(indexes[0].IsUnique, ShouldBeFalse)
			So(len(indexes[0].Columns), ShouldEqual, 2)
			So(indexes[0].Columns[0].Name, ShouldEqual, "name")
			So(indexes[0].Columns[1].Name, ShouldEqual, "age")
			So(indexes[1].Name, ShouldEqual, "uk_email")
			So(indexes[1].IsUnique, ShouldBeTrue)
		})

		Convey("索引列按 order 稳定排序", func() {
			table, err := mapper.Map(TypeOf[OrderedIndex]())
			So(err, ShouldBeNil)

			indexes := table.Indexes()
			So(len(indexes), ShouldEqual, 2)
			So(indexes[0].Name, ShouldEqual, "ix")
			So(indexes[0].Columns[0].Name, ShouldEqual, "b")
			So(indexes[0].Columns[1].Name, ShouldEqual, "c")
			So(indexes[0].Columns[2].Name, ShouldEqual, "a")
			So(indexes[1].Name, ShouldEqual, "idx_d")
		})

		Convey("类型映射和可空性", func() {
			table, err := mapper.Map(TypeOf[AllTypes]())
			So(err, ShouldBeNil)

			expected := map[string]struct {
				sqlType  string
				nullable bool
			}{
				"I8":       {"SMALLINT", false},
				"I16":      {"MEDIUMINT", false},
				"I32":      {"INTEGER", false},
				"I64":      {"BIGINT", false},
				"I":        {integerSQLType(strconv.IntSize), false},
				"U8":       {"SMALLINT", false},
				"F32":      {"FLOAT", false},
				"NullI64":  {"BIGINT", true},
				"NullStr":  {"VARCHAR", true},
				"PtrI32":   {"INTEGER", true},
				"PtrStr":   {"VARCHAR", false},
				"UUID":     {"CHAR(36)", false},
				"NullUUID": {"CHAR(36)", true},
				"Dec":      {"DECIMAL", false},
				"NullDec":  {"DECIMAL", true},
				"NullTime": {"DATETIME", true},
			}
			So(len(table.Columns()), ShouldEqual, len(expected))
			for _, column := range table.Columns() {
				e, ok := expected[column.Name]
				So(ok, ShouldBeTrue)
				So(column.SQLType, ShouldEqual, e.sqlType)
				So(column.IsNullable, ShouldEqual, e.nullable)
			}
		})

		Convey("展开嵌入结构体", func() {
			table, err := mapper.Map(TypeOf[Document]())
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "Document")

			columns := table.Columns()
			So(len(columns), ShouldEqual, 4)
			So(columns[0].Name, ShouldEqual, "CreatedBy")
			So(columns[0].FieldIndex, ShouldResemble, []int{0, 0})
			So(columns[2].Name, ShouldEqual, "ID")
			So(columns[2].IsPrimaryKey, ShouldBeTrue)
			So(columns[2].IsAutoIncrement, ShouldBeFalse)
			So(table.HasAutoIncrement(), ShouldBeFalse)
		})

		Convey("通过 table tag 指定表名", func() {
			table, err := mapper.Map(TypeOf[Tagged]())
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "tagged_items")
			So(len(table.Columns()), ShouldEqual, 1)
		})

		Convey("接受结构体指针类型", func() {
			table, err := mapper.Map(reflect.TypeOf(&Person{}))
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "people")
		})

		Convey("复合主键", func() {
			table, err := mapper.Map(TypeOf[CompositeKey]())
			So(err, ShouldBeNil)
			So(len(table.PrimaryKeys()), ShouldEqual, 2)
			So(table.HasAutoIncrement(), ShouldBeFalse)
		})

		Convey("返回的列是副本", func() {
			table, err := mapper.Map(TypeOf[Person]())
			So(err, ShouldBeNil)
			columns := table.Columns()
			columns[0].Name = "changed"
			column, ok := table.Column("id")
			So(ok, ShouldBeTrue)
			So(column.Name, ShouldEqual, "id")
		})
	})
}

func TestMapper_Diacritics(t *testing.T) {
	Convey("测试去除变音符号", t, func() {
		Convey("开启时表名和列名去除变音符号", func() {
			table, err := NewMapper(MapperOptions{RemoveDiacritics: true}).Map(TypeOf[CremeBrulee]())
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "cremeBrulee")
			So(table.Columns()[0].Name, ShouldEqual, "prenom")
		})

		Convey("关闭时保留原名", func() {
			table, err := NewMapper(MapperOptions{}).Map(TypeOf[CremeBrulee]())
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "crèmeBrûlée")
			So(table.Columns()[0].Name, ShouldEqual, "prénom")
		})

		Convey("RemoveDiacritics", func() {
			So(RemoveDiacritics("crèmeBrûlée"), ShouldEqual, "cremeBrulee")
			So(RemoveDiacritics("Ångström"), ShouldEqual, "Angstrom")
			So(RemoveDiacritics("plain"), ShouldEqual, "plain")
		})
	})
}

func TestMapper_Ticks(t *testing.T) {
	Convey("测试时间存为 ticks", t, func() {
		table, err := NewMapper(MapperOptions{StoreDateTimeAsTicks: true}).Map(TypeOf[Person]())
		So(err, ShouldBeNil)

		column, ok := table.Column("birthday")
		So(ok, ShouldBeTrue)
		So(column.SQLType, ShouldEqual, "BIGINT")

		birthday := time.Date(2000, 1, 2, 3, 4, 5, 6, time.UTC)
		So(column.Value(reflect.ValueOf(Person{Birthday: birthday})), ShouldEqual, birthday.UnixNano())
	})
}

func TestMapper_Errors(t *testing.T) {
	Convey("测试映射错误", t, func() {
		mapper := NewMapper(MapperOptions{})

		Convey("不支持的类型", func() {
			_, err := mapper.Map(TypeOf[Unsupported]())
			So(errors.Is(err, ErrUnsupportedType), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "map[string]string")
			So(err.Error(), ShouldContainSubstring, "Data")
		})

		Convey("自增列类型不是整数", func() {
			_, err := mapper.Map(TypeOf[BadAutoIncrement]())
			So(errors.Is(err, ErrAutoIncrementTypeNotSupported), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "string")
		})

		Convey("枚举不能自增", func() {
			_, err := mapper.Map(TypeOf[EnumAutoIncrement]())
			So(errors.Is(err, ErrAutoIncrementTypeNotSupported), ShouldBeTrue)
		})

		Convey("多个自增列", func() {
			_, err := mapper.Map(TypeOf[TwoAutoIncrements]())
			So(errors.Is(err, ErrMultipleAutoIncrementColumns), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "TwoAutoIncrements")
		})

		Convey("索引 unique 不一致", func() {
			_, err := mapper.Map(TypeOf[MixedIndex]())
			So(errors.Is(err, ErrInconsistentIndexUniqueness), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "ix")

			var mappingErr *MappingError
			So(errors.As(err, &mappingErr), ShouldBeTrue)
			So(mappingErr.Table, ShouldEqual, "MixedIndex")
			So(mappingErr.Index, ShouldEqual, "ix")
		})

		Convey("tag 格式错误", func() {
			_, err := mapper.Map(TypeOf[BadMaxLength]())
			So(errors.Is(err, ErrInvalidTag), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "BadMaxLength")

			_, err = mapper.Map(TypeOf[UnknownOption]())
			So(errors.Is(err, ErrInvalidTag), ShouldBeTrue)

			_, err = mapper.Map(TypeOf[BadCollation]())
			So(errors.Is(err, ErrInvalidTag), ShouldBeTrue)
		})

		Convey("不是结构体", func() {
			_, err := mapper.Map(reflect.TypeOf(1))
			So(errors.Is(err, ErrNotStruct), ShouldBeTrue)

			_, err = mapper.Map(nil)
			So(errors.Is(err, ErrNotStruct), ShouldBeTrue)
		})
	})
}

func TestColumn_Value(t *testing.T) {
	Convey("测试 Column.Value", t, func() {
		table, err := NewMapper(MapperOptions{}).Map(TypeOf[Person]())
		So(err, ShouldBeNil)

		email := "a@b.c"
		person := Person{Name: "alice", Email: &email, Color: ColorBlue, Initial: 'A'}
		value := reflect.ValueOf(person)

		column, _ := table.Column("email")
		So(column.Value(value), ShouldEqual, "a@b.c")

		person.Email = nil
		So(column.Value(reflect.ValueOf(person)), ShouldBeNil)

		column, _ = table.Column("color")
		So(column.Value(value), ShouldEqual, int64(2))

		column, _ = table.Column("initial")
		So(column.Value(value), ShouldEqual, "A")

		column, _ = table.Column("avatar")
		So(column.Value(value), ShouldBeNil)
		person.Avatar = []byte{1, 2}
		So(column.Value(reflect.ValueOf(person)), ShouldResemble, []byte{1, 2})
	})
}

func TestColumn_SetIdentity(t *testing.T) {
	type Small struct {
		ID int8 `orm:"id,autoincrement"`
	}
	type Unsigned struct {
		ID uint16 `orm:"id,autoincrement"`
	}

	Convey("测试 Column.SetIdentity", t, func() {
		mapper := NewMapper(MapperOptions{})

		Convey("写回有符号整数", func() {
			table, err := mapper.Map(TypeOf[Small]())
			So(err, ShouldBeNil)
			column, _ := table.AutoIncrementColumn()

			item := &Small{}
			So(column.SetIdentity(reflect.ValueOf(item).Elem(), 5), ShouldBeTrue)
			So(item.ID, ShouldEqual, 5)

			So(column.SetIdentity(reflect.ValueOf(item).Elem(), 300), ShouldBeFalse)
			So(item.ID, ShouldEqual, 5)
		})

		Convey("写回无符号整数", func() {
			table, err := mapper.Map(TypeOf[Unsigned]())
			So(err, ShouldBeNil)
			column, _ := table.AutoIncrementColumn()

			item := &Unsigned{}
			So(column.SetIdentity(reflect.ValueOf(item).Elem(), 65535), ShouldBeTrue)
			So(item.ID, ShouldEqual, 65535)
			So(column.SetIdentity(reflect.ValueOf(item).Elem(), -1), ShouldBeFalse)
			So(column.SetIdentity(reflect.ValueOf(item).Elem(), 65536), ShouldBeFalse)
		})
	})
}
