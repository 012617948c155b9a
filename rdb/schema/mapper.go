package schema

import (
	"reflect"
	"sort"
)

// MapperOptions 映射选项
type MapperOptions struct {
	// 表名和列名去除变音符号，'crèmeBrûlée' -> 'cremeBrulee'
	RemoveDiacritics bool `cfg:"removeDiacritics"`
	// time.Time 以 UnixNano 存为 BIGINT，否则为 DATETIME
	StoreDateTimeAsTicks bool `cfg:"storeDateTimeAsTicks"`
}

// Mapper 从结构体的成员和 orm tag 构建表结构
//
// Map 没有副作用，同一个类型多次调用得到相同的结果，缓存由 Cache 负责
type Mapper struct {
	options MapperOptions
}

func NewMapper(options MapperOptions) *Mapper {
	return &Mapper{options: options}
}

// Options 返回映射选项
func (m *Mapper) Options() MapperOptions {
	return m.options
}

// TypeOf 返回 T 对应的 reflect.Type
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

type columnEntry struct {
	column  Column
	indexes []indexTag
}

// Map 构建表结构，t 可以是结构体或结构体指针
func (m *Mapper) Map(t reflect.Type) (*Table, error) {
	if t == nil {
		return nil, &MappingError{Kind: ErrNotStruct, Type: "nil"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &MappingError{Kind: ErrNotStruct, Type: t.String()}
	}

	table := &Table{
		name:    m.tableName(t),
		typ:     t,
		autoInc: -1,
	}
	if table.name == "" {
		return nil, &MappingError{Kind: ErrUnsupportedType, Type: t.String(), Detail: "table name is empty"}
	}

	var entries []columnEntry
	if err := m.collectColumns(t, nil, table.name, &entries); err != nil {
		return nil, err
	}

	table.columns = make([]Column, 0, len(entries))
	autoIncCount := 0
	for i, entry := range entries {
		table.columns = append(table.columns, entry.column)
		if entry.column.IsAutoIncrement {
			autoIncCount++
			table.autoInc = i
		}
	}
	if autoIncCount > 1 {
		return nil, &MappingError{Kind: ErrMultipleAutoIncrementColumns, Table: table.name}
	}

	indexes, err := buildIndexes(table.name, entries)
	if err != nil {
		return nil, err
	}
	table.indexes = indexes

	return table, nil
}

func (m *Mapper) tableName(t reflect.Type) string {
	name := t.Name()
	if namer, ok := reflect.New(t).Interface().(TableNamer); ok {
		if n := namer.TableName(); n != "" {
			name = n
		}
	} else {
		for i := 0; i < t.NumField(); i++ {
			if n := t.Field(i).Tag.Get(TableTagName); n != "" {
				name = n
				break
			}
		}
	}
	return m.normalizeName(name)
}

// collectColumns 按声明顺序收集列，展开匿名嵌入的结构体
func (m *Mapper) collectColumns(t reflect.Type, parent []int, tableName string, entries *[]columnEntry) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), parent...), i)
		tag := field.Tag.Get(TagName)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && !isValueType(field.Type) && tag == "" {
			if err := m.collectColumns(field.Type, index, tableName, entries); err != nil {
				return err
			}
			continue
		}

		// 不可读写的成员不是列
		if !field.IsExported() {
			continue
		}

		ft, err := parseFieldTag(tag)
		if err != nil {
			mappingErr := err.(*MappingError)
			mappingErr.Table = tableName
			mappingErr.Field = field.Name
			return mappingErr
		}
		if ft.ignore {
			continue
		}

		column, err := m.buildColumn(field, index, ft, tableName)
		if err != nil {
			return err
		}
		*entries = append(*entries, columnEntry{column: column, indexes: ft.indexes})
	}
	return nil
}

func (m *Mapper) buildColumn(field reflect.StructField, index []int, ft *fieldTag, tableName string) (Column, error) {
	sqlType, bind, ok := m.resolveSQLType(field.Type, ft.maxLength)
	if !ok {
		return Column{}, &MappingError{Kind: ErrUnsupportedType, Table: tableName, Field: field.Name, Type: field.Type.String()}
	}
	if ft.autoIncrement && !isAutoIncrementType(field.Type) {
		return Column{}, &MappingError{Kind: ErrAutoIncrementTypeNotSupported, Table: tableName, Field: field.Name, Type: field.Type.String()}
	}

	name := field.Name
	if ft.column != "" {
		name = ft.column
	}

	return Column{
		FieldName:       field.Name,
		FieldIndex:      index,
		FieldType:       field.Type,
		Name:            m.normalizeName(name),
		SQLType:         sqlType,
		IsPrimaryKey:    ft.primaryKey,
		IsAutoIncrement: ft.autoIncrement,
		IsNullable:      !ft.notNull && defaultNullable(field.Type),
		Collation:       ft.collation,
		bind:            bind,
	}, nil
}

type indexMember struct {
	column Column
	order  int
}

// buildIndexes 按索引名分组，同组的 unique 必须一致，组内按 order 稳定排序
func buildIndexes(tableName string, entries []columnEntry) ([]Index, error) {
	var names []string
	groups := make(map[string]*Index)
	members := make(map[string][]indexMember)

	for _, entry := range entries {
		for _, tag := range entry.indexes {
			name := tag.name
			if name == "" {
				if tag.isUnique {
					name = "uk_" + entry.column.Name
				} else {
					name = "idx_" + entry.column.Name
				}
			}

			group, exists := groups[name]
			if !exists {
				group = &Index{Name: name, IsUnique: tag.isUnique}
				groups[name] = group
				names = append(names, name)
			} else if group.IsUnique != tag.isUnique {
				return nil, &MappingError{
					Kind:  ErrInconsistentIndexUniqueness,
					Table: tableName,
					Field: entry.column.FieldName,
					Index: name,
				}
			}
			members[name] = append(members[name], indexMember{column: entry.column, order: tag.order})
		}
	}

	indexes := make([]Index, 0, len(names))
	for _, name := range names {
		list := members[name]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].order < list[j].order
		})
		index := groups[name]
		for _, member := range list {
			index.Columns = append(index.Columns, member.column)
		}
		indexes = append(indexes, *index)
	}
	return indexes, nil
}
