package postgres

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

// columnIndex 结构体列名 -> 字段下标，按类型缓存
var columnIndex sync.Map // map[reflect.Type]map[string]int

func columnsOf(t reflect.Type) map[string]int {
	if cached, ok := columnIndex.Load(t); ok {
		return cached.(map[string]int)
	}

	cols := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("db")
		switch name {
		case "-":
			continue
		case "":
			name = toSnakeCase(f.Name)
		}
		cols[name] = i
	}
	actual, _ := columnIndex.LoadOrStore(t, cols)
	return actual.(map[string]int)
}

// scanStruct 按 db tag（缺省为蛇形字段名）扫描当前行，未映射的列被丢弃
func scanStruct(rows pgx.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("dest must be a pointer to struct")
	}
	v = v.Elem()
	cols := columnsOf(v.Type())

	fds := rows.FieldDescriptions()
	targets := make([]any, len(fds))
	for i, fd := range fds {
		if idx, ok := cols[fd.Name]; ok {
			targets[i] = v.Field(idx).Addr().Interface()
			continue
		}
		var discard any
		targets[i] = &discard
	}
	if err := rows.Scan(targets...); err != nil {
		return errors.Wrap(err, "scan row")
	}
	return nil
}

// toSnakeCase PlayerID -> player_id
func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
