package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Row 一行表格数据：列名 -> 标量值（nil / string / int64 / float64 / bool）
type Row map[string]any

// Table 某个集合的完整表格。Columns 决定显示与导出顺序，Rows 保持原始顺序
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable 按给定列建空表
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...), Rows: []Row{}}
}

// Len 行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty 没有任何行
func (t *Table) Empty() bool { return t.Len() == 0 }

// Clone 深拷贝，Session Cache 对外只交出副本
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// HasColumn 列是否存在
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// EnsureColumn 缺列时补齐，并给所有行填默认值
func (t *Table) EnsureColumn(col string, def any) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
	for _, r := range t.Rows {
		if _, ok := r[col]; !ok {
			r[col] = def
		}
	}
}

// Append 追加一行，新出现的列追加到 Columns 末尾
func (t *Table) Append(r Row) {
	for _, k := range r.Keys() {
		if !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
		}
	}
	t.Rows = append(t.Rows, r)
}

// Filter 保留 keep 返回 true 的行
func (t *Table) Filter(keep func(Row) bool) {
	out := t.Rows[:0]
	for _, r := range t.Rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	t.Rows = out
}

// RemoveAt 按下标删除一行
func (t *Table) RemoveAt(i int) error {
	if i < 0 || i >= len(t.Rows) {
		return ErrIndexOutOfRange
	}
	t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
	return nil
}

// Clone 行拷贝
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys 排序后的列名，保证遍历顺序稳定
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has 列存在（值可能为 nil）
func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// Str 取字符串值并去首尾空白；缺失或 nil 返回 ""
func (r Row) Str(col string) string {
	return strings.TrimSpace(ToString(r[col]))
}

// StrOr 空值时返回 def
func (r Row) StrOr(col, def string) string {
	if s := r.Str(col); s != "" {
		return s
	}
	return def
}

// Int 数值列强制转整数，非数值为 0
func (r Row) Int(col string) int64 {
	return ToInt(r[col])
}

// Cells 按列顺序取值，缺失的列为 nil
func (r Row) Cells(columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// IsBlank 所有列都为空（nil 或空白字符串）
func (r Row) IsBlank() bool {
	for _, v := range r {
		if !isBlankValue(v) {
			return false
		}
	}
	return true
}

func isBlankValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// ToString 标量转字符串，整数值的浮点数不带小数部分
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return ToString(float64(x))
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// ToInt 积分等数值字段的强制转换：非数值、缺失、NaN 一律为 0，超出 int64 范围的取边界值，从不报错
func ToInt(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int64:
		return x
	case int32:
		return int64(x)
	case float64:
		switch {
		case math.IsNaN(x):
			return 0
		case x >= math.MaxInt64:
			return math.MaxInt64
		case x <= math.MinInt64:
			return math.MinInt64
		}
		return int64(x)
	case float32:
		return ToInt(float64(x))
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ToInt(f)
		}
	}
	return 0
}

// NormalizeScalar 把后端读出的值统一成 Row 允许的标量类型
func NormalizeScalar(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return fmt.Sprint(v)
}
