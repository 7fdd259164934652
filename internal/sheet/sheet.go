// Package sheet 表格文件与 model.Table 之间的转换（CSV / XLSX）
package sheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"squashclub/internal/model"
)

// Format 表格文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// utf8BOM Excel 打开 CSV 时依赖 BOM 识别 UTF-8
const utf8BOM = "\ufeff"

// FormatOf 按文件扩展名或格式名识别格式
func FormatOf(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = strings.ToLower(strings.TrimSpace(name))
	}
	switch ext {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, name)
}

// ContentType 下载时的 MIME 类型
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Decode 按格式解析表格，第一行为表头
func Decode(f Format, r io.Reader) (*model.Table, error) {
	switch f {
	case FormatCSV:
		return DecodeCSV(r)
	case FormatXLSX:
		return DecodeXLSX(r)
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, f)
}

// Encode 按格式写出表格，sheetName 只对 xlsx 生效
func Encode(f Format, w io.Writer, t *model.Table, sheetName string) error {
	switch f {
	case FormatCSV:
		return EncodeCSV(w, t)
	case FormatXLSX:
		return EncodeXLSX(w, t, sheetName)
	}
	return fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, f)
}

// fromRecords 表头 + 数据行转 Table。空白表头列忽略，全空行丢弃
func fromRecords(records [][]string) *model.Table {
	if len(records) == 0 {
		return model.NewTable()
	}
	header := records[0]
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	}

	t := model.NewTable()
	for _, c := range cols {
		if c != "" && !t.HasColumn(c) {
			t.Columns = append(t.Columns, c)
		}
	}
	for _, rec := range records[1:] {
		row := make(model.Row, len(t.Columns))
		for i, c := range cols {
			if c == "" {
				continue
			}
			if _, dup := row[c]; dup {
				continue
			}
			var cell string
			if i < len(rec) {
				cell = rec[i]
			}
			row[c] = parseCell(cell)
		}
		if row.IsBlank() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// parseCell 整数、小数转为数值；带前导零的数字（如学号 01）保留为字符串；空单元格为 nil
func parseCell(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	if len(v) > 1 && v[0] == '0' && v[1] != '.' {
		return v
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !strings.ContainsAny(v, "eEnN") {
		return f
	}
	return v
}

// toRecord 一行按列顺序转为字符串
func toRecord(t *model.Table, r model.Row) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = model.ToString(r[c])
	}
	return out
}
