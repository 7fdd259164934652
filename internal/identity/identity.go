// Package identity 统一的记录身份解析：文档键推导、自然键比较、列名规范化。
// 所有比较点（查找学生、去重、存储键）都走同一套规范化，避免各处各自 trim 导致不一致。
package identity

import (
	"fmt"
	"strings"

	"squashclub/internal/model"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// docNamespace 内容键（UUIDv5）的命名空间
var docNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://squashclub.app/documents"))

// Normalize 去 BOM、NFC 规范化、去首尾空白
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\ufeff", "")
	return strings.TrimSpace(norm.NFC.String(s))
}

// Field 行内某列的规范化字符串值
func Field(r model.Row, col string) string {
	return Normalize(model.ToString(r[col]))
}

// Same 两个值按规范化后比较
func Same(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// CollectionPath 云端集合路径 artifacts/{appID}/public/data/{collection}
func CollectionPath(appID, collection string) string {
	return fmt.Sprintf("artifacts/%s/public/data/%s", appID, collection)
}

// NormalizeColumns 规范化列名（每次从远端读取及保存前调用）。规范化后重名的列保留先出现的一列
func NormalizeColumns(t *model.Table) {
	if t == nil {
		return
	}
	seen := make(map[string]bool, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		n := Normalize(c)
		if seen[n] {
			continue
		}
		seen[n] = true
		cols = append(cols, n)
	}
	t.Columns = cols

	for i, r := range t.Rows {
		out := make(model.Row, len(r))
		for _, k := range r.Keys() {
			n := Normalize(k)
			if _, dup := out[n]; dup {
				continue
			}
			out[n] = r[k]
			if !seen[n] {
				seen[n] = true
				t.Columns = append(t.Columns, n)
			}
		}
		t.Rows[i] = out
	}
}

// DeriveKey 按集合与行内容推导文档键。从不失败，缺失字段按规则取默认值。
// student_awards 与兜底分支使用内容哈希（UUIDv5），同一张表两次保存得到相同的键
func DeriveKey(collection string, r model.Row) string {
	var key string
	switch {
	case collection == model.CollectionAttendance:
		key = FieldOr(r, model.ColClass, "Unknown") + "_" + FieldOr(r, model.ColDate, "Unknown")
	case collection == model.CollectionAnnouncements:
		key = Field(r, model.ColDate) + "_" + FieldOr(r, model.ColTitle, "NoTitle")
	case collection == model.CollectionTournaments:
		key = "tm_" + FieldOr(r, model.ColTournament, "NoName") + "_" + FieldOr(r, model.ColDate, "NoDate")
	case collection == model.CollectionAwards:
		key = "award_" + Field(r, model.ColStudentName) + "_" + Field(r, model.ColDate) + "_" + ContentHash(r)[:8]
	case r.Has(model.ColName) && (r.Has(model.ColGrade) || r.Has(model.ColClass)):
		group := FieldOr(r, model.ColClass, FieldOr(r, model.ColGrade, "NA"))
		key = group + "_" + Field(r, model.ColName)
	default:
		key = "row_" + ContentHash(r)
	}
	return SanitizeKey(key)
}

// ContentHash 行内容的 UUIDv5，列按名称排序后参与计算
func ContentHash(r model.Row) string {
	var b strings.Builder
	for _, k := range r.Keys() {
		b.WriteString(Normalize(k))
		b.WriteByte('\x1f')
		b.WriteString(Normalize(model.ToString(r[k])))
		b.WriteByte('\x1e')
	}
	return uuid.NewSHA1(docNamespace, []byte(b.String())).String()
}

// SanitizeKey 文档键不允许 "/"，也不能是 "." 或 ".."
func SanitizeKey(key string) string {
	key = strings.ReplaceAll(key, "/", "-")
	if key == "" || key == "." || key == ".." {
		key = "_" + key
	}
	return key
}

// UniqueKeys 同一次保存中重复的键依次加后缀 ~2、~3…，顺序确定，保证不会互相覆盖
func UniqueKeys(keys []string) []string {
	out := make([]string, len(keys))
	used := make(map[string]bool, len(keys))
	for i, k := range keys {
		cand := k
		for n := 2; used[cand]; n++ {
			cand = fmt.Sprintf("%s~%d", k, n)
		}
		used[cand] = true
		out[i] = cand
	}
	return out
}

// FieldOr 规范化后为空时返回 def
func FieldOr(r model.Row, col, def string) string {
	if v := Field(r, col); v != "" {
		return v
	}
	return def
}
