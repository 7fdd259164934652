package identity

import "squashclub/internal/model"

// NaturalKey 集合内用于合并/去重的自然键（两列组合）
type NaturalKey struct {
	First  string
	Second string
}

// RankingKey 排行榜自然键：年級 + 姓名
func RankingKey(r model.Row) NaturalKey {
	return NaturalKey{First: Field(r, model.ColGrade), Second: Field(r, model.ColName)}
}

// RosterKey 名单自然键：班級 + 姓名
func RosterKey(r model.Row) NaturalKey {
	return NaturalKey{First: Field(r, model.ColClass), Second: Field(r, model.ColName)}
}

// AttendanceKey 考勤自然键：班級 + 日期
func AttendanceKey(r model.Row) NaturalKey {
	return NaturalKey{First: Field(r, model.ColClass), Second: Field(r, model.ColDate)}
}

// NaturalKeyOf 按集合取自然键；没有自然键的集合（schedules 等）返回 false
func NaturalKeyOf(collection string, r model.Row) (NaturalKey, bool) {
	switch collection {
	case model.CollectionRankings:
		return RankingKey(r), true
	case model.CollectionClassPlayers:
		return RosterKey(r), true
	case model.CollectionAttendance:
		return AttendanceKey(r), true
	case model.CollectionAnnouncements:
		return NaturalKey{First: Field(r, model.ColDate), Second: Field(r, model.ColTitle)}, true
	case model.CollectionTournaments:
		return NaturalKey{First: Field(r, model.ColTournament), Second: Field(r, model.ColDate)}, true
	}
	return NaturalKey{}, false
}

// DedupFirst 按 keyFn 去重，保留表中最先出现的行
func DedupFirst(rows []model.Row, keyFn func(model.Row) NaturalKey) []model.Row {
	seen := make(map[NaturalKey]bool, len(rows))
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		k := keyFn(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
