package model

// 集合名称（与云端文档库路径一致）
const (
	CollectionSchedules     = "schedules"
	CollectionClassPlayers  = "class_players"
	CollectionRankings      = "rankings"
	CollectionAttendance    = "attendance_records"
	CollectionAnnouncements = "announcements"
	CollectionTournaments   = "tournaments"
	CollectionAwards        = "student_awards"
	CollectionAdminSettings = "admin_settings"
)

// 列名
const (
	ColGrade     = "年級"
	ColClass     = "班級"
	ColName      = "姓名"
	ColPoints    = "積分"
	ColBadge     = "章別"
	ColStudentNo = "學號"

	ColDate         = "日期"
	ColPresentCount = "出席人數"
	ColPresentList  = "出席名單"
	ColRecorder     = "記錄人"
	ColDateList     = "具體日期"

	ColTitle   = "標題"
	ColContent = "內容"

	ColTournament = "比賽名稱"
	ColDeadline   = "截止日期"
	ColLink       = "連結"
	ColNote       = "備註"

	ColStudentName = "學生姓名"
	ColPrize       = "獎項"

	// 仅用于显示/导出
	ColRank   = "排名"
	ColHonour = "榮譽勳章"
)

// RankingColumns 排行榜必备列
var RankingColumns = []string{ColGrade, ColClass, ColName, ColPoints, ColBadge}

// Schema 集合的默认列与补列默认值
type Schema struct {
	Name    string
	Columns []string
	// FillOnLoad 远端读取后必须存在的列（缺失补空字符串）
	FillOnLoad []string
}

var schemas = map[string]Schema{
	CollectionSchedules:    {Name: CollectionSchedules},
	CollectionClassPlayers: {Name: CollectionClassPlayers},
	CollectionRankings: {
		Name:    CollectionRankings,
		Columns: RankingColumns,
	},
	CollectionAttendance: {
		Name:       CollectionAttendance,
		Columns:    []string{ColClass, ColDate, ColPresentCount, ColPresentList, ColRecorder},
		FillOnLoad: []string{ColClass, ColDate, ColPresentCount, ColPresentList, ColRecorder},
	},
	CollectionAnnouncements: {
		Name:    CollectionAnnouncements,
		Columns: []string{ColTitle, ColContent, ColDate},
	},
	CollectionTournaments: {
		Name:    CollectionTournaments,
		Columns: []string{ColTournament, ColDate, ColDeadline, ColLink, ColNote},
	},
	CollectionAwards: {
		Name:    CollectionAwards,
		Columns: []string{ColStudentName, ColTournament, ColPrize, ColDate, ColNote},
	},
}

// Collections 所有表格集合，顺序即登录后预加载顺序
func Collections() []string {
	return []string{
		CollectionSchedules,
		CollectionClassPlayers,
		CollectionRankings,
		CollectionAttendance,
		CollectionAnnouncements,
		CollectionTournaments,
		CollectionAwards,
	}
}

// SchemaFor 查询集合 schema
func SchemaFor(collection string) (Schema, bool) {
	s, ok := schemas[collection]
	return s, ok
}

// DefaultTable 首次访问且远端无数据时使用的默认表
func DefaultTable(collection string) *Table {
	s := schemas[collection]
	return NewTable(s.Columns...)
}

// Badge 香港壁球总会章别
type Badge struct {
	Name   string `json:"name"`
	Points int64  `json:"points"`
	Icon   string `json:"icon"`
}

// BadgeNone 无章别
const BadgeNone = "無"

// Badges 章别奖励积分表
var Badges = map[string]Badge{
	"白金章":     {Name: "白金章", Points: 400, Icon: "💎"},
	"金章":      {Name: "金章", Points: 200, Icon: "🥇"},
	"銀章":      {Name: "銀章", Points: 100, Icon: "🥈"},
	"銅章":      {Name: "銅章", Points: 50, Icon: "🥉"},
	BadgeNone: {Name: BadgeNone, Points: 0},
}

// BadgeLabel 排行榜显示用的章别文字，无章别为 "-"
func BadgeLabel(name string) string {
	b, ok := Badges[name]
	if name == "" || name == "-" || name == BadgeNone || name == "nan" {
		return "-"
	}
	if !ok {
		return " " + name
	}
	return b.Icon + " " + name
}

const (
	// DefaultRankingPoints 新加入排行榜的基础积分
	DefaultRankingPoints int64 = 100
)
