package service

import (
	"context"
	"testing"

	"squashclub/internal/identity"
	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClasses(t *testing.T, tables *TableStore) *session.Cache {
	t.Helper()
	ctx := context.Background()
	cache := newCache()
	tables.Save(ctx, cache, model.CollectionSchedules, tableOf(nil,
		model.Row{model.ColClass: "4A", model.ColDateList: "2024-05-01, 2024-05-08,"},
		model.Row{model.ColClass: "5B", model.ColDateList: "2024-05-02"},
		model.Row{model.ColClass: "4A", model.ColDateList: "ignored"},
	))
	tables.Save(ctx, cache, model.CollectionClassPlayers, tableOf(nil,
		model.Row{model.ColClass: "4A", model.ColName: "陳大文", model.ColGrade: "P4"},
		model.Row{model.ColClass: "4A", model.ColName: "李小龍", model.ColGrade: "P4"},
		model.Row{model.ColClass: "5B", model.ColName: "王小明", model.ColGrade: "P5"},
	))
	return cache
}

func TestAttendance_ClassesAndDates(t *testing.T) {
	ctx := context.Background()
	tables, _ := newTestTables(t)
	cache := seedClasses(t, tables)
	svc := NewAttendanceService(tables, quietLogger())

	assert.Equal(t, []string{"4A", "5B"}, svc.Classes(ctx, cache))

	dates, err := svc.Dates(ctx, cache, "4A")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01", "2024-05-08"}, dates)

	_, err = svc.Dates(ctx, cache, "6C")
	assert.ErrorIs(t, err, model.ErrClassNotScheduled)
}

func TestAttendance_UpsertReplacesPreviousRecord(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	cache := seedClasses(t, tables)
	svc := NewAttendanceService(tables, quietLogger())

	_, err := svc.Upsert(ctx, cache, "4A", "2024-05-01", []string{"陳大文", "李小龍"}, "ADMIN")
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, cache, "4A", "2024-05-01", []string{"李小龍", "李小龍"}, "ADMIN")
	require.NoError(t, err)

	records := tables.Cached(ctx, cache, model.CollectionAttendance)
	var matches []model.Row
	for _, r := range records.Rows {
		if identity.AttendanceKey(r) == (identity.NaturalKey{First: "4A", Second: "2024-05-01"}) {
			matches = append(matches, r)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, "李小龍", matches[0][model.ColPresentList])
	assert.Equal(t, int64(1), matches[0].Int(model.ColPresentCount))

	docs := remoteDocs(t, mem, model.CollectionAttendance)
	require.Len(t, docs, 1)
	assert.Equal(t, "4A_2024-05-01", docs[0].Key)
}

func TestAttendance_Sheet(t *testing.T) {
	ctx := context.Background()
	tables, _ := newTestTables(t)
	cache := seedClasses(t, tables)
	svc := NewAttendanceService(tables, quietLogger())

	sheet, err := svc.Sheet(ctx, cache, "4A", "2024-05-01")
	require.NoError(t, err)
	assert.False(t, sheet.Recorded)
	assert.Equal(t, []PlayerMark{{Name: "陳大文"}, {Name: "李小龍"}}, sheet.Players)

	_, err = svc.Upsert(ctx, cache, "4A", "2024-05-01", []string{"李小龍"}, "ADMIN")
	require.NoError(t, err)
	sheet, err = svc.Sheet(ctx, cache, "4A", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, sheet.Recorded)
	assert.Equal(t, "ADMIN", sheet.Recorder)
	assert.Equal(t, []PlayerMark{{Name: "陳大文"}, {Name: "李小龍", Present: true}}, sheet.Players)
}

func TestAttendance_ReportMatrix(t *testing.T) {
	ctx := context.Background()
	tables, _ := newTestTables(t)
	cache := seedClasses(t, tables)
	svc := NewAttendanceService(tables, quietLogger())

	_, err := svc.Upsert(ctx, cache, "4A", "2024-05-01", []string{"陳大文"}, "ADMIN")
	require.NoError(t, err)

	report, err := svc.Report(ctx, cache, "4A")
	require.NoError(t, err)
	assert.Equal(t, []string{model.ColStudentName, "2024-05-01", "2024-05-08"}, report.Columns)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, model.Row{model.ColStudentName: "陳大文", "2024-05-01": MarkPresent, "2024-05-08": MarkNoRecord}, report.Rows[0])
	assert.Equal(t, model.Row{model.ColStudentName: "李小龍", "2024-05-01": MarkAbsent, "2024-05-08": MarkNoRecord}, report.Rows[1])

	assert.Equal(t, "4A_attendance_report.csv", ReportFilename("4A"))
}
