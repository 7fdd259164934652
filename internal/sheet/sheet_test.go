package sheet

import (
	"bytes"
	"strings"
	"testing"

	"squashclub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV_StripsBOMAndParsesNumbers(t *testing.T) {
	in := "\ufeff班級, 姓名 ,年級,學號,積分\n4A,陳大文,P4,01,120\n,,,,\n4B,李小龍,P4,2,abc\n"
	tbl, err := DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"班級", "姓名", "年級", "學號", "積分"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "01", tbl.Rows[0]["學號"])
	assert.Equal(t, int64(120), tbl.Rows[0]["積分"])
	assert.Equal(t, int64(2), tbl.Rows[1]["學號"])
	assert.Equal(t, "abc", tbl.Rows[1]["積分"])
}

func TestEncodeCSV_WritesBOM(t *testing.T) {
	tbl := model.NewTable(model.ColStudentName, "2024-05-01")
	tbl.Append(model.Row{model.ColStudentName: "陳大文", "2024-05-01": "✅"})

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, tbl))
	assert.True(t, strings.HasPrefix(buf.String(), "\ufeff學生姓名,2024-05-01\n"))
	assert.Contains(t, buf.String(), "陳大文,✅")
}

func TestXLSXRoundTrip(t *testing.T) {
	tbl := model.NewTable(model.ColGrade, model.ColName, model.ColPoints)
	tbl.Append(model.Row{model.ColGrade: "P4", model.ColName: "陳大文", model.ColPoints: int64(300)})
	tbl.Append(model.Row{model.ColGrade: "P5", model.ColName: "李小龍", model.ColPoints: int64(100)})

	var buf bytes.Buffer
	require.NoError(t, EncodeXLSX(&buf, tbl, "積分榜"))

	got, err := DecodeXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "陳大文", got.Rows[0][model.ColName])
	assert.Equal(t, int64(300), got.Rows[0][model.ColPoints])
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("roster.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatOf("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatOf("roster.xls")
	assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
}
