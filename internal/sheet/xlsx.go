package sheet

import (
	"fmt"
	"io"

	"squashclub/internal/model"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX 读取第一个工作表
func DecodeXLSX(r io.Reader) (*model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: 打开Excel失败: %w", model.ErrInvalidSheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.NewTable(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表%s失败: %w", sheets[0], err)
	}
	return fromRecords(rows), nil
}

// EncodeXLSX 写出单工作表的 xlsx，数值列保持数值类型
func EncodeXLSX(w io.Writer, t *model.Table, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("设置工作表名失败: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for i, r := range t.Rows {
		cells := r.Cells(t.Columns)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("写入第%d行失败: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("输出Excel失败: %w", err)
	}
	return nil
}
