package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"squashclub/internal/model"
)

// DecodeCSV 解析 CSV，自动去掉 UTF-8 BOM
func DecodeCSV(r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: 解析CSV失败: %w", model.ErrInvalidSheet, err)
	}
	return fromRecords(records), nil
}

// EncodeCSV 写出带 BOM 的 UTF-8 CSV
func EncodeCSV(w io.Writer, t *model.Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(toRecord(t, r)); err != nil {
			return fmt.Errorf("写入CSV失败: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
