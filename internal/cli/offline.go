package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"squashclub/internal/api"
	"squashclub/internal/model"
	"squashclub/internal/service"
	"squashclub/internal/session"
	"squashclub/internal/sheet"

	"github.com/spf13/cobra"
)

// NewExportCommand 离线导出排行榜或考勤总表
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "匯出排行榜或考勤總表",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "输出文件（默认按当天日期命名）")

	rankings := &cobra.Command{
		Use:   "rankings",
		Short: "匯出排行榜（去重並按積分排序）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := sheet.FormatOf(format)
			if err != nil {
				return err
			}
			e, err := setup(rootOpts, true)
			if err != nil {
				return err
			}
			defer e.close()
			if err := requireConnected(e); err != nil {
				return err
			}

			t := service.NewRankingService(e.tables, e.logger).ExportTable(cmd.Context(), session.NewCache())
			if output == "" {
				output = fmt.Sprintf("%s.%s", api.ExportBasename(time.Now()), f)
			}
			if err := writeSheet(output, f, t, "積分榜"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已匯出 %d 名學生至 %s\n", t.Len(), output)
			return nil
		},
	}
	rankings.Flags().StringVarP(&format, "format", "f", string(sheet.FormatXLSX), "xlsx 或 csv")

	attendance := &cobra.Command{
		Use:   "attendance <class>",
		Short: "匯出某班考勤總表（CSV）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(rootOpts, true)
			if err != nil {
				return err
			}
			defer e.close()
			if err := requireConnected(e); err != nil {
				return err
			}

			t, err := service.NewAttendanceService(e.tables, e.logger).Report(cmd.Context(), session.NewCache(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = service.ReportFilename(args[0])
			}
			if err := writeSheet(output, sheet.FormatCSV, t, ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已匯出 %d 名學生至 %s\n", t.Len(), output)
			return nil
		},
	}

	cmd.AddCommand(rankings, attendance)
	return cmd
}

// NewImportCommand 离线整表导入 CSV/XLSX
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> <file-or-url>",
		Short: "匯入日程表、學生名單或排行榜（整表替換）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, src := args[0], args[1]
			e, err := setup(rootOpts, true)
			if err != nil {
				return err
			}
			defer e.close()
			if err := requireConnected(e); err != nil {
				return err
			}

			svc := service.NewImportService(e.tables, e.cfg.Import, e.logger)
			cache := session.NewCache()
			var report service.SaveReport
			if isURL(src) {
				report, err = svc.ImportURL(cmd.Context(), cache, collection, src)
			} else {
				report, err = importFile(cmd, svc, cache, collection, src)
			}
			if err != nil {
				return err
			}
			if w := report.Warning(); w != "" {
				return errors.New(w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s 已匯入 %d 行\n", collection, report.Rows)
			return nil
		},
	}
}

// NewPasswdCommand 设置管理员密码（bcrypt 哈希写入 admin_settings/config）
func NewPasswdCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <new-password>",
		Short: "設定管理員密碼",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(rootOpts, true)
			if err != nil {
				return err
			}
			defer e.close()
			if err := requireConnected(e); err != nil {
				return err
			}
			auth := service.NewAuthService(e.tables, e.cfg.Admin.DefaultPassword, e.logger)
			if err := auth.SetAdminPassword(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "管理員密碼已更新")
			return nil
		},
	}
}

func importFile(cmd *cobra.Command, svc *service.ImportService, cache *session.Cache, collection, path string) (service.SaveReport, error) {
	f, err := sheet.FormatOf(path)
	if err != nil {
		return service.SaveReport{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return service.SaveReport{}, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()
	return svc.Import(cmd.Context(), cache, collection, f, file)
}

func writeSheet(path string, f sheet.Format, t *model.Table, sheetName string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("写入文件失败: %w", cerr)
		}
	}()
	return sheet.Encode(f, file, t, sheetName)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
