package model

import "errors"

var (
	// ErrStoreUnavailable 文档库未连接或读写失败，调用方降级为本地数据
	ErrStoreUnavailable = errors.New("文档库不可用")
	// ErrUnknownCollection 未定义的集合
	ErrUnknownCollection = errors.New("未知集合")
	// ErrStudentNotFound 按 姓名+年級 找不到学生
	ErrStudentNotFound = errors.New("找不到該學生，請確認姓名及年級是否正確")
	// ErrInvalidCredentials 密码错误或登录资料不完整
	ErrInvalidCredentials = errors.New("登入資料錯誤")
	// ErrClassNotScheduled 日程表里没有该班别
	ErrClassNotScheduled = errors.New("日程表中沒有該班別")
	// ErrIndexOutOfRange 按下标删除时越界
	ErrIndexOutOfRange = errors.New("記錄不存在")
	// ErrUnknownBadge 章别不在奖励表中
	ErrUnknownBadge = errors.New("未知章別")
	// ErrRosterEmpty 壁球班名单为空，无法同步
	ErrRosterEmpty = errors.New("壁球班名單為空，請先匯入學生名單")
	// ErrForbidden 需要管理员权限
	ErrForbidden = errors.New("需要管理員權限")
	// ErrUnsupportedFormat 导入导出格式不支持
	ErrUnsupportedFormat = errors.New("不支援的檔案格式")
	// ErrInvalidSheet 上传的表格无法解析
	ErrInvalidSheet = errors.New("表格內容無法解析")
)
