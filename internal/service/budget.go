package service

import "squashclub/internal/model"

// 康文署开班费用（每班）
const (
	CostTeamClass  int64 = 2750
	CostTrainClass int64 = 1350
	CostHobbyClass int64 = 1200
)

// BudgetInput 预算核算输入
type BudgetInput struct {
	Students     int64 `json:"students" binding:"gte=0"`
	Fee          int64 `json:"fee" binding:"gte=0"`
	TeamClasses  int64 `json:"team_classes" binding:"gte=0"`
	TrainClasses int64 `json:"train_classes" binding:"gte=0"`
	HobbyClasses int64 `json:"hobby_classes" binding:"gte=0"`
}

// BudgetLine 明细行，支出小计为负数
type BudgetLine struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
	Unit     int64  `json:"unit"`
	Subtotal int64  `json:"subtotal"`
}

// Budget 核算结果
type Budget struct {
	Revenue int64        `json:"revenue"`
	Expense int64        `json:"expense"`
	Profit  int64        `json:"profit"`
	Lines   []BudgetLine `json:"lines"`
}

// DefaultBudgetInput 表单默认值
func DefaultBudgetInput() BudgetInput {
	return BudgetInput{Students: 50, Fee: 250, TeamClasses: 1, TrainClasses: 3, HobbyClasses: 4}
}

// CalculateBudget 收入 = 学生人数 × 学费；支出 = 各类开班数 × 单班费用
func CalculateBudget(in BudgetInput) Budget {
	team := in.TeamClasses * CostTeamClass
	train := in.TrainClasses * CostTrainClass
	hobby := in.HobbyClasses * CostHobbyClass
	revenue := in.Students * in.Fee
	expense := team + train + hobby

	return Budget{
		Revenue: revenue,
		Expense: expense,
		Profit:  revenue - expense,
		Lines: []BudgetLine{
			{Item: "校隊訓練班 (支出)", Quantity: itoa(in.TeamClasses) + " 班", Unit: CostTeamClass, Subtotal: -team},
			{Item: "非校隊訓練班 (支出)", Quantity: itoa(in.TrainClasses) + " 班", Unit: CostTrainClass, Subtotal: -train},
			{Item: "簡易運動班 (支出)", Quantity: itoa(in.HobbyClasses) + " 班", Unit: CostHobbyClass, Subtotal: -hobby},
			{Item: "學生學費 (總收入)", Quantity: itoa(in.Students) + " 人", Unit: in.Fee, Subtotal: revenue},
		},
	}
}

func itoa(n int64) string { return model.ToString(n) }
