// Package workflow 实现对话式工作流的纯状态机：注册向导与值班证据提交。
//
// 所有转移函数形如 (State, Input) -> Result，不做任何 I/O；
// 持久化、回复与推送由 service 层根据 Result 执行。
package workflow

import "github.com/MATADOR666-spec/line-bot-project/internal/model"

// Flow 会话所属的工作流
type Flow int

const (
	FlowNone Flow = iota
	FlowRegistration
	FlowEvidence
)

// Step 会话当前所处的步骤
type Step int

const (
	StepIdle Step = iota
	StepEditConfirm
	StepRoleSelect
	StepAdminPassword
	StepName
	StepRoom
	StepRollNumber
	StepDutyWeekday
	StepEvidenceCollecting
)

var stepNames = map[Step]string{
	StepIdle:               "idle",
	StepEditConfirm:        "edit_confirm",
	StepRoleSelect:         "role_select",
	StepAdminPassword:      "admin_password",
	StepName:               "name",
	StepRoom:               "room",
	StepRollNumber:         "roll_number",
	StepDutyWeekday:        "duty_weekday",
	StepEvidenceCollecting: "evidence_collecting",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Flow 步骤归属的工作流
func (s Step) Flow() Flow {
	switch s {
	case StepEditConfirm, StepRoleSelect, StepAdminPassword,
		StepName, StepRoom, StepRollNumber, StepDutyWeekday:
		return FlowRegistration
	case StepEvidenceCollecting:
		return FlowEvidence
	}
	return FlowNone
}

// Draft 注册向导收集中的资料草稿
type Draft struct {
	DisplayName string `json:"display_name,omitempty"`
	Room        string `json:"room,omitempty"`
	RollNumber  string `json:"roll_number,omitempty"`
	DutyWeekday string `json:"duty_weekday,omitempty"`
}

// State 单个用户的工作流状态，作为会话内容被存储
type State struct {
	Step    Step       `json:"step"`
	Role    model.Role `json:"role,omitempty"`
	Editing bool       `json:"editing,omitempty"`
	Draft   Draft      `json:"draft"`

	// 证据收集
	Snapshot *model.Profile `json:"snapshot,omitempty"`
	Images   []string       `json:"images,omitempty"`
	DutyDate string         `json:"duty_date,omitempty"` // 入口门通过的业务日期
}

// Result 一次转移的结果
type Result struct {
	Next  State
	Reply string

	// End 为 true 时会话应被销毁（完成、取消）
	End bool

	// Completed 为 true 时 service 需提交：注册向导提交 Next.Draft，证据工作流提交 Next.Images
	Completed bool
}

// stay 不前进，仅回复
func stay(st State, reply string) Result {
	return Result{Next: st, Reply: reply}
}
