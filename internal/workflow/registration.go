package workflow

import (
	"strings"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
)

// PasswordChecker Admin 密码门校验
type PasswordChecker func(password string) bool

// 各角色的字段收集序列（角色选择之后）
var roleSteps = map[model.Role][]Step{
	model.RoleStudent: {StepName, StepRoom, StepRollNumber, StepDutyWeekday},
	model.RoleTeacher: {StepName, StepRoom},
	model.RoleAdmin:   {StepAdminPassword, StepName, StepRoom, StepRollNumber, StepDutyWeekday},
}

var stepPrompts = map[Step]string{
	StepRoleSelect:    MsgChooseRole,
	StepAdminPassword: MsgAdminPassword,
	StepName:          MsgAskName,
	StepRoom:          MsgAskRoom,
	StepRollNumber:    MsgAskRollNumber,
	StepDutyWeekday:   MsgAskDutyWeekday,
}

// StartRegistration 注册向导入口
// existing 非空时进入编辑确认态并携带现有角色
func StartRegistration(existing *model.Profile) Result {
	if existing != nil {
		return Result{
			Next:  State{Step: StepEditConfirm, Role: existing.Role},
			Reply: MsgEditConfirm(existing),
		}
	}
	return Result{
		Next:  State{Step: StepRoleSelect},
		Reply: MsgChooseRole,
	}
}

// Register 注册向导转移函数
func Register(st State, input string, checkPassword PasswordChecker) Result {
	input = strings.TrimSpace(input)

	switch st.Step {
	case StepEditConfirm:
		if !isAffirmative(input) {
			return Result{Next: State{}, Reply: MsgEditCancelled, End: true}
		}
		return enterBranch(State{Role: st.Role, Editing: true})

	case StepRoleSelect:
		role, ok := ParseRole(input)
		if !ok {
			return stay(st, MsgInvalidRole)
		}
		return enterBranch(State{Role: role, Editing: st.Editing})

	case StepAdminPassword:
		if checkPassword == nil || !checkPassword(input) {
			return stay(st, MsgWrongPassword)
		}
		return advance(st)
	}

	if st.Step.Flow() != FlowRegistration {
		return stay(st, MsgHelp)
	}

	if input == "" {
		return stay(st, MsgEmptyInput)
	}

	next := st
	switch st.Step {
	case StepName:
		next.Draft.DisplayName = input
	case StepRoom:
		next.Draft.Room = input
	case StepRollNumber:
		next.Draft.RollNumber = input
	case StepDutyWeekday:
		next.Draft.DutyWeekday = input
	}
	return advance(next)
}

// enterBranch 进入角色分支的第一步，草稿从空白开始
func enterBranch(st State) Result {
	steps, ok := roleSteps[st.Role]
	if !ok {
		return Result{Next: State{Step: StepRoleSelect, Editing: st.Editing}, Reply: MsgChooseRole}
	}
	st.Step = steps[0]
	st.Draft = Draft{}
	return Result{Next: st, Reply: stepPrompts[st.Step]}
}

// advance 前进到分支内的下一步；已是最后一步则完成
func advance(st State) Result {
	steps := roleSteps[st.Role]
	for i, s := range steps {
		if s != st.Step {
			continue
		}
		if i+1 < len(steps) {
			st.Step = steps[i+1]
			return Result{Next: st, Reply: stepPrompts[st.Step]}
		}
		if st.Role == model.RoleTeacher {
			st.Draft.RollNumber = model.Sentinel
			st.Draft.DutyWeekday = model.Sentinel
		}
		return Result{Next: st, End: true, Completed: true}
	}
	// 步骤不属于该角色分支：状态损坏，回到角色选择
	return Result{Next: State{Step: StepRoleSelect, Editing: st.Editing}, Reply: MsgChooseRole}
}

// BuildProfile 由完成的草稿构造 Profile
func BuildProfile(st State, userID, registeredOn string) *model.Profile {
	return &model.Profile{
		UserID:       userID,
		DisplayName:  st.Draft.DisplayName,
		Role:         st.Role,
		Room:         st.Draft.Room,
		RollNumber:   st.Draft.RollNumber,
		DutyWeekday:  st.Draft.DutyWeekday,
		RegisteredOn: registeredOn,
		Status:       model.ProfileActive,
	}
}
