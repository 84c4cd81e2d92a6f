package seccomp

// Action 定义了过滤器对系统调用的处理动作
//
// 本工具只生成白名单：规则的动作只有 ActionAllow，
// 默认动作固定为 ActionKill。
type Action uint32

// Action 常量定义
const (
	ActionInvalid Action = iota // 无效动作
	ActionAllow                 // 允许系统调用
	ActionKill                  // 终止进程
)

// 内核 SECCOMP_RET_* 返回值（linux/seccomp.h）
const (
	RetKillProcess uint32 = 0x80000000
	RetKillThread  uint32 = 0x00000000
	RetAllow       uint32 = 0x7fff0000

	// RetActionFull 用于从返回值中取出动作部分
	RetActionFull uint32 = 0xffff0000
)

var actionString = []string{
	"invalid",
	"allow",
	"kill_process",
}

func (a Action) String() string {
	i := int(a)
	if i >= 0 && i < len(actionString) {
		return actionString[i]
	}
	return actionString[0]
}

// RetString 返回内核返回值的可读名称
func RetString(ret uint32) string {
	switch ret & RetActionFull {
	case RetAllow:
		return ActionAllow.String()
	case RetKillProcess:
		return ActionKill.String()
	case RetKillThread:
		return "kill_thread"
	default:
		return "unknown"
	}
}
