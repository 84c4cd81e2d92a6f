package libseccomp

import (
	"errors"
	"fmt"

	"github.com/zqzqsb/seccompc/pkg/seccomp"
)

// 过滤器头部最多占用的指令数：
// 加载 arch、比较 arch、拒绝、加载 nr、x32 比较、x32 拒绝，以及末尾的默认动作
const programOverhead = 7

// MaxRules 是单个过滤器能容纳的最多规则数，每条规则占两条指令
const MaxRules = (seccomp.MaxInstructions - programOverhead) / 2

var (
	// ErrProgramFull 表示规则数量超出了 BPF 程序的指令上限
	ErrProgramFull = errors.New("filter program is full")

	// ErrInvalidSyscall 表示系统调用号不合法
	ErrInvalidSyscall = errors.New("invalid syscall number")
)

// Rule 是一条白名单规则：系统调用号完全匹配时放行，不检查参数
type Rule struct {
	Nr     int            // 系统调用号
	Name   string         // 系统调用名称（用于输出）
	Action seccomp.Action // 总是 ActionAllow
}

// Program 是构建中的过滤器程序
//
// 默认动作在创建时设为 ActionKill，之后不再改变；
// 规则按首次加入的顺序保存，重复的系统调用号只保留一条。
type Program struct {
	arch          *Arch
	defaultAction seccomp.Action
	rules         []Rule
	seen          map[int]struct{}
	maxRules      int
}

// NewProgram 为目标架构创建一个默认拒绝的过滤器程序
func NewProgram(a *Arch) *Program {
	return &Program{
		arch:          a,
		defaultAction: seccomp.ActionKill,
		seen:          make(map[int]struct{}),
		maxRules:      MaxRules,
	}
}

// Arch 返回目标架构
func (p *Program) Arch() *Arch {
	return p.arch
}

// Default 返回默认动作
func (p *Program) Default() seccomp.Action {
	return p.defaultAction
}

// AddRule 追加一条放行规则
//
// 返回值 added 为 false 表示该系统调用已经存在，规则被忽略。
func (p *Program) AddRule(nr int, name string) (added bool, err error) {
	if nr < 0 {
		return false, fmt.Errorf("%w: %d (%s)", ErrInvalidSyscall, nr, name)
	}
	if _, ok := p.seen[nr]; ok {
		return false, nil
	}
	if len(p.rules) >= p.maxRules {
		return false, fmt.Errorf("%w: cannot add %s, limit is %d rules", ErrProgramFull, name, p.maxRules)
	}
	p.seen[nr] = struct{}{}
	p.rules = append(p.rules, Rule{Nr: nr, Name: name, Action: seccomp.ActionAllow})
	return true, nil
}

// Rules 返回规则列表的副本
func (p *Program) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Names 返回所有规则的系统调用名称
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		names = append(names, r.Name)
	}
	return names
}

// Len 返回规则数量
func (p *Program) Len() int {
	return len(p.rules)
}
