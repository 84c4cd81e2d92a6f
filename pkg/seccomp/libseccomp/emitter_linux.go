package libseccomp

import (
	"errors"
	"fmt"

	seccompbpf "github.com/elastic/go-seccomp-bpf"
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/zqzqsb/seccompc/pkg/seccomp"
)

// x32SyscallBit 是 x86_64 上 x32 ABI 系统调用号的标志位（__X32_SYSCALL_BIT）
const x32SyscallBit = 0x40000000

var (
	// ErrForeignArch 表示生成器不支持非本机架构
	ErrForeignArch = errors.New("emitter only supports the native architecture")

	// ErrNoLibseccomp 表示程序编译时没有启用 libseccomp 支持
	ErrNoLibseccomp = errors.New("built without libseccomp support (rebuild with -tags libseccomp)")
)

// Emitter 将过滤器程序编译为内核可加载的 BPF 指令
type Emitter interface {
	Emit(p *Program) (seccomp.Filter, error)
}

// 生成器名称
const (
	EmitterNative     = "native"
	EmitterPolicy     = "policy"
	EmitterLibseccomp = "libseccomp"
)

// NewEmitter 根据名称创建生成器
func NewEmitter(name string) (Emitter, error) {
	switch name {
	case "", EmitterNative:
		return NativeEmitter{}, nil
	case EmitterPolicy:
		return PolicyEmitter{}, nil
	case EmitterLibseccomp:
		return newLibseccompEmitter()
	default:
		return nil, fmt.Errorf("unknown emitter %q", name)
	}
}

// NativeEmitter 直接用 x/net/bpf 的指令组装过滤器，支持任意目标架构
//
// 生成的程序结构：
//
//	ld [4]                      ; seccomp_data.arch
//	jeq #ID, 1, 0
//	ret #KILL_PROCESS
//	ld [0]                      ; seccomp_data.nr
//	jge #0x40000000, 0, 1       ; 仅 x86_64
//	ret #KILL_PROCESS           ; 仅 x86_64
//	jeq #nr, 0, 1               ; 每条规则两条指令
//	ret #ALLOW
//	...
//	ret #KILL_PROCESS
type NativeEmitter struct{}

// Emit 实现 Emitter 接口
func (NativeEmitter) Emit(p *Program) (seccomp.Filter, error) {
	return ExportBPF(Assemble(p))
}

// Assemble 将程序组装为 BPF 指令序列
func Assemble(p *Program) []bpf.Instruction {
	deny := uint32(ToSeccompAction(p.Default()))

	insts := []bpf.Instruction{
		bpf.LoadAbsolute{Off: seccomp.OffsetArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: p.Arch().ID, SkipTrue: 1},
		bpf.RetConstant{Val: deny},
		bpf.LoadAbsolute{Off: seccomp.OffsetNr, Size: 4},
	}
	if p.Arch().x32 {
		insts = append(insts,
			bpf.JumpIf{Cond: bpf.JumpGreaterOrEqual, Val: x32SyscallBit, SkipFalse: 1},
			bpf.RetConstant{Val: deny},
		)
	}
	for _, r := range p.rules {
		insts = append(insts,
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(r.Nr), SkipFalse: 1},
			bpf.RetConstant{Val: uint32(ToSeccompAction(r.Action))},
		)
	}
	return append(insts, bpf.RetConstant{Val: deny})
}

// PolicyEmitter 使用 go-seccomp-bpf 的 Policy 生成过滤器
//
// go-seccomp-bpf 总是按当前运行的架构组装，因此只能用于本机架构。
type PolicyEmitter struct{}

// Emit 实现 Emitter 接口
func (PolicyEmitter) Emit(p *Program) (seccomp.Filter, error) {
	if !p.Arch().IsNative() {
		return nil, fmt.Errorf("%w: target %s", ErrForeignArch, p.Arch().Name)
	}

	// 创建 go-seccomp-bpf 策略
	policy := seccompbpf.Policy{
		DefaultAction: ToSeccompAction(p.Default()), // 设置默认动作
	}
	if p.Len() > 0 {
		policy.Syscalls = []seccompbpf.SyscallGroup{
			{
				Action: ToSeccompAction(seccomp.ActionAllow), // 允许执行的系统调用
				Names:  p.Names(),
			},
		}
	}

	// 将策略编译为 BPF 程序
	program, err := policy.Assemble()
	if err != nil {
		return nil, err
	}
	return ExportBPF(program)
}

// ExportBPF 将 BPF 指令序列转换为内核可读的过滤器
func ExportBPF(filter []bpf.Instruction) (seccomp.Filter, error) {
	if len(filter) > seccomp.MaxInstructions {
		return nil, fmt.Errorf("%w: %d instructions", ErrProgramFull, len(filter))
	}
	// 将 BPF 指令汇编为原始指令
	raw, err := bpf.Assemble(filter)
	if err != nil {
		return nil, err
	}
	return sockFilter(raw), nil
}

// sockFilter 将原始 BPF 指令转换为内核使用的 SockFilter 格式
func sockFilter(raw []bpf.RawInstruction) seccomp.Filter {
	filter := make(seccomp.Filter, 0, len(raw))
	for _, instruction := range raw {
		filter = append(filter, unix.SockFilter{
			Code: instruction.Op, // 操作码
			Jt:   instruction.Jt, // 真跳转目标
			Jf:   instruction.Jf, // 假跳转目标
			K:    instruction.K,  // 立即数/地址
		})
	}
	return filter
}
