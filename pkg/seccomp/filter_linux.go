// Package seccomp 提供了 seccomp 过滤器的二进制表示。
// seccomp (secure computing mode) 是 Linux 内核提供的安全机制，
// 用于限制进程可以使用的系统调用。
package seccomp

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

// MaxInstructions 是内核接受的最大指令数（BPF_MAXINSNS）
const MaxInstructions = 4096

// InstructionSize 是一条 sock_filter 指令编码后的字节数
const InstructionSize = 8

// ErrInvalidLength 表示字节流不是完整的 sock_filter 数组
var ErrInvalidLength = errors.New("invalid bpf program length")

// Filter 是 BPF (Berkeley Packet Filter) 格式的 seccomp 过滤器。
// 每个 SockFilter 结构体表示一条 BPF 指令，包含：
// - Code: 操作码，定义指令的行为（加载、跳转、返回等）
// - Jt/Jf: 条件跳转的目标（true/false）
// - K: 立即数值或内存地址
type Filter []unix.SockFilter

// Encode 按 struct sock_filter 的内存布局编码过滤器，
// 与 seccomp_export_bpf 的输出相同：每条指令 8 字节，
// 文件长度除以 8 即为指令数。
//
// order 是目标架构的字节序。
func (f Filter) Encode(order binary.ByteOrder) []byte {
	b := make([]byte, len(f)*InstructionSize)
	for i, ins := range f {
		p := b[i*InstructionSize:]
		order.PutUint16(p[0:2], ins.Code)
		p[2] = ins.Jt
		p[3] = ins.Jf
		order.PutUint32(p[4:8], ins.K)
	}
	return b
}

// Decode 将 Encode 生成的字节流还原为过滤器
func Decode(b []byte, order binary.ByteOrder) (Filter, error) {
	n := len(b) / InstructionSize
	switch {
	case len(b) == 0:
		return nil, fmt.Errorf("%w: empty program", ErrInvalidLength)
	case len(b)%InstructionSize != 0:
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(b), InstructionSize)
	case n > MaxInstructions:
		return nil, fmt.Errorf("%w: %d instructions exceeds %d", ErrInvalidLength, n, MaxInstructions)
	}

	f := make(Filter, 0, n)
	for i := 0; i < n; i++ {
		p := b[i*InstructionSize:]
		f = append(f, unix.SockFilter{
			Code: order.Uint16(p[0:2]),
			Jt:   p[2],
			Jf:   p[3],
			K:    order.Uint32(p[4:8]),
		})
	}
	return f, nil
}

// Raw 将过滤器转换为 x/net/bpf 的原始指令
func (f Filter) Raw() []bpf.RawInstruction {
	raw := make([]bpf.RawInstruction, 0, len(f))
	for _, ins := range f {
		raw = append(raw, bpf.RawInstruction{
			Op: ins.Code,
			Jt: ins.Jt,
			Jf: ins.Jf,
			K:  ins.K,
		})
	}
	return raw
}

// Disassemble 将过滤器反汇编为可读的 BPF 指令
func (f Filter) Disassemble() ([]bpf.Instruction, error) {
	insts, ok := bpf.Disassemble(f.Raw())
	if !ok {
		return insts, errors.New("bpf program contains unknown instructions")
	}
	return insts, nil
}
