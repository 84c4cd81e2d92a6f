package seccomp

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/bpf"
)

// 结构体 seccomp_data 中各字段的偏移
const (
	OffsetNr   = 0
	OffsetArch = 4
	OffsetIP   = 8
	OffsetArgs = 16

	dataSize = OffsetArgs + 6*8
)

// Data 对应内核传给过滤器的 struct seccomp_data
type Data struct {
	Nr                 int32     // 系统调用号
	Arch               uint32    // AUDIT_ARCH_* 值
	InstructionPointer uint64    // 系统调用发生时的指令地址
	Args               [6]uint64 // 系统调用参数
}

// pack 按 x/net/bpf 虚拟机的约定（网络字节序）编码 seccomp_data。
// seccomp 过滤器只能做 32 位加载，因此每个 32 位字单独按网络字节序写入，
// 64 位字段按小端机器的布局拆成低位字在前、高位字在后。
func (d Data) pack() []byte {
	b := make([]byte, dataSize)
	binary.BigEndian.PutUint32(b[OffsetNr:], uint32(d.Nr))
	binary.BigEndian.PutUint32(b[OffsetArch:], d.Arch)
	putUint64(b[OffsetIP:], d.InstructionPointer)
	for i, arg := range d.Args {
		putUint64(b[OffsetArgs+i*8:], arg)
	}
	return b
}

func putUint64(b []byte, v uint64) {
	binary.BigEndian.PutUint32(b[0:4], uint32(v))
	binary.BigEndian.PutUint32(b[4:8], uint32(v>>32))
}

// Evaluate 在 BPF 虚拟机中执行过滤器，返回 SECCOMP_RET_* 值
func (f Filter) Evaluate(d Data) (uint32, error) {
	insts, err := f.Disassemble()
	if err != nil {
		return 0, err
	}
	vm, err := bpf.NewVM(insts)
	if err != nil {
		return 0, fmt.Errorf("load bpf program: %w", err)
	}
	ret, err := vm.Run(d.pack())
	if err != nil {
		return 0, fmt.Errorf("run bpf program: %w", err)
	}
	return uint32(ret), nil
}
