package libseccomp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"

	"github.com/elastic/go-seccomp-bpf/arch"
)

// ResolveFailed 是解析失败时使用的系统调用号
const ResolveFailed = -1

var (
	// ErrUnknownSyscall 表示系统调用名称在目标架构上不存在
	ErrUnknownSyscall = errors.New("unknown syscall")

	// ErrUnsupportedArch 表示无法为该架构生成正确的过滤器
	ErrUnsupportedArch = errors.New("unsupported arch")
)

// archAliases 将内核/libseccomp 常用的架构名称映射为 Go 的 GOARCH 名称
var archAliases = map[string]string{
	"x86_64":  "amd64",
	"x86":     "386",
	"i386":    "386",
	"i686":    "386",
	"aarch64": "arm64",
}

// unsupportedArches 列出了 arch 包能识别、但无法正确编码的架构。
// x32 的系统调用表不含 __X32_SYSCALL_BIT，且与 x86_64 共用 AUDIT_ARCH_X86_64，
// 直接使用会放行 x86_64 的同号调用。
var unsupportedArches = map[string]bool{
	"x32": true,
}

// Arch 描述了过滤器的目标架构
//
// 系统调用表和审计架构号（AUDIT_ARCH_*）来自 go-seccomp-bpf 的 arch 包。
type Arch struct {
	GoArch string           // GOARCH 名称，如 amd64
	Name   string           // 内核中的架构名称，如 x86_64
	ID     uint32           // seccomp_data.arch 的值
	Order  binary.ByteOrder // 目标架构的字节序，arch 包目前只提供小端架构的系统调用表

	// x32 为 true 时，过滤器需要拒绝 x32 ABI 的系统调用号
	x32 bool

	names   map[string]int
	numbers map[int]string
}

// LookupArch 根据名称查找目标架构，name 为空时使用当前运行的架构
func LookupArch(name string) (*Arch, error) {
	if name == "" {
		name = runtime.GOARCH
	}
	if alias, ok := archAliases[name]; ok {
		name = alias
	}

	if unsupportedArches[name] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArch, name)
	}

	info, err := arch.GetInfo(name)
	if err != nil {
		return nil, fmt.Errorf("lookup arch %q: %w", name, err)
	}
	if unsupportedArches[info.Name] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArch, info.Name)
	}

	a := &Arch{
		GoArch:  name,
		Name:    info.Name,
		ID:      uint32(info.ID),
		Order:   binary.LittleEndian,
		x32:     name == "amd64",
		names:   make(map[string]int, len(info.SyscallNumbers)),
		numbers: make(map[int]string, len(info.SyscallNumbers)),
	}
	// info.SyscallNumbers 是一个 map[int]string，键是系统调用号，值是系统调用名称
	for nr, n := range info.SyscallNumbers {
		a.numbers[nr] = n
		a.names[n] = nr
	}
	return a, nil
}

// IsNative 判断目标架构是否为当前运行的架构
func (a *Arch) IsNative() bool {
	return a.GoArch == runtime.GOARCH
}

// Resolve 将系统调用名称转换为目标架构上的系统调用号
//
// 名称必须与内核中的拼写完全一致，不做大小写或空白处理。
// 解析失败时返回 ResolveFailed 和 ErrUnknownSyscall。
func (a *Arch) Resolve(name string) (int, error) {
	nr, ok := a.names[name]
	if !ok || nr < 0 {
		return ResolveFailed, fmt.Errorf("%w %q on %s", ErrUnknownSyscall, name, a.Name)
	}
	return nr, nil
}

// SyscallName 将系统调用号转换为对应的系统调用名称
//
// 例如 x86_64 上 0 对应 "read"。
func (a *Arch) SyscallName(nr int) (string, error) {
	n, ok := a.numbers[nr]
	if !ok {
		return "", fmt.Errorf("syscall no %d does not exist on %s", nr, a.Name)
	}
	return n, nil
}

func (a *Arch) String() string {
	return fmt.Sprintf("%s (0x%08x)", a.Name, a.ID)
}
