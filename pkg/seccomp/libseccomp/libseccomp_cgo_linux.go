//go:build libseccomp

package libseccomp

import (
	"fmt"
	"io"
	"os"

	scmp "github.com/seccomp/libseccomp-golang"

	"github.com/zqzqsb/seccompc/pkg/seccomp"
)

// scmpArchNames 将 GOARCH 名称映射为 libseccomp 的架构名称
var scmpArchNames = map[string]string{
	"386": "x86",
}

// LibseccompEmitter 通过 libseccomp 生成过滤器（需要 cgo 和 -tags libseccomp）
type LibseccompEmitter struct{}

func newLibseccompEmitter() (Emitter, error) {
	return LibseccompEmitter{}, nil
}

// Emit 实现 Emitter 接口
func (LibseccompEmitter) Emit(p *Program) (seccomp.Filter, error) {
	name := p.Arch().GoArch
	if n, ok := scmpArchNames[name]; ok {
		name = n
	}
	target, err := scmp.GetArchFromString(name)
	if err != nil {
		return nil, err
	}

	filter, err := scmp.NewFilter(scmp.ActKillProcess)
	if err != nil {
		return nil, err
	}
	defer filter.Release()

	if err := setFilterArch(filter, target); err != nil {
		return nil, err
	}
	for _, r := range p.rules {
		if err := addFilterAction(filter, target, r.Name, scmp.ActAllow); err != nil {
			return nil, err
		}
	}

	bin, err := exportBPF(filter)
	if err != nil {
		return nil, err
	}
	return seccomp.Decode(bin, p.Arch().Order)
}

// setFilterArch 将过滤器的架构从本机架构替换为目标架构
func setFilterArch(filter *scmp.ScmpFilter, target scmp.ScmpArch) error {
	native, err := scmp.GetNativeArch()
	if err != nil {
		return err
	}
	if native == target {
		return nil
	}
	if err := filter.AddArch(target); err != nil {
		return fmt.Errorf("add arch %v: %w", target, err)
	}
	if err := filter.RemoveArch(native); err != nil {
		return fmt.Errorf("remove arch %v: %w", native, err)
	}
	return nil
}

// addFilterAction 按目标架构解析名称并原样添加规则。
// 过滤器中只保留目标架构，因此使用 AddRuleExact，不让 libseccomp 再做转换。
func addFilterAction(filter *scmp.ScmpFilter, target scmp.ScmpArch, name string, action scmp.ScmpAction) error {
	syscallID, err := scmp.GetSyscallFromNameByArch(name, target)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrUnknownSyscall, name, err)
	}
	return filter.AddRuleExact(syscallID, action)
}

// exportBPF 通过管道读取 libseccomp 导出的 BPF 二进制
func exportBPF(filter *scmp.ScmpFilter) ([]byte, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- filter.ExportBPF(w)
		w.Close()
	}()

	bin, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("export bpf: %w", err)
	}
	return bin, nil
}
