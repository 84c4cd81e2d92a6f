package libseccomp

import (
	seccompbpf "github.com/elastic/go-seccomp-bpf"

	"github.com/zqzqsb/seccompc/pkg/seccomp"
)

// ToSeccompAction 将我们的 Action 类型转换为 go-seccomp-bpf 库支持的动作类型
//
// 转换对应关系：
//   - ActionAllow -> seccompbpf.ActionAllow       (允许系统调用)
//   - 其他        -> seccompbpf.ActionKillProcess (终止进程)
//
// 无效动作同样映射为终止进程，保证生成的过滤器不会意外放行。
func ToSeccompAction(a seccomp.Action) seccompbpf.Action {
	switch a {
	case seccomp.ActionAllow:
		return seccompbpf.ActionAllow
	default:
		return seccompbpf.ActionKillProcess
	}
}
