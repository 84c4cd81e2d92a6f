//go:build libseccomp

package libseccomp

import (
	"runtime"
	"testing"

	"github.com/zqzqsb/seccompc/pkg/seccomp"
)

func TestLibseccompEmitter(t *testing.T) {
	foreign := "arm64"
	if runtime.GOARCH == "arm64" {
		foreign = "amd64"
	}

	tests := []struct {
		name  string
		arch  string
		allow []string
		deny  []string
	}{
		{name: "native", arch: runtime.GOARCH, allow: []string{"read", "write"}, deny: []string{"execve"}},
		// 目标架构的系统调用号按目标架构解析，openat 在两个架构上的编号不同
		{name: "foreign", arch: foreign, allow: []string{"read", "write", "openat"}, deny: []string{"execve", "ptrace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LookupArch(tt.arch); err != nil {
				t.Skipf("arch %s not supported: %v", tt.arch, err)
			}
			e, err := NewEmitter(EmitterLibseccomp)
			if err != nil {
				t.Fatalf("NewEmitter() error = %v", err)
			}
			p := buildProgram(t, tt.arch, tt.allow...)
			f, err := e.Emit(p)
			if err != nil {
				t.Fatalf("Emit() error = %v", err)
			}

			a := p.Arch()
			for _, n := range tt.allow {
				nr, _ := a.Resolve(n)
				if ret := evaluate(t, f, a.ID, int32(nr)); ret&seccomp.RetActionFull != seccomp.RetAllow {
					t.Errorf("%s: ret = 0x%x, want allow", n, ret)
				}
			}
			for _, n := range tt.deny {
				nr, _ := a.Resolve(n)
				if ret := evaluate(t, f, a.ID, int32(nr)); ret&seccomp.RetActionFull != seccomp.RetKillProcess {
					t.Errorf("%s: ret = 0x%x, want kill_process", n, ret)
				}
			}
		})
	}
}
