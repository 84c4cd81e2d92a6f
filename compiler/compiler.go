// Package compiler 将系统调用白名单编译为默认拒绝的 seccomp BPF 程序
package compiler

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/zqzqsb/seccompc/pkg/policy"
	"github.com/zqzqsb/seccompc/pkg/seccomp"
	"github.com/zqzqsb/seccompc/pkg/seccomp/libseccomp"
)

// DefaultArch 是默认的目标架构
const DefaultArch = "amd64"

// Resolver 将系统调用名称转换为目标架构上的系统调用号
type Resolver interface {
	Resolve(name string) (int, error)
}

// Config 是编译参数
type Config struct {
	Arch     string          // 目标架构，为空时使用 DefaultArch
	Emitter  string          // 字节码生成器名称，为空时使用 native
	Logger   log.FieldLogger // 诊断日志，为空时丢弃
	Resolver Resolver        // 覆盖默认的系统调用表
}

// Result 是一次编译的结果，编译完成后只读
type Result struct {
	Program    *libseccomp.Program
	Filter     seccomp.Filter
	Unresolved []policy.Line
	Stats      Stats
}

// Compile 读取白名单并生成过滤器
//
// 无法解析的系统调用名称只记录警告并跳过；读取失败、
// 添加规则失败或生成字节码失败都会返回错误，此时不返回任何结果。
func Compile(r io.Reader, cfg Config) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	name := cfg.Arch
	if name == "" {
		name = DefaultArch
	}
	arch, err := libseccomp.LookupArch(name)
	if err != nil {
		return nil, err
	}
	var resolver Resolver = arch
	if cfg.Resolver != nil {
		resolver = cfg.Resolver
	}

	emitter, err := libseccomp.NewEmitter(cfg.Emitter)
	if err != nil {
		return nil, err
	}

	res := &Result{Program: libseccomp.NewProgram(arch)}
	pr := policy.NewReader(r)
	for {
		line, err := pr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := res.add(line, resolver, logger); err != nil {
			return nil, err
		}
	}

	res.Filter, err = emitter.Emit(res.Program)
	if err != nil {
		return nil, fmt.Errorf("emit bpf program: %w", err)
	}
	res.Stats.Instructions = len(res.Filter)
	return res, nil
}

// add 处理一行内容
func (res *Result) add(line policy.Line, resolver Resolver, logger log.FieldLogger) error {
	res.Stats.Lines++
	switch line.Kind {
	case policy.KindBlank:
		res.Stats.Blank++
		return nil
	case policy.KindComment:
		res.Stats.Comments++
		return nil
	}

	fields := log.Fields{"line": line.Number, "syscall": line.Name}
	nr, err := resolver.Resolve(line.Name)
	if err != nil || nr < 0 {
		res.Stats.Unresolved++
		res.Unresolved = append(res.Unresolved, line)
		logger.WithFields(fields).Warn("Cannot resolve syscall, skipping")
		return nil
	}

	added, err := res.Program.AddRule(nr, line.Name)
	if err != nil {
		return fmt.Errorf("line %d: add rule for %s: %w", line.Number, line.Name, err)
	}
	if !added {
		res.Stats.Duplicates++
		logger.WithFields(fields).Debug("Duplicate syscall")
		return nil
	}
	res.Stats.Rules++
	logger.WithFields(fields).WithField("nr", nr).Debug("Allow syscall")
	return nil
}
