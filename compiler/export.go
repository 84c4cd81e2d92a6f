package compiler

import (
	"bufio"
	"fmt"
	"io"
)

// WriteListing 输出可读的过滤器清单：架构、默认动作、规则列表和反汇编
//
// 清单只用于审计和调试，格式不保证稳定。
func (res *Result) WriteListing(w io.Writer) error {
	p := res.Program
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# seccomp filter\n")
	fmt.Fprintf(bw, "arch: %v\n", p.Arch())
	fmt.Fprintf(bw, "default: %v\n", p.Default())
	fmt.Fprintf(bw, "rules: %d\n", p.Len())
	for _, r := range p.Rules() {
		fmt.Fprintf(bw, "  %v %s (%d)\n", r.Action, r.Name, r.Nr)
	}

	insts, err := res.Filter.Disassemble()
	if err != nil {
		return err
	}
	fmt.Fprintf(bw, "bpf: %d instructions\n", len(insts))
	for i, ins := range insts {
		fmt.Fprintf(bw, "  %04d: %v\n", i, ins)
	}
	return bw.Flush()
}

// WriteBPF 按目标架构的字节序输出 BPF 字节码
func (res *Result) WriteBPF(w io.Writer) error {
	_, err := w.Write(res.Filter.Encode(res.Program.Arch().Order))
	return err
}
