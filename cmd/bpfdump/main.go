// bpfdump 反汇编 seccompc 生成的 BPF 字节码，并可以检查指定系统调用的处理结果
//
//	bpfdump [--arch amd64] [--syscall name]... <bpf-file>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/zqzqsb/seccompc/compiler"
	"github.com/zqzqsb/seccompc/pkg/seccomp"
	"github.com/zqzqsb/seccompc/pkg/seccomp/libseccomp"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "usage: bpfdump [flags] <bpf-file>\n\nflags:\n")
	fmt.Fprint(w, flagSet.FlagUsages())
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	var (
		archName string
		syscalls []string
	)
	flagSet := pflag.NewFlagSet("bpfdump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&archName, "arch", compiler.DefaultArch, "architecture the program was compiled for")
	flagSet.StringArrayVarP(&syscalls, "syscall", "s", nil, "evaluate the program for this syscall (repeatable)")
	flagSet.Usage = func() { usage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		// ContinueOnError 模式下 pflag 不会输出错误
		fmt.Fprintln(stderr, err)
		usage(stderr, flagSet)
		return 2
	}
	if flagSet.NArg() != 1 {
		usage(stderr, flagSet)
		return 2
	}

	if err := dump(flagSet.Arg(0), archName, syscalls, stdout); err != nil {
		logger.WithError(err).Error("Failed to dump seccomp filter")
		return 1
	}
	return 0
}

func dump(path, archName string, syscalls []string, w io.Writer) error {
	a, err := libseccomp.LookupArch(archName)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := seccomp.Decode(b, a.Order)
	if err != nil {
		return err
	}
	insts, err := f.Disassemble()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# %s: %d instructions for %v\n", path, len(insts), a)
	for i, ins := range insts {
		fmt.Fprintf(w, "%04d: %v\n", i, ins)
	}

	for _, s := range syscalls {
		name, nr, err := lookupSyscall(a, s)
		if err != nil {
			return err
		}
		ret, err := f.Evaluate(seccomp.Data{Nr: int32(nr), Arch: a.ID})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%d): %s (0x%08x)\n", name, nr, seccomp.RetString(ret), ret)
	}
	return nil
}

// lookupSyscall 接受系统调用名称或系统调用号
func lookupSyscall(a *libseccomp.Arch, s string) (string, int, error) {
	if nr, err := strconv.Atoi(s); err == nil {
		name, err := a.SyscallName(nr)
		if err != nil {
			return "", 0, err
		}
		return name, nr, nil
	}
	nr, err := a.Resolve(s)
	if err != nil {
		return "", 0, err
	}
	return s, nr, nil
}
