// seccompc 将系统调用白名单编译为 seccomp BPF 字节码
//
//	seccompc [flags] <input-policy-file> <output-bpf-file>
//
// 可读的过滤器清单输出到标准错误，字节码写入输出文件。
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/zqzqsb/seccompc/compiler"
	"github.com/zqzqsb/seccompc/pkg/seccomp/libseccomp"
)

// 退出状态
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func usage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "usage: seccompc [flags] <input-policy-file> <output-bpf-file>\n\nflags:\n")
	fmt.Fprint(w, flagSet.FlagUsages())
}

func run(args []string, stderr io.Writer) int {
	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	var (
		arch    string
		emitter string
		verbose bool
	)
	flagSet := pflag.NewFlagSet("seccompc", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&arch, "arch", compiler.DefaultArch, "target architecture (amd64, arm64, 386, ...)")
	flagSet.StringVar(&emitter, "emitter", libseccomp.EmitterNative, "bytecode emitter: native, policy or libseccomp")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	flagSet.Usage = func() { usage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		// ContinueOnError 模式下 pflag 不会输出错误
		fmt.Fprintln(stderr, err)
		usage(stderr, flagSet)
		return exitUsage
	}
	if flagSet.NArg() != 2 {
		usage(stderr, flagSet)
		return exitUsage
	}
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := compiler.Config{
		Arch:    arch,
		Emitter: emitter,
		Logger:  logger,
	}
	input, output := flagSet.Arg(0), flagSet.Arg(1)
	if err := compileFile(input, output, cfg, stderr); err != nil {
		logger.WithError(err).Error("Failed to compile seccomp filter")
		return exitFailure
	}
	return exitOK
}

// compileFile 编译 input，把清单写到 listing，字节码写到 output
//
// 输入文件打开或读取失败时不会创建输出文件。
func compileFile(input, output string, cfg compiler.Config, listing io.Writer) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	res, err := compiler.Compile(f, cfg)
	// 输入只关闭一次，编译失败时优先返回编译错误
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("close input: %w", closeErr)
	}
	cfg.Logger.WithField("input", input).Info(res.Stats)

	if err := res.WriteListing(listing); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	if err := writeFile(output, res.WriteBPF); err != nil {
		return err
	}
	cfg.Logger.WithField("output", output).Info("Wrote seccomp filter")
	return nil
}
