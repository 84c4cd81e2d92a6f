package policy

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		wantName string
	}{
		{name: "empty", raw: "", wantKind: KindBlank},
		{name: "newline only", raw: "\n", wantKind: KindBlank},
		{name: "comment", raw: "#comment\n", wantKind: KindComment},
		{name: "bare hash", raw: "#", wantKind: KindComment},
		{name: "syscall", raw: "read\n", wantKind: KindSyscall, wantName: "read"},
		{name: "no newline", raw: "write", wantKind: KindSyscall, wantName: "write"},
		// 只去掉一个换行符，也不去掉空白
		{name: "double newline", raw: "read\n\n", wantKind: KindSyscall, wantName: "read\n"},
		{name: "leading space", raw: " read\n", wantKind: KindSyscall, wantName: " read"},
		{name: "indented comment", raw: " #read\n", wantKind: KindSyscall, wantName: " #read"},
		{name: "carriage return", raw: "read\r\n", wantKind: KindSyscall, wantName: "read\r"},
		{name: "inline comment", raw: "read # x\n", wantKind: KindSyscall, wantName: "read # x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, name := Classify(tt.raw)
			if kind != tt.wantKind || name != tt.wantName {
				t.Errorf("Classify(%q) = %v, %q, want %v, %q", tt.raw, kind, name, tt.wantKind, tt.wantName)
			}
		})
	}
}

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader("read\n#comment\n\nwrite\nbogus_syscall_xyz"))

	want := []Line{
		{Number: 1, Raw: "read\n", Kind: KindSyscall, Name: "read"},
		{Number: 2, Raw: "#comment\n", Kind: KindComment},
		{Number: 3, Raw: "\n", Kind: KindBlank},
		{Number: 4, Raw: "write\n", Kind: KindSyscall, Name: "write"},
		{Number: 5, Raw: "bogus_syscall_xyz", Kind: KindSyscall, Name: "bogus_syscall_xyz"},
	}
	for _, w := range want {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != w {
			t.Errorf("Next() = %+v, want %+v", got, w)
		}
	}

	// 读到末尾后一直返回 io.EOF
	for i := 0; i < 2; i++ {
		if _, err := r.Next(); err != io.EOF {
			t.Errorf("Next() after end error = %v, want io.EOF", err)
		}
	}
}

func TestReaderEmpty(t *testing.T) {
	if _, err := NewReader(strings.NewReader("")).Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

type failingReader struct {
	data string
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.data == "" {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestReaderError(t *testing.T) {
	errDisk := errors.New("input/output error")
	r := NewReader(&failingReader{data: "read\nwri", err: errDisk})

	if l, err := r.Next(); err != nil || l.Name != "read" {
		t.Fatalf("Next() = %+v, %v, want read", l, err)
	}
	_, err := r.Next()
	if !errors.Is(err, errDisk) {
		t.Fatalf("Next() error = %v, want %v", err, errDisk)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Next() error = %q, want line number", err)
	}
	// 出错后不再继续读取
	if _, err2 := r.Next(); err2 != err {
		t.Errorf("Next() after error = %v, want %v", err2, err)
	}
}
