// Package policy 读取系统调用白名单文件
//
// 文件每行一个系统调用名称；空行和以 # 开头的行会被跳过。
// 名称不做任何规范化（不去空白、不转换大小写），只去掉一个结尾的换行符。
package policy

import "strings"

// Kind 是一行内容的类型
type Kind int

// 行类型
const (
	KindInvalid Kind = iota // 0 未初始化
	KindBlank               // 1 空行
	KindComment             // 2 注释
	KindSyscall             // 3 系统调用名称
)

var kindString = []string{
	"invalid",
	"blank",
	"comment",
	"syscall",
}

func (k Kind) String() string {
	i := int(k)
	if i >= 0 && i < len(kindString) {
		return kindString[i]
	}
	return kindString[0]
}

// Line 是白名单文件中的一行
type Line struct {
	Number int    // 行号，从 1 开始
	Raw    string // 原始内容，包含换行符
	Kind   Kind   // 行类型
	Name   string // 系统调用名称（仅 KindSyscall）
}

// Classify 判断一行内容的类型，返回去掉结尾换行符后的系统调用名称
func Classify(raw string) (Kind, string) {
	s := strings.TrimSuffix(raw, "\n")
	switch {
	case s == "":
		return KindBlank, ""
	case s[0] == '#':
		return KindComment, ""
	default:
		return KindSyscall, s
	}
}
