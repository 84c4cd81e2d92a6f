package compiler

import "fmt"

// Stats 是一次编译的统计信息
type Stats struct {
	Lines      int // 读取的行数
	Blank      int // 空行
	Comments   int // 注释行
	Rules      int // 生成的放行规则
	Duplicates int // 重复的系统调用
	Unresolved int // 无法解析的系统调用

	Instructions int // 生成的 BPF 指令数
}

func (s Stats) String() string {
	return fmt.Sprintf("Stats[lines=%d blank=%d comments=%d][rules=%d duplicates=%d unresolved=%d][instructions=%d]",
		s.Lines, s.Blank, s.Comments, s.Rules, s.Duplicates, s.Unresolved, s.Instructions)
}
