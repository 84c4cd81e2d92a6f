package policy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Reader 逐行读取白名单文件
//
// Reader 只能向前读取一次；读到末尾或出错后，之后的 Next 都返回同一个错误。
type Reader struct {
	r   *bufio.Reader
	n   int
	err error
}

// NewReader 创建一个 Reader
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next 返回下一行，文件结束时返回 io.EOF
//
// 读取失败时返回的错误包含出错的行号，调用者不应使用已经读到的部分结果。
func (r *Reader) Next() (Line, error) {
	if r.err != nil {
		return Line{}, r.err
	}

	raw, err := r.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = fmt.Errorf("read policy line %d: %w", r.n+1, err)
		return Line{}, r.err
	}
	if raw == "" {
		// 没有更多数据
		r.err = io.EOF
		return Line{}, r.err
	}

	r.n++
	kind, name := Classify(raw)
	return Line{Number: r.n, Raw: raw, Kind: kind, Name: name}, nil
}
