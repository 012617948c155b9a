package writer

import (
	"io"
	"os"
)

// ConsoleWriterOptions 控制台输出配置
type ConsoleWriterOptions struct {
	// 输出目标：stdout, stderr
	Target string `cfg:"target" def:"stdout" validate:"omitempty,oneof=stdout stderr"`
}

// ConsoleWriter 控制台输出器，Close 不会关闭标准输出
type ConsoleWriter struct {
	writer io.Writer
	target string
}

func NewConsoleWriterWithOptions(options *ConsoleWriterOptions) (*ConsoleWriter, error) {
	target := "stdout"
	if options != nil && options.Target == "stderr" {
		target = "stderr"
	}

	w := io.Writer(os.Stdout)
	if target == "stderr" {
		w = os.Stderr
	}

	return &ConsoleWriter{writer: w, target: target}, nil
}

// Target 实际使用的输出目标
func (c *ConsoleWriter) Target() string {
	return c.target
}

func (c *ConsoleWriter) Write(p []byte) (n int, err error) {
	return c.writer.Write(p)
}

func (c *ConsoleWriter) Close() error {
	return nil
}
