package writer

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Writer 日志输出器接口
type Writer interface {
	io.Writer
	io.Closer
}

// Options 输出器配置，Type 决定使用哪一组子配置
type Options struct {
	// 输出类型：console, file, multi
	Type string `cfg:"type" def:"console" validate:"omitempty,oneof=console file multi"`

	Console ConsoleWriterOptions `cfg:"console"`
	File    FileWriterOptions    `cfg:"file"`
	Multi   MultiWriterOptions   `cfg:"multi"`
}

// NewWriterWithOptions 根据 Type 创建输出器，Type 为空时输出到控制台
func NewWriterWithOptions(options *Options) (Writer, error) {
	if options == nil {
		options = &Options{}
	}

	switch strings.ToLower(options.Type) {
	case "", "console":
		return NewConsoleWriterWithOptions(&options.Console)
	case "file":
		w, err := NewFileWriterWithOptions(&options.File)
		if err != nil {
			return nil, err
		}
		return w, nil
	case "multi":
		w, err := NewMultiWriterWithOptions(&options.Multi)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, errors.Errorf("unsupported writer type: %s", options.Type)
	}
}
