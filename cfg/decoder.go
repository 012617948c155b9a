package cfg

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format 配置文件格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
	FormatJSON Format = "json"
)

// FormatOf 根据扩展名判断格式
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".ini":
		return FormatINI, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.Errorf("unsupported config file extension: %s", filename)
}

// Decode 把配置解码成 map 树，叶子节点保留各格式的原始类型，ini 的值都是字符串
func Decode(data []byte, format Format) (map[string]any, error) {
	result := map[string]any{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML")
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &result); err != nil {
			return nil, errors.Wrap(err, "failed to decode TOML")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON")
		}
	case FormatINI:
		return decodeINI(data)
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}

	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// decodeINI section 名中的 "." 表示嵌套，比如 [monitor] 和 [logger.output]
func decodeINI(data []byte) (map[string]any, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:         true,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode INI")
	}

	result := map[string]any{}
	for _, section := range file.Sections() {
		node := result
		if name := section.Name(); name != ini.DefaultSection {
			for _, part := range strings.Split(name, ".") {
				child, ok := node[part].(map[string]any)
				if !ok {
					child = map[string]any{}
					node[part] = child
				}
				node = child
			}
		}
		for _, key := range section.Keys() {
			node[key.Name()] = key.Value()
		}
	}
	return result, nil
}
