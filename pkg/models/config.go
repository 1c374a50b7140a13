package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// LanguageAuto 表示由模型自动检测语言
const LanguageAuto = "auto"

// 识别设备
const (
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
	DeviceAuto = "auto"
)

// DefaultNoisePunctuation 噪声过滤使用的标点集合（全角/半角标点和 ASCII 符号）。
// 空白和数字总是视为噪声，不需要出现在这里。
const DefaultNoisePunctuation = "，。、？！‘’“”；：（｛｝【】）:;\"'`!@#$%^&*()_+=.,?/\\-"

// DefaultChinesePrompt 中文识别时的默认引导提示词
const DefaultChinesePrompt = "以下是普通话内容，请转录为中文简体。"

// Config 表示应用程序的配置
type Config struct {
	Device                  string            `json:"device" toml:"device" yaml:"device"`                                                                // 识别设备 cpu/cuda/auto
	ComputeType             string            `json:"compute_type" toml:"compute_type" yaml:"compute_type"`                                              // 计算精度
	BeamSize                int               `json:"beam_size" toml:"beam_size" yaml:"beam_size"`                                                       // beam search 宽度
	BestOf                  int               `json:"best_of" toml:"best_of" yaml:"best_of"`                                                             // 采样候选数
	ConditionOnPreviousText bool              `json:"condition_on_previous_text" toml:"condition_on_previous_text" yaml:"condition_on_previous_text"` // 是否以前文为条件
	VADFilter               bool              `json:"vad_filter" toml:"vad_filter" yaml:"vad_filter"`                                                    // 是否启用静音过滤
	InitialPrompts          map[string]string `json:"initial_prompts" toml:"initial_prompts" yaml:"initial_prompts"`                                     // 按语言代码设置的引导提示词
	ModelRoot               string            `json:"model_root" toml:"model_root" yaml:"model_root"`                                                    // 模型存放目录
	TempDir                 string            `json:"temp_dir" toml:"temp_dir" yaml:"temp_dir"`                                                          // 临时目录，空表示系统临时目录
	PythonPath              string            `json:"python_path" toml:"python_path" yaml:"python_path"`                                                 // 识别辅助进程使用的 python
	FFmpegPath              string            `json:"ffmpeg_path" toml:"ffmpeg_path" yaml:"ffmpeg_path"`                                                 // ffmpeg 可执行文件
	UseStubEngine           bool              `json:"use_stub_engine" toml:"use_stub_engine" yaml:"use_stub_engine"`                                     // 使用静态识别引擎（调试用）
	MaxWorkers              int               `json:"max_workers" toml:"max_workers" yaml:"max_workers"`                                                 // 并发处理文件数，1 表示顺序处理
	ShowProgress            bool              `json:"show_progress" toml:"show_progress" yaml:"show_progress"`                                           // 显示进度条
	NoisePunctuation        string            `json:"noise_punctuation" toml:"noise_punctuation" yaml:"noise_punctuation"`                               // 噪声标点集合
	MediaExtensions         []string          `json:"media_extensions" toml:"media_extensions" yaml:"media_extensions"`                                  // 监听模式识别的媒体扩展名
	WatchDebounceSeconds    int               `json:"watch_debounce_seconds" toml:"watch_debounce_seconds" yaml:"watch_debounce_seconds"`                // 监听模式防抖时间（秒）
	LogLevel                string            `json:"log_level" toml:"log_level" yaml:"log_level"`                                                       // 日志级别
	LogFile                 string            `json:"log_file" toml:"log_file" yaml:"log_file"`                                                          // 日志文件
}

// ConfigValidationError 表示配置验证错误
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("配置验证错误: %s - %s", e.Field, e.Message)
}

func (e *ConfigValidationError) Unwrap() error {
	return utils.ErrConfig
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Device:                  DeviceCPU,
		ComputeType:             "int8",
		BeamSize:                5,
		BestOf:                  5,
		ConditionOnPreviousText: false,
		VADFilter:               true,
		InitialPrompts:          map[string]string{"zh": DefaultChinesePrompt},
		ModelRoot:               "./models",
		TempDir:                 "",
		PythonPath:              "python3",
		FFmpegPath:              "ffmpeg",
		UseStubEngine:           false,
		MaxWorkers:              1,
		ShowProgress:            true,
		NoisePunctuation:        DefaultNoisePunctuation,
		MediaExtensions: []string{
			".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac",
			".mp4", ".mov", ".avi", ".mkv", ".flv", ".wmv", ".webm",
		},
		WatchDebounceSeconds: 5,
		LogLevel:             "info",
		LogFile:              "",
	}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	switch c.Device {
	case DeviceCPU, DeviceCUDA, DeviceAuto:
	default:
		return &ConfigValidationError{"Device", "必须是 cpu、cuda 或 auto"}
	}

	if strings.TrimSpace(c.ComputeType) == "" {
		return &ConfigValidationError{"ComputeType", "不能为空"}
	}

	if c.BeamSize < 1 {
		return &ConfigValidationError{"BeamSize", "必须大于等于1"}
	}

	if c.BestOf < 1 {
		return &ConfigValidationError{"BestOf", "必须大于等于1"}
	}

	if c.MaxWorkers < 1 || c.MaxWorkers > 16 {
		return &ConfigValidationError{"MaxWorkers", "必须在1-16之间"}
	}

	if c.WatchDebounceSeconds < 0 || c.WatchDebounceSeconds > 300 {
		return &ConfigValidationError{"WatchDebounceSeconds", "必须在0-300秒之间"}
	}

	for lang := range c.InitialPrompts {
		if err := ValidateLanguage(lang); err != nil {
			return &ConfigValidationError{"InitialPrompts", err.Error()}
		}
	}

	if !c.UseStubEngine && strings.TrimSpace(c.PythonPath) == "" {
		return &ConfigValidationError{"PythonPath", "不能为空"}
	}

	if strings.TrimSpace(c.FFmpegPath) == "" {
		return &ConfigValidationError{"FFmpegPath", "不能为空"}
	}

	return nil
}

// ValidateLanguage 检查语言代码是否合法，"auto" 表示自动检测
func ValidateLanguage(code string) error {
	if code == LanguageAuto {
		return nil
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("语言代码不能为空")
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("无效的语言代码 %q: %w", code, err)
	}
	return nil
}

// LoadFromFile 从文件加载配置，根据扩展名选择 TOML、YAML 或 JSON 格式。
// 文件中没有出现的字段保留当前值。
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("%w: 解析配置文件失败 %s: %v", utils.ErrConfig, path, err)
	}

	if err := c.Validate(); err != nil {
		return err
	}

	return nil
}

// SaveToFile 以 TOML 格式保存配置到文件
func (c *Config) SaveToFile(path string) error {
	// 确保目录存在
	if err := utils.EnsureDirExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Encode 将配置以 TOML 格式写入 w
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	return nil
}

// Reset 重置为默认配置
func (c *Config) Reset() {
	*c = *NewDefaultConfig()
}

// TempDirectory 返回实际使用的临时目录
func (c *Config) TempDirectory() string {
	if c.TempDir == "" {
		return os.TempDir()
	}
	return c.TempDir
}

// PromptFor 返回指定语言的引导提示词，没有配置时返回空字符串
func (c *Config) PromptFor(lang string) string {
	if c.InitialPrompts == nil {
		return ""
	}
	return c.InitialPrompts[lang]
}
