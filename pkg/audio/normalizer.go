package audio

import (
	"context"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// 标准化输出参数：单声道、16kHz，aresample=async=1 用于容忍可变帧率的输入
const (
	SampleRate    = "16000"
	Channels      = "1"
	ResampleAsync = "aresample=async=1"
)

// CommandRunner 执行外部命令并返回合并后的输出，测试中可以替换
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Normalizer 调用 ffmpeg 把任意音视频文件转换为识别所需的 wav
type Normalizer struct {
	ffmpegBinary string
	runner       CommandRunner
	logger       logrus.FieldLogger
}

// NewNormalizer 创建音频标准化器
func NewNormalizer(ffmpegBinary string, logger logrus.FieldLogger) *Normalizer {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Normalizer{
		ffmpegBinary: ffmpegBinary,
		runner:       runCommand,
		logger:       utils.OrDefault(logger),
	}
}

// WithCommandRunner 设置自定义命令执行器（测试用）
func (n *Normalizer) WithCommandRunner(runner CommandRunner) *Normalizer {
	if runner != nil {
		n.runner = runner
	}
	return n
}

// BuildArgs 构造 ffmpeg 参数。输出文件已由 TempFileManager 预先创建，因此需要 -y 覆盖。
func BuildArgs(input, output string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-ar", SampleRate,
		"-ac", Channels,
		"-af", ResampleAsync,
		output,
	}
}

// Normalize 将 input 转换为单声道 16kHz wav 写入 output。
// 失败时返回 *utils.TranscodeError，其中包含 ffmpeg 的诊断输出。
func (n *Normalizer) Normalize(ctx context.Context, input, output string) error {
	n.logger.WithField("file", input).Debugf("正在标准化音频: %s", output)

	out, err := n.runner(ctx, n.ffmpegBinary, BuildArgs(input, output)...)
	if err != nil {
		return &utils.TranscodeError{Input: input, Output: string(out), Cause: err}
	}
	if !utils.CheckFileExists(output) || utils.FileSize(output) == 0 {
		return &utils.TranscodeError{Input: input, Output: "ffmpeg 未生成输出文件"}
	}
	return nil
}

// Available 检查 ffmpeg 是否可用
func (n *Normalizer) Available(ctx context.Context) bool {
	_, err := n.runner(ctx, n.ffmpegBinary, "-version")
	return err == nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
