package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// 跳过测试的辅助函数（在没有安装FFmpeg的环境中使用）
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if err := exec.Command("ffmpeg", "-version").Run(); err != nil {
		t.Skip("跳过测试：未安装FFmpeg")
	}
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("in.mp4", "out.wav")
	assert.Equal(t, []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", "in.mp4",
		"-ar", "16000",
		"-ac", "1",
		"-af", "aresample=async=1",
		"out.wav",
	}, args)
}

func TestNormalizeUsesRunner(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.wav")

	var gotName string
	var gotArgs []string
	normalizer := NewNormalizer("/opt/ffmpeg", utils.DiscardLogger()).WithCommandRunner(
		func(ctx context.Context, name string, args ...string) ([]byte, error) {
			gotName = name
			gotArgs = args
			return nil, os.WriteFile(output, []byte("RIFF"), 0644)
		})

	require.NoError(t, normalizer.Normalize(context.Background(), "in.mkv", output))
	assert.Equal(t, "/opt/ffmpeg", gotName)
	assert.Equal(t, BuildArgs("in.mkv", output), gotArgs)
}

func TestNormalizeFailureCarriesDiagnostics(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.wav")
	normalizer := NewNormalizer("", utils.DiscardLogger()).WithCommandRunner(
		func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("in.mkv: No such file or directory\n"), errors.New("exit status 1")
		})

	err := normalizer.Normalize(context.Background(), "in.mkv", output)
	require.Error(t, err)

	var transcodeErr *utils.TranscodeError
	require.True(t, errors.As(err, &transcodeErr))
	assert.Equal(t, "in.mkv", transcodeErr.Input)
	assert.Contains(t, transcodeErr.Output, "No such file or directory")
	assert.True(t, errors.Is(err, utils.ErrTranscode))
}

func TestNormalizeEmptyOutputIsFailure(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, os.WriteFile(output, nil, 0600))

	normalizer := NewNormalizer("", utils.DiscardLogger()).WithCommandRunner(
		func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, nil
		})

	err := normalizer.Normalize(context.Background(), "in.mkv", output)
	assert.True(t, errors.Is(err, utils.ErrTranscode))
}

func TestAvailable(t *testing.T) {
	ok := NewNormalizer("", utils.DiscardLogger()).WithCommandRunner(
		func(ctx context.Context, name string, args ...string) ([]byte, error) {
			assert.Equal(t, []string{"-version"}, args)
			return []byte("ffmpeg version 6.1"), nil
		})
	assert.True(t, ok.Available(context.Background()))

	missing := NewNormalizer("", utils.DiscardLogger()).WithCommandRunner(
		func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, exec.ErrNotFound
		})
	assert.False(t, missing.Available(context.Background()))
}

// 集成测试 - 需要ffmpeg可用
func TestNormalizeRealFFmpeg(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	source := filepath.Join(dir, "tone.mp3")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "sine=frequency=1000:duration=1", "-q:a", "9", source, "-y")
	if err := cmd.Run(); err != nil {
		t.Skip("创建测试音频失败，跳过测试")
	}

	manager := NewTempFileManager(dir, utils.DiscardLogger())
	tmp, err := manager.Allocate()
	require.NoError(t, err)
	defer tmp.Release()

	normalizer := NewNormalizer("ffmpeg", utils.DiscardLogger())
	require.NoError(t, normalizer.Normalize(context.Background(), source, tmp.Path))
	assert.Greater(t, utils.FileSize(tmp.Path), int64(44))
}
