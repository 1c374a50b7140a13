package asr

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

// 内置识别引擎名称
const (
	EngineFasterWhisper = "faster-whisper"
	EngineStub          = "stub"
)

// EngineStats 引擎使用统计
type EngineStats struct {
	SuccessCount int
	TotalCount   int
}

// EngineSelector 识别引擎注册表，按名称选择创建函数
type EngineSelector struct {
	mu      sync.RWMutex
	engines map[string]Factory
	stats   map[string]*EngineStats
	logger  logrus.FieldLogger
}

// NewEngineSelector 创建新的引擎选择器
func NewEngineSelector(logger logrus.FieldLogger) *EngineSelector {
	return &EngineSelector{
		engines: make(map[string]Factory),
		stats:   make(map[string]*EngineStats),
		logger:  utils.OrDefault(logger),
	}
}

// RegisterEngine 注册识别引擎，同名引擎会被覆盖
func (s *EngineSelector) RegisterEngine(name string, factory Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engines[name] = factory
	if _, ok := s.stats[name]; !ok {
		s.stats[name] = &EngineStats{}
	}
	s.logger.Debugf("注册识别引擎: %s", name)
}

// Select 返回指定名称的引擎创建函数。返回的函数会记录调用结果。
func (s *EngineSelector) Select(name string) (Factory, error) {
	s.mu.RLock()
	factory, ok := s.engines[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("未知的识别引擎: %s", name)
	}

	return func(model ModelSource, engine EngineConfig) (Recognizer, error) {
		rec, err := factory(model, engine)
		s.reportResult(name, err == nil)
		return rec, err
	}, nil
}

// Names 返回已注册的引擎名称（按字母排序）
func (s *EngineSelector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats 返回指定引擎的统计信息副本
func (s *EngineSelector) Stats(name string) EngineStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if stat, ok := s.stats[name]; ok {
		return *stat
	}
	return EngineStats{}
}

func (s *EngineSelector) reportResult(name string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, ok := s.stats[name]
	if !ok {
		return
	}
	stat.TotalCount++
	if success {
		stat.SuccessCount++
	}
}
