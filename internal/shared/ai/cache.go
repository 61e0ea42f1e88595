package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

// PromptCache 提示词资产缓存：AGENT.md 主提示词和各项目类型的
// 估算模板。内容是静态文件，进程内只加载一次；Invalidate 提供
// 显式失效钩子（开发期热更新用）。
type PromptCache struct {
	dir    string
	logger *zap.Logger

	mu        sync.RWMutex
	agent     string
	templates map[string]string
}

// NewPromptCache 创建提示词缓存，dir 指向估算资产目录
// （包含 AGENT.md 与 templates/ 子目录）
func NewPromptCache(dir string, logger *zap.Logger) *PromptCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptCache{
		dir:       dir,
		logger:    logger,
		templates: make(map[string]string),
	}
}

// MasterAgent 获取主提示词（AGENT.md），首次读取后缓存
func (c *PromptCache) MasterAgent() (string, error) {
	c.mu.RLock()
	if c.agent != "" {
		agent := c.agent
		c.mu.RUnlock()
		return agent, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// 双重检查：其他goroutine可能已经加载
	if c.agent != "" {
		return c.agent, nil
	}

	path := filepath.Join(c.dir, "AGENT.md")
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load master agent prompt %s: %w", path, err)
	}

	c.agent = string(content)
	c.logger.Info("Master agent prompt loaded", zap.String("path", path), zap.Int("bytes", len(content)))
	return c.agent, nil
}

// Template 获取指定模板文件内容，不存在时返回 ok=false
func (c *PromptCache) Template(name string) (string, bool) {
	c.mu.RLock()
	if content, ok := c.templates[name]; ok {
		c.mu.RUnlock()
		return content, true
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if content, ok := c.templates[name]; ok {
		return content, true
	}

	path := filepath.Join(c.dir, "templates", name)
	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("Estimation template not found", zap.String("path", path), zap.Error(err))
		return "", false
	}

	c.templates[name] = string(content)
	c.logger.Info("Estimation template loaded",
		zap.String("template", name),
		zap.String("baseline", templateBaseline(string(content))),
		zap.Int("bytes", len(content)))
	return string(content), true
}

// EstimationTemplate 按项目类型和复杂度取估算模板
func (c *PromptCache) EstimationTemplate(projectType, complexity string) (string, bool) {
	name := SelectTemplate(projectType, complexity)
	if name == "" {
		return "", false
	}
	return c.Template(name)
}

// Invalidate 清空缓存，下次访问重新从磁盘加载
func (c *PromptCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agent = ""
	c.templates = make(map[string]string)
}

var baselinePattern = regexp.MustCompile(`Horas base:\*\*\s*(\d+)h`)

// templateBaseline 提取模板中的基准小时数（仅用于日志）
func templateBaseline(content string) string {
	m := baselinePattern.FindStringSubmatch(content)
	if len(m) < 2 {
		return "unknown"
	}
	return m[1] + "h"
}
