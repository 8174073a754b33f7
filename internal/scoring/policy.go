package scoring

import (
	"skillnest_backend/internal/config"
	"sync"
)

// Policy 统一的评分策略：百分制 + 答错扣分 + 及格线
type Policy struct {
	PenaltyPerWrong float64 `json:"penaltyPerWrong"`
	ExcludeFreeText bool    `json:"excludeFreeText"`
	PassThreshold   int     `json:"passThreshold"`
}

func DefaultPolicy() Policy {
	return Policy{
		PenaltyPerWrong: 1,
		ExcludeFreeText: true,
		PassThreshold:   60,
	}
}

func PolicyFromConfig(cfg config.ScoringConfig) Policy {
	return Policy{
		PenaltyPerWrong: cfg.PenaltyPerWrong,
		ExcludeFreeText: cfg.ExcludeFreeText,
		PassThreshold:   cfg.PassThreshold,
	}
}

// PolicyHolder 配置热更新时替换策略
type PolicyHolder struct {
	mu     sync.RWMutex
	policy Policy
}

func NewPolicyHolder(p Policy) *PolicyHolder {
	return &PolicyHolder{policy: p}
}

func (h *PolicyHolder) Get() Policy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policy
}

func (h *PolicyHolder) Set(p Policy) {
	h.mu.Lock()
	h.policy = p
	h.mu.Unlock()
}
