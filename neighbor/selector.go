// Package neighbor 实现自适应阈值放宽的邻居选择。
package neighbor

import (
	"context"
	"sort"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/similarity"
)

// Selector 给定目标用户和物品，找同时评过该物品的相似用户。
//
// 核心是阈值放宽循环（SharedSimUsers）：
//  1. 从 StartThreshold 开始找相似且评过该物品的用户
//  2. 找不到则阈值降 Step 再找
//  3. 阈值降到 FloorThreshold 之下仍找不到 → 返回空
//     （相似度低于 1.0 已无"相似"可言，继续放宽不可能找到可信邻居）
//
// 放宽以显式有界循环实现，语义与递归定义一致：从 5.0 到 1.0 之下
// 最多 ~40 步，避免调用栈增长。阈值按步数一次算出而非反复减 0.1，
// 规避浮点累积误差。
type Selector struct {
	Store core.RatingStore
	Sim   *similarity.Engine

	// StartThreshold 放宽循环的起始阈值（<= 0 时默认 5.0）
	StartThreshold float64

	// FloorThreshold 放宽循环的下界（<= 0 时默认 1.0），阈值低于此值即放弃
	FloorThreshold float64

	// Step 每轮放宽的步长（<= 0 时默认 0.1）
	Step float64
}

// epsilon 吸收阈值计算中的浮点误差（阈值本身以 0.1 为步长）
const epsilon = 1e-9

func NewSelector(store core.RatingStore, sim *similarity.Engine) *Selector {
	return &Selector{Store: store, Sim: sim}
}

func (s *Selector) start() float64 {
	if s.StartThreshold <= 0 {
		return 5.0
	}
	return s.StartThreshold
}

func (s *Selector) floor() float64 {
	if s.FloorThreshold <= 0 {
		return 1.0
	}
	return s.FloorThreshold
}

func (s *Selector) step() float64 {
	if s.Step <= 0 {
		return 0.1
	}
	return s.Step
}

// MostSimilar 返回与目标用户相似度 >= threshold 的所有其他用户，
// 按相似度降序（同分按用户 ID 升序，保证确定性）。
func (s *Selector) MostSimilar(ctx context.Context, userID int64, threshold float64) ([]int64, error) {
	allUsers, err := s.Store.AllUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		userID int64
		sim    float64
	}
	candidates := make([]scored, 0)
	for _, other := range allUsers {
		if other == userID {
			continue // 跳过自己
		}
		sim, err := s.Sim.Similarity(ctx, userID, other)
		if err != nil {
			return nil, err
		}
		if sim >= threshold-epsilon {
			candidates = append(candidates, scored{userID: other, sim: sim})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].userID < candidates[j].userID
	})

	out := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.userID)
	}
	return out, nil
}

// SharedSimUsers 返回评过 itemID 的相似用户，阈值从 StartThreshold 按
// Step 放宽至 FloorThreshold。穷尽后仍为空则返回空序列（非错误）。
func (s *Selector) SharedSimUsers(ctx context.Context, userID, itemID int64) ([]int64, error) {
	raters, err := s.Store.RatersOf(ctx, itemID)
	if err != nil {
		return nil, err
	}
	raterSet := make(map[int64]struct{}, len(raters))
	for _, r := range raters {
		raterSet[r] = struct{}{}
	}

	start, floor, step := s.start(), s.floor(), s.step()
	for i := 0; ; i++ {
		threshold := start - float64(i)*step
		if threshold < floor-epsilon {
			return nil, nil // 放宽穷尽，没有可信邻居
		}

		candidates, err := s.MostSimilar(ctx, userID, threshold)
		if err != nil {
			return nil, err
		}

		shared := make([]int64, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := raterSet[c]; ok {
				shared = append(shared, c)
			}
		}
		if len(shared) > 0 {
			return shared, nil
		}
	}
}
