// Package similarity 实现用户两两相似度的计算与记忆化。
package similarity

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/cfkit/core"
)

// Engine 计算两个用户的相似度并做对称记忆化。
//
// 算法：
//  1. 取评分历史更短的一方为 A（减少迭代量，纯优化，不影响结果）
//  2. 对 A 评过且 B 也评过的每个物品 k，累加 5 − |rA(k) − rB(k)| 并计数
//  3. 结果 = 累加和 / 计数；计数为 0 时除以 1（无共同物品 → 0，不是 NaN）
//
// 个体评分在 1–5 之间，单个物品的贡献落在 [0,5]，因此有重叠时结果 ∈ [0,5]。
//
// 缓存按无序用户对（lo, hi）记忆化，一次计算双向命中；
// 并发下通过 singleflight 保证每个用户对至多计算一次。
type Engine struct {
	Store core.RatingStore

	mu    sync.RWMutex
	cache map[pairKey]float64
	group singleflight.Group
}

// pairKey 是无序用户对的缓存键：lo <= hi，(a,b) 与 (b,a) 共享一个条目。
type pairKey struct {
	lo, hi int64
}

func newPairKey(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

func NewEngine(store core.RatingStore) *Engine {
	return &Engine{
		Store: store,
		cache: make(map[pairKey]float64),
	}
}

// Similarity 返回两个用户的相似度。命中缓存时 O(1)，不触发重算。
func (e *Engine) Similarity(ctx context.Context, u1, u2 int64) (float64, error) {
	key := newPairKey(u1, u2)

	e.mu.RLock()
	if sim, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return sim, nil
	}
	e.mu.RUnlock()

	sfKey := strconv.FormatInt(key.lo, 10) + ":" + strconv.FormatInt(key.hi, 10)
	v, err, _ := e.group.Do(sfKey, func() (any, error) {
		// double check：singleflight 放行的第二波调用直接取缓存
		e.mu.RLock()
		if sim, ok := e.cache[key]; ok {
			e.mu.RUnlock()
			return sim, nil
		}
		e.mu.RUnlock()

		sim, err := e.compute(ctx, u1, u2)
		if err != nil {
			return 0.0, err
		}

		e.mu.Lock()
		e.cache[key] = sim
		e.mu.Unlock()
		return sim, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (e *Engine) compute(ctx context.Context, u1, u2 int64) (float64, error) {
	ratingsA, err := e.Store.UserRatings(ctx, u1)
	if err != nil {
		return 0, err
	}
	ratingsB, err := e.Store.UserRatings(ctx, u2)
	if err != nil {
		return 0, err
	}

	// 迭代短的一方
	if len(ratingsB) < len(ratingsA) {
		ratingsA, ratingsB = ratingsB, ratingsA
	}

	sum := 0.0
	count := 0
	for itemID, ra := range ratingsA {
		rb, ok := ratingsB[itemID]
		if !ok {
			continue
		}
		diff := ra - rb
		if diff < 0 {
			diff = -diff
		}
		sum += float64(5 - diff)
		count++
	}

	// 无共同物品：除以 1 而非报错，结果为 0
	if count == 0 {
		count = 1
	}
	return sum / float64(count), nil
}

// CacheLen 返回已缓存的用户对数量（观测/测试用）。
func (e *Engine) CacheLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
