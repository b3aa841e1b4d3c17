// Package predict 实现邻域协同过滤的评分预测。
package predict

import (
	"context"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/neighbor"
)

// ColdStartRating 是冷启动默认值：物品在可达邻域内没有任何可参考评分时，
// 预测值固定为 1.0（领域约定的兜底，不是缺失的错误处理）。
const ColdStartRating = 1.0

// Predictor 组合邻居选择与语料，产出 (user, item) 的预测评分。
//
// 预测路径：
//  1. 命中邻居缓存 → 直接用缓存的邻居序列
//  2. 未命中 → SharedSimUsers 推导邻居集
//  3. 邻居集为空 → 返回 ColdStartRating（冷启动/冷门物品）
//  4. 否则播种邻居缓存（见 SeedNeighborCaches），返回邻居评分的算术平均
//
// 缓存播种会把"邻居组成员替换为查询用户"的变体写进组内每个成员的缓存，
// 因此命中路径上的缓存成员可能没评过目标物品 —— Predict 会跳过这类成员，
// 全部不可用时退回重算路径。
type Predictor struct {
	Store    core.RatingStore
	Selector *neighbor.Selector
	Cache    *neighbor.Cache
}

func New(store core.RatingStore, selector *neighbor.Selector) *Predictor {
	return &Predictor{
		Store:    store,
		Selector: selector,
		Cache:    neighbor.NewCache(),
	}
}

// Predict 返回用户对物品的预测评分。
// 用户或物品不在语料中时返回 NOT_FOUND（零评分者的物品即不存在的物品）。
func (p *Predictor) Predict(ctx context.Context, userID, itemID int64) (float64, error) {
	if !p.Store.UserExists(ctx, userID) {
		return 0, core.ErrUserNotFound
	}
	if !p.Store.ItemExists(ctx, itemID) {
		return 0, core.ErrItemNotFound
	}

	// 命中路径
	if cached, ok := p.Cache.Get(userID, itemID); ok {
		if mean, ok, err := p.meanRating(ctx, itemID, cached); err != nil {
			return 0, err
		} else if ok {
			return mean, nil
		}
		// 缓存成员全部没评过该物品（播种变体的退化情况）：走重算路径
	}

	neighbors, err := p.Selector.SharedSimUsers(ctx, userID, itemID)
	if err != nil {
		return 0, err
	}
	if len(neighbors) == 0 {
		return ColdStartRating, nil
	}

	p.SeedNeighborCaches(userID, itemID, neighbors)

	mean, _, err := p.meanRating(ctx, itemID, neighbors)
	if err != nil {
		return 0, err
	}
	return mean, nil
}

// SeedNeighborCaches 把邻居集写入查询用户的缓存，并向组内每个成员播种
// 一个变体序列（该成员的位置替换为查询用户）。同一相似簇的任意一次查询
// 都会为整个簇预热缓存；代价是缓存条目只是组成员近似，不保证与重算等价。
func (p *Predictor) SeedNeighborCaches(userID, itemID int64, neighbors []int64) {
	p.Cache.Put(userID, itemID, neighbors)

	for i, member := range neighbors {
		variant := make([]int64, len(neighbors))
		copy(variant, neighbors)
		variant[i] = userID
		p.Cache.Put(member, itemID, variant)
	}
}

// meanRating 计算成员对物品评分的算术平均；没评过该物品的成员被跳过。
// 第二个返回值表示是否有至少一个可用评分。
func (p *Predictor) meanRating(ctx context.Context, itemID int64, members []int64) (float64, bool, error) {
	sum := 0
	count := 0
	for _, m := range members {
		score, err := p.Store.RatingOf(ctx, m, itemID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return 0, false, err
		}
		sum += score
		count++
	}
	if count == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(count), true, nil
}
