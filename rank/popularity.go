// Package rank 实现打分与排序：流行度榜单与基于预测评分的排序节点。
package rank

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/cfkit/core"
)

// Ranker 计算平滑流行度分并输出全量榜单。
//
// 分数公式（n 为评分数，avg 为平均评分）：
//
//	score = (1 − Factor^(−n)) * avg + Prior * Factor^(−n)
//
// n → ∞ 时 score → avg（证据足够时信任均值）；n → 0 时 score → Prior
// （中性先验 3 分），避免冷门物品靠一条 5 星评分冲榜 —— 固定先验、固定
// 置信增长率的贝叶斯收缩估计。
//
// 每个物品的分数一次计算后记忆化，运行期内不变（语料加载后只读）。
type Ranker struct {
	Store core.RatingStore

	// Factor 置信增长率（<= 1 时默认 1.1）
	Factor float64

	// Prior 中性先验分（<= 0 时默认 3.0）
	Prior float64

	mu    sync.RWMutex
	memo  map[int64]float64
	group singleflight.Group
}

func NewRanker(store core.RatingStore) *Ranker {
	return &Ranker{
		Store: store,
		memo:  make(map[int64]float64),
	}
}

func (r *Ranker) factor() float64 {
	if r.Factor <= 1 {
		return 1.1
	}
	return r.Factor
}

func (r *Ranker) prior() float64 {
	if r.Prior <= 0 {
		return 3.0
	}
	return r.Prior
}

// Popularity 返回物品的流行度分，记忆化，重复调用不触发重算。
// 物品不在语料中时返回 NOT_FOUND。
func (r *Ranker) Popularity(ctx context.Context, itemID int64) (float64, error) {
	r.mu.RLock()
	if score, ok := r.memo[itemID]; ok {
		r.mu.RUnlock()
		return score, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(strconv.FormatInt(itemID, 10), func() (any, error) {
		r.mu.RLock()
		if score, ok := r.memo[itemID]; ok {
			r.mu.RUnlock()
			return score, nil
		}
		r.mu.RUnlock()

		score, err := r.compute(ctx, itemID)
		if err != nil {
			return 0.0, err
		}

		r.mu.Lock()
		r.memo[itemID] = score
		r.mu.Unlock()
		return score, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (r *Ranker) compute(ctx context.Context, itemID int64) (float64, error) {
	scores, err := r.Store.RatingsOf(ctx, itemID)
	if err != nil {
		return 0, err
	}
	n := len(scores)
	if n == 0 {
		// 语料中的物品至少有一条评分；纯防御
		return r.prior(), nil
	}

	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := float64(sum) / float64(n)

	decay := math.Pow(r.factor(), -float64(n))
	return (1-decay)*avg + r.prior()*decay, nil
}

// Ranking 返回全部物品按流行度降序的排名（同分按物品 ID 升序，保证确定性）。
func (r *Ranker) Ranking(ctx context.Context) ([]int64, error) {
	itemIDs, err := r.Store.AllItemIDs(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		itemID int64
		score  float64
	}
	ranked := make([]scored, 0, len(itemIDs))
	for _, id := range itemIDs {
		score, err := r.Popularity(ctx, id)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{itemID: id, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].itemID < ranked[j].itemID
	})

	out := make([]int64, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.itemID)
	}
	return out, nil
}
