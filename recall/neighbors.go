package recall

import (
	"context"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/neighbor"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/utils"
)

// Neighbors 是相似用户召回源："兴趣相似的用户，喜欢相似的物品"。
//
// 算法流程：
//  1. 用相似度引擎找与目标用户相似度 >= Threshold 的用户（降序）
//  2. 按相似度顺序收集这些用户评过的物品（跨用户去重）
//  3. 凑满 TopKItems 即止
//
// 已评物品的剔除交给 filter.Seen，召回只负责生成候选。
type Neighbors struct {
	Store    core.RatingStore
	Selector *neighbor.Selector

	// Threshold 相似用户的相似度门槛（<= 0 时默认 4.0）
	Threshold float64

	// TopKItems 最终返回的物品数量（<= 0 时默认 50）
	TopKItems int
}

func (r *Neighbors) Name() string        { return "recall.neighbors" }
func (r *Neighbors) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Neighbors) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Neighbors) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || r.Selector == nil || rctx == nil || rctx.UserID == 0 {
		return nil, nil
	}

	threshold := r.Threshold
	if threshold <= 0 {
		threshold = 4.0
	}
	topK := r.TopKItems
	if topK <= 0 {
		topK = 50
	}

	similar, err := r.Selector.MostSimilar(ctx, rctx.UserID, threshold)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, topK)
	out := make([]*core.Item, 0, topK)
	for _, uid := range similar {
		items, err := r.Store.ItemsOf(ctx, uid)
		if err != nil {
			return nil, err
		}
		for _, itemID := range items {
			if _, ok := seen[itemID]; ok {
				continue
			}
			seen[itemID] = struct{}{}

			it := core.NewItem(itemID)
			it.PutLabel("recall_source", utils.Label{Value: "neighbors", Source: "recall"})
			out = append(out, it)
			if len(out) >= topK {
				return out, nil
			}
		}
	}
	return out, nil
}
