package recall

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/utils"
	"github.com/rushteam/cfkit/rank"
)

// Popularity 是流行度召回源，按以下优先级取榜单：
//   - Ranker 不为空：直接读全量流行度排名（带分数）
//   - 否则从 Store 读取导出的榜单（KeyValueStore 用 ZRange，普通 key 读 JSON 数组）
//   - 都没有则使用内存中的 IDs 作为 fallback
//
// Popularity 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Popularity struct {
	Ranker *rank.Ranker
	Store  core.Store
	Key    string  // 存储 key，例如 "pop:items"
	TopN   int     // 截取榜单前 N（<= 0 时默认 100）
	IDs    []int64 // fallback 内存列表
}

func (r *Popularity) Name() string        { return "recall.popularity" }
func (r *Popularity) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popularity) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Popularity) topN() int {
	if r.TopN <= 0 {
		return 100
	}
	return r.TopN
}

// Recall 实现 Source 接口
func (r *Popularity) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	// 优先：直接从 Ranker 读取
	if r.Ranker != nil {
		return r.recallFromRanker(ctx)
	}

	var ids []int64

	// 备选：从 Store 读取导出的榜单
	if r.Store != nil && r.Key != "" {
		if kvStore, ok := r.Store.(core.KeyValueStore); ok {
			members, err := kvStore.ZRange(ctx, r.Key, 0, int64(r.topN())-1)
			if err == nil && len(members) > 0 {
				ids = make([]int64, 0, len(members))
				for _, m := range members {
					if id, err := strconv.ParseInt(m, 10, 64); err == nil {
						ids = append(ids, id)
					}
				}
			}
		} else {
			data, err := r.Store.Get(ctx, r.Key)
			if err == nil {
				var parsed []int64
				if json.Unmarshal(data, &parsed) == nil {
					ids = parsed
				}
			}
		}
	}

	// Fallback：使用内存 IDs
	if len(ids) == 0 {
		ids = r.IDs
	}
	if len(ids) > r.topN() {
		ids = ids[:r.topN()]
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.Label{Value: "popularity", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

func (r *Popularity) recallFromRanker(ctx context.Context) ([]*core.Item, error) {
	ranking, err := r.Ranker.Ranking(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranking) > r.topN() {
		ranking = ranking[:r.topN()]
	}

	out := make([]*core.Item, 0, len(ranking))
	for _, id := range ranking {
		score, err := r.Ranker.Popularity(ctx, id)
		if err != nil {
			return nil, err
		}
		it := core.NewItem(id)
		it.Score = score
		it.PutLabel("recall_source", utils.Label{Value: "popularity", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
