package rank

import (
	"context"
	"strconv"

	"github.com/rushteam/cfkit/core"
)

// DefaultRankingKey 是流行度榜单在 KV 存储中的默认 zset key。
const DefaultRankingKey = "pop:items"

// Export 把全量流行度榜单写入 KV 有序集合（ZAdd），供召回侧用
// ZRange 直接读取 TopN。key 为空时使用 DefaultRankingKey。
func (r *Ranker) Export(ctx context.Context, kv core.KeyValueStore, key string) error {
	if key == "" {
		key = DefaultRankingKey
	}

	itemIDs, err := r.Store.AllItemIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range itemIDs {
		score, err := r.Popularity(ctx, id)
		if err != nil {
			return err
		}
		if err := kv.ZAdd(ctx, key, score, strconv.FormatInt(id, 10)); err != nil {
			return err
		}
	}
	return nil
}
