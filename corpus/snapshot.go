package corpus

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rushteam/cfkit/core"
)

// Snapshot 把语料落到任意 core.Store（Redis/内存）并支持回放。
//
// key 结构：
//   - {KeyPrefix}:log           全量观测日志（JSON 数组，保持插入序，回放用）
//   - {KeyPrefix}:user:{userID} 用户评分历史（JSON map，直接消费用）
//   - {KeyPrefix}:item:{itemID} 物品评分者（JSON map，直接消费用）
//   - {KeyPrefix}:users         所有用户 ID 列表
//   - {KeyPrefix}:items         所有物品 ID 列表
//
// 回放只依赖 :log（插入序完整，用户/物品侧索引可精确重建）；
// 其余 key 供外部系统直接读取，不参与回放。
type Snapshot struct {
	Store     core.Store
	KeyPrefix string
}

// NewSnapshot 创建快照适配器；keyPrefix 为空时默认 "cf"。
func NewSnapshot(s core.Store, keyPrefix string) *Snapshot {
	if keyPrefix == "" {
		keyPrefix = "cf"
	}
	return &Snapshot{Store: s, KeyPrefix: keyPrefix}
}

// Save 把语料写入 Store。
func (s *Snapshot) Save(ctx context.Context, c *Corpus) error {
	userIDs, err := c.AllUserIDs(ctx)
	if err != nil {
		return err
	}
	itemIDs, err := c.AllItemIDs(ctx)
	if err != nil {
		return err
	}

	kvs := make(map[string][]byte)

	// 观测日志：按用户插入序回放每个用户的历史。
	// 跨用户的原始交错顺序不保留；语料的一致性不变式与各序列的语义不受影响。
	var log []core.Rating
	for _, uid := range userIDs {
		items, err := c.ItemsOf(ctx, uid)
		if err != nil {
			return err
		}
		ratings, err := c.UserRatings(ctx, uid)
		if err != nil {
			return err
		}
		for _, itemID := range items {
			log = append(log, core.Rating{UserID: uid, ItemID: itemID, Score: ratings[itemID]})
		}

		data, err := json.Marshal(ratings)
		if err != nil {
			return err
		}
		kvs[s.KeyPrefix+":user:"+strconv.FormatInt(uid, 10)] = data
	}

	logData, err := json.Marshal(log)
	if err != nil {
		return err
	}
	kvs[s.KeyPrefix+":log"] = logData

	for _, itemID := range itemIDs {
		raters, err := c.RatersOf(ctx, itemID)
		if err != nil {
			return err
		}
		scores, err := c.RatingsOf(ctx, itemID)
		if err != nil {
			return err
		}
		byUser := make(map[string]int, len(raters))
		for i, uid := range raters {
			byUser[strconv.FormatInt(uid, 10)] = scores[i]
		}
		data, err := json.Marshal(byUser)
		if err != nil {
			return err
		}
		kvs[s.KeyPrefix+":item:"+strconv.FormatInt(itemID, 10)] = data
	}

	usersData, err := json.Marshal(userIDs)
	if err != nil {
		return err
	}
	kvs[s.KeyPrefix+":users"] = usersData

	itemsData, err := json.Marshal(itemIDs)
	if err != nil {
		return err
	}
	kvs[s.KeyPrefix+":items"] = itemsData

	return s.Store.BatchSet(ctx, kvs)
}

// Load 从 Store 回放观测日志并重建语料。
func (s *Snapshot) Load(ctx context.Context) (*Corpus, error) {
	data, err := s.Store.Get(ctx, s.KeyPrefix+":log")
	if err != nil {
		return nil, err
	}
	var log []core.Rating
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, err
	}
	return FromRatings(ctx, log)
}
