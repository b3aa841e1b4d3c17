// Package corpus 实现 core.RatingStore：按用户和按物品双向索引的评分语料。
//
// 生命周期：加载期一次性写入（AddRating），之后只读。相似度/邻居/热度缓存
// 不放在语料内部，由各自组件显式持有（便于隔离缓存失效与并发语义）。
package corpus

import (
	"context"
	"sync"

	"github.com/rushteam/cfkit/core"
)

// Corpus 是内存实现的评分语料。
//
// 索引结构：
//   - 按用户：itemID -> score 的评分历史 + 插入序的物品 ID 列表
//   - 按物品：userID -> score + 评分者列表与评分列表（平行同序）
//
// 一致性不变式：用户 u 出现在物品 m 的评分者列表中，当且仅当
// m 出现在 u 的物品列表中（AddRating 同时维护两侧）。
type Corpus struct {
	mu    sync.RWMutex
	users map[int64]*userRecord
	items map[int64]*itemRecord
	total int
}

type userRecord struct {
	ratings map[int64]int
	items   []int64 // 插入序
}

type itemRecord struct {
	ratings map[int64]int
	raters  []int64 // 插入序
	scores  []int   // 与 raters 平行同序
}

func New() *Corpus {
	return &Corpus{
		users: make(map[int64]*userRecord),
		items: make(map[int64]*itemRecord),
	}
}

// FromRatings 从已解析的评分观测构建语料。
func FromRatings(ctx context.Context, ratings []core.Rating) (*Corpus, error) {
	c := New()
	for _, r := range ratings {
		if err := c.AddRating(ctx, r.UserID, r.ItemID, r.Score); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Len 返回已加载的评分观测条数。
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// AddRating 写入一条评分观测，同时维护用户侧和物品侧索引。
// 仅在唯一 (user, item) 输入假设下幂等，无去重逻辑。
func (c *Corpus) AddRating(ctx context.Context, userID, itemID int64, score int) error {
	if score < 1 || score > 5 {
		return core.NewDomainError(core.ModuleCorpus, core.ErrorCodeInvalidInput, "corpus: rating out of range [1,5]")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.users[userID]
	if !ok {
		u = &userRecord{ratings: make(map[int64]int)}
		c.users[userID] = u
	}
	u.ratings[itemID] = score
	u.items = append(u.items, itemID)

	it, ok := c.items[itemID]
	if !ok {
		it = &itemRecord{ratings: make(map[int64]int)}
		c.items[itemID] = it
	}
	it.ratings[userID] = score
	it.raters = append(it.raters, userID)
	it.scores = append(it.scores, score)

	c.total++
	return nil
}

func (c *Corpus) UserExists(ctx context.Context, userID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.users[userID]
	return ok
}

func (c *Corpus) ItemExists(ctx context.Context, itemID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[itemID]
	return ok
}

func (c *Corpus) RatingOf(ctx context.Context, userID, itemID int64) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return 0, core.ErrEmptyCorpus
	}
	u, ok := c.users[userID]
	if !ok {
		return 0, core.ErrUserNotFound
	}
	score, ok := u.ratings[itemID]
	if !ok {
		return 0, core.ErrRatingNotFound
	}
	return score, nil
}

// UserRatings 返回用户的完整评分历史。返回内部 map 的只读视图，调用方不得修改。
func (c *Corpus) UserRatings(ctx context.Context, userID int64) (map[int64]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return nil, core.ErrEmptyCorpus
	}
	u, ok := c.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return u.ratings, nil
}

func (c *Corpus) ItemsOf(ctx context.Context, userID int64) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return nil, core.ErrEmptyCorpus
	}
	u, ok := c.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	out := make([]int64, len(u.items))
	copy(out, u.items)
	return out, nil
}

func (c *Corpus) RatersOf(ctx context.Context, itemID int64) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return nil, core.ErrEmptyCorpus
	}
	it, ok := c.items[itemID]
	if !ok {
		return nil, core.ErrItemNotFound
	}
	out := make([]int64, len(it.raters))
	copy(out, it.raters)
	return out, nil
}

func (c *Corpus) RatingsOf(ctx context.Context, itemID int64) ([]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return nil, core.ErrEmptyCorpus
	}
	it, ok := c.items[itemID]
	if !ok {
		return nil, core.ErrItemNotFound
	}
	out := make([]int, len(it.scores))
	copy(out, it.scores)
	return out, nil
}

func (c *Corpus) AllUserIDs(ctx context.Context) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return nil, core.ErrEmptyCorpus
	}
	out := make([]int64, 0, len(c.users))
	for id := range c.users {
		out = append(out, id)
	}
	return out, nil
}

func (c *Corpus) AllItemIDs(ctx context.Context) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.total == 0 {
		return nil, core.ErrEmptyCorpus
	}
	out := make([]int64, 0, len(c.items))
	for id := range c.items {
		out = append(out, id)
	}
	return out, nil
}

// 确保 Corpus 实现了 core.RatingStore 接口
var _ core.RatingStore = (*Corpus)(nil)
