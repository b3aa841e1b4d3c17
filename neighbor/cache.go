package neighbor

import "sync"

// Cache 是 (user, item) 维度的邻居缓存，由 Predictor 惰性填充。
//
// 条目是机会性的提示（hint），不保证与重算结果逐项一致：
// Predictor 会把一次查询得到的邻居组播种给组内每个成员（成员位置替换为
// 查询用户），换取同一相似簇内的重复预测命中。冷缓存时上层必须仍能
// 通过 NeighborSelector 重算出正确邻居集。
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]int64
}

type cacheKey struct {
	userID, itemID int64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]int64)}
}

// Get 返回缓存的邻居序列副本。
func (c *Cache) Get(userID, itemID int64) ([]int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	neighbors, ok := c.entries[cacheKey{userID: userID, itemID: itemID}]
	if !ok {
		return nil, false
	}
	out := make([]int64, len(neighbors))
	copy(out, neighbors)
	return out, true
}

// Put 存入邻居序列（内部持有副本，与调用方解耦）。
func (c *Cache) Put(userID, itemID int64, neighbors []int64) {
	stored := make([]int64, len(neighbors))
	copy(stored, neighbors)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{userID: userID, itemID: itemID}] = stored
}

// Len 返回缓存条目数（观测/测试用）。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
