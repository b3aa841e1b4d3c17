package core

import "context"

// Rating 是一条评分观测：用户 UserID 给物品 ItemID 打了 Score 分（1–5 的整数）。
// 语料加载后不可变；(UserID, ItemID) 在源数据中保证唯一。
type Rating struct {
	UserID int64 `json:"user_id" bson:"user_id"`
	ItemID int64 `json:"item_id" bson:"item_id"`
	Score  int   `json:"rating" bson:"rating"`
}

// RatingStore 是评分语料的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（corpus）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 避免循环依赖：领域层不依赖基础设施层
//
// 数据视角：
//   - 按用户索引：用户的完整评分历史（map + 插入序物品列表）
//   - 按物品索引：物品的评分者列表与评分列表（两者平行同序）
//
// 生命周期：加载期一次性写入（AddRating），之后只读。
// 上层的相似度/邻居/热度缓存不属于语料本身，由各自组件显式持有。
type RatingStore interface {
	// AddRating 写入一条评分观测。仅在唯一 (user, item) 输入假设下幂等，无去重逻辑。
	AddRating(ctx context.Context, userID, itemID int64, score int) error

	// UserExists / ItemExists 判断用户/物品是否出现在语料中
	UserExists(ctx context.Context, userID int64) bool
	ItemExists(ctx context.Context, itemID int64) bool

	// RatingOf 返回用户对物品的评分；用户从未评过该物品时返回 NOT_FOUND
	RatingOf(ctx context.Context, userID, itemID int64) (int, error)

	// UserRatings 返回用户的完整评分历史（itemID -> score）。
	// 返回的 map 为内部只读视图，调用方不得修改。
	UserRatings(ctx context.Context, userID int64) (map[int64]int, error)

	// ItemsOf 返回用户评过的物品 ID 序列（插入序）
	ItemsOf(ctx context.Context, userID int64) ([]int64, error)

	// RatersOf / RatingsOf 返回物品的评分者序列与评分序列（平行同序）
	RatersOf(ctx context.Context, itemID int64) ([]int64, error)
	RatingsOf(ctx context.Context, itemID int64) ([]int, error)

	// AllUserIDs / AllItemIDs 返回全部用户/物品 ID（无序、唯一）
	AllUserIDs(ctx context.Context) ([]int64, error)
	AllItemIDs(ctx context.Context) ([]int64, error)
}

// Corpus 错误定义（使用统一的 DomainError）
var (
	// ErrUserNotFound 表示用户不在语料中
	ErrUserNotFound = NewDomainError(ModuleCorpus, ErrorCodeNotFound, "corpus: user not found")

	// ErrItemNotFound 表示物品不在语料中
	ErrItemNotFound = NewDomainError(ModuleCorpus, ErrorCodeNotFound, "corpus: item not found")

	// ErrRatingNotFound 表示该用户从未评分该物品
	ErrRatingNotFound = NewDomainError(ModuleCorpus, ErrorCodeNotFound, "corpus: rating not found")

	// ErrEmptyCorpus 表示语料尚未加载任何评分
	ErrEmptyCorpus = NewDomainError(ModuleCorpus, ErrorCodeEmptyCorpus, "corpus: no ratings loaded")
)
