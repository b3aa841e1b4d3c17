// Package cfkit 是一个邻域协同过滤工具包（Collaborative Filtering Kit）。
//
// 设计要点：
// - 语料只读：评分语料加载后不可变，相似度/邻居/热度缓存由各组件显式持有
// - 阈值放宽：邻居选择从高阈值起逐步放宽，有界循环，冷启动有固定兜底
// - Pipeline 可组合：召回（流行度/相似用户）→ 过滤 → 预测排序 → 截断
package cfkit

import "github.com/rushteam/cfkit/pipeline"

// 轻量 facade：便于用户直接 import "cfkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
