package services

import (
	"fmt"
	"sort"

	"restaurant-demand-api/pkg/models"
)

// TrainingSet 集約済みの学習テーブル
type TrainingSet struct {
	Categories []string             // ソート済みカテゴリ一覧（ラベル列の順序）
	Rows       []models.TrainingRow // (Date, Session, Waiter) ごとに1行
}

// Contexts 各行の特徴量コンテキストを返す
func (ts *TrainingSet) Contexts() []models.FeatureContext {
	out := make([]models.FeatureContext, len(ts.Rows))
	for i, row := range ts.Rows {
		out[i] = row.Context()
	}
	return out
}

// Labels 各行の数量をカテゴリ順に並べた行列（行優先）を返す
func (ts *TrainingSet) Labels() [][]float64 {
	out := make([][]float64, len(ts.Rows))
	for i, row := range ts.Rows {
		vals := make([]float64, len(ts.Categories))
		for j, cat := range ts.Categories {
			vals[j] = row.Quantities[cat]
		}
		out[i] = vals
	}
	return out
}

type groupKey struct {
	Date    string
	Session string
	Waiter  string
}

// groupState グループごとの集計途中の状態
type groupState struct {
	weatherOrder  []string // 初出順
	weatherCounts map[string]int
	quantities    map[string]float64
}

// Aggregate 売上明細を (Date, Session, Waiter) 単位の学習行に集約する
func Aggregate(records []models.SaleRecord) (*TrainingSet, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no sales records to aggregate", ErrInsufficientData)
	}

	groups := make(map[groupKey]*groupState)
	dayByDate := make(map[string]string)
	categorySet := make(map[string]struct{})

	for _, rec := range records {
		key := groupKey{Date: rec.Date, Session: rec.Session, Waiter: rec.Waiter}
		g, ok := groups[key]
		if !ok {
			g = &groupState{
				weatherCounts: make(map[string]int),
				quantities:    make(map[string]float64),
			}
			groups[key] = g
		}

		if _, seen := g.weatherCounts[rec.Weather]; !seen {
			g.weatherOrder = append(g.weatherOrder, rec.Weather)
		}
		g.weatherCounts[rec.Weather]++
		g.quantities[rec.Category] += rec.Quantity

		// 同じ日付に複数の曜日がある場合は最初のものを採用
		if _, ok := dayByDate[rec.Date]; !ok {
			dayByDate[rec.Date] = rec.Day
		}
		categorySet[rec.Category] = struct{}{}
	}

	categories := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		if keys[i].Session != keys[j].Session {
			return keys[i].Session < keys[j].Session
		}
		return keys[i].Waiter < keys[j].Waiter
	})

	rows := make([]models.TrainingRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		quantities := make(map[string]float64, len(categories))
		for _, cat := range categories {
			quantities[cat] = g.quantities[cat]
		}
		rows = append(rows, models.TrainingRow{
			Date:       k.Date,
			Session:    k.Session,
			Waiter:     k.Waiter,
			Day:        dayByDate[k.Date],
			Weather:    g.weatherMode(),
			Quantities: quantities,
		})
	}

	return &TrainingSet{Categories: categories, Rows: rows}, nil
}

// weatherMode 最頻の天気を返す（同数の場合は先に出現した値）
func (g *groupState) weatherMode() string {
	var mode string
	best := -1
	for _, w := range g.weatherOrder {
		if c := g.weatherCounts[w]; c > best {
			best = c
			mode = w
		}
	}
	return mode
}
