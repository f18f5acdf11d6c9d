package services

import (
	"time"

	"restaurant-demand-api/pkg/models"
)

var fixtureWeathers = []string{"Rain", "Sunny", "Cloud", "Wind"}

// sampleRecords 2週間分・2セッション・3人の担当者の売上明細を生成する。
// 数量はセッションと天気だけで決まる（担当者・曜日の影響なし）。
func sampleRecords() []models.SaleRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // 月曜日
	var records []models.SaleRecord
	for d := 0; d < 14; d++ {
		date := start.AddDate(0, 0, d)
		weather := fixtureWeathers[d%len(fixtureWeathers)]
		for _, session := range []string{"Lunch", "Dinner"} {
			for _, waiter := range []string{"Jim", "Dwight", "Toby"} {
				for cat, qty := range fixtureQuantities(session, weather) {
					// 1カテゴリを2明細に分けて記録する
					half := qty / 2
					for _, q := range []float64{half, qty - half} {
						records = append(records, models.SaleRecord{
							Date:     date.Format("2006-01-02"),
							Day:      date.Format("Mon"),
							Session:  session,
							Waiter:   waiter,
							Weather:  weather,
							Category: cat,
							Quantity: q,
						})
					}
				}
			}
		}
	}
	return records
}

func fixtureQuantities(session, weather string) map[string]float64 {
	q := map[string]float64{
		"Mains":    7,
		"Drinks":   8,
		"Desserts": 3,
		"Starters": 2,
	}
	if session == "Dinner" {
		q["Mains"] = 15
		q["Desserts"] = 5
	}
	if weather == "Sunny" {
		q["Drinks"] = 12
	}
	if weather == "Rain" {
		q["Starters"] = 1
	}
	return q
}
