package dataprocessing

import (
	"time"

	"trendpulse/pkg/contracts/domain"
)

func day(year int, month time.Month, d int) domain.NullDate {
	return domain.DateOf(year, month, d)
}

func at(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func trendRow(keyword string, date domain.NullDate, ratio float64) domain.TrendRecord {
	return domain.TrendRecord{Keyword: keyword, Period: date.String(), Ratio: ratio, Date: date}
}

func blogRow(keyword, title string, date domain.NullDate) domain.BlogRecord {
	return domain.BlogRecord{Keyword: keyword, Title: title, PostDate: date.String(), Date: date}
}

func newsRow(keyword, title string, date domain.NullDate) domain.NewsRecord {
	return domain.NewsRecord{Keyword: keyword, Title: title, Date: date}
}
