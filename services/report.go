package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"flyer-deals/models"
)

// Report summarizes the deals of one sync run.
type Report struct {
	TotalDeals    int
	PricedDeals   int
	DealsByStore  map[string]int
	ByCategory    map[string]int
	MinPrice      float64
	AveragePrice  float64
	MaxPrice      float64
	Cheapest      []*models.Deal
	ExpiredPurged int64
}

// ReportService builds and prints run summaries. storeNames maps store ids
// back to something readable; unknown ids are printed as-is.
type ReportService struct {
	storeNames map[string]string
}

func NewReportService(stores []models.Store) *ReportService {
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		name := s.Name
		if name == "" {
			name = s.Slug
		}
		names[s.ID] = name
	}
	return &ReportService{storeNames: names}
}

func (s *ReportService) storeName(id string) string {
	if name, ok := s.storeNames[id]; ok {
		return name
	}
	return id
}

// Generate computes the report for a run result.
func (s *ReportService) Generate(res *SyncResult) *Report {
	report := &Report{
		DealsByStore: make(map[string]int),
		ByCategory:   make(map[string]int),
	}
	if res == nil {
		return report
	}
	report.ExpiredPurged = res.Expired
	if len(res.Deals) == 0 {
		return report
	}

	report.TotalDeals = len(res.Deals)

	var priced []*models.Deal
	for _, d := range res.Deals {
		report.DealsByStore[s.storeName(d.StoreID)]++
		report.ByCategory[d.Category]++
		if d.PriceNumeric != nil && *d.PriceNumeric > 0 {
			priced = append(priced, d)
		}
	}
	report.PricedDeals = len(priced)

	if len(priced) > 0 {
		report.MinPrice = *priced[0].PriceNumeric
		report.MaxPrice = *priced[0].PriceNumeric
		var total float64
		for _, d := range priced {
			p := *d.PriceNumeric
			total += p
			report.MinPrice = min(report.MinPrice, p)
			report.MaxPrice = max(report.MaxPrice, p)
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	// Five cheapest, ties by name for stable output
	sort.SliceStable(priced, func(i, j int) bool {
		pi, pj := *priced[i].PriceNumeric, *priced[j].PriceNumeric
		if pi != pj {
			return pi < pj
		}
		return priced[i].ItemName < priced[j].ItemName
	})
	if len(priced) > 5 {
		priced = priced[:5]
	}
	report.Cheapest = priced

	return report
}

// Print writes the report to w.
func (s *ReportService) Print(w io.Writer, r *Report) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  GROCERY DEALS SYNC REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Deals synced          : \033[1m%d\033[0m\n", r.TotalDeals)
	fmt.Fprintf(w, "  Deals with a price    : \033[1m%d\033[0m\n", r.PricedDeals)
	fmt.Fprintf(w, "  Expired deals removed : \033[1m%d\033[0m\n", r.ExpiredPurged)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedDeals > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Cheapest Deals\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Cheapest) == 0 {
		fmt.Fprintf(w, "  No priced deals found\n")
	} else {
		for i, d := range r.Cheapest {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m$%.2f\033[0m\n",
				i+1, truncate(d.ItemName, 38), *d.PriceNumeric)
		}
	}
	fmt.Fprintln(w)

	printCounts(w, "Deals by Store", r.DealsByStore, thin)
	printCounts(w, "Deals by Category", r.ByCategory, thin)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, title string, counts map[string]int, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  No data\n")
		return
	}

	type labelCount struct {
		label string
		count int
	}
	var rows []labelCount
	for label, cnt := range counts {
		rows = append(rows, labelCount{label, cnt})
	}
	// Sort by count descending
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].label < rows[j].label
	})
	for _, lc := range rows {
		bar := strings.Repeat("█", min(lc.count, 40))
		fmt.Fprintf(w, "  %-20s %s (%d)\n", truncate(lc.label, 18), bar, lc.count)
	}
	fmt.Fprintln(w)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
