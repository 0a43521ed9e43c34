// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SampleSeed makes SampleSales reproducible across runs.
const SampleSeed = 42

var (
	sampleCategories = []string{"Electronics", "Clothing", "Books", "Home"}
	sampleRegions    = []string{"North", "South", "East", "West"}
	sampleColumns    = []string{"date", "sales_amount", "units_sold", "customer_count", "product_category", "region"}
)

// Row is one day of sales.
type Row struct {
	Date            time.Time
	SalesAmount     float64
	UnitsSold       int
	CustomerCount   int
	ProductCategory string
	Region          string
}

// Dataset is a small in-memory table the analysis roles reason about.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// SampleSales builds daily sales rows for Q1 2024 from seed. Sales follow a
// normal distribution around 10,000 with an upward trend of 1,000 over the
// quarter, and electronics sell at a 20% premium.
func SampleSales(seed int64) Dataset {
	rng := rand.New(rand.NewSource(seed))

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1

	rows := make([]Row, days)
	for i := range rows {
		rows[i] = Row{
			Date:            start.AddDate(0, 0, i),
			SalesAmount:     rng.NormFloat64()*2000 + 10000,
			UnitsSold:       poisson(rng, 50),
			CustomerCount:   poisson(rng, 25),
			ProductCategory: sampleCategories[rng.Intn(len(sampleCategories))],
			Region:          sampleRegions[rng.Intn(len(sampleRegions))],
		}
	}
	for i := range rows {
		if days > 1 {
			rows[i].SalesAmount += 1000 * float64(i) / float64(days-1)
		}
		if rows[i].ProductCategory == "Electronics" {
			rows[i].SalesAmount *= 1.2
		}
	}

	return Dataset{
		Name:    "Sales Data (Q1 2024)",
		Columns: append([]string(nil), sampleColumns...),
		Rows:    rows,
	}
}

// poisson draws from a Poisson distribution using Knuth's method, which is
// adequate for the small means used here.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// Info is the dataset description included in analysis reports.
type Info struct {
	TotalRecords  int      `json:"total_records" yaml:"total_records"`
	Columns       []string `json:"columns" yaml:"columns"`
	DateRange     string   `json:"date_range" yaml:"date_range"`
	TotalSales    string   `json:"total_sales" yaml:"total_sales"`
	AvgDailySales string   `json:"avg_daily_sales" yaml:"avg_daily_sales"`
}

var money = message.NewPrinter(language.English)

func formatMoney(v float64) string {
	return money.Sprintf("$%.2f", v)
}

// TotalSales sums SalesAmount over all rows.
func (d Dataset) TotalSales() float64 {
	var total float64
	for _, r := range d.Rows {
		total += r.SalesAmount
	}
	return total
}

// AverageSales is the mean SalesAmount, or 0 for an empty dataset.
func (d Dataset) AverageSales() float64 {
	if len(d.Rows) == 0 {
		return 0
	}
	return d.TotalSales() / float64(len(d.Rows))
}

// DateRange formats the first and last row dates.
func (d Dataset) DateRange() string {
	if len(d.Rows) == 0 {
		return ""
	}
	first, last := d.Rows[0].Date, d.Rows[0].Date
	for _, r := range d.Rows[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first.Format(time.DateOnly) + " to " + last.Format(time.DateOnly)
}

// Info describes d for reports.
func (d Dataset) Info() Info {
	return Info{
		TotalRecords:  len(d.Rows),
		Columns:       append([]string(nil), d.Columns...),
		DateRange:     d.DateRange(),
		TotalSales:    formatMoney(d.TotalSales()),
		AvgDailySales: formatMoney(d.AverageSales()),
	}
}

// Summary renders the dataset overview given to the first analysis role.
func (d Dataset) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", d.Name)
	fmt.Fprintf(&b, "- Rows: %d\n", len(d.Rows))
	fmt.Fprintf(&b, "- Columns: %s\n", strings.Join(d.Columns, ", "))
	fmt.Fprintf(&b, "- Date Range: %s\n", d.DateRange())
	fmt.Fprintf(&b, "- Total Sales: %s\n", formatMoney(d.TotalSales()))
	fmt.Fprintf(&b, "- Average Daily Sales: %s\n", formatMoney(d.AverageSales()))
	fmt.Fprintf(&b, "- Product Categories: %s\n", strings.Join(d.distinct(func(r Row) string { return r.ProductCategory }), ", "))
	fmt.Fprintf(&b, "- Regions: %s\n", strings.Join(d.distinct(func(r Row) string { return r.Region }), ", "))
	return b.String()
}

// distinct returns the values of field in first-seen order.
func (d Dataset) distinct(field func(Row) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Rows {
		v := field(r)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
