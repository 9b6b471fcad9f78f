package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"airbnb-harvester/models"
	"airbnb-harvester/utils"
)

// RunReport summarizes one harvest over the committed store entries:
// schema coverage, price statistics and amenity prevalence.
type RunReport struct {
	TotalEntries   int
	FavoriteCount  int
	AveragePrice   float64
	MinPrice       int64
	MaxPrice       int64
	PricedEntries  int
	TopRated       []*models.StoreEntry
	AmenityCounts  map[models.Amenity]int
	FilledByColumn map[string]int
}

// InsightService computes post-run analytics over the persisted entries.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds a RunReport from the final store contents. Empty cells
// are skipped everywhere: a blank price is "never determined", not zero.
func (s *InsightService) Generate(entries []*models.StoreEntry) *RunReport {
	report := &RunReport{
		AmenityCounts:  make(map[models.Amenity]int),
		FilledByColumn: make(map[string]int),
	}
	if len(entries) == 0 {
		return report
	}
	report.TotalEntries = len(entries)

	type rated struct {
		entry *models.StoreEntry
		stars float64
	}
	var ratedEntries []rated
	var priceTotal int64

	for _, e := range entries {
		for i, cell := range e.Row() {
			if cell != "" {
				report.FilledByColumn[models.StoreColumns[i]]++
			}
		}

		if e.GuestFavorite == models.TriTrue {
			report.FavoriteCount++
		}

		if p, err := strconv.ParseInt(e.PricePerNight, 10, 64); err == nil && p > 0 {
			if report.PricedEntries == 0 || p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
			}
			priceTotal += p
			report.PricedEntries++
		}

		if stars, err := strconv.ParseFloat(e.Stars, 64); err == nil && stars > 0 {
			ratedEntries = append(ratedEntries, rated{entry: e, stars: stars})
		}

		countAmenity := func(am models.Amenity, t models.TriState) {
			if t == models.TriTrue {
				report.AmenityCounts[am]++
			}
		}
		countAmenity(models.AmenityTV, e.TV)
		countAmenity(models.AmenityPool, e.Pool)
		countAmenity(models.AmenityJacuzzi, e.Jacuzzi)
		countAmenity(models.AmenityBilliards, e.Billiards)
		countAmenity(models.AmenityLargeYard, e.LargeYard)
		countAmenity(models.AmenityBalcony, e.Balcony)
		countAmenity(models.AmenityLaundry, e.Laundry)
		countAmenity(models.AmenityHomeGym, e.HomeGym)
	}

	if report.PricedEntries > 0 {
		report.AveragePrice = round2(float64(priceTotal) / float64(report.PricedEntries))
	}

	sort.Slice(ratedEntries, func(i, j int) bool {
		return ratedEntries[i].stars > ratedEntries[j].stars
	})
	for i := 0; i < len(ratedEntries) && i < 5; i++ {
		report.TopRated = append(report.TopRated, ratedEntries[i].entry)
	}

	return report
}

// Print renders the report to stdout.
func (s *InsightService) Print(r *RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n%s\n  HARVEST SUMMARY\n%s\n\n", sep, sep)

	fmt.Printf("  Overview\n  %s\n", thin)
	fmt.Printf("  Listings committed : %d\n", r.TotalEntries)
	fmt.Printf("  Guest favorites    : %d\n\n", r.FavoriteCount)

	fmt.Printf("  Price (per night, source currency units)\n  %s\n", thin)
	if r.PricedEntries > 0 {
		fmt.Printf("  Average : %.2f\n", r.AveragePrice)
		fmt.Printf("  Minimum : %d\n", r.MinPrice)
		fmt.Printf("  Maximum : %d\n\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data determined\n\n")
	}

	fmt.Printf("  Top Rated\n  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Printf("  No rated listings found\n")
	} else {
		for i, e := range r.TopRated {
			fmt.Printf("  %d. %-40s %s\n", i+1, truncate(e.Name, 38), e.Stars)
		}
	}
	fmt.Println()

	fmt.Printf("  Amenity Prevalence\n  %s\n", thin)
	if len(r.AmenityCounts) == 0 {
		fmt.Printf("  No amenities classified\n")
	} else {
		for _, am := range models.AmenityVocabulary {
			if cnt := r.AmenityCounts[am]; cnt > 0 {
				fmt.Printf("  %-16s %s (%d)\n", am, strings.Repeat("█", cnt), cnt)
			}
		}
	}

	fmt.Printf("\n%s\n\n", sep)
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
