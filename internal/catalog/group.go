package catalog

import (
	"sort"
	"time"

	"github.com/pauljones0/deal-finder/internal/models"
)

// DateKeyLayout is the bucket key format of GroupByDate.
const DateKeyLayout = "2006-01-02"

// GroupByDate buckets deals by the local calendar date of CreatedAt. Buckets
// keep the input order and are returned most recent date first.
func GroupByDate(deals []models.Deal, loc *time.Location) []models.DateGroup {
	if loc == nil {
		loc = time.Local
	}
	index := make(map[string]int)
	var groups []models.DateGroup
	for _, d := range deals {
		key := d.CreatedAt.In(loc).Format(DateKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.DateGroup{Date: key})
		}
		groups[i].Deals = append(groups[i].Deals, d)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date > groups[b].Date
	})
	return groups
}

// TopDeal picks the banner deal: the first hot deal, else the first deal.
func TopDeal(deals []models.Deal) (models.Deal, bool) {
	for _, d := range deals {
		if d.IsHotDeal {
			return d, true
		}
	}
	if len(deals) == 0 {
		return models.Deal{}, false
	}
	return deals[0], true
}
