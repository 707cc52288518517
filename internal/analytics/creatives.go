package analytics

import (
	"sort"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

type creativeAcc struct {
	c     models.AggregatedCreative
	spend money

	// date of the row name and campaign were taken from
	nameDate string
	// date of the row the permalink was taken from
	linkDate string
}

func (a *creativeAcc) add(r models.AdCreative) {
	a.spend.add(r.Spend)
	a.c.Impressions += r.Impressions
	a.c.LinkClicks += r.LinkClicks
	a.c.Leads += r.Leads
	a.c.Purchases += r.Purchases
	a.c.SheetPurchases += r.SheetPurchases
	a.c.SheetLeadsUTM += r.SheetLeadsUTM
	a.c.SheetMqls += r.SheetMqls

	if r.AdID > a.c.AdID {
		a.c.AdID = r.AdID
	}

	day := models.DayOf(r.Date)
	if earlierLabel(day, r.AdName, r.CampaignName, a.nameDate, a.c.AdName, a.c.CampaignName) {
		a.nameDate = day
		a.c.AdName = r.AdName
		a.c.CampaignName = r.CampaignName
	}

	if r.InstagramPermalink != "" {
		if a.c.InstagramPermalink == "" ||
			day > a.linkDate ||
			(day == a.linkDate && r.InstagramPermalink > a.c.InstagramPermalink) {
			a.linkDate = day
			a.c.InstagramPermalink = r.InstagramPermalink
		}
	}
}

// earlierLabel orders candidate (date, name, campaign) triples so the label
// of a creative does not depend on row order.
func earlierLabel(day, name, campaign, curDay, curName, curCampaign string) bool {
	if day != curDay {
		return day < curDay
	}
	if name != curName {
		return name < curName
	}
	return campaign < curCampaign
}

func (a *creativeAcc) finish() models.AggregatedCreative {
	c := a.c
	c.Spend = a.spend.float()
	c.CPL = ratio(c.Spend, float64(c.RealLeads()))
	c.CPA = ratio(c.Spend, float64(c.RealPurchases()))
	c.CTR = ratio(float64(c.LinkClicks), float64(c.Impressions)) * 100
	return c
}

// AggregateCreatives groups per-day creative rows by ad (ad_id, or ad_name
// when the id is missing) and recomputes CPL, CPA and CTR from the sums.
// The result is ordered by spend, highest first, then by key.
func AggregateCreatives(rows []models.AdCreative) []models.AggregatedCreative {
	if len(rows) == 0 {
		return []models.AggregatedCreative{}
	}

	byKey := make(map[string]*creativeAcc)
	for _, r := range rows {
		key := r.Key()
		acc, ok := byKey[key]
		if !ok {
			day := models.DayOf(r.Date)
			acc = &creativeAcc{
				c: models.AggregatedCreative{
					Key:          key,
					AdID:         r.AdID,
					AdName:       r.AdName,
					CampaignName: r.CampaignName,
				},
				nameDate: day,
			}
			byKey[key] = acc
		}
		acc.add(r)
	}

	out := make([]models.AggregatedCreative, 0, len(byKey))
	for _, acc := range byKey {
		out = append(out, acc.finish())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Key < out[j].Key
	})
	return out
}
