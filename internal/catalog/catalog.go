package catalog

import (
	"encoding/json"

	"github.com/elevate-events/lounge/internal/domain"
)

// Catalog is the fixed lounge list shipped with the build.
type Catalog struct {
	venues []domain.Venue
	byID   map[string]int
}

func New(venues []domain.Venue) *Catalog {
	c := &Catalog{
		venues: make([]domain.Venue, len(venues)),
		byID:   make(map[string]int, len(venues)),
	}
	copy(c.venues, venues)
	for i, v := range c.venues {
		c.byID[v.ID] = i
	}
	return c
}

// Default returns the catalog of the three lounges.
func Default() *Catalog {
	return New([]domain.Venue{
		{
			ID:          "platinum",
			Name:        "Platinum Lounge",
			Description: "Our flagship lounge featuring the finest amenities and personalized service.",
			HourlyPrice: 150,
			Capacity:    8,
			Features:    []string{"Private Bar", "Dedicated Service", "Premium Sound System", "Climate Control"},
			Image:       "/assets/images/luxury_lounge_1.jpg",
		},
		{
			ID:          "gold",
			Name:        "Gold Lounge",
			Description: "Elegant and sophisticated, perfect for intimate gatherings.",
			HourlyPrice: 120,
			Capacity:    6,
			Features:    []string{"Premium Bar", "Personal Service", "Sound System", "Ambient Lighting"},
			Image:       "/assets/images/luxury_lounge_2.jpg",
		},
		{
			ID:          "vip",
			Name:        "VIP Suite",
			Description: "The ultimate luxury experience with exclusive amenities.",
			HourlyPrice: 200,
			Capacity:    12,
			Features:    []string{"Full Bar", "Concierge Service", "Entertainment System", "Private Entrance"},
			Image:       "/assets/images/vip_club_1.jpg",
		},
	})
}

func (c *Catalog) Get(id string) (domain.Venue, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Venue{}, false
	}
	return c.venues[i], true
}

func (c *Catalog) List() []domain.Venue {
	out := make([]domain.Venue, len(c.venues))
	copy(out, c.venues)
	return out
}

// ParseFeatures decodes a JSON array of feature labels. Anything that is not a
// JSON string array yields an empty list.
func ParseFeatures(raw string) []string {
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil || features == nil {
		return []string{}
	}
	return features
}
