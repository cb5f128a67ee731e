package prices

import (
	"context"
	"sync"

	"wayfare/models"
)

// MemoryProvider serves prices held in memory. It is used for seeding a
// development server and in tests.
type MemoryProvider struct {
	mu      sync.RWMutex
	hotels  map[int]models.Hotel
	records []models.PriceRecord
	cfg     Config
}

func NewMemoryProvider(cfg Config) *MemoryProvider {
	return &MemoryProvider{hotels: make(map[int]models.Hotel), cfg: cfg.withDefaults()}
}

func (m *MemoryProvider) AddHotel(h models.Hotel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotels[h.HotelID] = h
}

func (m *MemoryProvider) AddPrices(records ...models.PriceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

func (m *MemoryProvider) GetPrices(_ context.Context, destinationID int, areaID *int, dates models.DateRange, _ models.GuestConfig, currency string) ([]models.HotelPriceData, error) {
	if currency == "" {
		currency = m.cfg.DefaultCurrency
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hotels []models.Hotel
	for _, h := range m.hotels {
		if h.DestinationID != destinationID || !h.IsActive {
			continue
		}
		if areaID != nil && h.AreaID != *areaID {
			continue
		}
		if h.Stars < m.cfg.MinStars || h.GuestRating < m.cfg.MinGuestRating {
			continue
		}
		hotels = append(hotels, h)
	}
	sortHotels(hotels)
	if len(hotels) > m.cfg.MaxHotels {
		hotels = hotels[:m.cfg.MaxHotels]
	}

	var records []models.PriceRecord
	for _, r := range m.records {
		if r.Currency != currency || r.PriceDate < dates.Start.String() || r.PriceDate > dates.End.String() {
			continue
		}
		records = append(records, r)
	}
	return BuildTable(hotels, records, currency), nil
}
