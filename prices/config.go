// Package prices provides hotel price tables to the itinerary optimizer.
package prices

// Config controls which hotels a provider considers. It is built once at
// startup and never mutated.
type Config struct {
	MinStars        float64
	MinGuestRating  float64
	MaxHotels       int
	PageSize        int
	MaxPages        int
	DefaultAdults   int
	DefaultChildren int
	DefaultCurrency string
}

func DefaultConfig() Config {
	return Config{
		MaxHotels:       100,
		PageSize:        25,
		MaxPages:        4,
		DefaultAdults:   2,
		DefaultCurrency: "USD",
	}
}

// withDefaults fills zero limits so a partially built Config stays bounded.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxHotels <= 0 {
		c.MaxHotels = d.MaxHotels
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.DefaultAdults <= 0 {
		c.DefaultAdults = d.DefaultAdults
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = d.DefaultCurrency
	}
	return c
}
