// Package geo maps GPS coordinates to place names for geo-grouped
// destination directories. Lookups hit a persistent sqlite cache first;
// only unknown coordinates go out to the reverse geocoding service.
package geo

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NearbyDegrees is the half-width of the box (in degrees, roughly 5 km)
// within which a cached place is reused instead of issuing a new lookup.
const NearbyDegrees = 0.05

// Place is one resolved location: the directory-safe name and the
// coordinate it was first resolved for.
type Place struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"type:string;size:128;uniqueIndex"`
	Latitude  float64
	Longitude float64
}

func (Place) TableName() string {
	return "places"
}

// Cache is the sqlite-backed place cache. All places are kept in memory
// for the duration of a run; the table is small by nature.
type Cache struct {
	db     *gorm.DB
	places []Place
}

// OpenCache opens (creating if needed) the cache database.
func OpenCache(dbFile string) (*Cache, error) {
	dbLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Minute,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Place{}); err != nil {
		return nil, err
	}

	c := &Cache{db: db}
	if err := db.Find(&c.places).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	db, err := c.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Lookup returns the cached place name nearest to the coordinate, if any
// cached point lies within the NearbyDegrees box.
func (c *Cache) Lookup(lat, lon float64) (string, bool) {
	for _, p := range c.places {
		if near(lat, p.Latitude) && near(lon, p.Longitude) {
			return p.Name, true
		}
	}
	return "", false
}

// Add records a newly resolved place. A name that is already cached is
// left untouched; the first resolved coordinate stays authoritative.
func (c *Cache) Add(name string, lat, lon float64) error {
	for _, p := range c.places {
		if p.Name == name {
			return nil
		}
	}

	p := Place{Name: name, Latitude: lat, Longitude: lon}
	if err := c.db.Create(&p).Error; err != nil {
		return err
	}
	c.places = append(c.places, p)
	return nil
}

func near(a, b float64) bool {
	d := a - b
	return d > -NearbyDegrees && d < NearbyDegrees
}
