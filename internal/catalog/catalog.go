package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"
)

// MatchThreshold is the minimum fuzzy score a lookup must exceed before the
// match is trusted.
const MatchThreshold = 70

// Entry is one material from the price list. Price is kept as the raw spec
// string ("30" or "12 - 18"); LowerBound parses it when a quote is computed.
type Entry struct {
	Name     string `json:"Name"`
	Price    string `json:"Price"`
	Unit     string `json:"Unit"`
	ImageURL string `json:"Image URL"`
}

// Catalog is an immutable material price list keyed by lower-cased name.
type Catalog struct {
	keys    []string // lower-cased names in file order, used for tie-breaks
	entries map[string]Entry
	logger  *zap.Logger
}

func New(entries []Entry, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]Entry, len(entries)),
		logger:  logger,
	}

	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if key == "" {
			continue
		}
		if _, exists := c.entries[key]; exists {
			logger.Warn("Duplicate material in price list, keeping first",
				zap.String("name", e.Name))
			continue
		}
		c.keys = append(c.keys, key)
		c.entries[key] = e
	}

	if len(c.keys) == 0 {
		return nil, fmt.Errorf("price list contains no usable entries")
	}
	return c, nil
}

// Load reads the static price list once at startup.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price list: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse price list: %w", err)
	}

	c, err := New(entries, logger)
	if err != nil {
		return nil, fmt.Errorf("load price list %s: %w", path, err)
	}

	logger.Info("Price list loaded",
		zap.String("path", path),
		zap.Int("materials", len(c.keys)))
	return c, nil
}

// Lookup finds the material closest to the user's text and a similarity score
// in [0,100]. An exact key match always scores 100. Keys are scanned in file
// order and only a strictly greater score displaces the current best, so
// results are deterministic for identical input.
func (c *Catalog) Lookup(rawText string) (Entry, int) {
	query := strings.ToLower(strings.TrimSpace(rawText))
	if query == "" {
		return Entry{}, 0
	}

	var bestKey string
	bestScore := -1
	for _, key := range c.keys {
		score := fuzzy.WRatio(query, key)
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}
	return c.entries[bestKey], bestScore
}

// LowerBound parses a price spec and returns the per-unit price used for
// quotes. Range specs like "12 - 18" quote the lower bound.
func LowerBound(spec string) (float64, error) {
	part := spec
	if i := strings.IndexByte(spec, '-'); i >= 0 {
		part = spec[:i]
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed price spec %q: %w", spec, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price in spec %q", spec)
	}
	return price, nil
}
