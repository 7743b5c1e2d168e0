package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/abhik-roy/mtg-card-collection-app/internal/metrics"
	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

const (
	scryfallBaseURL = "https://api.scryfall.com"

	// Scryfall asks clients to stay at or below 10 requests per second
	scryfallDefaultRate = 10

	// maxCollectionIdentifiers is the /cards/collection request limit
	maxCollectionIdentifiers = 75

	cardCacheTTL = 10 * time.Minute
)

// ErrCardNotFound is returned when neither the local store nor Scryfall
// knows the requested card.
var ErrCardNotFound = errors.New("card not found")

type cachedCard struct {
	card     models.Card
	cachedAt time.Time
}

type ScryfallService struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, cachedCard]
}

type ScryfallOption func(*ScryfallService)

// WithScryfallBaseURL points the client at another host, e.g. a test server
func WithScryfallBaseURL(baseURL string) ScryfallOption {
	return func(s *ScryfallService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithScryfallRateLimit sets the sustained request rate
func WithScryfallRateLimit(requestsPerSecond float64) ScryfallOption {
	return func(s *ScryfallService) {
		if requestsPerSecond > 0 {
			burst := int(requestsPerSecond)
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

func WithScryfallTimeout(timeout time.Duration) ScryfallOption {
	return func(s *ScryfallService) {
		s.client.Timeout = timeout
	}
}

// WithScryfallCacheSize bounds the card lookup cache
func WithScryfallCacheSize(size int) ScryfallOption {
	return func(s *ScryfallService) {
		if size <= 0 {
			return
		}
		if cache, err := lru.New[string, cachedCard](size); err == nil {
			s.cache = cache
		}
	}
}

func NewScryfallService(opts ...ScryfallOption) *ScryfallService {
	cache, _ := lru.New[string, cachedCard](1000)
	s := &ScryfallService{
		baseURL: scryfallBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(scryfallDefaultRate), scryfallDefaultRate),
		cache:   cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scryfallSearchResponse struct {
	Data       []scryfallCard `json:"data"`
	Object     string         `json:"object"`
	TotalCards int            `json:"total_cards"`
	HasMore    bool           `json:"has_more"`
}

type scryfallCollectionResponse struct {
	Data     []scryfallCard    `json:"data"`
	NotFound []json.RawMessage `json:"not_found"`
}

type scryfallCard struct {
	ImageURIs     *scryfallImages   `json:"image_uris"`
	CardFaces     []scryfallFace    `json:"card_faces"`
	Prices        scryfallPrices    `json:"prices"`
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SetName       string            `json:"set_name"`
	Set           string            `json:"set"`
	CollectorNum  string            `json:"collector_number"`
	Rarity        string            `json:"rarity"`
	ColorIdentity []string          `json:"color_identity"`
	Legalities    map[string]string `json:"legalities"`
}

type scryfallImages struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type scryfallFace struct {
	ImageURIs *scryfallImages `json:"image_uris"`
}

// Scryfall sends prices as decimal strings, or null when there is no market
type scryfallPrices struct {
	USD       *string `json:"usd"`
	USDFoil   *string `json:"usd_foil"`
	USDEtched *string `json:"usd_etched"`
}

// do performs a rate-limited request and decodes a 200 response into out.
// It reports found=false for a 404.
func (s *ScryfallService) do(ctx context.Context, endpoint, method, reqURL string, body any, out any) (found bool, err error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	var req *http.Request
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, reqURL, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, reqURL, nil)
	}
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("scryfall %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "not_found").Inc()
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return false, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return true, nil
}

// SearchCards runs a Scryfall full-text query. No matches is an empty
// result, not an error.
func (s *ScryfallService) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	reqURL := fmt.Sprintf("%s/cards/search?q=%s", s.baseURL, url.QueryEscape(query))

	var searchResp scryfallSearchResponse
	found, err := s.do(ctx, "search", http.MethodGet, reqURL, nil, &searchResp)
	if err != nil {
		return nil, err
	}
	if !found {
		return &models.CardSearchResult{Cards: []models.Card{}}, nil
	}

	cards := make([]models.Card, len(searchResp.Data))
	for i, sc := range searchResp.Data {
		cards[i] = convertToCard(sc)
		s.remember(cards[i])
	}

	return &models.CardSearchResult{
		Cards:      cards,
		TotalCount: searchResp.TotalCards,
		HasMore:    searchResp.HasMore,
	}, nil
}

// GetCard fetches one printing by Scryfall id, serving recent lookups from
// the cache. Returns ErrCardNotFound on a 404.
func (s *ScryfallService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	if cached, ok := s.cache.Get(id); ok && time.Since(cached.cachedAt) < cardCacheTTL {
		metrics.ScryfallCacheHits.Inc()
		card := cached.card
		return &card, nil
	}

	reqURL := fmt.Sprintf("%s/cards/%s", s.baseURL, url.PathEscape(id))

	var sc scryfallCard
	found, err := s.do(ctx, "card", http.MethodGet, reqURL, nil, &sc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCardNotFound
	}

	card := convertToCard(sc)
	s.remember(card)
	return &card, nil
}

type collectionIdentifier struct {
	ID string `json:"id"`
}

// GetCards fetches many printings through /cards/collection, chunked to the
// endpoint's 75-identifier limit. Unknown ids are skipped. The cache is
// bypassed: callers use this to refresh prices.
func (s *ScryfallService) GetCards(ctx context.Context, ids []string) ([]models.Card, error) {
	cards := make([]models.Card, 0, len(ids))
	for start := 0; start < len(ids); start += maxCollectionIdentifiers {
		end := start + maxCollectionIdentifiers
		if end > len(ids) {
			end = len(ids)
		}

		identifiers := make([]collectionIdentifier, 0, end-start)
		for _, id := range ids[start:end] {
			identifiers = append(identifiers, collectionIdentifier{ID: id})
		}

		var resp scryfallCollectionResponse
		_, err := s.do(ctx, "collection", http.MethodPost, s.baseURL+"/cards/collection",
			map[string]any{"identifiers": identifiers}, &resp)
		if err != nil {
			return cards, err
		}
		if len(resp.NotFound) > 0 {
			log.Warn().Int("count", len(resp.NotFound)).Msg("scryfall collection lookup skipped unknown cards")
		}

		for _, sc := range resp.Data {
			card := convertToCard(sc)
			s.remember(card)
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (s *ScryfallService) remember(card models.Card) {
	s.cache.Add(card.ID, cachedCard{card: card, cachedAt: time.Now()})
}

func convertToCard(sc scryfallCard) models.Card {
	var images *scryfallImages
	if sc.ImageURIs != nil {
		images = sc.ImageURIs
	} else if len(sc.CardFaces) > 0 && sc.CardFaces[0].ImageURIs != nil {
		images = sc.CardFaces[0].ImageURIs
	}

	// Etched-only printings report their price under usd_etched
	foil := parsePrice(sc.Prices.USDFoil)
	if foil == nil {
		foil = parsePrice(sc.Prices.USDEtched)
	}

	now := time.Now()
	card := models.Card{
		ID:             sc.ID,
		Name:           sc.Name,
		SetName:        sc.SetName,
		SetCode:        sc.Set,
		CardNumber:     sc.CollectorNum,
		Rarity:         sc.Rarity,
		ColorIdentity:  sc.ColorIdentity,
		Legalities:     sc.Legalities,
		PriceUSD:       parsePrice(sc.Prices.USD),
		PriceFoilUSD:   foil,
		PriceUpdatedAt: &now,
	}
	if card.ColorIdentity == nil {
		card.ColorIdentity = []string{}
	}
	if images != nil {
		card.ImageURLSmall = images.Small
		card.ImageURL = images.Normal
		card.ImageURLLarge = images.Large
	}
	return card
}

func parsePrice(s *string) *float64 {
	if s == nil || *s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}
