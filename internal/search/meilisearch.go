package search

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"land-listing-portal/internal/models"
)

// SearchClient keeps the public browse index of approved listings in sync
// with moderation decisions. Only approved listings are ever indexed.
type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "listings",
	}
}

// ListingDoc is the indexed shape of an approved listing
type ListingDoc struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Location  string  `json:"location"`
	County    string  `json:"county"`
	Price     float64 `json:"price"`
	AreaAcres float64 `json:"area_acres"`
	LandType  string  `json:"land_type"`
	Badge     string  `json:"badge"`
}

func docFromListing(l *models.Listing) ListingDoc {
	doc := ListingDoc{
		ID:        l.ID,
		Title:     l.Title,
		Location:  l.Location,
		County:    l.County,
		Price:     l.Price,
		AreaAcres: l.AreaAcres,
		LandType:  l.LandType,
	}
	if l.Badge != nil {
		doc.Badge = string(*l.Badge)
	}
	return doc
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"location",
		"county",
		"land_type",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"county",
		"land_type",
		"price",
		"badge",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"area_acres",
	})
	if err != nil {
		return err
	}

	return nil
}

// IndexListing adds or replaces one approved listing in the index
func (s *SearchClient) IndexListing(l *models.Listing) error {
	_, err := s.client.Index(s.index).AddDocuments([]ListingDoc{docFromListing(l)})
	return err
}

// RemoveListing drops a listing from the index after reject/resubmit
func (s *SearchClient) RemoveListing(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// SearchRequest represents browse search parameters
type SearchRequest struct {
	Query  string
	County string
	Limit  int64
	Offset int64
}

// SearchResult represents browse search results
type SearchResult struct {
	Hits           []ListingDoc
	TotalHits      int64
	ProcessingTime int64
}

// Search queries the approved-listing index
func (s *SearchClient) Search(req SearchRequest) (*SearchResult, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.County != "" {
		searchReq.Filter = fmt.Sprintf("county = %q", req.County)
	}

	searchRes, err := s.client.Index(s.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	hits := make([]ListingDoc, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		hits = append(hits, parseListingFromHit(hit))
	}

	return &SearchResult{
		Hits:           hits,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}

// parseListingFromHit converts a search hit to a ListingDoc
func parseListingFromHit(hit interface{}) ListingDoc {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return ListingDoc{}
	}

	doc := ListingDoc{
		ID:       getString(hitMap, "id"),
		Title:    getString(hitMap, "title"),
		Location: getString(hitMap, "location"),
		County:   getString(hitMap, "county"),
		LandType: getString(hitMap, "land_type"),
		Badge:    getString(hitMap, "badge"),
	}
	if price, ok := hitMap["price"].(float64); ok {
		doc.Price = price
	}
	if area, ok := hitMap["area_acres"].(float64); ok {
		doc.AreaAcres = area
	}
	return doc
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
