package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"grabyourtickets/internal/config"
	"grabyourtickets/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// BookingDocument is the denormalised booking stored in the search index.
type BookingDocument struct {
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	UserEmail      string    `json:"user_email,omitempty"`
	ShowID         string    `json:"show_id"`
	MovieTitle     string    `json:"movie_title,omitempty"`
	CinemaName     string    `json:"cinema_name,omitempty"`
	CinemaLocation string    `json:"cinema_location,omitempty"`
	HallName       string    `json:"hall_name,omitempty"`
	ShowDate       string    `json:"show_date,omitempty"`
	ShowTime       string    `json:"show_time,omitempty"`
	SeatIDs        []string  `json:"seat_ids,omitempty"`
	SeatLabels     []string  `json:"seat_labels,omitempty"`
	TotalAmount    int64     `json:"total_amount,omitempty"`
	Status         string    `json:"status"`
	BookingDate    time.Time `json:"booking_date,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (d BookingDocument) Booking() models.Booking {
	return models.Booking{
		ID:          d.BookingID,
		UserID:      d.UserID,
		ShowID:      d.ShowID,
		SeatIDs:     d.SeatIDs,
		TotalAmount: d.TotalAmount,
		Status:      d.Status,
		BookingDate: d.BookingDate,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ConfirmedDocument builds the index document for a new booking.
func ConfirmedDocument(event models.BookingConfirmedEvent) BookingDocument {
	return BookingDocument{
		BookingID:      event.BookingID,
		UserID:         event.UserID,
		UserName:       event.UserName,
		UserEmail:      event.UserEmail,
		ShowID:         event.ShowID,
		MovieTitle:     event.MovieTitle,
		CinemaName:     event.CinemaName,
		CinemaLocation: event.CinemaLocation,
		HallName:       event.HallName,
		ShowDate:       event.ShowDate,
		ShowTime:       event.ShowTime,
		SeatLabels:     event.SeatLabels,
		TotalAmount:    event.TotalAmount,
		Status:         models.BookingConfirmed,
		BookingDate:    event.BookingDate,
		UpdatedAt:      event.Timestamp,
	}
}

// BookingIndex keeps the booking search index in Elasticsearch.
type BookingIndex struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

func NewBookingIndex(cfg config.ElasticsearchConfig) (*BookingIndex, error) {
	esCfg := elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	}
	if cfg.Timeout > 0 {
		esCfg.Transport = &http.Transport{ResponseHeaderTimeout: cfg.Timeout}
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	index := &BookingIndex{
		client: es,
		config: cfg,
	}

	if err := index.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return index, nil
}

func indexMapping() map[string]interface{} {
	keyword := map[string]interface{}{"type": "keyword"}
	text := map[string]interface{}{
		"type": "text",
		"fields": map[string]interface{}{
			"keyword": map[string]interface{}{
				"type":         "keyword",
				"ignore_above": 256,
			},
		},
	}
	date := map[string]interface{}{"type": "date"}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"booking_id":      keyword,
				"user_id":         keyword,
				"user_name":       text,
				"user_email":      keyword,
				"show_id":         keyword,
				"movie_title":     text,
				"cinema_name":     text,
				"cinema_location": text,
				"hall_name":       keyword,
				"show_date":       keyword,
				"show_time":       keyword,
				"seat_ids":        keyword,
				"seat_labels":     keyword,
				"total_amount":    map[string]interface{}{"type": "long"},
				"status":          keyword,
				"booking_date":    date,
				"updated_at":      date,
			},
		},
	}
}

func (c *BookingIndex) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexBooking writes the full document of a booking.
func (c *BookingIndex) IndexBooking(ctx context.Context, doc BookingDocument) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: doc.BookingID,
		Body:       bytes.NewReader(docJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index booking: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// MarkCancelled upserts the cancelled status of a booking. The document may
// not exist yet if the confirmation event is still queued.
func (c *BookingIndex) MarkCancelled(ctx context.Context, event models.BookingCancelledEvent) error {
	partial := map[string]interface{}{
		"booking_id": event.BookingID,
		"user_id":    event.UserID,
		"show_id":    event.ShowID,
		"seat_ids":   event.SeatIDs,
		"status":     models.BookingCancelled,
		"updated_at": event.Timestamp,
	}

	body, err := json.Marshal(map[string]interface{}{
		"doc":           partial,
		"doc_as_upsert": true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      c.config.Index,
		DocumentID: event.BookingID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("update error: %s", res.String())
	}

	return nil
}

// SearchBookings runs a full text and filter search, newest bookings first
// unless a text query ranks by relevance.
func (c *BookingIndex) SearchBookings(ctx context.Context, filter models.BookingSearchFilter) ([]models.Booking, error) {
	searchJSON, err := json.Marshal(buildSearchRequest(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source BookingDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	bookings := make([]models.Booking, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		bookings[i] = hit.Source.Booking()
	}

	return bookings, nil
}

func buildSearchRequest(filter models.BookingSearchFilter) map[string]interface{} {
	size := filter.Size
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	return map[string]interface{}{
		"query": buildSearchQuery(filter),
		"sort":  buildSortQuery(filter.Query),
		"size":  size,
	}
}

func buildSearchQuery(filter models.BookingSearchFilter) map[string]interface{} {
	var must []map[string]interface{}
	var filters []map[string]interface{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q,
				"fields":    []string{"movie_title^2", "cinema_name", "user_name", "user_email", "seat_labels"},
				"fuzziness": "AUTO",
			},
		})
	}

	for field, value := range map[string]string{
		"user_id": filter.UserID,
		"show_id": filter.ShowID,
		"status":  strings.ToUpper(filter.Status),
	} {
		if value != "" {
			filters = append(filters, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}

	if len(must) == 0 && len(filters) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	return map[string]interface{}{"bool": boolQuery}
}

func buildSortQuery(query string) []map[string]interface{} {
	if strings.TrimSpace(query) != "" {
		return []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"booking_date": map[string]interface{}{"order": "desc"}},
		}
	}

	return []map[string]interface{}{
		{"booking_date": map[string]interface{}{"order": "desc"}},
	}
}

// HealthCheck waits for at least a yellow cluster.
func (c *BookingIndex) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
