package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/roamline/backend/internal/domain"
)

// Client is an HTTP implementation of Store against the itinerary API.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient returns a Store talking to the API at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// tripPayload mirrors the API's trip representation. Calendar dates cross
// the wire as YYYY-MM-DD.
type tripPayload struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	ActivityIDs []uuid.UUID        `json:"activity_ids"`
	HourlyNotes domain.NotesMap    `json:"hourly_notes"`
	Activities  []activityPayload  `json:"activities"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type activityPayload struct {
	ID        uuid.UUID          `json:"id"`
	TripID    uuid.UUID          `json:"trip_id"`
	Title     string             `json:"title"`
	Date      openapi_types.Date `json:"date"`
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Location  string             `json:"location,omitempty"`
	Color     string             `json:"color,omitempty"`
	Creator   string             `json:"creator,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type activityRequest struct {
	Title     *string             `json:"title,omitempty"`
	Date      *openapi_types.Date `json:"date,omitempty"`
	StartTime *string             `json:"start_time,omitempty"`
	EndTime   *string             `json:"end_time,omitempty"`
	Location  *string             `json:"location,omitempty"`
	Color     *string             `json:"color,omitempty"`
	Creator   *string             `json:"creator,omitempty"`
}

type notesRequest struct {
	HourlyNotes domain.NotesMap `json:"hourly_notes"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchTrip retrieves the full trip state: the trip record with its notes
// map plus every activity, in one request.
func (c *Client) FetchTrip(ctx context.Context, tripID uuid.UUID) (Snapshot, error) {
	var payload tripPayload
	err := c.do(ctx, http.MethodGet, "/api/trips/"+tripID.String(), nil, &payload)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Trip: payloadToTrip(payload)}
	snap.Activities = make([]domain.Activity, len(payload.Activities))
	for i, a := range payload.Activities {
		snap.Activities[i] = payloadToActivity(a)
	}
	return snap, nil
}

// CreateActivity persists a new activity under the trip.
func (c *Client) CreateActivity(ctx context.Context, tripID uuid.UUID, activity domain.Activity) (domain.Activity, error) {
	date := openapi_types.Date{Time: activity.Date}
	req := activityRequest{
		Title:     &activity.Title,
		Date:      &date,
		StartTime: &activity.StartTime,
		EndTime:   &activity.EndTime,
	}
	if activity.Location != "" {
		req.Location = &activity.Location
	}
	if activity.Color != "" {
		req.Color = &activity.Color
	}
	if activity.Creator != "" {
		req.Creator = &activity.Creator
	}

	var payload activityPayload
	err := c.do(ctx, http.MethodPost, "/api/trips/"+tripID.String()+"/activities", req, &payload)
	if err != nil {
		return domain.Activity{}, err
	}
	return payloadToActivity(payload), nil
}

// UpdateActivity persists a partial update; only set fields are sent.
func (c *Client) UpdateActivity(ctx context.Context, tripID, activityID uuid.UUID, update domain.ActivityUpdate) (domain.Activity, error) {
	req := activityRequest{
		Title:     update.Title,
		StartTime: update.StartTime,
		EndTime:   update.EndTime,
		Location:  update.Location,
		Color:     update.Color,
	}
	if update.Date != nil {
		req.Date = &openapi_types.Date{Time: *update.Date}
	}

	var payload activityPayload
	path := "/api/trips/" + tripID.String() + "/activities/" + activityID.String()
	if err := c.do(ctx, http.MethodPatch, path, req, &payload); err != nil {
		return domain.Activity{}, err
	}
	return payloadToActivity(payload), nil
}

// DeleteActivity removes an activity from the trip.
func (c *Client) DeleteActivity(ctx context.Context, tripID, activityID uuid.UUID) error {
	path := "/api/trips/" + tripID.String() + "/activities/" + activityID.String()
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ReplaceNotes persists the entire notes map for the trip.
func (c *Client) ReplaceNotes(ctx context.Context, tripID uuid.UUID, notes domain.NotesMap) error {
	return c.do(ctx, http.MethodPut, "/api/trips/"+tripID.String()+"/notes", notesRequest{HourlyNotes: notes}, nil)
}

// do performs one request/response round trip, mapping transport failures to
// domain.ErrTransport and API error bodies to the matching sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sync.Client: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("sync.Client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", domain.ErrTransport, err)
		}
	}
	return nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	var payload errorPayload
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrValidation, message)
	default:
		return fmt.Errorf("%w: %s", domain.ErrTransport, message)
	}
}

func payloadToTrip(p tripPayload) domain.Trip {
	notes := p.HourlyNotes
	if notes == nil {
		notes = domain.NotesMap{}
	}
	return domain.Trip{
		ID:          p.ID,
		Name:        p.Name,
		Destination: p.Destination,
		StartDate:   p.StartDate.Time,
		EndDate:     p.EndDate.Time,
		ActivityIDs: p.ActivityIDs,
		HourlyNotes: notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func payloadToActivity(p activityPayload) domain.Activity {
	return domain.Activity{
		ID:        p.ID,
		TripID:    p.TripID,
		Title:     p.Title,
		Date:      p.Date.Time,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Location:  p.Location,
		Color:     p.Color,
		Creator:   p.Creator,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
