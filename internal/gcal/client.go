package gcal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pfrederiksen/gradescope-sync/internal/calendar"
	"github.com/pfrederiksen/gradescope-sync/internal/event"
)

const (
	calendarAPIURL = "https://www.googleapis.com/calendar/v3"
	timeout        = 15 * time.Second

	// PrimaryCalendarID is the API alias for the account's default calendar
	PrimaryCalendarID = "primary"
)

// Actions reported by UpsertEvent
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Client is a Google Calendar API client
type Client struct {
	token      *Token
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Google Calendar client using the given token
func NewClient(token *Token) *Client {
	return &Client{
		token:   token,
		baseURL: calendarAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiEvent is the wire shape of a calendar event
type apiEvent struct {
	ID          string        `json:"id,omitempty"`
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Start       *apiEventTime `json:"start,omitempty"`
	End         *apiEventTime `json:"end,omitempty"`
	Reminders   *apiReminders `json:"reminders,omitempty"`
}

type apiEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type apiReminders struct {
	UseDefault bool          `json:"useDefault"`
	Overrides  []apiReminder `json:"overrides,omitempty"`
}

type apiReminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// FindCalendarID looks up a calendar's ID by its display name. Returns an
// empty string (not an error) when no calendar carries that name; callers
// fall back to the primary calendar.
func (c *Client) FindCalendarID(name string) (string, error) {
	var list struct {
		Items []struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
		} `json:"items"`
	}

	if err := c.doJSON("GET", "/users/me/calendarList", nil, nil, &list); err != nil {
		return "", fmt.Errorf("listing calendars: %w", err)
	}

	for _, item := range list.Items {
		if item.Summary == name {
			return item.ID, nil
		}
	}

	return "", nil
}

// FindEvent searches a calendar for an event with exactly the given title
// and returns its event ID, or an empty string if none matches
func (c *Client) FindEvent(title, calendarID string) (string, error) {
	query := url.Values{}
	query.Set("q", title)
	query.Set("maxResults", "10")
	query.Set("singleEvents", "true")

	var list struct {
		Items []apiEvent `json:"items"`
	}

	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(calendarID))
	if err := c.doJSON("GET", path, query, nil, &list); err != nil {
		return "", fmt.Errorf("searching for event: %w", err)
	}

	for _, item := range list.Items {
		if item.Summary == title {
			return item.ID, nil
		}
	}

	return "", nil
}

// UpsertEvent creates or updates the calendar event for an assignment,
// keyed by its title. The projector's deterministic titles and UIDs make
// this idempotent across runs. A failed lookup degrades to a create rather
// than aborting the sync.
func (c *Client) UpsertEvent(calendarID string, evt *event.Event) (string, error) {
	body := buildEventBody(evt)

	existingID, err := c.FindEvent(evt.Title, calendarID)
	if err != nil {
		existingID = ""
	}

	basePath := fmt.Sprintf("/calendars/%s/events", url.PathEscape(calendarID))

	if existingID != "" {
		path := fmt.Sprintf("%s/%s", basePath, url.PathEscape(existingID))
		if err := c.doJSON("PUT", path, nil, body, nil); err != nil {
			return "", fmt.Errorf("updating event: %w", err)
		}
		return ActionUpdated, nil
	}

	if err := c.doJSON("POST", basePath, nil, body, nil); err != nil {
		return "", fmt.Errorf("creating event: %w", err)
	}
	return ActionCreated, nil
}

// EventSummary is the id/title pair returned by ListEvents
type EventSummary struct {
	ID      string
	Summary string
}

// ListEvents returns one page of events from a calendar along with the next
// page token, which is empty on the last page
func (c *Client) ListEvents(calendarID, pageToken string) ([]EventSummary, string, error) {
	query := url.Values{}
	query.Set("maxResults", "100")
	query.Set("singleEvents", "true")
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	var list struct {
		Items []struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
	}

	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(calendarID))
	if err := c.doJSON("GET", path, query, nil, &list); err != nil {
		return nil, "", fmt.Errorf("listing events: %w", err)
	}

	events := make([]EventSummary, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, EventSummary{ID: item.ID, Summary: item.Summary})
	}

	return events, list.NextPageToken, nil
}

// DeleteEvent removes an event from a calendar
func (c *Client) DeleteEvent(calendarID, eventID string) error {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(calendarID), url.PathEscape(eventID))
	if err := c.doJSON("DELETE", path, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func buildEventBody(evt *event.Event) *apiEvent {
	start := &apiEventTime{
		DateTime: formatEventTime(evt.Start),
		TimeZone: calendar.TimeZone,
	}
	end := &apiEventTime{
		DateTime: formatEventTime(evt.End),
		TimeZone: calendar.TimeZone,
	}

	return &apiEvent{
		Summary:     evt.Title,
		Description: evt.Description,
		Start:       start,
		End:         end,
		Reminders: &apiReminders{
			UseDefault: false,
			Overrides: []apiReminder{
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 1440}, // 24 hours
			},
		},
	}
}

// formatEventTime renders a due date for the events API. Due dates that
// carried an explicit UTC offset keep it via RFC3339; dates resolved in
// local time are sent without one so the event's timeZone label governs.
func formatEventTime(t time.Time) string {
	if t.Location() == time.Local {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format(time.RFC3339)
}

// doJSON performs an authenticated API request, encoding body and decoding
// the response into out when provided
func (c *Client) doJSON(method, path string, query url.Values, body, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token.AccessToken))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Don't include response body in error to prevent information leakage
		return fmt.Errorf("Google Calendar API error (status %d)", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
