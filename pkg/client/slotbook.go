package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Result mirrors a workflow step outcome.
type Result struct {
	State        string        `json:"state"`
	Intent       *Intent       `json:"intent,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

type Intent struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Slot  int    `json:"slot"`
	Label string `json:"label"`
}

type Notification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type Slot struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Capacity  int    `json:"capacity"`
	Status    string `json:"status"`
	Remaining int    `json:"remaining"`
	Booked    int    `json:"booked"`
}

type Day struct {
	Date       string `json:"date"`
	Heading    string `json:"heading"`
	Selectable bool   `json:"selectable"`
	Slots      []Slot `json:"slots"`
}

type ContactDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SlotbookClient calls the booking API. Mutating calls carry a fresh
// Idempotency-Key so a retried request is not applied twice.
type SlotbookClient struct {
	httpClient *HttpClient
}

func NewSlotbookClient(baseURL string) *SlotbookClient {
	return &SlotbookClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *SlotbookClient) Day(ctx context.Context, date string) (*Day, error) {
	var day Day
	if err := c.get(ctx, "/api/v1/slots?date="+url.QueryEscape(date), &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func (c *SlotbookClient) Select(ctx context.Context, date string, slot int) (*Result, error) {
	body := map[string]any{"date": date, "slot": slot}
	return c.step(ctx, "/api/v1/workflow/select", body)
}

func (c *SlotbookClient) AcceptSavedProfile(ctx context.Context) (*Result, error) {
	return c.step(ctx, "/api/v1/workflow/accept", nil)
}

func (c *SlotbookClient) DeclineSavedProfile(ctx context.Context) (*Result, error) {
	return c.step(ctx, "/api/v1/workflow/decline", nil)
}

func (c *SlotbookClient) Submit(ctx context.Context, details ContactDetails) (*Result, error) {
	return c.step(ctx, "/api/v1/workflow/submit", details)
}

func (c *SlotbookClient) Dismiss(ctx context.Context) (*Result, error) {
	return c.step(ctx, "/api/v1/workflow/dismiss", nil)
}

func (c *SlotbookClient) Cancel(ctx context.Context, date string, slot int) (*Result, error) {
	path := fmt.Sprintf("/api/v1/bookings/%s/%s", url.PathEscape(date), strconv.Itoa(slot))
	resp, err := c.httpClient.DELETE(ctx, path, idempotencyHeader())
	if err != nil {
		return nil, err
	}
	return decodeResult(resp)
}

func (c *SlotbookClient) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	var out []Notification
	if err := c.get(ctx, "/api/v1/notifications?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SlotbookClient) WaitForHealthy(ctx context.Context) error {
	return c.httpClient.WaitForHealthy(ctx, defaultTimeout)
}

func (c *SlotbookClient) get(ctx context.Context, path string, target any) error {
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	return resp.DecodeData(target)
}

func (c *SlotbookClient) step(ctx context.Context, path string, body any) (*Result, error) {
	resp, err := c.httpClient.POST(ctx, path, body, idempotencyHeader())
	if err != nil {
		return nil, err
	}
	return decodeResult(resp)
}

func decodeResult(resp *Response) (*Result, error) {
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	var res Result
	if err := resp.DecodeData(&res); err != nil {
		return nil, fmt.Errorf("failed to decode workflow result: %w", err)
	}
	return &res, nil
}

func idempotencyHeader() map[string]string {
	return map[string]string{"Idempotency-Key": uuid.New().String()}
}
