package client

import (
	"fmt"
	"net/url"

	"innkeep/pkg/model"
)

// BookingClient calls the bookings service API.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// WithAdminToken authenticates later calls with an admin bearer token.
func (c *BookingClient) WithAdminToken(token string) *BookingClient {
	c.httpClient.SetHeader("Authorization", "Bearer "+token)
	return c
}

func (c *BookingClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *BookingClient) Quote(req *model.QuoteRequest) (*Response, error) {
	return c.httpClient.POST("/api/v1/quotes", req)
}

func (c *BookingClient) Submit(req *model.SubmitRequest) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", req)
}

func (c *BookingClient) SubmitIdempotent(req *model.SubmitRequest, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/bookings", req, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) SubmitRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/bookings", rawBody)
}

func (c *BookingClient) GetByID(id, email string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id)
	if email != "" {
		path += "?email=" + url.QueryEscape(email)
	}
	return c.httpClient.GET(path)
}

func (c *BookingClient) Cancel(id string, req *model.CancelRequest) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", req)
}

func (c *BookingClient) RecordPayment(id string, outcome *model.PaymentOutcome) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/payment", outcome)
}

func (c *BookingClient) List(filter url.Values, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	for key, values := range filter {
		q[key] = values
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/admin/bookings?" + q.Encode())
}

func (c *BookingClient) Complete(id string) (*Response, error) {
	return c.httpClient.POST("/api/v1/admin/bookings/id/"+url.PathEscape(id)+"/complete", nil)
}

func (c *BookingClient) CompleteDue(asOf string) (*Response, error) {
	path := "/api/v1/admin/bookings/complete-due"
	if asOf != "" {
		path += "?as_of=" + url.QueryEscape(asOf)
	}
	return c.httpClient.POST(path, nil)
}

func (c *BookingClient) Dashboard() (*Response, error) {
	return c.httpClient.GET("/api/v1/admin/dashboard")
}

// Webhook posts a signed payment outcome.
func (c *BookingClient) Webhook(rawBody []byte, signature string) (*Response, error) {
	return c.httpClient.requestRaw("POST", "/api/v1/payments/webhook", rawBody, map[string]string{
		"X-Signature-256": "sha256=" + signature,
	})
}

func (c *BookingClient) DecodeQuote(resp *Response) (*model.Quote, error) {
	return DecodeData[model.Quote](resp)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	return DecodeData[model.Booking](resp)
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	return DecodePage[model.Booking](resp)
}
