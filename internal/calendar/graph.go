// Package calendar reads and writes the studio calendar through the
// Microsoft Graph API using an application (client credentials) token.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	graphScope  = "https://graph.microsoft.com/.default"
	dateLayout  = "2006-01-02"
	graphLayout = "2006-01-02T15:04:05.9999999"
	localLayout = "2006-01-02T15:04:05"
)

type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	CalendarID   string
	GraphURL     string
	LoginURL     string
	TimeZone     string
	Location     string
	Timeout      time.Duration
}

type Client struct {
	cfg  Config
	loc  *time.Location
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = "America/Santiago"
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: time zone %q: %v", domain.ErrConfiguration, cfg.TimeZone, err)
	}
	cfg.GraphURL = strings.TrimRight(cfg.GraphURL, "/")
	cfg.LoginURL = strings.TrimRight(cfg.LoginURL, "/")

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.LoginURL + "/" + url.PathEscape(cfg.TenantID) + "/oauth2/v2.0/token",
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	base := &http.Client{Timeout: cfg.Timeout}
	hc := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	hc.Timeout = cfg.Timeout

	return &Client{cfg: cfg, loc: loc, http: hc}, nil
}

type graphTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID      string    `json:"id,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Start   graphTime `json:"start"`
	End     graphTime `json:"end"`
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// BusyPeriods returns the events of day as busy intervals.
func (c *Client) BusyPeriods(ctx context.Context, day time.Time) ([]domain.BusyPeriod, error) {
	y, m, d := day.In(c.loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	to := from.AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$select", "start,end,subject")

	var out struct {
		Value []graphEvent `json:"value"`
	}
	path := "/users/" + url.PathEscape(c.cfg.CalendarID) + "/calendarView?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	busy := make([]domain.BusyPeriod, 0, len(out.Value))
	for _, e := range out.Value {
		start, err := parseGraphTime(e.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: event start: %v", domain.ErrCalendarUnavailable, err)
		}
		end, err := parseGraphTime(e.End)
		if err != nil {
			return nil, fmt.Errorf("%w: event end: %v", domain.ErrCalendarUnavailable, err)
		}
		busy = append(busy, domain.BusyPeriod{Start: start, End: end})
	}
	return busy, nil
}

// AvailableSlots parses date (YYYY-MM-DD, studio time zone) and returns the
// free slots of that day.
func (c *Client) AvailableSlots(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), c.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	busy, err := c.BusyPeriods(ctx, day)
	if err != nil {
		return nil, err
	}
	return FreeSlots(day, busy), nil
}

var appointmentBody = template.Must(template.New("appointment").Parse(`<h3>Nueva Cita de Tatuaje Confirmada</h3>
<p><strong>Cliente:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Teléfono:</strong> {{.Phone}}</p>
<p><strong>Abono Seleccionado:</strong> {{.Deposit}}</p>
<p><strong>Género:</strong> {{.Gender}}</p>
<p><strong>Comentarios:</strong> {{if .Comments}}{{.Comments}}{{else}}Ninguno{{end}}</p>
<p><strong>Autorización de fotos:</strong> {{if .PhotoAuth}}Sí{{else}}No{{end}}</p>
<hr>
<p><strong>Fecha:</strong> {{.Date}}</p>
<p><strong>Horario:</strong> {{.TimeSlot.Display}}</p>`))

func validateAppointment(a domain.Appointment) error {
	var missing []string
	for name, v := range map[string]string{
		"name":           a.Name,
		"email":          a.Email,
		"phone":          a.Phone,
		"date":           a.Date,
		"timeSlot.start": a.TimeSlot.Start,
		"timeSlot.end":   a.TimeSlot.End,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: missing required field: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return nil
}

// CreateAppointment writes the appointment to the studio calendar with the
// customer as a required attendee and returns the event id.
func (c *Client) CreateAppointment(ctx context.Context, a domain.Appointment) (string, error) {
	if err := validateAppointment(a); err != nil {
		return "", err
	}
	start, err := time.ParseInLocation(dateLayout+"T15:04", a.Date+"T"+a.TimeSlot.Start, c.loc)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date or start time", domain.ErrValidation)
	}
	end, err := time.ParseInLocation(dateLayout+"T15:04", a.Date+"T"+a.TimeSlot.End, c.loc)
	if err != nil || !end.After(start) {
		return "", fmt.Errorf("%w: invalid end time", domain.ErrValidation)
	}

	var body bytes.Buffer
	if err := appointmentBody.Execute(&body, a); err != nil {
		return "", fmt.Errorf("render appointment: %w", err)
	}

	event := map[string]any{
		"subject": "Tattoo Appointment - " + a.Name,
		"body": map[string]string{
			"contentType": "HTML",
			"content":     body.String(),
		},
		"start":    graphTime{DateTime: start.Format(localLayout), TimeZone: c.cfg.TimeZone},
		"end":      graphTime{DateTime: end.Format(localLayout), TimeZone: c.cfg.TimeZone},
		"location": map[string]string{"displayName": c.cfg.Location},
		"attendees": []map[string]any{{
			"emailAddress": map[string]string{"address": a.Email, "name": a.Name},
			"type":         "required",
		}},
	}

	var created graphEvent
	path := "/users/" + url.PathEscape(c.cfg.CalendarID) + "/calendar/events"
	if err := c.do(ctx, http.MethodPost, path, event, &created); err != nil {
		return "", err
	}
	logger.Info("appointment created", "event_id", created.ID, "date", a.Date, "slot", a.TimeSlot.Start)
	return created.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.GraphURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCalendarUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrCalendarUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ge graphError
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
			msg = ge.Error.Message
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrCalendarUnavailable, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrCalendarUnavailable, err)
	}
	return nil
}

// parseGraphTime reads a Graph dateTimeTimeZone value. Graph omits the offset
// and reports the zone separately.
func parseGraphTime(t graphTime) (time.Time, error) {
	loc := time.UTC
	if t.TimeZone != "" && t.TimeZone != "UTC" {
		l, err := time.LoadLocation(t.TimeZone)
		if err != nil {
			return time.Time{}, err
		}
		loc = l
	}
	return time.ParseInLocation(graphLayout, t.DateTime, loc)
}
