package records

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
)

// Column order in the work-order sheet. Create, Lookup, and the
// header-row check in recordFromRow stay in sync with this list.
var sheetColumns = []string{
	"tracking_code", "status", "created_at", "first_name", "last_name",
	"phone", "email", "address", "city", "state", "zip", "service_type",
	"description", "preferred_contact",
}

func sheetRange(sheet string) string {
	return fmt.Sprintf("%s!A:%c", sheet, rune('A'+len(sheetColumns)-1))
}

// SheetsService implements Service against a Google Sheets spreadsheet.
type SheetsService struct {
	svc            *sheets.Service
	spreadsheetID  string
	sheet          string
	uploadLinkBase string
	log            *logging.Logger
}

// SheetsConfig configures the spreadsheet-backed records service.
type SheetsConfig struct {
	SpreadsheetID   string
	Sheet           string
	CredentialsFile string // service account key JSON
	UploadLinkBase  string
}

// NewSheetsService authenticates with the service account key and returns
// a records service bound to one spreadsheet.
func NewSheetsService(ctx context.Context, cfg SheetsConfig, log *logging.Logger) (*SheetsService, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	key, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	sheet := cfg.Sheet
	if sheet == "" {
		sheet = "WorkOrders"
	}

	return &SheetsService{
		svc:            svc,
		spreadsheetID:  cfg.SpreadsheetID,
		sheet:          sheet,
		uploadLinkBase: cfg.UploadLinkBase,
		log:            log.Sub("records"),
	}, nil
}

// Create appends a work-order row and returns the tracking code plus the
// customer-facing photo upload link.
func (s *SheetsService) Create(ctx context.Context, fields Fields) (CreateResult, error) {
	code := newTrackingCode()
	row := []any{
		code, "open", time.Now().UTC().Format(time.RFC3339),
		fields.FirstName, fields.LastName, fields.Phone, fields.Email,
		fields.Address, fields.City, fields.State, fields.Zip,
		fields.ServiceType, fields.Description, fields.PreferredContact,
	}

	_, err := s.svc.Spreadsheets.Values.Append(
		s.spreadsheetID,
		sheetRange(s.sheet),
		&sheets.ValueRange{Values: [][]any{row}},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return CreateResult{}, fmt.Errorf("appending record: %w", err)
	}

	s.log.Info().Str("trackingCode", code).Msg("work order created")
	return CreateResult{TrackingCode: code, UploadLink: s.uploadLink(code)}, nil
}

// Lookup scans the sheet for the first row matching the query.
func (s *SheetsService) Lookup(ctx context.Context, q LookupQuery) (*Record, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(s.sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	for _, row := range resp.Values {
		rec := recordFromRow(row)
		if rec == nil {
			continue
		}
		if matches(rec, q) {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

func matches(rec *Record, q LookupQuery) bool {
	if q.Phone != "" && digitsOnly(rec.Fields.Phone) == digitsOnly(q.Phone) {
		return true
	}
	if q.Email != "" && strings.EqualFold(rec.Fields.Email, q.Email) {
		return true
	}
	if q.LastName != "" && strings.EqualFold(rec.Fields.LastName, q.LastName) {
		return true
	}
	return false
}

func recordFromRow(row []any) *Record {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		s, _ := row[i].(string)
		return s
	}
	code := cell(0)
	if code == "" || code == sheetColumns[0] { // skip blank and header rows
		return nil
	}
	created, _ := time.Parse(time.RFC3339, cell(2))
	return &Record{
		TrackingCode: code,
		Status:       cell(1),
		CreatedAt:    created,
		Fields: Fields{
			FirstName:        cell(3),
			LastName:         cell(4),
			Phone:            cell(5),
			Email:            cell(6),
			Address:          cell(7),
			City:             cell(8),
			State:            cell(9),
			Zip:              cell(10),
			ServiceType:      cell(11),
			Description:      cell(12),
			PreferredContact: cell(13),
		},
	}
}

func (s *SheetsService) uploadLink(code string) string {
	if s.uploadLinkBase == "" {
		return ""
	}
	return strings.TrimSuffix(s.uploadLinkBase, "/") + "/" + code
}

func newTrackingCode() string {
	return "WO-" + strings.ToUpper(uuid.NewString()[:8])
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
