package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	fieldSep     = "|"
	testFlag     = "TEST"
	minFields    = 4
	sqlTimestamp = "2006-01-02 15:04:05"
	// unix values at or above this are treated as milliseconds
	unixMillisFloor = 100_000_000_000
)

var timeframePattern = regexp.MustCompile(`^(\d+[smhdwSMHDW]?|[DWM])$`)

// ParseError reports a payload that cannot be turned into an alert. Raw holds
// the body as received so callers can echo it back.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "parse alert: " + e.Reason
}

func parseErr(raw, format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Raw: raw}
}

// Parse turns a webhook body into a canonical alert. JSON objects and the
// pipe-delimited text grammar are both accepted. receivedAt is used when the
// payload carries no timestamp. snap resolves aliases and weights; a nil
// snapshot uses the built-in aliases only.
func Parse(raw string, receivedAt time.Time, snap *catalog.Snapshot) (domain.Alert, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return domain.Alert{}, parseErr(raw, "empty payload")
	}

	var (
		alert domain.Alert
		err   error
	)
	if strings.HasPrefix(body, "{") {
		alert, err = parseJSON(raw, body)
	} else {
		alert, err = parseDelimited(raw, body, snap)
	}
	if err != nil {
		return domain.Alert{}, err
	}

	alert.Indicator = snap.Canonical(alert.Indicator)
	if alert.Timestamp.IsZero() {
		alert.Timestamp = receivedAt.UTC().Truncate(time.Second)
	}
	if w, ok := snap.Weight(alert.Indicator, alert.Trigger); ok {
		alert.Weight = w
	}
	extractSubFields(&alert)
	alert.Raw = raw
	return alert, nil
}

func parseDelimited(raw, body string, snap *catalog.Snapshot) (domain.Alert, error) {
	fields := strings.Split(body, fieldSep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < minFields {
		return domain.Alert{}, parseErr(raw, "expected at least %d fields, got %d", minFields, len(fields))
	}

	var alert domain.Alert
	if isPricePrefixed(fields) {
		price, err := decimal.NewFromString(fields[1])
		if err != nil {
			return domain.Alert{}, parseErr(raw, "invalid price %q", fields[1])
		}
		alert.Price = decimal.NewNullDecimal(price)
		fields = append(fields[:1:1], fields[2:]...)
	}

	ticker, err := normalizeTicker(fields[0])
	if err != nil {
		return domain.Alert{}, parseErr(raw, "%v", err)
	}
	alert.Ticker = ticker
	alert.Timeframe = fields[1]
	alert.Indicator = fields[2]
	alert.Trigger = fields[3]
	if alert.Indicator == "" {
		return domain.Alert{}, parseErr(raw, "indicator is required")
	}
	if alert.Trigger == "" {
		return domain.Alert{}, parseErr(raw, "trigger is required")
	}

	rest := fields[4:]
	if n := len(rest); n > 0 && strings.EqualFold(rest[n-1], testFlag) {
		alert.Test = true
		rest = rest[:n-1]
	}

	switch {
	case len(rest) == 0:
	case snap.Canonical(alert.Indicator) == catalog.ExtremeZones:
		// zone annotations may contain the separator themselves; a trailing
		// field that parses as a timestamp is still taken as TIME
		if ts, err := parseTimestamp(rest[len(rest)-1]); err == nil {
			alert.Timestamp = ts
			rest = rest[:len(rest)-1]
		}
		alert.HTF = strings.Join(rest, fieldSep)
	case len(rest) == 1:
		ts, err := parseTimestamp(rest[0])
		if err != nil {
			return domain.Alert{}, parseErr(raw, "%v", err)
		}
		alert.Timestamp = ts
	case len(rest) == 2:
		ts, err := parseTimestamp(rest[1])
		if err != nil {
			return domain.Alert{}, parseErr(raw, "%v", err)
		}
		alert.HTF = rest[0]
		alert.Timestamp = ts
	default:
		return domain.Alert{}, parseErr(raw, "too many fields for indicator %q: %d extra", alert.Indicator, len(rest))
	}
	return alert, nil
}

func isPricePrefixed(fields []string) bool {
	if len(fields) < minFields+1 {
		return false
	}
	if _, err := decimal.NewFromString(fields[1]); err != nil {
		return false
	}
	return timeframePattern.MatchString(fields[2])
}

func parseJSON(raw, body string) (domain.Alert, error) {
	if !gjson.Valid(body) {
		return domain.Alert{}, parseErr(raw, "invalid json")
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return domain.Alert{}, parseErr(raw, "json payload must be an object")
	}

	var alert domain.Alert
	tickerField, err := requiredString(doc, "ticker")
	if err != nil {
		return domain.Alert{}, parseErr(raw, "%v", err)
	}
	if alert.Ticker, err = normalizeTicker(tickerField); err != nil {
		return domain.Alert{}, parseErr(raw, "%v", err)
	}
	if alert.Indicator, err = requiredString(doc, "indicator"); err != nil {
		return domain.Alert{}, parseErr(raw, "%v", err)
	}
	if alert.Trigger, err = requiredString(doc, "trigger"); err != nil {
		return domain.Alert{}, parseErr(raw, "%v", err)
	}
	if alert.HTF, err = optionalString(doc, "htf"); err != nil {
		return domain.Alert{}, parseErr(raw, "%v", err)
	}

	if tf := doc.Get("timeframe"); tf.Exists() {
		switch tf.Type {
		case gjson.String, gjson.Number:
			alert.Timeframe = strings.TrimSpace(tf.String())
		case gjson.Null:
		default:
			return domain.Alert{}, parseErr(raw, "timeframe must be a string or number")
		}
	}

	if ts := doc.Get("time"); ts.Exists() {
		switch ts.Type {
		case gjson.String, gjson.Number:
			text := ts.Raw
			if ts.Type == gjson.String {
				text = ts.String()
			}
			if alert.Timestamp, err = parseTimestamp(text); err != nil {
				return domain.Alert{}, parseErr(raw, "%v", err)
			}
		case gjson.Null:
		default:
			return domain.Alert{}, parseErr(raw, "time must be a string or number")
		}
	}

	if p := doc.Get("price"); p.Exists() {
		switch p.Type {
		case gjson.String, gjson.Number:
			text := p.Raw
			if p.Type == gjson.String {
				text = p.String()
			}
			price, err := decimal.NewFromString(strings.TrimSpace(text))
			if err != nil {
				return domain.Alert{}, parseErr(raw, "invalid price %q", text)
			}
			alert.Price = decimal.NewNullDecimal(price)
		case gjson.Null:
		default:
			return domain.Alert{}, parseErr(raw, "price must be a string or number")
		}
	}

	if tv := doc.Get("test"); tv.Exists() {
		switch tv.Type {
		case gjson.True, gjson.False:
			alert.Test = tv.Bool()
		case gjson.String:
			alert.Test = strings.EqualFold(tv.String(), testFlag) || strings.EqualFold(tv.String(), "true")
		case gjson.Null:
		default:
			return domain.Alert{}, parseErr(raw, "test must be a boolean")
		}
	}
	return alert, nil
}

func requiredString(doc gjson.Result, key string) (string, error) {
	v := doc.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "", fmt.Errorf("%s is required", key)
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%s must be a string", key)
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func optionalString(doc gjson.Result, key string) (string, error) {
	v := doc.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "", nil
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(v.String()), nil
}

func normalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if len(t) > domain.MaxTickerLength {
		return "", fmt.Errorf("ticker longer than %d characters", domain.MaxTickerLength)
	}
	return t, nil
}

// parseTimestamp accepts RFC3339, "YYYY-MM-DD HH:MM:SS" in UTC, and unix
// seconds or milliseconds.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
		if n >= unixMillisFloor {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(sqlTimestamp, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
