package normalizer

import (
	"regexp"
	"strings"

	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
)

const numberPattern = `([+-]?\d+(?:\.\d+)?)`

var (
	momentumPattern      = regexp.MustCompile(`(?i)\bmomentum:\s*` + numberPattern + `(?:\s*\(([^)]*)\))?`)
	trendStrengthPattern = regexp.MustCompile(`(?i)\b(?:trend strength|adx):\s*` + numberPattern + `(?:\s*\(([^)]*)\))?`)
	volumeAmountPattern  = regexp.MustCompile(`(?i)\bvolume:\s*` + numberPattern + `\s*([kmb])?\b`)
	volumeChangePattern  = regexp.MustCompile(`(?i)\bvolume change:\s*` + numberPattern + `\s*%`)
	volumeLevelPattern   = regexp.MustCompile(`(?i)\bvolume level:\s*([a-z]+)`)
)

var volumeSuffix = map[string]decimal.Decimal{
	"k": decimal.NewFromInt(1_000),
	"m": decimal.NewFromInt(1_000_000),
	"b": decimal.NewFromInt(1_000_000_000),
}

// extractSubFields fills the optional embedded readings found in the trigger
// and HTF text. Each reading is matched independently; missing ones stay nil.
func extractSubFields(a *domain.Alert) {
	text := a.Trigger
	if a.HTF != "" {
		text += " " + a.HTF
	}

	a.Momentum = matchReading(momentumPattern, text)
	a.TrendStrength = matchReading(trendStrengthPattern, text)

	vol := &domain.VolumeReading{}
	if m := volumeAmountPattern.FindStringSubmatch(text); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			if mult, ok := volumeSuffix[strings.ToLower(m[2])]; ok {
				v = v.Mul(mult)
			}
			vol.Amount = decimal.NewNullDecimal(v)
		}
	}
	if m := volumeChangePattern.FindStringSubmatch(text); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			vol.ChangePct = decimal.NewNullDecimal(v)
		}
	}
	if m := volumeLevelPattern.FindStringSubmatch(text); m != nil {
		vol.Level = strings.TrimSpace(m[1])
	}
	if !vol.Empty() {
		a.Volume = vol
	}
}

func matchReading(re *regexp.Regexp, text string) *domain.SubReading {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil
	}
	return &domain.SubReading{Value: v, Status: strings.TrimSpace(m[2])}
}
