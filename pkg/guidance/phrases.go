package guidance

import (
	"fmt"
	"strings"

	"github.com/teslashibe/vocalpath/pkg/spatial"
)

// Trend compares a step estimate with the previous one for the same class
// and zone.
type Trend int

const (
	TrendNone Trend = iota
	TrendCloser
	TrendFarther
)

func (t Trend) text() string {
	switch t {
	case TrendCloser:
		return "getting closer"
	case TrendFarther:
		return "getting farther"
	default:
		return ""
	}
}

func trendBetween(prev, now int) Trend {
	switch {
	case now < prev:
		return TrendCloser
	case now > prev:
		return TrendFarther
	default:
		return TrendNone
	}
}

// FoundPhrase announces that an object is within reach.
func FoundPhrase(class string, steps int, targeted bool) string {
	lead := "Object"
	if targeted {
		lead = "Target"
	}
	return fmt.Sprintf("%s %s found. It is within %s. Stopping guidance.", lead, class, stepsText(steps))
}

// StepPhrase announces an object's distance and side with an optional trend.
func StepPhrase(class string, steps int, zone spatial.Zone, trend Trend, targeted bool) string {
	var b strings.Builder
	if targeted {
		b.WriteString("Target ")
		b.WriteString(class)
	} else {
		b.WriteString(capitalize(class))
	}
	fmt.Fprintf(&b, ", about %s %s", stepsText(steps), sideText(zone))
	if t := trend.text(); t != "" {
		b.WriteString(", ")
		b.WriteString(t)
	}
	b.WriteString(".")
	return b.String()
}

// FallbackPhrase describes an object by zone and proximity band, used when
// no step estimate is available.
func FallbackPhrase(class string, zone spatial.Zone, band spatial.Band, targeted bool) string {
	p := fmt.Sprintf("%s %s, %s.", capitalize(strings.ToLower(class)), positionText(zone), bandText(band))
	if targeted {
		return "Target " + p
	}
	return p
}

func stepsText(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

func sideText(z spatial.Zone) string {
	switch z {
	case spatial.Left:
		return "to your left"
	case spatial.Right:
		return "to your right"
	default:
		return "ahead"
	}
}

func positionText(z spatial.Zone) string {
	switch z {
	case spatial.Left:
		return "on the left"
	case spatial.Right:
		return "on the right"
	default:
		return "in front"
	}
}

func bandText(b spatial.Band) string {
	switch b {
	case spatial.VeryNear:
		return "very close"
	case spatial.Near:
		return "near"
	default:
		return "far"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
