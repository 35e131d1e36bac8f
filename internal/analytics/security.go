package analytics

import (
	"strings"

	"accesslens/internal/model"
)

// Compliance-score weighting: classification completeness carries 70
// points, high-security balance up to 30.
const (
	classificationWeight = 70
	balanceCap           = 30
)

// AnalyzeSecurity scores the device classification table and, when events
// are available, derives access-control effectiveness from event-type text.
// An absent or empty table yields the zero result with a compliance score
// of 0.
func AnalyzeSecurity(attrs []model.DeviceAttributes, events []model.AccessEvent) model.SecurityAnalytics {
	s := defaultSecurityAnalytics()
	if len(attrs) == 0 {
		return s
	}

	total := len(attrs)
	classified := 0
	for _, attr := range attrs {
		s.Distribution[attr.SecurityLevel]++
		if attr.SecurityLevel.Classified() {
			classified++
		}
	}
	for category, count := range s.Distribution {
		s.DistributionPercentages[category] = float64(count) / float64(total) * 100
	}

	s.ComplianceScore = complianceScore(classified, s.Distribution[model.SecurityRed], total)
	s.SecurityBalance = securityBalance(s.Distribution, total)

	if len(events) > 0 {
		denied := 0
		for _, ev := range events {
			if isDeniedEvent(ev.EventType) {
				denied++
			}
		}
		s.DenialRate = round2(float64(denied) / float64(len(events)) * 100)
		s.AccessSuccessRate = round2(100 - s.DenialRate)
		s.HasAccessMetrics = true
	}
	return s
}

func defaultSecurityAnalytics() model.SecurityAnalytics {
	return model.SecurityAnalytics{
		Distribution:            map[model.SecurityCategory]int{},
		DistributionPercentages: map[model.SecurityCategory]float64{},
		SecurityBalance:         "No data",
	}
}

// complianceScore is completeness*70 plus min(30, red-share*100), rounded
// to one decimal. Bounded to [0, 100] by construction.
func complianceScore(classified, red, total int) float64 {
	if total == 0 {
		return 0
	}
	classScore := float64(classified) / float64(total) * classificationWeight
	balanceScore := float64(red) / float64(total) * 100
	if balanceScore > balanceCap {
		balanceScore = balanceCap
	}
	return round1(classScore + balanceScore)
}

func securityBalance(dist map[model.SecurityCategory]int, total int) string {
	if total == 0 {
		return "No data"
	}
	redPct := float64(dist[model.SecurityRed]) / float64(total) * 100
	greenPct := float64(dist[model.SecurityGreen]) / float64(total) * 100
	switch {
	case redPct > 50:
		return "High security focus"
	case greenPct > 70:
		return "Low security focus"
	default:
		return "Balanced security"
	}
}

func isDeniedEvent(eventType string) bool {
	upper := strings.ToUpper(eventType)
	return strings.Contains(upper, "DENIED") || strings.Contains(upper, "FAILED")
}
