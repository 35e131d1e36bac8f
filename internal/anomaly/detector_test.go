package anomaly

import (
	"testing"
	"time"

	"accesslens/internal/analytics"
	"accesslens/internal/model"
)

var testRef = time.Date(2026, 2, 23, 18, 0, 0, 0, time.UTC)

func buildContext(events []model.AccessEvent, devices []model.DeviceAttributes) Context {
	return Context{
		Events:   events,
		Devices:  devices,
		Temporal: analytics.AnalyzeTemporal(events),
		Users:    analytics.AnalyzeUsers(events),
		Usage:    analytics.AnalyzeDevices(events, devices, testRef),
		Security: analytics.AnalyzeSecurity(devices, events),
		Ref:      testRef,
	}
}

func countType(findings []model.Anomaly, typ string) int {
	n := 0
	for _, f := range findings {
		if f.Type == typ {
			n++
		}
	}
	return n
}

func TestRunEmptyInput(t *testing.T) {
	findings := Run(buildContext(nil, nil), DefaultDetectors())
	if findings == nil {
		t.Fatal("findings must be an empty slice, not nil")
	}
	if len(findings) != 0 {
		t.Fatalf("empty input produced %d findings: %v", len(findings), findings)
	}
}

func TestBusinessHoursBaseline(t *testing.T) {
	// A week of weekday business-hours traffic trips none of the time-based
	// or statistical rules.
	var events []model.AccessEvent
	day := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC) // a Monday
	for d := 0; d < 5; d++ {
		for h := 9; h < 17; h++ {
			ts := day.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour)
			events = append(events, model.AccessEvent{Timestamp: ts, UserID: "u1", DoorID: "lobby", EventType: "GRANTED"})
			events = append(events, model.AccessEvent{Timestamp: ts.Add(time.Minute), UserID: "u2", DoorID: "lab", EventType: "GRANTED"})
		}
	}
	ctx := buildContext(events, nil)
	ctx.Ref = time.Date(2026, 2, 20, 18, 0, 0, 0, time.UTC)
	ctx.Usage = analytics.AnalyzeDevices(events, nil, ctx.Ref)

	if ctx.Temporal.ActivityIntensity != "Low" {
		t.Errorf("steady traffic rated %s intensity", ctx.Temporal.ActivityIntensity)
	}

	for _, typ := range []string{"unusual_night_activity", "high_weekend_activity", "high_peak_activity", "high_user_activity"} {
		if n := countType(Run(ctx, DefaultDetectors()), typ); n != 0 {
			t.Errorf("baseline traffic produced %d %s findings", n, typ)
		}
	}
}

func TestNightActivity(t *testing.T) {
	var events []model.AccessEvent
	for i := 0; i < 10; i++ {
		h := 9
		if i < 3 {
			h = 23
		}
		ts := time.Date(2026, 2, 23, h, i, 0, 0, time.UTC)
		events = append(events, model.AccessEvent{Timestamp: ts, UserID: "u1", DoorID: "d1"})
	}
	findings := TimeDetector{}.Detect(buildContext(events, nil))
	if countType(findings, "unusual_night_activity") != 1 {
		t.Fatalf("30%% night traffic not flagged: %v", findings)
	}
	if countType(findings, "high_weekend_activity") != 0 {
		t.Fatalf("weekday traffic flagged as weekend: %v", findings)
	}
}

func TestHighUserActivityOutlier(t *testing.T) {
	// Twenty users with one swipe each and one user with five hundred. Only
	// the outlier clears mean plus three standard deviations.
	var events []model.AccessEvent
	base := time.Date(2026, 2, 23, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		events = append(events, model.AccessEvent{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			UserID:    "user" + string(rune('a'+i)),
			DoorID:    "lobby",
		})
	}
	for i := 0; i < 500; i++ {
		events = append(events, model.AccessEvent{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			UserID:    "hoarder",
			DoorID:    "lobby",
		})
	}
	findings := PatternDetector{}.Detect(buildContext(events, nil))
	if n := countType(findings, "high_user_activity"); n != 1 {
		t.Fatalf("expected exactly one high_user_activity finding, got %d: %v", n, findings)
	}
	for _, f := range findings {
		if f.Type == "high_user_activity" && f.UserID != "hoarder" {
			t.Fatalf("flagged wrong user: %s", f.UserID)
		}
	}
}

func TestInactiveDeviceFromRegistry(t *testing.T) {
	events := []model.AccessEvent{
		{Timestamp: testRef, UserID: "u1", DoorID: "lobby"},
	}
	devices := []model.DeviceAttributes{
		{DoorID: "lobby", SecurityLevel: model.SecurityGreen},
		{DoorID: "vault", SecurityLevel: model.SecurityRed},
	}
	findings := PatternDetector{}.Detect(buildContext(events, devices))
	if n := countType(findings, "inactive_device"); n != 1 {
		t.Fatalf("expected one inactive_device finding, got %d: %v", n, findings)
	}
	for _, f := range findings {
		if f.Type == "inactive_device" && f.DeviceID != "vault" {
			t.Fatalf("flagged wrong device: %s", f.DeviceID)
		}
	}
}

func TestLowComplianceNeedsDeviceTable(t *testing.T) {
	// With no device table the compliance score is 0 but must not fire.
	findings := StatisticalDetector{}.Detect(buildContext([]model.AccessEvent{
		{Timestamp: testRef, UserID: "u1", DoorID: "d1"},
	}, nil))
	if countType(findings, "low_compliance") != 0 {
		t.Fatalf("low_compliance fired without a device table: %v", findings)
	}

	devices := []model.DeviceAttributes{
		{DoorID: "d1", SecurityLevel: model.SecurityUnknown},
		{DoorID: "d2", SecurityLevel: model.SecurityUnknown},
	}
	ctx := buildContext([]model.AccessEvent{{Timestamp: testRef, UserID: "u1", DoorID: "d1"}}, devices)
	findings = StatisticalDetector{}.Detect(ctx)
	if countType(findings, "low_compliance") != 1 {
		t.Fatalf("unclassified table did not trip low_compliance: %v", findings)
	}
}

func TestMalformedDeviceTableYieldsDetectionError(t *testing.T) {
	devices := []model.DeviceAttributes{
		{DoorID: "d1", SecurityLevel: "purple"},
	}
	findings := Run(buildContext(nil, devices), DefaultDetectors())
	if n := countType(findings, "detection_error"); n != 1 {
		t.Fatalf("expected a single detection_error, got %d: %v", n, findings)
	}
	if findings[0].Type != "detection_error" || findings[0].Severity != model.SeverityLow {
		t.Fatalf("detection_error must come first at low severity: %+v", findings[0])
	}
}

func TestMalformedDeviceTableKeepsEventFindings(t *testing.T) {
	// A bad table row is reported once but must not silence the strategies
	// that never read security levels.
	var events []model.AccessEvent
	for i := 0; i < 10; i++ {
		events = append(events, model.AccessEvent{
			Timestamp: time.Date(2026, 2, 23, 23, i, 0, 0, time.UTC),
			UserID:    "u1",
			DoorID:    "lobby",
		})
	}
	devices := []model.DeviceAttributes{
		{DoorID: "lobby", SecurityLevel: "purple"},
		{DoorID: "vault", SecurityLevel: model.SecurityRed},
	}
	findings := Run(buildContext(events, devices), DefaultDetectors())
	if countType(findings, "detection_error") != 1 {
		t.Fatalf("expected one detection_error: %v", findings)
	}
	if countType(findings, "unusual_night_activity") != 1 {
		t.Fatalf("night traffic lost behind the table error: %v", findings)
	}
	if countType(findings, "inactive_device") != 1 {
		t.Fatalf("idle registry door lost behind the table error: %v", findings)
	}
}

type panicDetector struct{}

func (panicDetector) Name() string { return "panicky" }

func (panicDetector) Detect(Context) []model.Anomaly { panic("boom") }

func TestDetectorPanicIsContained(t *testing.T) {
	findings := Run(buildContext(nil, nil), []Detector{panicDetector{}, TimeDetector{}})
	if n := countType(findings, "detection_error"); n != 1 {
		t.Fatalf("expected one detection_error from the panicking detector, got %d: %v", n, findings)
	}
}

func TestFindingsAreStampedWithRef(t *testing.T) {
	devices := []model.DeviceAttributes{{DoorID: "d1", SecurityLevel: "bogus"}}
	findings := Run(buildContext(nil, devices), DefaultDetectors())
	want := testRef.Format(time.RFC3339)
	if findings[0].Timestamp != want {
		t.Fatalf("timestamp = %s, want %s", findings[0].Timestamp, want)
	}
}
