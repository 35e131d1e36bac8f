package model

import "time"

// AccessEvent is one badge swipe at a door. Slices of events arrive in
// ingest order; analyzers sort where order matters.
type AccessEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	DoorID    string    `json:"door_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source,omitempty"`
	Raw       string    `json:"raw,omitempty"`
}

// SecurityCategory is the canonical bucketed security level of a device.
type SecurityCategory string

const (
	SecurityUnclassified SecurityCategory = "unclassified"
	SecurityGreen        SecurityCategory = "green"
	SecurityYellow       SecurityCategory = "yellow"
	SecurityRed          SecurityCategory = "red"
	SecurityUnknown      SecurityCategory = "unknown"
)

// BucketSecurityLevel maps the raw 0-10 numeric scale onto the canonical
// categories. Values outside the scale map to SecurityUnknown.
func BucketSecurityLevel(level int) SecurityCategory {
	switch {
	case level < 0 || level > 10:
		return SecurityUnknown
	case level <= 2:
		return SecurityUnclassified
	case level <= 5:
		return SecurityGreen
	case level <= 7:
		return SecurityYellow
	default:
		return SecurityRed
	}
}

// Classified reports whether the category counts toward classification
// completeness in the compliance score.
func (c SecurityCategory) Classified() bool {
	switch c {
	case SecurityUnclassified, SecurityGreen, SecurityYellow, SecurityRed:
		return true
	}
	return false
}

// DeviceAttributes is one row of the optional per-device classification
// table, keyed uniquely by DoorID. The engine only reads it.
type DeviceAttributes struct {
	DoorID        string           `json:"door_id" yaml:"door_id"`
	SecurityLevel SecurityCategory `json:"security_level" yaml:"security_level"`
	IsEntrance    bool             `json:"is_entrance" yaml:"is_entrance"`
	IsStairway    bool             `json:"is_stairway" yaml:"is_stairway"`
	Floor         string           `json:"floor" yaml:"floor"`
}

// HourRange is an inclusive range of hours of day, e.g. a rush-hour period.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type TemporalPattern struct {
	HourlyDistribution map[int]int    `json:"hourly_distribution"`
	PeakHour           int            `json:"peak_hour"`
	PeakHourCount      int            `json:"peak_hour_count"`
	LowestHour         int            `json:"lowest_hour"`
	LowestHourCount    int            `json:"lowest_hour_count"`
	DailyDistribution  map[string]int `json:"daily_distribution"`
	BusiestDay         string         `json:"busiest_day"`
	BusiestDayCount    int            `json:"busiest_day_count"`
	DailyAverage       float64        `json:"daily_average"`
	DailyVariance      float64        `json:"daily_variance"`
	TrendSlope         float64        `json:"trend_slope"`
	ActivityIntensity  string         `json:"activity_intensity"`
	RushHourPeriods    []HourRange    `json:"rush_hour_periods"`
}

// DoorTransition is a consecutive two-door sequence mined from one user's
// event stream, with its observed frequency across all users.
type DoorTransition struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

type UserBehaviorProfile struct {
	TotalUniqueUsers     int              `json:"total_unique_users"`
	MostActiveUser       string           `json:"most_active_user"`
	MostActiveUserCount  int              `json:"most_active_user_count"`
	AverageEventsPerUser float64          `json:"average_events_per_user"`
	UserActivityVariance float64          `json:"user_activity_variance"`
	AverageSessionLength float64          `json:"average_session_length"`
	TotalSessions        int              `json:"total_sessions"`
	SessionsPerUser      float64          `json:"sessions_per_user"`
	CommonSequences      []DoorTransition `json:"common_access_sequences"`
	UniquePatterns       int              `json:"unique_access_patterns"`
}

type TrendLabel string

const (
	TrendIncreasing TrendLabel = "Increasing"
	TrendDecreasing TrendLabel = "Decreasing"
	TrendStable     TrendLabel = "Stable"
)

type DeviceAnalytics struct {
	TotalDevices           int                      `json:"total_devices"`
	MostActiveDevice       string                   `json:"most_active_device"`
	MostActiveDeviceCount  int                      `json:"most_active_device_count"`
	AverageEventsPerDevice float64                  `json:"average_events_per_device"`
	DeviceUsageVariance    float64                  `json:"device_usage_variance"`
	DevicesActiveToday     int                      `json:"devices_active_today"`
	TrendingDevices        map[string]TrendLabel    `json:"trending_devices"`
	SecurityDistribution   map[SecurityCategory]int `json:"security_distribution"`
	EntranceDevices        int                      `json:"entrance_devices"`
	StairwayDevices        int                      `json:"stairway_devices"`
}

type SecurityAnalytics struct {
	Distribution            map[SecurityCategory]int     `json:"distribution"`
	DistributionPercentages map[SecurityCategory]float64 `json:"distribution_percentages"`
	ComplianceScore         float64                      `json:"compliance_score"`
	SecurityBalance         string                       `json:"security_balance"`
	DenialRate              float64                      `json:"denial_rate"`
	AccessSuccessRate       float64                      `json:"access_success_rate"`
	HasAccessMetrics        bool                         `json:"has_access_metrics"`
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is one finding from a single analysis run. Timestamp is the time
// of detection, not of any underlying event.
type Anomaly struct {
	Type      string   `json:"type"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
	Timestamp string   `json:"timestamp"`
	UserID    string   `json:"user_id,omitempty"`
	DeviceID  string   `json:"device_id,omitempty"`
}

// AnalysisRun bundles the outputs of one engine pass over the event table.
type AnalysisRun struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	TotalEvents int                 `json:"total_events"`
	Temporal    TemporalPattern     `json:"temporal"`
	Users       UserBehaviorProfile `json:"users"`
	Devices     DeviceAnalytics     `json:"devices"`
	Security    SecurityAnalytics   `json:"security"`
	Anomalies   []Anomaly           `json:"anomalies"`
}
