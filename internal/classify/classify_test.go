package classify

import (
	"os"
	"path/filepath"
	"testing"

	"accesslens/internal/analytics"
	"accesslens/internal/model"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want model.SecurityCategory
	}{
		{"", model.SecurityUnknown},
		{"   ", model.SecurityUnknown},
		{"0", model.SecurityUnclassified},
		{"2", model.SecurityUnclassified},
		{"3", model.SecurityGreen},
		{"5", model.SecurityGreen},
		{"6", model.SecurityYellow},
		{"7", model.SecurityYellow},
		{"8", model.SecurityRed},
		{"10", model.SecurityRed},
		{"11", model.SecurityUnknown},
		{"-1", model.SecurityUnknown},
		{"green", model.SecurityGreen},
		{"RED", model.SecurityRed},
		{"purple", model.SecurityUnknown},
	}
	for _, tt := range tests {
		if got := Category(tt.raw); got != tt.want {
			t.Errorf("Category(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestBlankLevelsDoNotCountAsClassified(t *testing.T) {
	attrs := []model.DeviceAttributes{
		{DoorID: "lobby", SecurityLevel: Category("")},
		{DoorID: "lab", SecurityLevel: Category("")},
	}
	s := analytics.AnalyzeSecurity(attrs, nil)
	if s.ComplianceScore != 0 {
		t.Fatalf("all-blank table scored %.1f, want 0", s.ComplianceScore)
	}
}

func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTableCSV(t *testing.T) {
	path := writeTable(t, "devices.csv",
		"door_id,security_level,is_entrance,is_stairway,floor\n"+
			"lobby,3,yes,no,1\n"+
			"vault,9,false,false,B2\n"+
			"lobby,8,true,false,1\n")
	devices, err := LoadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2 after dedupe", len(devices))
	}
	// The repeated lobby row wins and keeps its original position.
	if devices[0].DoorID != "lobby" || devices[0].SecurityLevel != model.SecurityRed || !devices[0].IsEntrance {
		t.Fatalf("lobby row = %+v", devices[0])
	}
	if devices[1].DoorID != "vault" || devices[1].SecurityLevel != model.SecurityRed {
		t.Fatalf("vault row = %+v", devices[1])
	}
}

func TestLoadTableYAML(t *testing.T) {
	path := writeTable(t, "devices.yaml", `
devices:
  - door_id: lobby
    security_level: "4"
    is_entrance: true
  - door_id: stairs-2
    security_level: yellow
    is_stairway: true
    floor: "2"
`)
	devices, err := LoadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].SecurityLevel != model.SecurityGreen {
		t.Fatalf("lobby level = %s", devices[0].SecurityLevel)
	}
	if devices[1].SecurityLevel != model.SecurityYellow || devices[1].Floor != "2" {
		t.Fatalf("stairs row = %+v", devices[1])
	}
}

func TestLoadTableRejectsUnknownExtension(t *testing.T) {
	if _, err := LoadTable("devices.txt"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestLoadTableCSVRequiresDoorColumn(t *testing.T) {
	path := writeTable(t, "bad.csv", "device,level\nlobby,3\n")
	if _, err := LoadTable(path); err == nil {
		t.Fatal("expected an error for a table without door_id")
	}
}
