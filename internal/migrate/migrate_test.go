package migrate

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/track/internal/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestUpgradeRecord_BackfillsLegacyFields(t *testing.T) {
	created := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	got := UpgradeRecord(Record{
		ID:         7,
		CommitHash: "abc123",
		Message:    "old issue",
		CreatedAt:  created,
		Status:     "open",
	})

	if got.Priority != models.DefaultPriority {
		t.Errorf("Priority = %d, want %d", got.Priority, models.DefaultPriority)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", got.Tags)
	}
	if got.Parent != 0 {
		t.Errorf("Parent = %d, want 0", got.Parent)
	}
	if len(got.Children) != 0 {
		t.Errorf("Children = %v, want empty", got.Children)
	}
	if !got.IsOpen {
		t.Error("IsOpen = false, want true for status open")
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestUpgradeRecord_DerivesIsOpenFromStatus(t *testing.T) {
	tests := []struct {
		status string
		stored *bool
		want   bool
	}{
		{"open", nil, true},
		{"closed", nil, false},
		{"wontfix", nil, false},
		{"closed", boolPtr(true), false},
		{"open", boolPtr(false), true},
		{"", nil, true},
	}
	for _, tt := range tests {
		got := UpgradeRecord(Record{ID: 1, Status: tt.status, IsOpen: tt.stored})
		if got.IsOpen != tt.want {
			t.Errorf("status %q stored %v: IsOpen = %v, want %v", tt.status, tt.stored, got.IsOpen, tt.want)
		}
	}
}

func TestUpgradeRecord_ClampsAndKeepsPriority(t *testing.T) {
	if got := UpgradeRecord(Record{ID: 1, Priority: intPtr(0)}).Priority; got != 0 {
		t.Errorf("Priority(0) = %d, want 0", got)
	}
	if got := UpgradeRecord(Record{ID: 1, Priority: intPtr(9)}).Priority; got != 5 {
		t.Errorf("Priority(9) = %d, want 5", got)
	}
}

func TestUpgradeRecord_NormalizesChildren(t *testing.T) {
	got := UpgradeRecord(Record{ID: 4, Children: []int{9, 2, 9, 4, 0, 2}})
	if want := []int{2, 9}; !slices.Equal(got.Children, want) {
		t.Errorf("Children = %v, want %v", got.Children, want)
	}
}

func TestUpgrade_RebuildsHierarchy(t *testing.T) {
	snap := &Snapshot{
		Issues: []Record{
			{ID: 1, Status: "open", Children: []int{3}},
			{ID: 2, Status: "open", Parent: intPtr(1)},
			{ID: 3, Status: "open"},
			{ID: 4, Status: "open", Parent: intPtr(99)},
		},
	}
	res, err := Upgrade(snap)
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}

	if want := []int{2}; !slices.Equal(res.Issues[1].Children, want) {
		t.Errorf("issue 1 children = %v, want %v", res.Issues[1].Children, want)
	}
	if res.Issues[4].Parent != 0 {
		t.Errorf("dangling parent not cleared: %d", res.Issues[4].Parent)
	}
	if res.Repaired != 2 {
		t.Errorf("Repaired = %d, want 2", res.Repaired)
	}
	if res.MaxID != 4 {
		t.Errorf("MaxID = %d, want 4", res.MaxID)
	}
}

func TestUpgrade_KeepsHighWaterMark(t *testing.T) {
	res, err := Upgrade(&Snapshot{MaxID: 12, Issues: []Record{{ID: 3, Status: "open"}}})
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if res.MaxID != 12 {
		t.Errorf("MaxID = %d, want 12", res.MaxID)
	}
}

func TestUpgrade_Errors(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
		want string
	}{
		{"future version", &Snapshot{Version: CurrentVersion + 1}, "newer than supported"},
		{"zero id", &Snapshot{Issues: []Record{{ID: 0}}}, "invalid issue id"},
		{"duplicate", &Snapshot{Issues: []Record{{ID: 1}, {ID: 1}}}, "duplicate issue id"},
		{"bad status", &Snapshot{Issues: []Record{{ID: 1, Status: "done"}}}, "unknown status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Upgrade(tt.snap)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestUpgrade_NilSnapshot(t *testing.T) {
	res, err := Upgrade(nil)
	if err != nil {
		t.Fatalf("Upgrade(nil): %v", err)
	}
	if len(res.Issues) != 0 || res.MaxID != 0 {
		t.Errorf("Upgrade(nil) = %+v, want empty", res)
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	issues := map[int]*models.Issue{
		2: {ID: 2, Status: "open", IsOpen: true, Priority: 0, Tags: []string{"bug", "bug"}, Parent: 1, Children: []int{}},
		1: {ID: 1, Status: "closed", ClosedCommitHash: "def", Priority: 4, Tags: []string{}, Children: []int{2}},
	}
	snap := Build(issues, 5)

	if snap.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", snap.Version, CurrentVersion)
	}
	if snap.Issues[0].ID != 1 || snap.Issues[1].ID != 2 {
		t.Errorf("records not ordered by id: %d, %d", snap.Issues[0].ID, snap.Issues[1].ID)
	}

	res, err := Upgrade(snap)
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if res.MaxID != 5 {
		t.Errorf("MaxID = %d, want 5", res.MaxID)
	}
	if got := res.Issues[2]; got.Priority != 0 || !slices.Equal(got.Tags, []string{"bug", "bug"}) || got.Parent != 1 {
		t.Errorf("issue 2 = %+v", got)
	}
	if got := res.Issues[1]; got.IsOpen || got.ClosedCommitHash != "def" || !slices.Equal(got.Children, []int{2}) {
		t.Errorf("issue 1 = %+v", got)
	}
	if res.Repaired != 0 {
		t.Errorf("Repaired = %d, want 0", res.Repaired)
	}
}
