package models

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestIssueRow_Fields(t *testing.T) {
	typ := reflect.TypeOf(IssueRow{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement:false")
	assertGormTag(t, typ, "CommitHash", "size:40")
	assertGormTag(t, typ, "ClosedCommitHash", "size:40")
	assertGormTag(t, typ, "Message", "type:text")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "Tags", "serializer:json")
	assertGormTag(t, typ, "Children", "serializer:json")
	assertGormTag(t, typ, "Parent", "index")

	// Backfillable columns must be nullable.
	assertFieldType(t, typ, "Priority", "*int")
	assertFieldType(t, typ, "IsOpen", "*bool")
	assertFieldType(t, typ, "Parent", "*int")
	assertFieldType(t, typ, "ID", "int")
}

func TestTableNames(t *testing.T) {
	if got := (IssueRow{}).TableName(); got != "issues" {
		t.Errorf("IssueRow.TableName() = %q, want %q", got, "issues")
	}
	if got := (StoreMeta{}).TableName(); got != "store_meta" {
		t.Errorf("StoreMeta.TableName() = %q, want %q", got, "store_meta")
	}
	assertGormTag(t, reflect.TypeOf(StoreMeta{}), "ID", "primaryKey")
}

func TestClampPriority(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, 0},
		{-1, 0},
		{0, 0},
		{3, 3},
		{5, 5},
		{6, 5},
		{100, 5},
	}
	for _, tt := range tests {
		if got := ClampPriority(tt.in); got != tt.want {
			t.Errorf("ClampPriority(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusClosed, StatusWontfix} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "done", "OPEN"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Fix crash", "Fix crash"},
		{"Fix crash\n\nDetails here", "Fix crash"},
		{"Windows line\r\nsecond", "Windows line"},
		{"", ""},
	}
	for _, tt := range tests {
		i := &Issue{Message: tt.msg}
		if got := i.Summary(); got != tt.want {
			t.Errorf("Summary(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestSetStatus_KeepsIsOpen(t *testing.T) {
	i := &Issue{}
	i.SetStatus(StatusOpen)
	if !i.IsOpen {
		t.Error("IsOpen = false after SetStatus(open)")
	}
	i.SetStatus(StatusWontfix)
	if i.IsOpen {
		t.Error("IsOpen = true after SetStatus(wontfix)")
	}
}

func TestChildren_SortedSet(t *testing.T) {
	i := &Issue{ID: 1}
	for _, c := range []int{5, 2, 9, 2} {
		i.AddChild(c)
	}
	if want := []int{2, 5, 9}; !slices.Equal(i.Children, want) {
		t.Fatalf("Children = %v, want %v", i.Children, want)
	}
	if !i.HasChild(5) || i.HasChild(3) {
		t.Errorf("HasChild mismatch on %v", i.Children)
	}
	i.RemoveChild(5)
	i.RemoveChild(42)
	if want := []int{2, 9}; !slices.Equal(i.Children, want) {
		t.Errorf("Children after remove = %v, want %v", i.Children, want)
	}
}

func TestClone_IsDeep(t *testing.T) {
	i := &Issue{ID: 1, Tags: []string{"bug"}, Children: []int{2}}
	c := i.Clone()
	c.Tags[0] = "feature"
	c.Children[0] = 3
	if i.Tags[0] != "bug" || i.Children[0] != 2 {
		t.Errorf("Clone shares slices with original: %+v", i)
	}
}

func TestSortDescending(t *testing.T) {
	issues := []*Issue{
		{ID: 10, Priority: 3},
		{ID: 20, Priority: 5},
		{ID: 30, Priority: 1},
		{ID: 40, Priority: 3},
	}
	SortDescending(issues)

	var got []int
	for _, i := range issues {
		got = append(got, i.ID)
	}
	if want := []int{20, 40, 10, 30}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortAscending(t *testing.T) {
	issues := []*Issue{
		{ID: 10, Priority: 3},
		{ID: 20, Priority: 5},
		{ID: 30, Priority: 1},
		{ID: 5, Priority: 3},
	}
	SortAscending(issues)

	var got []int
	for _, i := range issues {
		got = append(got, i.ID)
	}
	if want := []int{30, 5, 10, 20}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
