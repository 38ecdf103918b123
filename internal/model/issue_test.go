package model

import "testing"

func TestKeyPrefix(t *testing.T) {
	for _, tc := range []struct {
		key  string
		want string
	}{
		{"PROJ-42", "PROJ"},
		{"JRADEV-1107", "JRADEV"},
		{"nodash", "nodash"},
		{"A-B-C", "A"},
		{"-1", "-1"},
	} {
		if got := KeyPrefix(tc.key); got != tc.want {
			t.Errorf("KeyPrefix(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestLinkType_Symmetric(t *testing.T) {
	for _, tc := range []struct {
		typ  LinkType
		want bool
	}{
		{LinkType{Name: "Relates", Inward: "relates to", Outward: "relates to"}, true},
		{LinkType{Name: "Blocks", Inward: "is blocked by", Outward: "blocks"}, false},
		{LinkType{Name: "Empty"}, false},
	} {
		if got := tc.typ.Symmetric(); got != tc.want {
			t.Errorf("LinkType(%q).Symmetric() = %v, want %v", tc.typ.Name, got, tc.want)
		}
	}
}

func TestLink_Label(t *testing.T) {
	blocks := LinkType{Name: "Blocks", Inward: "is blocked by", Outward: "blocks"}
	for _, tc := range []struct {
		dir  Direction
		want string
	}{
		{DirectionOutward, "blocks"},
		{DirectionInward, "is blocked by"},
	} {
		l := Link{Type: blocks, Direction: tc.dir, OtherKey: "PROJ-2"}
		if got := l.Label(); got != tc.want {
			t.Errorf("Label() with direction %s = %q, want %q", tc.dir, got, tc.want)
		}
	}
}

func TestLink_OtherClosed(t *testing.T) {
	for _, tc := range []struct {
		status string
		want   bool
	}{
		{"Closed", true},
		{"closed", true},
		{"Open", false},
		{"", false},
	} {
		l := Link{OtherKey: "PROJ-2", OtherStatus: tc.status}
		if got := l.OtherClosed(); got != tc.want {
			t.Errorf("Link{OtherStatus: %q}.OtherClosed() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSubtaskStub_Closed(t *testing.T) {
	if !(SubtaskStub{Key: "PROJ-2", Status: "Closed"}).Closed() {
		t.Error("closed stub not reported closed")
	}
	if (SubtaskStub{Key: "PROJ-2", Status: "Open"}).Closed() {
		t.Error("open stub reported closed")
	}
}

func TestIssue_Closed(t *testing.T) {
	for _, tc := range []struct {
		status string
		want   bool
	}{
		{"Closed", true},
		{"closed", true},
		{"Open", false},
		{"In Progress", false},
		{"", false},
	} {
		i := &Issue{Key: "PROJ-1", Status: tc.status}
		if got := i.Closed(); got != tc.want {
			t.Errorf("Issue{Status: %q}.Closed() = %v, want %v", tc.status, got, tc.want)
		}
	}
}
