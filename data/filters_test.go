package data

import "testing"

func TestSortColumnAndDirection(t *testing.T) {
	f := Filters{Sort: "-created_at", SortSafeList: []string{"id", "created_at", "-id", "-created_at"}}
	if got := f.SortColumn(); got != "created_at" {
		t.Errorf("SortColumn: got %q, want %q", got, "created_at")
	}
	if got := f.SortDirection(); got != "DESC" {
		t.Errorf("SortDirection: got %q, want %q", got, "DESC")
	}
}

func TestSortColumnPanicsOnUnsafeValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for sort value outside the safelist")
		}
	}()
	f := Filters{Sort: "id; DROP TABLE books", SortSafeList: []string{"id"}}
	f.SortColumn()
}

func TestCalculateMetadata(t *testing.T) {
	metadata := CalculateMetadata(103, 2, 10)
	if metadata.LastPage != 11 {
		t.Errorf("LastPage: got %d, want %d", metadata.LastPage, 11)
	}
	if metadata.CurrentPage != 2 || metadata.FirstPage != 1 || metadata.TotalRecords != 103 {
		t.Errorf("unexpected metadata: %+v", metadata)
	}
	empty := CalculateMetadata(0, 1, 10)
	if empty != (Metadata{}) {
		t.Errorf("expected empty metadata for zero records, got %+v", empty)
	}
}
