package data

import "testing"

func TestCanTransitionTo(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending,
		OrderStatusApproved,
		OrderStatusBorrowed,
		OrderStatusReturned,
		OrderStatusRejected,
	}
	allowed := map[OrderStatus]map[OrderStatus]bool{
		OrderStatusPending:  {OrderStatusApproved: true, OrderStatusRejected: true},
		OrderStatusApproved: {OrderStatusBorrowed: true, OrderStatusRejected: true},
		OrderStatusBorrowed: {OrderStatusReturned: true, OrderStatusRejected: true},
		OrderStatusReturned: {},
		OrderStatusRejected: {},
	}
	for _, from := range statuses {
		for _, to := range statuses {
			got := from.CanTransitionTo(to)
			want := allowed[from][to]
			if got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionToUnknownStatus(t *testing.T) {
	if OrderStatus("LOST").CanTransitionTo(OrderStatusReturned) {
		t.Error("unknown status should have no outgoing transitions")
	}
	if OrderStatusPending.CanTransitionTo(OrderStatus("LOST")) {
		t.Error("unknown status should have no incoming transitions")
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, false},
		{OrderStatusApproved, false},
		{OrderStatusBorrowed, false},
		{OrderStatusReturned, true},
		{OrderStatusRejected, true},
		{OrderStatus("LOST"), false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%s): got %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusApproved, OrderStatusBorrowed, OrderStatusReturned, OrderStatusRejected} {
		if !status.IsValid() {
			t.Errorf("IsValid(%s): got false, want true", status)
		}
	}
	if OrderStatus("").IsValid() {
		t.Error("empty status should not be valid")
	}
	if OrderStatus("pending").IsValid() {
		t.Error("status comparison should be case sensitive")
	}
}

func TestInventoryDelta(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending,
		OrderStatusApproved,
		OrderStatusBorrowed,
		OrderStatusReturned,
		OrderStatusRejected,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			want := 0
			switch {
			case from == OrderStatusApproved && to == OrderStatusBorrowed:
				want = -1
			case from == OrderStatusBorrowed && (to == OrderStatusReturned || to == OrderStatusRejected):
				want = 1
			}
			if got := InventoryDelta(from, to); got != want {
				t.Errorf("InventoryDelta(%s, %s): got %d, want %d", from, to, got, want)
			}
		}
	}
}

// Every legal transition sequence from PENDING to a terminal status must sum
// to a zero net inventory effect unless it ends with the copy out on loan.
func TestInventoryDeltaBalances(t *testing.T) {
	paths := [][]OrderStatus{
		{OrderStatusPending, OrderStatusRejected},
		{OrderStatusPending, OrderStatusApproved, OrderStatusRejected},
		{OrderStatusPending, OrderStatusApproved, OrderStatusBorrowed, OrderStatusReturned},
		{OrderStatusPending, OrderStatusApproved, OrderStatusBorrowed, OrderStatusRejected},
	}
	for _, path := range paths {
		sum := 0
		for i := 1; i < len(path); i++ {
			if !path[i-1].CanTransitionTo(path[i]) {
				t.Fatalf("path %v contains illegal edge %s -> %s", path, path[i-1], path[i])
			}
			sum += InventoryDelta(path[i-1], path[i])
		}
		if sum != 0 {
			t.Errorf("path %v: net inventory delta %d, want 0", path, sum)
		}
	}
}
