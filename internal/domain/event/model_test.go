package event

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := [][2]Status{
		{StatusUpcoming, StatusRegistrationOpen},
		{StatusUpcoming, StatusOngoing},
		{StatusRegistrationOpen, StatusOngoing},
		{StatusOngoing, StatusCompleted},
		{StatusUpcoming, StatusCompleted},
		{StatusCompleted, StatusOngoing},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]Status{
		{StatusCompleted, StatusRegistrationOpen},
		{StatusOngoing, StatusUpcoming},
		{StatusRegistrationOpen, StatusCompleted},
		{StatusOngoing, StatusOngoing},
		{StatusCompleted, StatusCompleted},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	valid := Event{ID: "e1", Title: "Spring cup", Status: StatusOngoing}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := valid
	invalid.Status = "paused"
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected invalid status error")
	}
}
