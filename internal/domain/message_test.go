package domain

import "testing"

func TestSubmitter(t *testing.T) {
	cases := []struct {
		evt  InboundEvent
		want string
	}{
		{InboundEvent{SenderName: "Alex Chen", SenderID: "U1"}, "Alex Chen"},
		{InboundEvent{SenderID: "U1"}, "U1"},
		{InboundEvent{}, "unknown user"},
	}
	for _, tc := range cases {
		if got := tc.evt.Submitter(); got != tc.want {
			t.Errorf("Submitter(%+v) = %q, want %q", tc.evt, got, tc.want)
		}
	}
}

func TestCancelled(t *testing.T) {
	if (InboundEvent{}).Cancelled() {
		t.Error("event without a form payload is not a cancellation")
	}
	if (InboundEvent{Form: &FormSubmission{Action: "submit"}}).Cancelled() {
		t.Error("submit is not a cancellation")
	}
	if !(InboundEvent{Form: &FormSubmission{Action: "cancel"}}).Cancelled() {
		t.Error("cancel action not recognized")
	}
}
