package esmtp

import (
	"errors"
	"testing"
)

func TestAddRecipientMandatoryMailbox(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)

	if _, err := m.AddRecipient(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddRecipient(\"\"): %v", err)
	}
	if got := len(m.Recipients()); got != 0 {
		t.Fatalf("failed AddRecipient grew the list to %d", got)
	}

	r, err := m.AddRecipient("one@example.org")
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	if _, err := m.AddRecipient("two@example.org\r\nDATA"); err == nil {
		t.Error("expected error for mailbox containing CRLF")
	}
	got := m.Recipients()
	if len(got) != 1 || got[0] != r {
		t.Errorf("failed AddRecipient changed the list: %v", got)
	}
	if r.Mailbox() != "one@example.org" {
		t.Errorf("Mailbox() = %q", r.Mailbox())
	}
}

func TestRecipientOrder(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)
	boxes := []string{"a@example.org", "b@example.org", "c@example.org"}
	var added []*Recipient
	for _, box := range boxes {
		r, err := m.AddRecipient(box)
		if err != nil {
			t.Fatalf("AddRecipient(%q): %v", box, err)
		}
		added = append(added, r)
	}

	var visited []*Recipient
	var visitedBoxes []string
	if err := m.ForEachRecipient(func(r *Recipient, mailbox string) {
		visited = append(visited, r)
		visitedBoxes = append(visitedBoxes, mailbox)
	}); err != nil {
		t.Fatalf("ForEachRecipient: %v", err)
	}
	if len(visited) != len(added) {
		t.Fatalf("visited %d recipients, added %d", len(visited), len(added))
	}
	for i := range added {
		if visited[i] != added[i] {
			t.Errorf("position %d visited out of creation order", i)
		}
		if visitedBoxes[i] != boxes[i] {
			t.Errorf("position %d mailbox = %q, want %q", i, visitedBoxes[i], boxes[i])
		}
	}
}

func TestSetDSNNotify(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)
	r, err := m.AddRecipient("one@example.org")
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}

	// NEVER excludes every other condition.
	if err := r.SetDSNNotify(DSNNotifyNever | DSNNotifySuccess); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NEVER,SUCCESS: %v", err)
	}
	if err := r.SetDSNNotify(DSNNotify(1 << 10)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown flag: %v", err)
	}
	if s.RequiredExtensions() != 0 {
		t.Error("rejected NOTIFY still required DSN")
	}

	if err := r.SetDSNNotify(DSNNotifySuccess | DSNNotifyFailure); err != nil {
		t.Fatalf("SetDSNNotify: %v", err)
	}
	if got := r.RcptOptions().Notify; got != DSNNotifySuccess|DSNNotifyFailure {
		t.Errorf("Notify = %v", got)
	}
	if !s.RequiredExtensions().Contains(ExtDSN) {
		t.Error("DSN requirement missing")
	}

	if err := r.SetDSNNotify(DSNNotifyNever); err != nil {
		t.Errorf("SetDSNNotify(NEVER): %v", err)
	}
	if err := r.SetDSNNotify(DSNNotifyNotSet); err != nil {
		t.Errorf("SetDSNNotify(not set): %v", err)
	}
}

func TestSetOriginalRecipientAtomic(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)
	r, err := m.AddRecipient("one@example.org")
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}

	// A failure on the second field of the pair must leave both unset.
	if err := r.SetOriginalRecipient(DSNAddressTypeRFC822, "bad\r\nrcpt@example.org"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad address: %v", err)
	}
	if opts := r.RcptOptions(); opts.OriginalRecipientType != "" || opts.OriginalRecipient != "" {
		t.Errorf("partial ORCPT pair survived: %+v", opts)
	}
	if err := r.SetOriginalRecipient("", "orig@example.org"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty type: %v", err)
	}
	if err := r.SetOriginalRecipient(DSNAddressTypeRFC822, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty address: %v", err)
	}
	if s.RequiredExtensions() != 0 {
		t.Error("rejected ORCPT still required DSN")
	}

	if err := r.SetOriginalRecipient(DSNAddressTypeRFC822, "orig@example.org"); err != nil {
		t.Fatalf("SetOriginalRecipient: %v", err)
	}
	opts := r.RcptOptions()
	if opts.OriginalRecipientType != DSNAddressTypeRFC822 || opts.OriginalRecipient != "orig@example.org" {
		t.Errorf("RcptOptions() = %+v", opts)
	}
	if !s.RequiredExtensions().Contains(ExtDSN) {
		t.Error("DSN requirement missing")
	}
}

func TestRecipientResetStatus(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)
	r, err := m.AddRecipient("one@example.org")
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}

	r.SetStatus(Status{Code: 250, Text: "accepted"})
	r.MarkComplete()
	if !r.Status().IsSet() || !r.Complete() {
		t.Fatal("engine-side writes not visible")
	}

	if err := r.ResetStatus(); err != nil {
		t.Fatalf("ResetStatus: %v", err)
	}
	if st := r.Status(); st.IsSet() || st.Text != "" {
		t.Errorf("status after reset: %+v", st)
	}
	if r.Complete() {
		t.Error("completion flag survived reset")
	}
}

func TestRecipientApplicationData(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)
	r, err := m.AddRecipient("one@example.org")
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	if prev := r.SetApplicationData(7); prev != nil {
		t.Errorf("first swap returned %v", prev)
	}
	if prev := r.SetApplicationData(8); prev != 7 {
		t.Errorf("second swap returned %v", prev)
	}
}

func TestRecipientBackLink(t *testing.T) {
	s := NewSession()
	m := mustAddMessage(t, s)
	r, err := m.AddRecipient("one@example.org")
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	if r.Message() != m || r.Message().Session() != s {
		t.Error("recipient back-links broken")
	}
}
