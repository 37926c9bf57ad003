package signal_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/framing-go/infrastructure/signal"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	t.Run("reply without a block passes through", func(t *testing.T) {
		t.Parallel()

		clean, ctl, err := signal.Split("Tell me more about that tension.")
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if ctl != nil {
			t.Errorf("ctl = %+v, want nil", ctl)
		}
		if clean != "Tell me more about that tension." {
			t.Errorf("clean = %q", clean)
		}
	})

	t.Run("valid signal is parsed and stripped", func(t *testing.T) {
		t.Parallel()

		reply := "Great, I have what I need.\n<extract>{\"phase\": \"tension\", \"ready\": true}</extract>"
		clean, ctl, err := signal.Split(reply)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if ctl == nil {
			t.Fatal("ctl = nil, want parsed control")
		}
		if ctl.Phase != "tension" {
			t.Errorf("Phase = %q, want tension", ctl.Phase)
		}
		if !ctl.Ready {
			t.Error("Ready = false, want true")
		}
		if ctl.SelectedIndex != nil {
			t.Errorf("SelectedIndex = %v, want nil", *ctl.SelectedIndex)
		}
		if clean != "Great, I have what I need." {
			t.Errorf("clean = %q", clean)
		}
	})

	t.Run("selected index survives", func(t *testing.T) {
		t.Parallel()

		reply := `Question two looks sharpest. <extract>{"phase": "question", "ready": true, "selected_index": 1}</extract>`
		_, ctl, err := signal.Split(reply)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if ctl.SelectedIndex == nil || *ctl.SelectedIndex != 1 {
			t.Errorf("SelectedIndex = %v, want 1", ctl.SelectedIndex)
		}
	})

	t.Run("zero selected index is distinguishable from absent", func(t *testing.T) {
		t.Parallel()

		_, ctl, err := signal.Split(`ok <extract>{"ready": true, "selected_index": 0}</extract>`)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if ctl.SelectedIndex == nil || *ctl.SelectedIndex != 0 {
			t.Errorf("SelectedIndex = %v, want 0", ctl.SelectedIndex)
		}
	})

	t.Run("malformed payload strips block and reports", func(t *testing.T) {
		t.Parallel()

		reply := "Still with you. <extract>{ready: yes}</extract>"
		clean, ctl, err := signal.Split(reply)
		if !errors.Is(err, signal.ErrMalformedSignal) {
			t.Fatalf("err = %v, want ErrMalformedSignal", err)
		}
		if ctl != nil {
			t.Errorf("ctl = %+v, want nil", ctl)
		}
		if clean != "Still with you." {
			t.Errorf("clean = %q, want block stripped", clean)
		}
	})

	t.Run("multiline payload parses", func(t *testing.T) {
		t.Parallel()

		reply := "Done.\n<extract>\n{\n  \"phase\": \"method\",\n  \"ready\": true\n}\n</extract>\n"
		clean, ctl, err := signal.Split(reply)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if ctl == nil || ctl.Phase != "method" || !ctl.Ready {
			t.Errorf("ctl = %+v", ctl)
		}
		if clean != "Done." {
			t.Errorf("clean = %q", clean)
		}
	})

	t.Run("repeated blocks are all stripped and the first wins", func(t *testing.T) {
		t.Parallel()

		reply := "Here we go.\n" +
			`<extract>{"phase": "tension", "ready": true}</extract>` + "\n" +
			`<extract>{"phase": "tension", "ready": false}</extract>`
		clean, ctl, err := signal.Split(reply)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if clean != "Here we go." {
			t.Errorf("clean = %q, want every block stripped", clean)
		}
		if ctl == nil || !ctl.Ready {
			t.Errorf("ctl = %+v, want the first block's signal", ctl)
		}
	})

	t.Run("not-ready signal parses", func(t *testing.T) {
		t.Parallel()

		_, ctl, err := signal.Split(`Keep going. <extract>{"phase": "tension", "ready": false}</extract>`)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if ctl == nil || ctl.Ready {
			t.Errorf("ctl = %+v, want ready false", ctl)
		}
	})
}
