package review

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kingrea/tirereq/internal/request"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// steppedClock advances by a drawn amount (possibly zero) on each call.
func steppedClock(t *rapid.T) func() time.Time {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Duration(rapid.IntRange(0, 2).Draw(t, "tick")) * time.Millisecond)
		return now
	}
}

func TestPropertySubmitAppendsOneUniqueEntry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStore(WithClock(steppedClock(t)))
		n := rapid.IntRange(1, 20).Draw(t, "submissions")
		seen := map[int64]bool{}
		for i := 0; i < n; i++ {
			before := s.Items()
			op, err := s.Submit(validDraft())
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			fail := rapid.Bool().Draw(t, "fail")
			var gwErr error
			if fail {
				gwErr = errBackend
			}
			entry, _ := s.FinishSubmit(op, gwErr)
			after := s.Items()
			if fail {
				if !reflect.DeepEqual(before, after) {
					t.Fatalf("failed submit changed the list")
				}
				continue
			}
			if len(after) != len(before)+1 {
				t.Fatalf("len %d -> %d", len(before), len(after))
			}
			if !reflect.DeepEqual(after[:len(before)], before) {
				t.Fatalf("existing entries changed")
			}
			if after[len(after)-1].ID != entry.ID || seen[entry.ID] {
				t.Fatalf("id %d not fresh or not last", entry.ID)
			}
			seen[entry.ID] = true
		}
	})
}

// TestPropertyRowActions drives random row actions and checks the session and
// in-flight invariants after every step.
func TestPropertyRowActions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStore(WithClock(steppedClock(t)))
		rows := rapid.IntRange(1, 5).Draw(t, "rows")
		for i := 0; i < rows; i++ {
			op, _ := s.Submit(validDraft())
			if _, err := s.FinishSubmit(op, nil); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}

		var pending []ItemOp
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			items := s.Items()
			pick := func() int64 {
				if len(items) == 0 {
					return -1
				}
				return items[rapid.IntRange(0, len(items)-1).Draw(t, "row")].ID
			}

			switch rapid.IntRange(0, 5).Draw(t, "action") {
			case 0:
				_ = s.BeginEdit(pick())
			case 1:
				_ = s.EditField(request.FieldTireSize, rapid.StringMatching(`[0-9R/]{0,9}`).Draw(t, "size"))
			case 2:
				if op, err := s.Save(); err == nil {
					pending = append(pending, op)
				}
			case 3:
				s.Cancel()
			case 4:
				if op, err := s.Delete(pick()); err == nil {
					pending = append(pending, op)
				}
			case 5:
				if len(pending) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(pending)-1).Draw(t, "resolve")
				op := pending[idx]
				pending = append(pending[:idx], pending[idx+1:]...)
				var gwErr error
				if rapid.Bool().Draw(t, "fail") {
					gwErr = errBackend
				}
				before := s.Items()
				sessionBefore, editingBefore := s.Editing()
				if op.Action == ActionUpdate {
					_ = s.FinishSave(op, gwErr)
				} else {
					_ = s.FinishDelete(op, gwErr)
				}
				if gwErr != nil {
					if !reflect.DeepEqual(before, s.Items()) {
						t.Fatalf("failed %s changed the list", op.Action)
					}
					sessionAfter, editingAfter := s.Editing()
					if editingBefore != editingAfter || !reflect.DeepEqual(sessionBefore.Draft, sessionAfter.Draft) {
						t.Fatalf("failed %s changed the session", op.Action)
					}
				} else if op.Action == ActionDelete {
					if session, ok := s.Editing(); ok && session.ItemID == op.ItemID {
						t.Fatalf("deleted row is still being edited")
					}
				}
			}

			if session, ok := s.Editing(); ok {
				if _, found := s.Item(session.ItemID); !found {
					t.Fatalf("session references missing row %d", session.ItemID)
				}
			}
			inFlight := map[int64]int{}
			for _, op := range pending {
				inFlight[op.ItemID]++
				if inFlight[op.ItemID] > 1 {
					t.Fatalf("row %d has two actions in flight", op.ItemID)
				}
				if _, ok := s.InFlight(op.ItemID); !ok {
					t.Fatalf("store lost in-flight row %d", op.ItemID)
				}
			}
		}
	})
}
