// internal/approval/board.go
//
// The approval board carries submitted requests through the two sign-off stages:
// the line manager first, then the transport/tire officer (TTO). Either reviewer
// may reject a request that has not reached final approval.

package approval

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kingrea/tirereq/internal/request"
)

// Stage is the approval status shown on a card.
type Stage string

const (
	StagePending         Stage = "Pending"
	StageManagerApproved Stage = "Approved by Manager"
	StageFinalApproved   Stage = "Final Approved by TTO"
	StageRejected        Stage = "Rejected"
)

// Final reports whether no further transitions are allowed.
func (s Stage) Final() bool {
	return s == StageFinalApproved || s == StageRejected
}

// MaxApproverLength bounds approver employee ids, matching officer service numbers.
const MaxApproverLength = 10

var (
	ErrCardNotFound      = errors.New("approval: request not on board")
	ErrDuplicateCard     = errors.New("approval: request already on board")
	ErrInvalidApprover   = errors.New("approval: approver id is required (max 10 characters)")
	ErrInvalidTransition = errors.New("approval: invalid status transition")
)

// Card is one request as the reviewers see it.
type Card struct {
	ID         int64
	Requester  string
	VehicleNo  string
	TireSize   string
	Stage      Stage
	ApprovedBy string
	Comments   string
	ApprovedAt time.Time
	RejectedAt time.Time
}

// CardFromRequest builds a pending card for a submitted request.
func CardFromRequest(s request.Submitted) Card {
	requester := s.OfficerServiceNo
	if strings.TrimSpace(requester) == "" {
		requester = s.UserSection
	}
	return Card{
		ID:        s.ID,
		Requester: requester,
		VehicleNo: s.VehicleNo,
		TireSize:  s.TireSize,
		Stage:     StagePending,
		Comments:  s.Comments,
	}
}

// ManagerSeed returns the demo cards awaiting manager review.
func ManagerSeed() []Card {
	return []Card{
		{ID: 1, Requester: "Driver A", TireSize: "225/45R17", Stage: StagePending},
		{ID: 2, Requester: "Driver B", TireSize: "195/65R15", Stage: StagePending},
	}
}

// TTOSeed returns the demo cards awaiting final review.
func TTOSeed() []Card {
	cards := ManagerSeed()
	for i := range cards {
		cards[i].Stage = StageManagerApproved
	}
	return cards
}

// Transition records an applied status change.
type Transition struct {
	Card Card
	From Stage
	To   Stage
}

// Message is the notice shown to the reviewer after the change.
func (t Transition) Message() string {
	switch t.To {
	case StageManagerApproved:
		return fmt.Sprintf("Manager approved request #%d. Email sent to TTO.", t.Card.ID)
	case StageFinalApproved:
		return fmt.Sprintf("TTO final approved request #%d.", t.Card.ID)
	case StageRejected:
		return fmt.Sprintf("Request #%d rejected by %s.", t.Card.ID, t.Card.ApprovedBy)
	}
	return fmt.Sprintf("Request #%d is %s.", t.Card.ID, t.To)
}

// Board holds approval cards in insertion order.
type Board struct {
	mu    sync.Mutex
	clock func() time.Time
	cards []Card
}

// NewBoard returns a board seeded with cards.
func NewBoard(clock func() time.Time, cards ...Card) *Board {
	if clock == nil {
		clock = time.Now
	}
	return &Board{clock: clock, cards: append([]Card(nil), cards...)}
}

// Cards returns a copy of every card.
func (b *Board) Cards() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Card(nil), b.cards...)
}

// InStage returns the cards currently at stage.
func (b *Board) InStage(stage Stage) []Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Card
	for _, card := range b.cards {
		if card.Stage == stage {
			out = append(out, card)
		}
	}
	return out
}

// Get returns the card with the given id.
func (b *Board) Get(id int64) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := b.indexOf(id); idx >= 0 {
		return b.cards[idx], true
	}
	return Card{}, false
}

// Add places a new pending card on the board.
func (b *Board) Add(card Card) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexOf(card.ID) >= 0 {
		return fmt.Errorf("%w: #%d", ErrDuplicateCard, card.ID)
	}
	card.Stage = StagePending
	b.cards = append(b.cards, card)
	return nil
}

// Refresh copies edited request details onto a card still awaiting review.
func (b *Board) Refresh(s request.Submitted) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(s.ID)
	if idx < 0 {
		return fmt.Errorf("%w: #%d", ErrCardNotFound, s.ID)
	}
	if b.cards[idx].Stage != StagePending {
		return fmt.Errorf("%w: #%d is %s", ErrInvalidTransition, s.ID, b.cards[idx].Stage)
	}
	fresh := CardFromRequest(s)
	b.cards[idx].Requester = fresh.Requester
	b.cards[idx].VehicleNo = fresh.VehicleNo
	b.cards[idx].TireSize = fresh.TireSize
	b.cards[idx].Comments = fresh.Comments
	return nil
}

// Withdraw removes a card that no reviewer has acted on.
func (b *Board) Withdraw(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: #%d", ErrCardNotFound, id)
	}
	if b.cards[idx].Stage != StagePending {
		return fmt.Errorf("%w: #%d is %s", ErrInvalidTransition, id, b.cards[idx].Stage)
	}
	b.cards = append(b.cards[:idx], b.cards[idx+1:]...)
	return nil
}

// ManagerApprove moves a pending card to manager-approved.
func (b *Board) ManagerApprove(id int64, approver string) (Transition, error) {
	return b.transition(id, approver, "", StageManagerApproved, StagePending)
}

// TTOApprove gives final approval to a manager-approved card.
func (b *Board) TTOApprove(id int64, approver string) (Transition, error) {
	return b.transition(id, approver, "", StageFinalApproved, StageManagerApproved)
}

// Reject closes a card that has not been finally approved. A non-empty comment
// is appended to the card's comment trail.
func (b *Board) Reject(id int64, approver, comment string) (Transition, error) {
	return b.transition(id, approver, comment, StageRejected, StagePending, StageManagerApproved)
}

func (b *Board) transition(id int64, approver, comment string, to Stage, from ...Stage) (Transition, error) {
	approver = strings.TrimSpace(approver)
	if approver == "" || utf8.RuneCountInString(approver) > MaxApproverLength {
		return Transition{}, ErrInvalidApprover
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return Transition{}, fmt.Errorf("%w: #%d", ErrCardNotFound, id)
	}
	card := b.cards[idx]
	allowed := false
	for _, stage := range from {
		if card.Stage == stage {
			allowed = true
			break
		}
	}
	if !allowed {
		return Transition{}, fmt.Errorf("%w: #%d %s -> %s", ErrInvalidTransition, id, card.Stage, to)
	}

	previous := card.Stage
	card.Stage = to
	card.ApprovedBy = approver
	if comment = strings.TrimSpace(comment); comment != "" {
		note := fmt.Sprintf("Status update (%s): %s", to, comment)
		if card.Comments == "" {
			card.Comments = note
		} else {
			card.Comments = card.Comments + " | " + note
		}
	}
	now := b.clock()
	if to == StageRejected {
		card.RejectedAt = now
		card.ApprovedAt = time.Time{}
	} else {
		card.ApprovedAt = now
		card.RejectedAt = time.Time{}
	}
	b.cards[idx] = card
	return Transition{Card: card, From: previous, To: to}, nil
}

func (b *Board) indexOf(id int64) int {
	for i, card := range b.cards {
		if card.ID == id {
			return i
		}
	}
	return -1
}
