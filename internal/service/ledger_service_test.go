package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/render"
)

type harness struct {
	svc     *LedgerService
	txs     *memTxStore
	flows   *memFlowStore
	replies *recordingReplier
	audit   *memAuditStore
	clock   *fakeClock
	nextID  int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	txs := newMemTxStore(clock.Now)
	flows := newMemFlowStore(clock.Now)
	replies := &recordingReplier{}
	audit := &memAuditStore{}
	svc := NewLedgerService(
		txs,
		NewFlowService(flows, time.Hour).WithClock(clock.Now),
		NewSummaryService(&stubSummaryStore{}).WithClock(clock.Now),
		NewAuditService(audit),
		replies,
	)
	return &harness{svc: svc, txs: txs, flows: flows, replies: replies, audit: audit, clock: clock, nextID: 100}
}

func (h *harness) text(userID int64, text string) domain.IncomingEvent {
	h.nextID++
	return domain.IncomingEvent{
		UpdateID:  h.nextID,
		UserID:    userID,
		ChannelID: userID,
		MessageID: h.nextID,
		Kind:      domain.EventText,
		Text:      text,
		Private:   true,
	}
}

func (h *harness) button(userID int64, data string) domain.IncomingEvent {
	h.nextID++
	return domain.IncomingEvent{
		UpdateID:   h.nextID,
		UserID:     userID,
		ChannelID:  userID,
		MessageID:  7,
		Kind:       domain.EventButton,
		ButtonData: data,
		Private:    true,
	}
}

func (h *harness) sendText(t *testing.T, userID int64, text string) domain.OutgoingReply {
	t.Helper()
	require.NoError(t, h.svc.HandleText(context.Background(), h.text(userID, text)))
	return h.replies.last()
}

func (h *harness) press(t *testing.T, userID int64, data string) domain.OutgoingReply {
	t.Helper()
	require.NoError(t, h.svc.HandleButton(context.Background(), h.button(userID, data)))
	return h.replies.last()
}

func (h *harness) step(userID int64) domain.Step {
	s := h.flows.get(userID)
	if s == nil {
		return ""
	}
	return s.Flow.Step
}

func TestLedger_GuidedExpenseRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.StartAdd(ctx, h.text(1, "/add")))
	assert.Equal(t, domain.StepChooseType, h.step(1))
	assert.Contains(t, h.replies.last().Text, "Choose the type")

	h.press(t, 1, "add:type:expense")
	assert.Equal(t, domain.StepAmount, h.step(1))

	h.sendText(t, 1, "150,000")
	assert.Equal(t, domain.StepDescription, h.step(1))

	h.sendText(t, 1, "Pizza")
	assert.Equal(t, domain.StepConfirm, h.step(1))
	assert.Empty(t, h.txs.all(1), "nothing is written before save")

	reply := h.press(t, 1, "add:confirm:save")
	assert.True(t, strings.HasPrefix(reply.Text, "✅ Saved."))
	assert.Equal(t, int64(7), reply.EditMessageID)
	assert.Nil(t, h.flows.get(1), "commit clears the dialogue")

	rows := h.txs.all(1)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(150000), rows[0].Amount)
	assert.Equal(t, domain.DirectionExpense, rows[0].Direction)
	assert.Empty(t, rows[0].Person)
	assert.Equal(t, "Pizza", rows[0].Description)
	assert.Equal(t, domain.RawGuided, rows[0].Raw)
}

func TestLedger_GuidedDebtCollectsPerson(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))

	h.press(t, 1, "add:type:payable")
	assert.Equal(t, domain.StepPerson, h.step(1))

	h.sendText(t, 1, "Ali")
	h.sendText(t, 1, "400")
	h.press(t, 1, "add:desc:skip")
	assert.Equal(t, domain.StepConfirm, h.step(1))

	h.press(t, 1, "add:confirm:save")
	rows := h.txs.all(1)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.DirectionPayable, rows[0].Direction)
	assert.Equal(t, "Ali", rows[0].Person)
	assert.Equal(t, int64(400), rows[0].Amount)
	assert.Empty(t, rows[0].Description)
}

func TestLedger_CancelAtAnyStep(t *testing.T) {
	steps := map[string][]string{
		"choose_type": {},
		"person":      {"add:type:receivable"},
		"amount":      {"add:type:expense"},
		"description": {"add:type:expense", "text:250"},
		"confirm":     {"add:type:expense", "text:250", "add:desc:skip"},
	}

	for name, inputs := range steps {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))
			for _, in := range inputs {
				if text, ok := strings.CutPrefix(in, "text:"); ok {
					h.sendText(t, 1, text)
				} else {
					h.press(t, 1, in)
				}
			}
			assert.Equal(t, domain.Step(name), h.step(1))

			reply := h.press(t, 1, "add:cancel")
			assert.Equal(t, "Canceled.", reply.Text)
			assert.Nil(t, h.flows.get(1))
			assert.Empty(t, h.txs.all(1))
		})
	}
}

func TestLedger_InvalidInputKeepsStep(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))
	h.press(t, 1, "add:type:receivable")

	reply := h.sendText(t, 1, "Ali 2")
	assert.Contains(t, reply.Text, "Invalid name format")
	assert.Equal(t, domain.StepPerson, h.step(1))

	h.sendText(t, 1, "Sara")
	reply = h.sendText(t, 1, "four hundred")
	assert.Contains(t, reply.Text, "Invalid amount format")
	assert.Equal(t, domain.StepAmount, h.step(1))
	assert.Equal(t, "Sara", h.flows.get(1).Flow.Person)
}

func TestLedger_TextAtChooseTypeAsksForButtons(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))

	reply := h.sendText(t, 1, "100 تومن نون")
	assert.Contains(t, reply.Text, "Please use the buttons below.")
	assert.Equal(t, domain.StepChooseType, h.step(1))
	assert.Empty(t, h.txs.all(1))
}

func TestLedger_FreeTextExpenseHasNoPerson(t *testing.T) {
	h := newHarness(t)

	reply := h.sendText(t, 1, "100 تومن پول نون")
	assert.True(t, strings.HasPrefix(reply.Text, "✅ Saved."))

	rows := h.txs.all(1)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(100), rows[0].Amount)
	assert.Equal(t, domain.DirectionExpense, rows[0].Direction)
	assert.Empty(t, rows[0].Person)
	assert.Equal(t, "100 تومن پول نون", rows[0].Raw)
}

func TestLedger_FreeTextPersianDigits(t *testing.T) {
	h := newHarness(t)
	h.sendText(t, 1, "۲۲۰ به ممد")

	rows := h.txs.all(1)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(220), rows[0].Amount)
	assert.Equal(t, domain.DirectionPayable, rows[0].Direction)
	assert.Equal(t, "ممد", rows[0].Person)
}

func TestLedger_FreeTextDebtWithoutPersonOpensDialogue(t *testing.T) {
	h := newHarness(t)

	reply := h.sendText(t, 1, "50 بدهکارم")
	assert.Contains(t, reply.Text, "Who is the counterparty?")
	assert.Empty(t, h.txs.all(1))

	stored := h.flows.get(1)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StepPerson, stored.Flow.Step)
	assert.Equal(t, domain.DirectionPayable, stored.Flow.Direction)
	require.NotNil(t, stored.Flow.Amount)
	assert.Equal(t, int64(50), *stored.Flow.Amount)

	h.sendText(t, 1, "Reza")
	assert.Equal(t, domain.StepAmount, h.step(1))
	h.press(t, 1, "add:amount:ok")
	h.press(t, 1, "add:desc:skip")
	h.press(t, 1, "add:confirm:save")

	rows := h.txs.all(1)
	require.Len(t, rows, 1)
	assert.Equal(t, "Reza", rows[0].Person)
	assert.Equal(t, int64(50), rows[0].Amount)
}

func TestLedger_NoAmount(t *testing.T) {
	h := newHarness(t)
	reply := h.sendText(t, 1, "پول نون")
	assert.Equal(t, render.NoAmountText, reply.Text)
	assert.Empty(t, h.txs.all(1))
}

func TestLedger_GreetingShowsHelp(t *testing.T) {
	h := newHarness(t)
	reply := h.sendText(t, 1, "Hello there")
	assert.Equal(t, render.HelpText, reply.Text)
	require.NotNil(t, reply.Keyboard)
	assert.Equal(t, domain.KeyboardReply, reply.Keyboard.Kind)
}

func TestLedger_ProbablyCommand(t *testing.T) {
	h := newHarness(t)
	for _, text := range []string{"2. edit", ".last", "3.delete 4"} {
		reply := h.sendText(t, 1, text)
		assert.Equal(t, render.ProbablyCommandText, reply.Text, text)
	}
	assert.Empty(t, h.txs.all(1))
}

func TestLedger_DuplicateDelivery(t *testing.T) {
	h := newHarness(t)
	ev := h.text(1, "220 به ممد")

	require.NoError(t, h.svc.HandleText(context.Background(), ev))
	first := h.replies.last()
	require.NoError(t, h.svc.HandleText(context.Background(), ev))
	second := h.replies.last()

	assert.Len(t, h.txs.all(1), 1)
	assert.Contains(t, first.Text, "ID: #1")
	assert.Equal(t, first.Text, second.Text)
}

func TestLedger_UserIsolation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sendText(t, 1, "100 نون")

	require.NoError(t, h.svc.Delete(ctx, h.text(2, "/delete 1"), 1))
	assert.Equal(t, render.NotFoundText, h.replies.last().Text)

	require.NoError(t, h.svc.StartEdit(ctx, h.text(2, "/edit 1"), 1))
	assert.Equal(t, render.NotFoundText, h.replies.last().Text)
	assert.Nil(t, h.flows.get(2))

	reply := h.press(t, 2, "tx:del:1:5")
	assert.Equal(t, render.NotFoundText, reply.Text)

	assert.Len(t, h.txs.all(1), 1)

	h.sendText(t, 2, "300 قهوه")
	rows := h.txs.all(2)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID, "ids are scoped per user")
}

func TestLedger_EditRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sendText(t, 1, "100 تومن پول نون")

	require.NoError(t, h.svc.StartEdit(ctx, h.text(1, "/edit 1"), 1))
	assert.Equal(t, domain.StepDescription, h.step(1))

	h.press(t, 1, "add:confirm:edit:amount")
	assert.Equal(t, domain.StepDescription, h.step(1), "jump buttons only work at confirm")

	h.press(t, 1, "add:desc:keep")
	h.press(t, 1, "add:confirm:edit:amount")
	assert.Equal(t, domain.StepAmount, h.step(1))
	h.sendText(t, 1, "120")
	h.press(t, 1, "add:desc:keep")

	reply := h.press(t, 1, "add:confirm:save")
	assert.True(t, strings.HasPrefix(reply.Text, "✅ Updated."))

	rows := h.txs.all(1)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(120), rows[0].Amount)
	assert.Equal(t, "پول نون", rows[0].Description)
	assert.Nil(t, h.flows.get(1))
}

func TestLedger_EditOfDeletedRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sendText(t, 1, "100 نون")
	require.NoError(t, h.svc.StartEdit(ctx, h.text(1, "/edit 1"), 1))
	h.press(t, 1, "add:desc:skip")

	_, err := h.txs.Delete(ctx, 1, 1)
	require.NoError(t, err)

	reply := h.press(t, 1, "add:confirm:save")
	assert.Equal(t, render.NotFoundText, reply.Text)
	assert.Nil(t, h.flows.get(1))
}

func TestLedger_ButtonWithoutDialogueStartsOne(t *testing.T) {
	h := newHarness(t)

	h.press(t, 1, "add:type:expense")
	assert.Equal(t, domain.StepAmount, h.step(1))

	h2 := newHarness(t)
	reply := h2.press(t, 1, "add:amount:ok")
	assert.Contains(t, reply.Text, "Choose the type")
	assert.Equal(t, domain.StepChooseType, h2.step(1))
}

func TestLedger_ExpiredDialogueIsDiscarded(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))
	h.press(t, 1, "add:type:expense")

	h.clock.Advance(2 * time.Hour)

	reply := h.sendText(t, 1, "150")
	assert.True(t, strings.HasPrefix(reply.Text, "✅ Saved."), "text is parsed as a new record")
	assert.Nil(t, h.flows.get(1))
}

func TestLedger_DialogueFromAnotherChannelIsDiscarded(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))
	h.press(t, 1, "add:type:expense")

	ev := h.text(1, "150")
	ev.ChannelID = 999
	require.NoError(t, h.svc.HandleText(context.Background(), ev))

	assert.Nil(t, h.flows.get(1))
	require.Len(t, h.txs.all(1), 1)
}

func TestLedger_UndoAndCancel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Undo(ctx, h.text(1, "/undo")))
	assert.Equal(t, "Nothing to undo.", h.replies.last().Text)

	h.sendText(t, 1, "100 نون")
	h.sendText(t, 1, "200 آب")
	require.NoError(t, h.svc.Undo(ctx, h.text(1, "/undo")))
	assert.Equal(t, "Deleted last record: #2", h.replies.last().Text)
	require.Len(t, h.txs.all(1), 1)

	require.NoError(t, h.svc.CancelDialogue(ctx, h.text(1, "/cancel")))
	assert.Equal(t, "Nothing to cancel.", h.replies.last().Text)

	require.NoError(t, h.svc.StartAdd(ctx, h.text(1, "/add")))
	require.NoError(t, h.svc.CancelDialogue(ctx, h.text(1, "/cancel")))
	assert.Equal(t, "Canceled.", h.replies.last().Text)
	assert.Nil(t, h.flows.get(1))
}

func TestLedger_ListAndDeleteButton(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sendText(t, 1, "100 نون")
	h.sendText(t, 1, "200 آب")

	require.NoError(t, h.svc.ListRecent(ctx, h.text(1, "/last"), 0))
	list := h.replies.last()
	assert.Contains(t, list.Text, "#1")
	assert.Contains(t, list.Text, "#2")
	require.NotNil(t, list.Keyboard)
	assert.Len(t, list.Keyboard.Rows, 2)

	reply := h.press(t, 1, "tx:del:2:5")
	assert.Equal(t, int64(7), reply.EditMessageID)
	assert.Contains(t, reply.Text, "#1")
	assert.NotContains(t, reply.Text, "#2")

	reply = h.press(t, 1, "tx:edit:1")
	assert.Zero(t, reply.EditMessageID)
	assert.Equal(t, domain.StepDescription, h.step(1))
}

func TestLedger_StorageFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.txs.failWrites = errors.New("connection refused")

	reply := h.sendText(t, 1, "100 نون")
	assert.Equal(t, render.SaveFailedText, reply.Text)

	require.NoError(t, h.svc.StartAdd(context.Background(), h.text(1, "/add")))
	h.press(t, 1, "add:type:expense")
	h.sendText(t, 1, "100")
	h.press(t, 1, "add:desc:skip")

	reply = h.press(t, 1, "add:confirm:save")
	assert.Equal(t, render.SaveFailedText, reply.Text)
	assert.Equal(t, domain.StepConfirm, h.step(1), "failed save keeps the dialogue")
}

func TestLedger_Summaries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.WeekSummary(ctx, h.text(1, "/week")))
	assert.True(t, strings.HasPrefix(h.replies.last().Text, "Weekly summary"))

	require.NoError(t, h.svc.MonthSummary(ctx, h.text(1, "/month")))
	assert.True(t, strings.HasPrefix(h.replies.last().Text, "Monthly summary"))
}

func TestLedger_AuditTrail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ev := h.text(1, "100 نون")
	require.NoError(t, h.svc.HandleText(ctx, ev))
	require.NoError(t, h.svc.HandleText(ctx, ev))
	h.sendText(t, 1, "50 به علی")

	require.NoError(t, h.svc.StartEdit(ctx, h.text(1, "/edit 1"), 1))
	h.press(t, 1, "add:desc:keep")
	h.press(t, 1, "add:confirm:save")

	require.NoError(t, h.svc.Undo(ctx, h.text(1, "/undo")))
	require.NoError(t, h.svc.Delete(ctx, h.text(1, "/delete 1"), 1))
	require.NoError(t, h.svc.Delete(ctx, h.text(2, "/delete 1"), 1))

	assert.Equal(t, []string{
		"tx_create #1",
		"tx_create #2",
		"tx_update #1",
		"tx_undo #2",
		"tx_delete #1",
	}, h.audit.actions(1), "duplicates and foreign deletes leave no entry")
	assert.Empty(t, h.audit.actions(2))

	require.NotEmpty(t, h.audit.entries)
	first := h.audit.entries[0]
	assert.Equal(t, domain.AuditCategoryLedger, first.Category)
	assert.Equal(t, "text", first.Details["source"])
	assert.Equal(t, "علی", h.audit.entries[1].Details["person"])
}

func TestLedger_AuditFailureDoesNotFailSave(t *testing.T) {
	h := newHarness(t)
	h.audit.err = errors.New("audit down")

	reply := h.sendText(t, 1, "100 نون")
	assert.True(t, strings.HasPrefix(reply.Text, "✅ Saved."))
	assert.Len(t, h.txs.all(1), 1)
}
