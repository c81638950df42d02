package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/flow"
	"expenses_bot/internal/logger"
	"expenses_bot/internal/parser"
	"expenses_bot/internal/render"
)

const (
	DefaultListLimit = 5
	MaxListLimit     = 50

	weekDaysShown  = 7
	monthDaysShown = 10
)

var (
	greetingRe        = regexp.MustCompile(`(?i)^\s*(hi|hello|hey)\b`)
	probablyCommandRe = regexp.MustCompile(`(?i)^\s*(?:\.+|\d+\s*\.)\s*(edit|delete|last|week|month|help|menu|hide|undo|id|add|cancel|wipe_all)\b`)
)

// LedgerService implements the user-facing operations on top of the stores. Every
// method replies to the event's channel itself; the returned error is only non-nil when
// the reply could not be delivered. Storage failures are logged and answered with a
// generic message.
type LedgerService struct {
	txs       TransactionStore
	flows     *FlowService
	summaries *SummaryService
	audit     *AuditService
	replier   Replier
}

func NewLedgerService(txs TransactionStore, flows *FlowService, summaries *SummaryService, audit *AuditService, replier Replier) *LedgerService {
	return &LedgerService{
		txs:       txs,
		flows:     flows,
		summaries: summaries,
		audit:     audit,
		replier:   replier,
	}
}

// send posts a new message.
func (s *LedgerService) send(ctx context.Context, ev domain.IncomingEvent, text string, kb *domain.Keyboard) error {
	return s.replier.Reply(ctx, domain.OutgoingReply{ChannelID: ev.ChannelID, Text: text, Keyboard: kb})
}

// respond edits the message a button was pressed on, or posts a new message for text.
func (s *LedgerService) respond(ctx context.Context, ev domain.IncomingEvent, text string, kb *domain.Keyboard) error {
	r := domain.OutgoingReply{ChannelID: ev.ChannelID, Text: text, Keyboard: kb}
	if ev.Kind == domain.EventButton {
		r.EditMessageID = ev.MessageID
	}
	return s.replier.Reply(ctx, r)
}

func (s *LedgerService) storageFailed(ctx context.Context, ev domain.IncomingEvent, op string, err error, text string) error {
	storageErrors.WithLabelValues(op).Inc()
	logger.FromContext(ctx).Error("storage call failed", "op", op, "error", err)
	return s.send(ctx, ev, text, nil)
}

// HandleText routes a plain message: an active dialogue consumes it first, otherwise it
// is parsed as a new record.
func (s *LedgerService) HandleText(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("text").Inc()
	text := strings.TrimSpace(ev.Text)

	if probablyCommandRe.MatchString(text) {
		return s.send(ctx, ev, render.ProbablyCommandText, nil)
	}

	f, err := s.flows.Load(ctx, ev.UserID, ev.ChannelID)
	if err != nil {
		return s.storageFailed(ctx, ev, "flow_load", err, render.GenericFailText)
	}
	if f != nil {
		return s.advance(ctx, ev, f, false, flow.TextInput(text))
	}

	if greetingRe.MatchString(text) {
		return s.send(ctx, ev, render.HelpText, render.CommandKeyboard())
	}
	return s.CreateFromText(ctx, ev)
}

// HandleButton routes an inline button press to the dialogue or the record list.
func (s *LedgerService) HandleButton(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("button").Inc()
	data := strings.TrimSpace(ev.ButtonData)

	switch {
	case flow.IsAction(data):
		return s.dialogueButton(ctx, ev, data)
	case strings.HasPrefix(data, render.RecordCallbackPrefix):
		return s.recordButton(ctx, ev, strings.TrimPrefix(data, render.RecordCallbackPrefix))
	}
	logger.FromContext(ctx).Debug("ignoring unknown button", "data", data)
	return nil
}

func (s *LedgerService) dialogueButton(ctx context.Context, ev domain.IncomingEvent, data string) error {
	f, err := s.flows.Load(ctx, ev.UserID, ev.ChannelID)
	if err != nil {
		return s.storageFailed(ctx, ev, "flow_load", err, render.GenericFailText)
	}
	fresh := f == nil
	if fresh {
		f = flow.Start()
	}

	action, ok := flow.ParseAction(data)
	if !ok {
		if fresh {
			if err := s.flows.Save(ctx, ev.UserID, ev.ChannelID, f); err != nil {
				return s.storageFailed(ctx, ev, "flow_save", err, render.GenericFailText)
			}
		}
		text, kb := flow.Prompt(f)
		return s.respond(ctx, ev, text, kb)
	}
	return s.advance(ctx, ev, f, fresh, flow.ActionInput(action))
}

// advance applies one input to f and persists and renders the outcome. fresh marks a
// flow that was created for this event and has not been stored yet.
func (s *LedgerService) advance(ctx context.Context, ev domain.IncomingEvent, f *domain.Flow, fresh bool, in flow.Input) error {
	res := flow.Apply(f, in)
	flowTransitions.WithLabelValues(res.Outcome.String()).Inc()

	switch res.Outcome {
	case flow.Cancelled:
		if _, err := s.flows.Clear(ctx, ev.UserID); err != nil {
			return s.storageFailed(ctx, ev, "flow_delete", err, render.GenericFailText)
		}
		return s.respond(ctx, ev, "Canceled.", nil)

	case flow.Commit:
		return s.commit(ctx, ev, f)

	case flow.Invalid:
		if fresh {
			if err := s.flows.Save(ctx, ev.UserID, ev.ChannelID, f); err != nil {
				return s.storageFailed(ctx, ev, "flow_save", err, render.GenericFailText)
			}
		}
		return s.respond(ctx, ev, flow.Notice(res.Err), flow.CancelKeyboard())
	}

	if res.Outcome == flow.Advanced || fresh {
		if err := s.flows.Save(ctx, ev.UserID, ev.ChannelID, f); err != nil {
			return s.storageFailed(ctx, ev, "flow_save", err, render.GenericFailText)
		}
	}

	text, kb := flow.Prompt(f)
	if notice := flow.Notice(res.Err); notice != "" {
		text = notice + "\n\n" + text
	}
	return s.respond(ctx, ev, text, kb)
}

// commit writes a completed dialogue and clears it. A failed write keeps the flow so the
// user can press save again.
func (s *LedgerService) commit(ctx context.Context, ev domain.IncomingEvent, f *domain.Flow) error {
	p := flow.Proposal(f)
	var id int64

	if f.Mode == domain.ModeEdit {
		if f.TargetID <= 0 {
			return s.respond(ctx, ev, "Invalid record id for edit. Use /cancel.", flow.CancelKeyboard())
		}
		ok, err := s.txs.Update(ctx, ev.UserID, f.TargetID, p)
		if err != nil {
			return s.storageFailed(ctx, ev, "update", err, render.SaveFailedText)
		}
		if !ok {
			if _, err := s.flows.Clear(ctx, ev.UserID); err != nil {
				logger.FromContext(ctx).Error("failed to clear flow", "error", err)
			}
			return s.respond(ctx, ev, render.NotFoundText, nil)
		}
		id = f.TargetID
		recordsTotal.WithLabelValues("updated").Inc()
		s.audit.LogUpdate(ctx, ev.UserID, id, p)
	} else {
		inserted, duplicate, err := s.txs.Insert(ctx, ev.UserID, p, ev.DedupKeys())
		if err != nil {
			return s.storageFailed(ctx, ev, "insert", err, render.SaveFailedText)
		}
		id = inserted
		s.recordInsert(ctx, ev.UserID, id, p, duplicate)
	}

	if _, err := s.flows.Clear(ctx, ev.UserID); err != nil {
		storageErrors.WithLabelValues("flow_delete").Inc()
		logger.FromContext(ctx).Error("failed to clear flow after save", "error", err, "id", id)
	}
	return s.respond(ctx, ev, render.Saved(f, id), nil)
}

func (s *LedgerService) recordInsert(ctx context.Context, userID, id int64, p domain.Proposal, duplicate bool) {
	if duplicate {
		recordsTotal.WithLabelValues("duplicate").Inc()
		logger.FromContext(ctx).Info("duplicate delivery", "id", id)
		return
	}
	recordsTotal.WithLabelValues("inserted").Inc()
	s.audit.LogCreate(ctx, userID, id, p)
}

func (s *LedgerService) openFlow(ctx context.Context, ev domain.IncomingEvent, f *domain.Flow) error {
	if err := s.flows.Save(ctx, ev.UserID, ev.ChannelID, f); err != nil {
		return s.storageFailed(ctx, ev, "flow_save", err, render.GenericFailText)
	}
	text, kb := flow.Prompt(f)
	return s.send(ctx, ev, text, kb)
}

// CreateFromText parses ev.Text and saves it. A debt without a recognizable counterparty
// opens the dialogue at the person step instead.
func (s *LedgerService) CreateFromText(ctx context.Context, ev domain.IncomingEvent) error {
	p, err := parser.Parse(ev.Text)
	if err != nil {
		parseFailures.Inc()
		return s.send(ctx, ev, render.NoAmountText, nil)
	}

	if p.Direction.NeedsPerson() && p.Person == "" {
		return s.openFlow(ctx, ev, flow.StartFromProposal(p))
	}

	id, duplicate, err := s.txs.Insert(ctx, ev.UserID, p, ev.DedupKeys())
	if err != nil {
		return s.storageFailed(ctx, ev, "insert", err, render.SaveFailedText)
	}
	s.recordInsert(ctx, ev.UserID, id, p, duplicate)
	return s.send(ctx, ev, render.SavedProposal(p, id), nil)
}

// StartAdd opens a new guided add dialogue, replacing any active one.
func (s *LedgerService) StartAdd(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("add").Inc()
	return s.openFlow(ctx, ev, flow.Start())
}

// StartEdit opens an edit dialogue for one of the user's records.
func (s *LedgerService) StartEdit(ctx context.Context, ev domain.IncomingEvent, id int64) error {
	eventsTotal.WithLabelValues("edit").Inc()
	tx, err := s.txs.Get(ctx, ev.UserID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return s.send(ctx, ev, render.NotFoundText, nil)
	}
	if err != nil {
		return s.storageFailed(ctx, ev, "get", err, render.GenericFailText)
	}
	return s.openFlow(ctx, ev, flow.StartEdit(tx))
}

func (s *LedgerService) Delete(ctx context.Context, ev domain.IncomingEvent, id int64) error {
	eventsTotal.WithLabelValues("delete").Inc()
	ok, err := s.txs.Delete(ctx, ev.UserID, id)
	if err != nil {
		return s.storageFailed(ctx, ev, "delete", err, render.GenericFailText)
	}
	if !ok {
		return s.send(ctx, ev, render.NotFoundText, nil)
	}
	recordsTotal.WithLabelValues("deleted").Inc()
	s.audit.LogDelete(ctx, ev.UserID, id, domain.AuditActionDelete)
	return s.send(ctx, ev, fmt.Sprintf("Deleted: #%d", id), nil)
}

// Undo deletes the user's most recent record.
func (s *LedgerService) Undo(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("undo").Inc()
	txs, err := s.txs.ListRecent(ctx, ev.UserID, 1)
	if err != nil {
		return s.storageFailed(ctx, ev, "list_recent", err, render.GenericFailText)
	}
	if len(txs) == 0 {
		return s.send(ctx, ev, "Nothing to undo.", nil)
	}

	id := txs[0].ID
	ok, err := s.txs.Delete(ctx, ev.UserID, id)
	if err != nil {
		return s.storageFailed(ctx, ev, "delete", err, render.GenericFailText)
	}
	if !ok {
		return s.send(ctx, ev, "Couldn't delete the last record.", nil)
	}
	recordsTotal.WithLabelValues("deleted").Inc()
	s.audit.LogDelete(ctx, ev.UserID, id, domain.AuditActionUndo)
	return s.send(ctx, ev, fmt.Sprintf("Deleted last record: #%d", id), nil)
}

// CancelDialogue drops the active dialogue, if any.
func (s *LedgerService) CancelDialogue(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("cancel").Inc()
	f, err := s.flows.Load(ctx, ev.UserID, ev.ChannelID)
	if err != nil {
		return s.storageFailed(ctx, ev, "flow_load", err, render.GenericFailText)
	}
	if _, err := s.flows.Clear(ctx, ev.UserID); err != nil {
		return s.storageFailed(ctx, ev, "flow_delete", err, render.GenericFailText)
	}
	if f == nil {
		return s.send(ctx, ev, "Nothing to cancel.", nil)
	}
	return s.send(ctx, ev, "Canceled.", nil)
}

// ListRecent shows the newest records with Edit/Delete buttons. limit <= 0 uses the default.
func (s *LedgerService) ListRecent(ctx context.Context, ev domain.IncomingEvent, limit int) error {
	eventsTotal.WithLabelValues("last").Inc()
	limit = clampLimit(limit)
	txs, err := s.txs.ListRecent(ctx, ev.UserID, limit)
	if err != nil {
		return s.storageFailed(ctx, ev, "list_recent", err, render.GenericFailText)
	}
	return s.send(ctx, ev, render.RecentRecords(txs), render.RecordButtons(txs, limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

func (s *LedgerService) WeekSummary(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("week").Inc()
	sum, err := s.summaries.Week(ctx, ev.UserID)
	if err != nil {
		return s.storageFailed(ctx, ev, "summary", err, render.GenericFailText)
	}
	return s.send(ctx, ev, render.Summary(sum, "Weekly summary", weekDaysShown), nil)
}

func (s *LedgerService) MonthSummary(ctx context.Context, ev domain.IncomingEvent) error {
	eventsTotal.WithLabelValues("month").Inc()
	sum, err := s.summaries.Month(ctx, ev.UserID)
	if err != nil {
		return s.storageFailed(ctx, ev, "summary", err, render.GenericFailText)
	}
	return s.send(ctx, ev, render.Summary(sum, "Monthly summary", monthDaysShown), nil)
}

// recordButton handles "edit:<id>" and "del:<id>[:<limit>]" from the record list.
func (s *LedgerService) recordButton(ctx context.Context, ev domain.IncomingEvent, rest string) error {
	parts := strings.Split(rest, ":")
	if len(parts) < 2 {
		return nil
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}

	switch parts[0] {
	case "edit":
		return s.StartEdit(ctx, ev, id)

	case "del":
		limit := DefaultListLimit
		if len(parts) > 2 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				limit = clampLimit(n)
			}
		}

		ok, err := s.txs.Delete(ctx, ev.UserID, id)
		if err != nil {
			return s.storageFailed(ctx, ev, "delete", err, render.GenericFailText)
		}
		if !ok {
			return s.send(ctx, ev, render.NotFoundText, nil)
		}
		recordsTotal.WithLabelValues("deleted").Inc()
		s.audit.LogDelete(ctx, ev.UserID, id, domain.AuditActionDelete)

		txs, err := s.txs.ListRecent(ctx, ev.UserID, limit)
		if err != nil {
			return s.storageFailed(ctx, ev, "list_recent", err, render.GenericFailText)
		}
		return s.respond(ctx, ev, render.RecentRecords(txs), render.RecordButtons(txs, limit))
	}
	return nil
}
