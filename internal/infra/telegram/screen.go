package telegram

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/clock"
	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/overdue"
)

// messenger is the part of *telebot.Bot the screen needs.
type messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

var sectionTitles = map[overduelist.SectionTitle]string{
	overduelist.TitlePendingToCall:        "Pending to call",
	overduelist.TitleAgreedToVisit:        "Agreed to visit",
	overduelist.TitleRemindToCallLater:    "Remind to call later",
	overduelist.TitleRemovedFromOverdue:   "Removed from overdue list",
	overduelist.TitleMoreThanAYearOverdue: "More than a year overdue",
}

// ChatScreen draws one chat's overdue list as a single message that is edited in place.
// Dialogs and patient details go out as separate messages.
type ChatScreen struct {
	bot          messenger
	chat         telebot.ChatID
	seeLessLimit int
	today        func() time.Time
	logger       *logrus.Entry

	mu        sync.Mutex
	listMsg   *telebot.Message
	lastText  string
	lastRows  []overduelist.ListRow
	lastState overduelist.PendingListState
}

func NewChatScreen(bot messenger, chatID int64, seeLessLimit int, today func() time.Time, logger *logrus.Entry) *ChatScreen {
	if seeLessLimit < 1 {
		seeLessLimit = 1
	}
	return &ChatScreen{
		bot:          bot,
		chat:         telebot.ChatID(chatID),
		seeLessLimit: seeLessLimit,
		today:        today,
		logger:       logger.WithField("chat_id", chatID),
	}
}

// NewChatScreenFactory returns a constructor suitable for overduelist.NewSessionManager.
func NewChatScreenFactory(bot messenger, seeLessLimit int, today func() time.Time, logger *logrus.Entry) func(chatID int64) overduelist.Screen {
	return func(chatID int64) overduelist.Screen {
		return NewChatScreen(bot, chatID, seeLessLimit, today, logger)
	}
}

func (s *ChatScreen) ShowProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRows = nil
	s.showList("Loading overdue patients...", nil)
}

func (s *ChatScreen) ShowOverdueAppointments(view overduelist.ListView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRows != nil && s.lastState == view.PendingListState && overduelist.SameRows(s.lastRows, view.Rows) {
		return
	}
	text, markup := s.renderList(view)
	s.lastRows = view.Rows
	s.lastState = view.PendingListState
	s.showList(text, markup)
}

func (s *ChatScreen) ShowLoadFailure(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("Try again", btnRetry.Unique)))
	s.lastRows = nil
	s.showList(reason, markup)
}

func (s *ChatScreen) OpenPatientSummary(a overdue.OverdueAppointment) {
	today := s.today()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", a.FullName)
	fmt.Fprintf(&b, "%s, %d years\n", genderLabel(a.Gender), a.Age.EstimateAge(today))
	if a.VillageName != nil {
		fmt.Fprintf(&b, "Village: %s\n", *a.VillageName)
	}
	if a.PhoneNumber != nil {
		fmt.Fprintf(&b, "Phone: %s\n", *a.PhoneNumber)
	}
	fmt.Fprintf(&b, "Visit was due on %s (%s)\n", a.ScheduledDate.Format("2 Jan 2006"), overdueLabel(clock.DaysBetween(a.ScheduledDate, today)))
	if a.IsAtHighRisk {
		b.WriteString("High risk patient\n")
	}
	if a.CallOutcome != nil {
		fmt.Fprintf(&b, "Last call result: %s\n", outcomeLabel(*a.CallOutcome))
	}

	var markup *telebot.ReplyMarkup
	if a.PhoneNumber != nil {
		markup = &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(markup.Data("Call", btnCallPatient.Unique, a.PatientID.String())))
	}
	s.send(b.String(), markup)
}

func (s *ChatScreen) OpenContactOptions(a overdue.OverdueAppointment) {
	if a.PhoneNumber == nil {
		s.send(fmt.Sprintf("%s has no phone number on record.", a.FullName), nil)
		return
	}
	s.send(fmt.Sprintf("Call %s on %s.\nAfter the call, record the result in the app.", a.FullName, *a.PhoneNumber), nil)
}

func (s *ChatScreen) ShowNoConnectionDialog() {
	s.send("You are offline. Connect to the internet to download or share the overdue list.", nil)
}

func (s *ChatScreen) OpenFormatChooser(purpose overduelist.Purpose) {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("CSV", btnFormat.Unique, formatPayload(purpose, download.FormatCSV)),
		markup.Data("PDF", btnFormat.Unique, formatPayload(purpose, download.FormatPDF)),
	))

	text := "Choose a file format to download."
	if purpose == overduelist.PurposeShare {
		text = "Choose a file format to share."
	}
	s.send(text, markup)
}

func (s *ChatScreen) ShowDownloadScheduled(format download.Format) {
	s.send(fmt.Sprintf("Your %s download is being prepared. It will arrive in this chat shortly.", format), nil)
}

func (s *ChatScreen) ShowSharingInProgress(format download.Format) {
	s.send(fmt.Sprintf("Preparing the %s file to share...", format), nil)
}

func (s *ChatScreen) ShowLegacyOverdueAppointments(appointments []overdue.OverdueAppointment, diabetesManagementEnabled bool) {
	today := s.today()
	var b strings.Builder
	if diabetesManagementEnabled {
		fmt.Fprintf(&b, "Overdue hypertension and diabetes patients: %d\n\n", len(appointments))
	} else {
		fmt.Fprintf(&b, "Overdue hypertension patients: %d\n\n", len(appointments))
	}
	if len(appointments) == 0 {
		b.WriteString("No patients are overdue.")
	}

	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	for i, a := range appointments {
		writeAppointmentLine(&b, overduelist.NewAppointmentRow(a, today))
		if i < s.seeLessLimit {
			rows = append(rows, markup.Row(markup.Data(a.FullName, btnOpenPatient.Unique, a.PatientID.String())))
		}
	}
	markup.Inline(rows...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.showList(b.String(), markup)
}

func (s *ChatScreen) ShowError(message string) {
	s.send(message, nil)
}

func (s *ChatScreen) renderList(view overduelist.ListView) (string, *telebot.ReplyMarkup) {
	markup := &telebot.ReplyMarkup{}
	var buttons []telebot.Row
	var b strings.Builder

	fmt.Fprintf(&b, "Overdue patients: %d\n\n", view.OverdueCount)

	inPending := false
	pendingTotal, pendingShown := 0, 0
	for _, row := range view.Rows {
		switch r := row.(type) {
		case overduelist.SectionHeader:
			inPending = r.Title == overduelist.TitlePendingToCall
			if inPending {
				pendingTotal = r.Count
			}
			fmt.Fprintf(&b, "%s (%d)\n", sectionTitles[r.Title], r.Count)
		case overduelist.AppointmentRow:
			if inPending {
				if view.PendingListState == overduelist.SeeLess && pendingShown >= s.seeLessLimit {
					continue
				}
				pendingShown++
				buttons = append(buttons, appointmentButtons(markup, r))
			}
			writeAppointmentLine(&b, r)
		case overduelist.EmptyPendingPlaceholder:
			b.WriteString("  No patients pending to call.\n")
		case overduelist.PendingListFooter:
			if pendingTotal > s.seeLessLimit {
				fmt.Fprintf(&b, "  Showing %d of %d\n", pendingShown, pendingTotal)
				label := "See all"
				if view.PendingListState == overduelist.SeeAll {
					label = "See less"
				}
				buttons = append(buttons, markup.Row(markup.Data(label, btnPendingFooter.Unique)))
			}
		case overduelist.Divider:
			b.WriteString("\n")
		}
	}

	if !view.IsEmpty {
		buttons = append(buttons, markup.Row(
			markup.Data("Download", btnDownload.Unique),
			markup.Data("Share", btnShare.Unique),
		))
	}
	markup.Inline(buttons...)
	return b.String(), markup
}

func appointmentButtons(markup *telebot.ReplyMarkup, r overduelist.AppointmentRow) telebot.Row {
	open := markup.Data(r.Name, btnOpenPatient.Unique, r.PatientID.String())
	if r.PhoneNumber == nil {
		return markup.Row(open)
	}
	return markup.Row(open, markup.Data("Call", btnCallPatient.Unique, r.PatientID.String()))
}

func writeAppointmentLine(b *strings.Builder, r overduelist.AppointmentRow) {
	fmt.Fprintf(b, "  • %s, %s %d, %s", r.Name, genderLabel(r.Gender), r.Age, overdueLabel(r.OverdueDays))
	if r.IsAtHighRisk {
		b.WriteString(", high risk")
	}
	if r.VillageName != nil {
		fmt.Fprintf(b, ", %s", *r.VillageName)
	}
	b.WriteString("\n")
}

func genderLabel(g overdue.Gender) string {
	switch g {
	case overdue.GenderFemale:
		return "F"
	case overdue.GenderMale:
		return "M"
	case overdue.GenderTransgender:
		return "T"
	default:
		return "-"
	}
}

func overdueLabel(days int) string {
	switch {
	case days == 1:
		return "1 day overdue"
	case days > 1:
		return fmt.Sprintf("%d days overdue", days)
	case days == 0:
		return "due today"
	case days == -1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", -days)
	}
}

func outcomeLabel(o overdue.CallOutcome) string {
	switch o {
	case overdue.CallOutcomeAgreedToVisit:
		return "agreed to visit"
	case overdue.CallOutcomeRemindToCallLater:
		return "remind to call later"
	case overdue.CallOutcomeRemovedFromOverdue:
		return "removed from overdue list"
	default:
		return string(o)
	}
}

// showList edits the list message in place, sending a new one when there is none yet.
// Callers hold s.mu.
func (s *ChatScreen) showList(text string, markup *telebot.ReplyMarkup) {
	if s.listMsg != nil {
		if text == s.lastText && markup == nil {
			return
		}
		msg, err := s.bot.Edit(s.listMsg, text, sendOptions(markup))
		switch {
		case err == nil:
			s.listMsg = msg
			s.lastText = text
			return
		case errors.Is(err, telebot.ErrMessageNotModified), errors.Is(err, telebot.ErrSameMessageContent):
			s.lastText = text
			return
		default:
			s.logger.WithError(err).Warn("Failed to edit overdue list message, sending a new one")
		}
	}

	msg, err := s.bot.Send(s.chat, text, sendOptions(markup))
	if err != nil {
		s.logger.WithError(err).Error("Failed to send overdue list message")
		return
	}
	s.listMsg = msg
	s.lastText = text
}

func (s *ChatScreen) send(text string, markup *telebot.ReplyMarkup) {
	if _, err := s.bot.Send(s.chat, text, sendOptions(markup)); err != nil {
		s.logger.WithError(err).Error("Failed to send message")
	}
}

func sendOptions(markup *telebot.ReplyMarkup) *telebot.SendOptions {
	opts := &telebot.SendOptions{DisableWebPagePreview: true}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	return opts
}
