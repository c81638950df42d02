package render

import "expenses_bot/internal/domain"

const HelpText = `To add a new record:
- Run /add (or tap it in the menu)
- Then follow the guided steps: type → counterparty → amount → description → confirm
- Or just send a line like "150 تومن ممد باید بهم بده" or "220 به ممد"
Note: for privacy, this bot works only in private chats.

Commands:
/add - start a new record (guided)
/id - show your Telegram user id
/menu - show command buttons
/hide - hide command buttons
/last [n] - show recent records
/undo - delete last record
/delete <id> - delete by id (your own ids)
/edit <id> - edit a record by id (guided)
/cancel - cancel the current operation
/week - weekly summary
/month - monthly summary`

const ProbablyCommandText = `It looks like you tried to use a command.
Use /menu or one of these:
- 📒 /last (then tap Edit/Delete buttons)
- /edit <id>
- /delete <id>
- ➕ /add`

const (
	PrivateOnlyText = "For privacy, please use this bot in a private chat."
	NotFoundText    = "Not found (or not yours)."
	SaveFailedText  = "Sorry, I couldn't save that right now. Try again."
	GenericFailText = "Something went wrong. Please try again."
	RateLimitedText = "Too many messages, please slow down."
	NoAmountText    = `I couldn't find an amount in that message.
Examples:
- 100 تومن پول نون
- 220 به ممد
- 150 تومن ممد باید بهم بده
Or run /add for the guided form.`
)

// Command is one entry of the bot's command menu.
type Command struct {
	Name        string
	Description string
}

var Commands = []Command{
	{"start", "Start guided add"},
	{"help", "Show help"},
	{"add", "Add a new record (guided)"},
	{"id", "Show your Telegram user id"},
	{"menu", "Show command buttons"},
	{"hide", "Hide command buttons"},
	{"last", "Show recent records (optional: /last 10)"},
	{"undo", "Delete last record"},
	{"delete", "Delete a record by id (e.g. /delete 12)"},
	{"edit", "Edit a record (e.g. /edit 12)"},
	{"cancel", "Cancel the current operation"},
	{"week", "Weekly summary"},
	{"month", "Monthly summary"},
}

// CommandKeyboard is the persistent reply keyboard with the common commands.
func CommandKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Kind: domain.KeyboardReply,
		Rows: [][]domain.Button{
			{{Text: "/add"}},
			{{Text: "/week"}, {Text: "/month"}},
			{{Text: "/last"}, {Text: "/undo"}},
			{{Text: "/id"}, {Text: "/help"}, {Text: "/hide"}},
		},
	}
}

func RemoveKeyboard() *domain.Keyboard {
	return &domain.Keyboard{Kind: domain.KeyboardRemove}
}
