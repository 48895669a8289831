package moov

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/moovbot/core/telegram/keyboard"
	"github.com/m3rciful/moovbot/moov/streamsearch"
)

// User-facing texts. HTML parse mode is assumed throughout.
const (
	msgMovieAdded     = "Movie was successfully added to your list"
	msgMovieRemoved   = "Movie was successfully removed from your list"
	msgSomethingWrong = "Something went wrong. Please try again later"
	msgAddPrompt      = "Please type a movie title which you want to add in your list"
	msgListHeader     = "You have saved next movies to your list:"
	msgListEmpty      = "You have no items in the list"
	msgRemovePrompt   = "Which movie do you want to remove from your list?"
	msgMoviePoll      = "Which Movie would you like to watch today?"
	msgWatchPoll      = "Will you join us today to watch the Movie?"
	msgNobodyWants    = "Nobody wants to watch movies today =["
	msgUpToYou        = "It is up to you, which movie to watch!"
	msgAdminsOnly     = "Only Group Admins could start a vote"
	msgSearchPrompt   = "Please type a movie title which you want to find"
	msgSearchHeader   = "Here is what I found for your request:"
	msgSearchEmpty    = "Nothing was found for your request"
)

// Callback tokens of the inline keyboards.
const (
	cbListAdd      = "list_add"
	cbListRemove   = "list_remove"
	cbAddCancel    = "add_cancel"
	cbRemoveCancel = "remove_cancel"
	cbRemovePrefix = "remove_"
)

// watchPollOptions are the fixed options of the watcher poll. The first
// option is the affirmative one; answers selecting anything else are not
// counted as joining.
var watchPollOptions = []string{"Yes, I do!", "Nope", "Will consider"}

const yesOptionIndex = 0

func capMessage(max int) string {
	return fmt.Sprintf("Currently you could store no more than <b>%d movies</b> in your list", max)
}

func listText(movies []string) string {
	if len(movies) == 0 {
		return msgListEmpty
	}
	var b strings.Builder
	b.WriteString(msgListHeader)
	for i, title := range movies {
		fmt.Fprintf(&b, "\n%d. %s", i+1, title)
	}
	return b.String()
}

func statusListText(status string, movies []string) string {
	return status + "\n\n" + listText(movies)
}

func listKeyboard(count, max int) keyboard.Markup {
	var row []keyboard.Button
	if count < max {
		row = append(row, keyboard.Button{Text: "Add movie", Data: cbListAdd})
	}
	if count > 0 {
		row = append(row, keyboard.Button{Text: "Remove movie", Data: cbListRemove})
	}
	return keyboard.Rows(row)
}

func addCancelKeyboard() keyboard.Markup {
	return keyboard.Rows(keyboard.Row(keyboard.Button{Text: "Cancel", Data: cbAddCancel}))
}

// removeKeyboard lists one button per stored movie, in list order, so the
// callback index maps straight onto the list position.
func removeKeyboard(movies []string) keyboard.Markup {
	buttons := make([]keyboard.Button, 0, len(movies)+1)
	for i, title := range movies {
		buttons = append(buttons, keyboard.Button{
			Text: title,
			Data: cbRemovePrefix + strconv.Itoa(i),
		})
	}
	buttons = append(buttons, keyboard.Button{Text: "Cancel", Data: cbRemoveCancel})
	return keyboard.Column(buttons...)
}

func searchKeyboard(results []streamsearch.Result) keyboard.Markup {
	buttons := make([]keyboard.Button, 0, len(results))
	for _, r := range results {
		label := r.Title
		if r.Info != "" {
			label += " (" + r.Info + ")"
		}
		buttons = append(buttons, keyboard.Button{
			Text: label,
			Data: strconv.FormatInt(r.ID, 10),
		})
	}
	return keyboard.Column(buttons...)
}

func detailText(d *streamsearch.Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>", d.Title)
	if d.Rating != "" {
		fmt.Fprintf(&b, "\nRating: %s", d.Rating)
	}
	if d.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(d.Description)
	}
	if d.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(d.Link)
	}
	return b.String()
}

// truncateTitle trims the input and caps it at max runes, marking truncation
// with an ellipsis.
func truncateTitle(raw string, max int) string {
	title := strings.TrimSpace(raw)
	runes := []rune(title)
	if max <= 0 || len(runes) <= max {
		return title
	}
	return string(runes[:max]) + "..."
}
