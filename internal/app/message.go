package app

import (
	"fmt"
	"strings"

	"reminder_notifier/internal/domain/reminder"
)

// ComposeMessage renders the user-facing reminder text.
func ComposeMessage(occ reminder.Occurrence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 Recordatorio: %s\n", occ.Activity)
	fmt.Fprintf(&b, "📅 %s a las %02d:%02d", occ.Date.Format(reminder.DateLayout), occ.Hour, occ.Minute)

	if occ.Anchor != nil {
		unit := "meses"
		if occ.Frequency == 1 {
			unit = "mes"
		}
		fmt.Fprintf(&b, "\n🔁 Cada %d %s desde %s", occ.Frequency, unit, occ.Anchor.Format(reminder.DateLayout))
	}
	if occ.CatchUp {
		b.WriteString("\n⏰ Pendiente: la fecha ya pasó y no se había avisado")
	}
	return b.String()
}
