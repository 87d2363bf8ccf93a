// File: internal/calendar/ics.go
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	prodID = "-//Motor Mate//Booking Reminder//EN"

	// iCalendar UTC timestamp layout (RFC 5545 section 3.3.5, form 2).
	icsTimeLayout = "20060102T150405Z"
)

// Event is the calendar view of an appointment, decoupled from the booking
// model so rendering can be tested without database rows.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// RenderICS produces an iCalendar document for the event with reminder alarms
// 24 hours and 2 hours before the start. All timestamps are emitted in UTC.
func RenderICS(ev Event, now time.Time) string {
	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(foldLine(line))
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:" + prodID)
	writeLine("CALSCALE:GREGORIAN")
	writeLine("METHOD:PUBLISH")
	writeLine("BEGIN:VEVENT")
	writeLine("UID:" + escapeText(ev.UID))
	writeLine("DTSTAMP:" + now.UTC().Format(icsTimeLayout))
	writeLine("DTSTART:" + ev.Start.UTC().Format(icsTimeLayout))
	writeLine("DTEND:" + ev.End.UTC().Format(icsTimeLayout))
	writeLine("SUMMARY:" + escapeText(ev.Summary))
	if ev.Description != "" {
		writeLine("DESCRIPTION:" + escapeText(ev.Description))
	}
	if ev.Location != "" {
		writeLine("LOCATION:" + escapeText(ev.Location))
	}
	writeLine("STATUS:CONFIRMED")

	for _, trigger := range []string{"-PT24H", "-PT2H"} {
		writeLine("BEGIN:VALARM")
		writeLine("ACTION:DISPLAY")
		writeLine("DESCRIPTION:" + escapeText(ev.Summary))
		writeLine("TRIGGER:" + trigger)
		writeLine("END:VALARM")
	}

	writeLine("END:VEVENT")
	writeLine("END:VCALENDAR")
	return b.String()
}

// GoogleCalendarURL builds a Google Calendar event-creation deep link.
func GoogleCalendarURL(ev Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", ev.Summary)
	q.Set("dates", ev.Start.UTC().Format(icsTimeLayout)+"/"+ev.End.UTC().Format(icsTimeLayout))
	if ev.Description != "" {
		q.Set("details", ev.Description)
	}
	if ev.Location != "" {
		q.Set("location", ev.Location)
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

// OutlookCalendarURL builds an Outlook web event-creation deep link.
func OutlookCalendarURL(ev Event) string {
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", ev.Summary)
	q.Set("startdt", ev.Start.UTC().Format(time.RFC3339))
	q.Set("enddt", ev.End.UTC().Format(time.RFC3339))
	if ev.Description != "" {
		q.Set("body", ev.Description)
	}
	if ev.Location != "" {
		q.Set("location", ev.Location)
	}
	return "https://outlook.live.com/calendar/0/deeplink/compose?" + q.Encode()
}

// escapeText escapes TEXT values per RFC 5545 section 3.3.11.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// foldLine folds content lines longer than 75 octets with CRLF plus a space,
// per RFC 5545 section 3.1. Folding is done on bytes, which is what the 75
// limit counts.
func foldLine(line string) string {
	if len(line) <= 75 {
		return line
	}
	// Continuation lines carry a leading space, so they get one octet less.
	var b strings.Builder
	limit := 75
	for len(line) > limit {
		cut := limit
		// Do not split a UTF-8 sequence.
		for cut > 1 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = 74
	}
	b.WriteString(line)
	return b.String()
}

// eventSummary is the one-line title shared by the ICS file and deep links.
func eventSummary(serviceName, garageName string) string {
	return fmt.Sprintf("%s at %s", serviceName, garageName)
}
