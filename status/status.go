package status

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/schollz/progressbar/v3"

	"callboard/clock"
	"callboard/dispatcher"
)

// Report is what the panel logs periodically and on shutdown.
type Report struct {
	Session      string            `json:"session"`
	Uptime       time.Duration     `json:"uptime"`
	Dispatcher   dispatcher.Status `json:"dispatcher"`
	EdgesDropped uint64            `json:"edges_dropped"`
	BuzzerPulses uint64            `json:"buzzer_pulses"`
}

// Reporter builds reports relative to the boot time.
type Reporter struct {
	session string
	started time.Time
	clock   clock.Clock
}

func NewReporter(session string, clk clock.Clock) *Reporter {
	if clk == nil {
		clk = clock.Real()
	}
	return &Reporter{
		session: session,
		started: clk.Now(),
		clock:   clk,
	}
}

func (r *Reporter) Build(st dispatcher.Status, edgesDropped, buzzerPulses uint64) Report {
	return Report{
		Session:      r.session,
		Uptime:       r.clock.Now().Sub(r.started),
		Dispatcher:   st,
		EdgesDropped: edgesDropped,
		BuzzerPulses: buzzerPulses,
	}
}

// Uptime renders a duration the way people read it, e.g. "2 hours 5 minutes".
func Uptime(d time.Duration) string {
	if d < time.Second {
		return "just started"
	}
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).String()
}

// Format renders the report as a single status line.
func Format(r Report) string {
	st := r.Dispatcher
	var messages []string

	messages = append(messages, fmt.Sprintf("Now serving %s, next %s", st.Current, st.Next))
	messages = append(messages, queueLine("Priority", st.PriorityLength, st.PriorityItems))
	messages = append(messages, queueLine("Common", st.CommonLength, st.CommonItems))

	alert := "off"
	if st.AlertEnabled {
		alert = "on"
	}
	messages = append(messages, fmt.Sprintf("%d called, %d rejected, alert %s", st.CallsServed, st.Rejected, alert))
	if r.EdgesDropped > 0 {
		messages = append(messages, fmt.Sprintf("%d button edges dropped", r.EdgesDropped))
	}
	messages = append(messages, "up "+Uptime(r.Uptime))

	return "Queue Status: " + strings.Join(messages, " | ")
}

// queueItemsShown caps how many waiting codes a status line lists.
const queueItemsShown = 5

func queueLine(name string, length int, items []string) string {
	if length == 0 {
		return name + ": Empty"
	}
	shown := items
	suffix := ""
	if len(shown) > queueItemsShown {
		shown = shown[:queueItemsShown]
		suffix = ", ..."
	}
	return fmt.Sprintf("%s: %d queued (%s%s)", name, length, strings.Join(shown, ", "), suffix)
}

// Occupancy renders one fill bar per queue.
func Occupancy(st dispatcher.Status, width int) []string {
	return []string{
		bar("Priority", st.PriorityLength, st.PriorityCapacity, width),
		bar("Common", st.CommonLength, st.CommonCapacity, width),
	}
}

func bar(name string, length, capacity, width int) string {
	var buf bytes.Buffer
	pb := progressbar.NewOptions(capacity,
		progressbar.OptionSetWriter(&buf),
		progressbar.OptionSetDescription(fmt.Sprintf("%-8s", name)),
		progressbar.OptionSetWidth(width),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetRenderBlankState(true),
	)
	_ = pb.Set(length)

	// The bar redraws in place with carriage returns; keep the last frame.
	frames := strings.Split(buf.String(), "\r")
	return strings.TrimSpace(frames[len(frames)-1])
}
