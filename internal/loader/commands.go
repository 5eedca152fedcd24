package loader

import (
	"fmt"
	"strings"

	"signalscope-go/internal/model"
	"signalscope-go/internal/monitor"
	"signalscope-go/internal/service"
)

// Commands exposes session state to the chat bot
func (l *Loader) Commands() service.Commands {
	return service.Commands{
		"status":     l.statusReply,
		"prediction": l.predictionReply,
	}
}

func (l *Loader) statusReply(string) string {
	sessions := l.registry.List()
	if len(sessions) == 0 {
		return "No live sessions."
	}

	var b strings.Builder
	b.WriteString("✅ <b>Live sessions</b>\n")
	for _, s := range sessions {
		line := fmt.Sprintf("%s %s: %d candles", s.Symbol, s.Timeframe, s.Candles().Len())
		if p := s.Latest(); p != nil {
			line += fmt.Sprintf(", %s %.1f%%", strings.ToUpper(string(p.Trend)), p.Confidence)
		}
		if last := s.LastRun(); !last.IsZero() {
			line += ", updated " + last.Format("15:04:05")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (l *Loader) predictionReply(args string) string {
	tf, err := model.ParseTimeframe(args)
	if err != nil {
		return "Usage: /prediction <1m|5m|15m|30m>"
	}

	s, ok := l.registry.Get(l.opts.Symbol, tf)
	if !ok {
		return fmt.Sprintf("No session for %s %s.", l.opts.Symbol, tf)
	}
	p := s.Latest()
	if p == nil {
		return fmt.Sprintf("No prediction for %s %s yet.", l.opts.Symbol, tf)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s %s</b>\n", s.Symbol, tf)
	fmt.Fprintf(&b, "Trend: %s (%.1f%%)\n", strings.ToUpper(string(p.Trend)), p.Confidence)
	fmt.Fprintf(&b, "Price: %s\n", monitor.FormatPrice(p.Price))
	fmt.Fprintf(&b, "Target: %s", monitor.FormatPrice(p.TargetPrice))
	for _, sig := range p.Signals {
		b.WriteString("\n• " + sig.Message)
	}
	return b.String()
}
