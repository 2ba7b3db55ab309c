package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dukerupert/dayboard/internal/model"
)

const (
	noPendingTasks   = "No pending tasks"
	noCompletedTasks = "No tasks completed today"
	noHabits         = "No habits configured"
)

// Subject returns the email subject line for a digest kind.
func Subject(kind string) string {
	if kind == model.DigestReview {
		return "🌙 Your Evening Review"
	}
	return "🌞 Your Daily Briefing"
}

var htmlTemplates = template.Must(template.New("briefing").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9;">
<h1 style="color: #333; border-bottom: 3px solid #4CAF50; padding-bottom: 10px;">🌞 Daily Briefing - {{.DateLabel}}</h1>
<h2 style="color: #4CAF50;">🎯 Pending Objectives ({{len .PendingTasks}})</h2>
<ul style="background: white; padding: 20px; border-radius: 8px;">
{{- range .PendingTasks}}<li>{{.}}</li>{{else}}<li>` + noPendingTasks + `</li>{{end -}}
</ul>
<h2 style="color: #4CAF50;">✅ Habits Status ({{.CompletedHabitCount}}/{{.TotalHabitCount}} - {{.HabitPercent}}%)</h2>
<ul style="background: white; padding: 20px; border-radius: 8px;">
{{- range .Habits}}<li>{{.Name}}: {{.Status}}</li>{{else}}<li>` + noHabits + `</li>{{end -}}
</ul>
<h2 style="color: #4CAF50;">📊 Quick Stats</h2>
<div style="background: white; padding: 20px; border-radius: 8px;">
<p><strong>Efficiency:</strong> {{.EfficiencyPercent}}%</p>
<p><strong>Focus Areas:</strong> {{.FocusAreas}}</p>
</div>
<p style="margin-top: 20px; padding: 15px; background: #4CAF50; color: white; border-radius: 8px; text-align: center;">🚀 Have a productive day! Stay focused on your goals.</p>
<p style="text-align: center; color: #999; font-size: 12px; margin-top: 20px;">Sent from Dayboard</p>
</div>`))

func init() {
	template.Must(htmlTemplates.New("review").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #1a1a2e;">
<h1 style="color: #fff; border-bottom: 3px solid #9c27b0; padding-bottom: 10px;">🌙 Evening Review - {{.DateLabel}}</h1>
<h2 style="color: #9c27b0;">🎯 Completed Objectives ({{len .CompletedTasks}})</h2>
<ul style="background: #16213e; color: #fff; padding: 20px; border-radius: 8px;">
{{- range .CompletedTasks}}<li>{{.}}</li>{{else}}<li>` + noCompletedTasks + `</li>{{end -}}
</ul>
<h2 style="color: #9c27b0;">✅ Habits Completed: {{.CompletedHabitCount}}/{{.TotalHabitCount}} ({{.HabitPercent}}%)</h2>
<h2 style="color: #9c27b0;">📊 Day Summary</h2>
<div style="background: #16213e; color: #fff; padding: 20px; border-radius: 8px;">
<p><strong>Tasks Done:</strong> {{len .CompletedTasks}}</p>
<p><strong>Pending:</strong> {{.OpenTaskCount}}</p>
<p><strong>Efficiency:</strong> {{.EfficiencyPercent}}%</p>
<p><strong>Habit Streak:</strong> {{.Streak}}</p>
</div>
<h2 style="color: #9c27b0;">💡 Suggestions</h2>
<ul style="background: #16213e; color: #fff; padding: 20px; border-radius: 8px;">
{{- range .Suggestions}}<li>{{.}}</li>{{end -}}
</ul>
<p style="margin-top: 20px; padding: 15px; background: #9c27b0; color: white; border-radius: 8px; text-align: center;">🧘 Reflect on your day. What went well? What to improve?</p>
<p style="text-align: center; color: #999; font-size: 12px; margin-top: 20px;">Good night! 😴 | Sent from Dayboard</p>
</div>`))
}

// RenderHTML renders the payload for markup-capable channels.
func RenderHTML(p Payload) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, p.Kind, p); err != nil {
		return "", fmt.Errorf("render %s html: %w", p.Kind, err)
	}
	return buf.String(), nil
}

// RenderText renders the payload as line-oriented text for messaging channels.
func RenderText(p Payload) string {
	var b strings.Builder

	if p.Kind == model.DigestReview {
		fmt.Fprintf(&b, "🌙 *Evening Review - %s*\n\n", p.DateLabel)
		fmt.Fprintf(&b, "🎯 *Completed Objectives (%d):*\n", len(p.CompletedTasks))
		writeBullets(&b, p.CompletedTasks, noCompletedTasks)
		fmt.Fprintf(&b, "\n✅ *Habits Completed:* %d/%d (%d%%)\n\n", p.CompletedHabitCount, p.TotalHabitCount, p.HabitPercent)
		b.WriteString("📊 *Day Summary:*\n")
		fmt.Fprintf(&b, "- Tasks Done: %d\n", len(p.CompletedTasks))
		fmt.Fprintf(&b, "- Pending: %d\n", p.OpenTaskCount)
		fmt.Fprintf(&b, "- Efficiency: %d%%\n", p.EfficiencyPercent)
		fmt.Fprintf(&b, "- Habit Streak: %s\n\n", p.Streak)
		b.WriteString("💡 *Suggestions:*\n")
		writeBullets(&b, p.Suggestions, "")
		b.WriteString("\n🧘 Reflect on your day. What went well? What to improve?\n\nGood night! 😴\n\nSent from Dayboard")
		return b.String()
	}

	fmt.Fprintf(&b, "🌞 *Daily Briefing - %s*\n\n", p.DateLabel)
	fmt.Fprintf(&b, "🎯 *Pending Objectives (%d):*\n", len(p.PendingTasks))
	writeBullets(&b, p.PendingTasks, noPendingTasks)
	fmt.Fprintf(&b, "\n✅ *Habits Status (%d/%d - %d%%):*\n", p.CompletedHabitCount, p.TotalHabitCount, p.HabitPercent)
	habits := make([]string, 0, len(p.Habits))
	for _, h := range p.Habits {
		habits = append(habits, h.Name+": "+h.Status)
	}
	writeBullets(&b, habits, noHabits)
	b.WriteString("\n📊 *Quick Stats:*\n")
	fmt.Fprintf(&b, "- Efficiency: %d%%\n", p.EfficiencyPercent)
	fmt.Fprintf(&b, "- Focus Areas: %s\n\n", p.FocusAreas)
	b.WriteString("🚀 Have a productive day! Stay focused on your goals.\n\nSent from Dayboard")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		b.WriteString(empty)
		b.WriteByte('\n')
		return
	}
	for _, item := range items {
		b.WriteString("• ")
		b.WriteString(item)
		b.WriteByte('\n')
	}
}
