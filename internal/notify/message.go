package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"MuralNotifier/internal/domain"
)

const subjectLine = "New Publication Alert"

const timestampLayout = "02/01/2006 15:04:05"

var htmlTemplate = template.Must(template.New("alert").Parse(`<html>
<body>
<p>Hello {{.Name}}!</p>
<p>A new publication matching your preferences was detected at {{.DetectedAt}}:</p>
<p>
Publication Number: {{.Number}}<br>
Date: {{.Date}}<br>
Decision Type: {{.DecisionType}}<br>
Content: {{.Body}}
</p>
<p>Matched Preferences:</p>
<ul>
{{- range .MatchedFields}}
<li>{{.}}</li>
{{- end}}
</ul>
<p>Regards,<br>Your notification robot</p>
</body>
</html>
`))

type messageData struct {
	Name          string
	DetectedAt    string
	Number        int64
	Date          string
	DecisionType  string
	Body          string
	MatchedFields []string
}

func buildMessageData(prefs domain.SubscriberPreferences, pub domain.Publication, matchedFields []string, detectedAt time.Time) messageData {
	decisionType := "N/A"
	if pub.DecisionType != nil && *pub.DecisionType != "" {
		decisionType = *pub.DecisionType
	}
	return messageData{
		Name:          prefs.Name(),
		DetectedAt:    detectedAt.Format(timestampLayout),
		Number:        pub.Number,
		Date:          pub.Date,
		DecisionType:  decisionType,
		Body:          pub.BodyText,
		MatchedFields: matchedFields,
	}
}

func renderText(data messageData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", data.Name)
	fmt.Fprintf(&b, "A new publication matching your preferences was detected at %s:\n\n", data.DetectedAt)
	fmt.Fprintf(&b, "Publication Number: %d\n", data.Number)
	fmt.Fprintf(&b, "Date: %s\n", data.Date)
	fmt.Fprintf(&b, "Decision Type: %s\n", data.DecisionType)
	fmt.Fprintf(&b, "Content: %s\n\n", data.Body)
	b.WriteString("Matched Preferences:\n")
	for _, field := range data.MatchedFields {
		fmt.Fprintf(&b, "- %s\n", field)
	}
	b.WriteString("\nRegards,\nYour notification robot")
	return b.String()
}

func renderHTML(data messageData) (string, error) {
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render html body: %w", err)
	}
	return b.String(), nil
}
