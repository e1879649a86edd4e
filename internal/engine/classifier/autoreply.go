package classifier

import "strings"

// Reply is the acknowledgement shown to a submitter right after filing.
type Reply struct {
	Category   string `json:"category"`
	Greeting   string `json:"greeting"`
	Apology    string `json:"apology"`
	Action     string `json:"action"`
	Timeline   string `json:"timeline"`
	Closing    string `json:"closing"`
	TicketNote string `json:"ticketNote"`
}

type replyTemplate struct {
	Apology  string
	Action   string
	Timeline string
}

const (
	replyClosing    = "We value your feedback and are committed to resolving this promptly."
	replyTicketNote = "Your complaint has been logged and assigned a tracking ID. You can monitor its progress in real-time from your dashboard."
)

var replyTopics = RuleSet{
	Rules: []Rule{
		{"billing", []string{"billing", "payment", "charge", "refund", "money", "fee"}},
		{"delivery", []string{"delivery", "shipping", "package", "order", "late", "arrived"}},
		{"product", []string{"product", "quality", "defect", "broken", "damaged", "not working"}},
		{"service", []string{"service", "staff", "rude", "behavior", "attitude", "customer service"}},
		{"technical", []string{"technical", "bug", "error", "crash", "not loading", "website", "app"}},
		{"food", []string{"food", "meal", "taste", "cold", "hygiene", "restaurant"}},
		{"safety", []string{"safety", "security", "dangerous", "threat", "emergency"}},
	},
	Fallback: "general",
}

var replyTemplates = map[string]replyTemplate{
	"billing": {
		"We sincerely apologize for any billing inconvenience you've experienced.",
		"Our finance team will review your account and transaction history immediately.",
		"Billing issues are typically resolved within 24-48 hours.",
	},
	"delivery": {
		"We're truly sorry for the delivery issues you've faced.",
		"Our logistics team will track your order and provide an update shortly.",
		"You'll receive tracking information within 2-4 hours.",
	},
	"product": {
		"We apologize for the product quality issues you've encountered.",
		"Our quality assurance team will assess this and arrange a replacement or refund.",
		"Expect a response within 24 hours with resolution options.",
	},
	"service": {
		"We deeply apologize for the service experience that did not meet your expectations.",
		"This feedback will be shared with our management team for immediate review.",
		"A senior representative will contact you within 12 hours.",
	},
	"technical": {
		"We apologize for the technical difficulties you've experienced.",
		"Our tech team has been notified and will investigate the issue.",
		"Technical issues are prioritized and addressed within 6-12 hours.",
	},
	"food": {
		"We sincerely apologize for the food-related issue you've experienced.",
		"Our quality team will review this with the kitchen staff immediately.",
		"You'll receive a resolution offer within 4 hours.",
	},
	"safety": {
		"We take your safety concern very seriously.",
		"This has been escalated to our safety team for immediate action.",
		"A safety officer will contact you within 1 hour.",
	},
	"general": {
		"We sincerely apologize for any inconvenience you've experienced.",
		"Your complaint has been received and will be reviewed by our team.",
		"Expect a response within 24-48 hours.",
	},
}

// AutoReply composes the acknowledgement for a new complaint.
func AutoReply(title, description, userName string) Reply {
	topic := firstMatch(replyTopics, strings.ToLower(title+" "+description))
	tmpl := replyTemplates[topic]

	name := "Valued Customer"
	if fields := strings.Fields(userName); len(fields) > 0 {
		name = fields[0]
	}

	return Reply{
		Category:   strings.ToUpper(topic[:1]) + topic[1:],
		Greeting:   "Thank you for reaching out, " + name + "!",
		Apology:    tmpl.Apology,
		Action:     tmpl.Action,
		Timeline:   tmpl.Timeline,
		Closing:    replyClosing,
		TicketNote: replyTicketNote,
	}
}
