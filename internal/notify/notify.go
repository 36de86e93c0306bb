// Package notify emails the team when a card's checklist becomes
// complete, tracking already-sent notifications in a state file.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/wneessen/go-mail"

	"dubline/internal/board"
)

var urlRe = regexp.MustCompile(`https?://[^\s<>)\]]+`)

var audioExtensions = []string{".mp3", ".wav"}

// State maps card ids to "notified" so a completed card only triggers
// one email across runs.
type State struct {
	path    string
	entries map[string]string
}

// LoadState reads the state file; a missing or corrupt file starts empty.
func LoadState(path string) *State {
	s := &State{path: path, entries: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return s
	}
	s.entries = raw
	return s
}

// Notified reports whether the card was already announced.
func (s *State) Notified(cardID string) bool {
	return s.entries[cardID] == "notified"
}

// MarkNotified records the card as announced.
func (s *State) MarkNotified(cardID string) {
	s.entries[cardID] = "notified"
}

// Save writes the state atomically so a crash never truncates it.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write notify state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace notify state: %w", err)
	}
	return nil
}

// CardComplete reports whether any non-empty checklist on the card has
// every item checked off.
func CardComplete(c board.Card) bool {
	for _, cl := range c.Checklists {
		if len(cl.CheckItems) == 0 {
			continue
		}
		done := true
		for _, item := range cl.CheckItems {
			if !strings.EqualFold(item.State, "complete") {
				done = false
				break
			}
		}
		if done {
			return true
		}
	}
	return false
}

// CardLinks collects URLs from the card's comments and attachments,
// trailing punctuation trimmed and duplicates dropped in order.
func CardLinks(c board.Card) []string {
	var raw []string
	for _, a := range c.Actions {
		if a.Type != "commentCard" {
			continue
		}
		raw = append(raw, urlRe.FindAllString(a.Data.Text, -1)...)
	}
	for _, att := range c.Attachments {
		if u := strings.TrimSpace(att.URL); u != "" {
			raw = append(raw, u)
		}
	}

	seen := map[string]bool{}
	var out []string
	for _, l := range raw {
		l = strings.TrimRight(strings.TrimSpace(l), ".,)")
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// AudioLinks filters links pointing directly at audio files.
func AudioLinks(links []string) []string {
	var out []string
	for _, l := range links {
		lower := strings.ToLower(l)
		for _, ext := range audioExtensions {
			if strings.HasSuffix(lower, ext) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// MailConfig carries SMTP settings, usually read from the environment.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
	TLS      bool
}

// MailConfigFromEnv reads SMTP_* and EMAIL_* variables.
func MailConfigFromEnv() (MailConfig, error) {
	var cfg MailConfig
	cfg.Host = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if cfg.Host == "" {
		return cfg, fmt.Errorf("missing SMTP_HOST")
	}
	portRaw := strings.TrimSpace(os.Getenv("SMTP_PORT"))
	if portRaw == "" {
		return cfg, fmt.Errorf("missing SMTP_PORT")
	}
	port, err := strconv.Atoi(portRaw)
	if err != nil {
		return cfg, fmt.Errorf("SMTP_PORT must be an integer: %w", err)
	}
	cfg.Port = port
	cfg.User = strings.TrimSpace(os.Getenv("SMTP_USER"))
	if cfg.User == "" {
		return cfg, fmt.Errorf("missing SMTP_USER")
	}
	cfg.Password = strings.TrimSpace(os.Getenv("SMTP_PASSWORD"))
	if cfg.Password == "" {
		return cfg, fmt.Errorf("missing SMTP_PASSWORD")
	}
	cfg.From = strings.TrimSpace(os.Getenv("EMAIL_FROM"))
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	cfg.To = strings.TrimSpace(os.Getenv("EMAIL_TO"))
	if cfg.To == "" {
		return cfg, fmt.Errorf("missing EMAIL_TO")
	}
	tlsRaw := strings.ToLower(strings.TrimSpace(os.Getenv("SMTP_TLS")))
	cfg.TLS = tlsRaw != "0" && tlsRaw != "false" && tlsRaw != "no"
	return cfg, nil
}

// Sender delivers notification emails.
type Sender interface {
	Send(subject, body string) error
}

// SMTPSender sends plain-text mail over SMTP with optional STARTTLS.
type SMTPSender struct {
	Config MailConfig
}

func (s *SMTPSender) Send(subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.Config.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(s.Config.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	tlsPolicy := mail.TLSMandatory
	if !s.Config.TLS {
		tlsPolicy = mail.NoTLS
	}
	client, err := mail.NewClient(s.Config.Host,
		mail.WithPort(s.Config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Config.User),
		mail.WithPassword(s.Config.Password),
		mail.WithTLSPolicy(tlsPolicy),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

// Notifier scans a snapshot list for newly completed cards and emails
// one message per card.
type Notifier struct {
	State  *State
	Sender Sender
	Log    *log.Logger
}

// Run returns the names of cards it notified about. State is saved even
// when some sends fail so retried cards do not double-notify.
func (n *Notifier) Run(snap *board.Snapshot, listName string) ([]string, error) {
	var pending []board.Card
	for _, card := range snap.Cards(listName) {
		if card.ID == "" || !CardComplete(card) || n.State.Notified(card.ID) {
			continue
		}
		pending = append(pending, card)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var notified []string
	var firstErr error
	for _, card := range pending {
		links := CardLinks(card)
		audio := AudioLinks(links)
		subject := fmt.Sprintf("Checklist complete: %s", card.Name)
		if err := n.Sender.Send(subject, EmailBody(card, links, audio)); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("notify %s: %w", card.Name, err)
			}
			if n.Log != nil {
				n.Log.Error("notification failed", "card", card.Name, "err", err)
			}
			continue
		}
		n.State.MarkNotified(card.ID)
		notified = append(notified, card.Name)
		if n.Log != nil {
			n.Log.Info("notification sent", "card", card.Name, "links", len(links))
		}
	}
	sort.Strings(notified)
	if err := n.State.Save(); err != nil && firstErr == nil {
		firstErr = err
	}
	return notified, firstErr
}

// EmailBody formats the plain-text notification for one card.
func EmailBody(c board.Card, links, audio []string) string {
	var b strings.Builder
	b.WriteString("Checklist completed\n\n")
	fmt.Fprintf(&b, "Project: %s\n", c.Name)
	if c.ShortURL != "" {
		fmt.Fprintf(&b, "Card: %s\n", c.ShortURL)
	}
	if c.Due != "" {
		fmt.Fprintf(&b, "Due: %s\n", c.Due)
	}
	b.WriteString("\n")
	if len(links) > 0 {
		b.WriteString("Links found in comments/attachments:\n")
		for _, l := range links {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		b.WriteString("\n")
	}
	if len(audio) > 0 {
		b.WriteString("Direct audio links (mp3/wav):\n")
		for _, l := range audio {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		b.WriteString("\n")
	}
	b.WriteString("Note: shared drive links may require manual download depending on share settings.\n")
	return b.String()
}
