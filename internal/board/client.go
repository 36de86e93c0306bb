// Package board talks to the Trello REST API and turns a board into the
// snapshot file the report commands consume.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const defaultBaseURL = "https://api.trello.com/1"

// Client is a minimal Trello REST client authenticated with key+token
// query parameters.
type Client struct {
	Key        string
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Log        *log.Logger
}

// NewClient creates a client with sane defaults.
func NewClient(key, token string, logger *log.Logger) *Client {
	return &Client{
		Key:        key,
		Token:      token,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Log:        logger,
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Boards lists the authenticated user's boards.
func (c *Client) Boards(ctx context.Context) ([]BoardInfo, error) {
	var out []BoardInfo
	err := c.get(ctx, "/members/me/boards", url.Values{"fields": {"name,id,desc"}}, &out)
	return out, err
}

// FindBoard resolves a board by exact name.
func (c *Client) FindBoard(ctx context.Context, name string) (BoardInfo, error) {
	boards, err := c.Boards(ctx)
	if err != nil {
		return BoardInfo{}, err
	}
	for _, b := range boards {
		if b.Name == name {
			return b, nil
		}
	}
	return BoardInfo{}, fmt.Errorf("board %q not found", name)
}

// Lists returns the lists on a board.
func (c *Client) Lists(ctx context.Context, boardID string) ([]ListInfo, error) {
	var out []ListInfo
	err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", url.Values{"fields": {"name,id"}}, &out)
	return out, err
}

// CustomFields returns the board's custom field definitions.
func (c *Client) CustomFields(ctx context.Context, boardID string) ([]CustomField, error) {
	var out []CustomField
	err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/customFields", nil, &out)
	return out, err
}

// Cards returns summary cards for a board; details are fetched per card.
func (c *Client) Cards(ctx context.Context, boardID string) ([]Card, error) {
	var out []Card
	params := url.Values{"fields": {"name,id,desc,due,dateLastActivity,labels,idList,closed,shortUrl"}}
	err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/cards", params, &out)
	return out, err
}

// CardDetails fetches one card with members, checklists, comments,
// attachments, and custom field items.
func (c *Client) CardDetails(ctx context.Context, cardID string) (Card, error) {
	params := url.Values{
		"fields":                        {"name,id,desc,due,dateLastActivity,labels,idList,closed,shortUrl"},
		"members":                       {"true"},
		"member_fields":                 {"fullName,username,avatarUrl"},
		"checklists":                    {"all"},
		"checklist_fields":              {"name,id"},
		"attachments":                   {"true"},
		"attachment_fields":             {"name,url"},
		"actions":                       {"commentCard"},
		"actions_limit":                 {"1000"},
		"action_fields":                 {"date,type,data"},
		"action_memberCreator_fields":   {"fullName,username"},
		"customFieldItems":              {"true"},
	}
	var out Card
	err := c.get(ctx, "/cards/"+url.PathEscape(cardID), params, &out)
	return out, err
}

// FetchBoard pulls the whole board into a snapshot: lists, custom field
// definitions, and full details for every card, grouped by list name.
func (c *Client) FetchBoard(ctx context.Context, boardName string) (Snapshot, error) {
	board, err := c.FindBoard(ctx, boardName)
	if err != nil {
		return Snapshot{}, err
	}
	lists, err := c.Lists(ctx, board.ID)
	if err != nil {
		return Snapshot{}, err
	}
	fields, err := c.CustomFields(ctx, board.ID)
	if err != nil {
		return Snapshot{}, err
	}
	cards, err := c.Cards(ctx, board.ID)
	if err != nil {
		return Snapshot{}, err
	}

	listName := make(map[string]string, len(lists))
	snap := Snapshot{Board: board, CustomFields: fields, CardsByList: map[string][]Card{}}
	for _, l := range lists {
		listName[l.ID] = l.Name
		snap.CardsByList[l.Name] = []Card{}
	}

	for i, card := range cards {
		if c.Log != nil {
			c.Log.Info("fetching card", "n", i+1, "of", len(cards), "name", card.Name)
		}
		detailed, err := c.CardDetails(ctx, card.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("card %s: %w", card.Name, err)
		}
		name, ok := listName[card.IDList]
		if !ok {
			name = "Unknown"
		}
		snap.CardsByList[name] = append(snap.CardsByList[name], detailed)
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.Key)
	params.Set("token", c.Token)

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
