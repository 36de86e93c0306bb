package board

// Raw board records as the Trello REST API returns them. The snapshot
// file keeps this shape so reports can be regenerated offline and so the
// manual-minutes tool can look up card ids without talking to the API.

type BoardInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc,omitempty"`
}

type ListInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Label struct {
	Name string `json:"name"`
}

type CardMember struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type CheckItem struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type Checklist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	CheckItems []CheckItem `json:"checkItems"`
}

type ActionData struct {
	Text string `json:"text,omitempty"`
}

type Action struct {
	Type string     `json:"type"`
	Date string     `json:"date,omitempty"`
	Data ActionData `json:"data"`
}

type Attachment struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

// CustomField is a board-level field definition; card items reference it
// by id.
type CustomField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CustomFieldValue struct {
	Text string `json:"text,omitempty"`
}

type CustomFieldItem struct {
	IDCustomField string            `json:"idCustomField"`
	Value         *CustomFieldValue `json:"value,omitempty"`
}

type Card struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Desc             string            `json:"desc,omitempty"`
	Due              string            `json:"due,omitempty"`
	DateLastActivity string            `json:"dateLastActivity,omitempty"`
	ShortURL         string            `json:"shortUrl,omitempty"`
	IDList           string            `json:"idList,omitempty"`
	Closed           bool              `json:"closed,omitempty"`
	Labels           []Label           `json:"labels,omitempty"`
	Members          []CardMember      `json:"members,omitempty"`
	Checklists       []Checklist       `json:"checklists,omitempty"`
	Actions          []Action          `json:"actions,omitempty"`
	Attachments      []Attachment      `json:"attachments,omitempty"`
	CustomFieldItems []CustomFieldItem `json:"customFieldItems,omitempty"`
}

// Snapshot is one full board pull: cards grouped by list name plus the
// board's custom field definitions.
type Snapshot struct {
	Board        BoardInfo         `json:"board"`
	CustomFields []CustomField     `json:"custom_fields"`
	CardsByList  map[string][]Card `json:"cards_by_list"`
}
