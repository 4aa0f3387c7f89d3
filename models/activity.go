package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

type ActivityType int

const (
	Playing   ActivityType = 0
	Listening ActivityType = 2
	Watching  ActivityType = 3
	Competing ActivityType = 5
)

// maxButtons is the number of buttons Discord renders.
const maxButtons = 2

type Button struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// UnmarshalJSON accepts the button objects sent to Discord as well as the
// bare labels Discord echoes back in SET_ACTIVITY replies.
func (b *Button) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*b = Button{Label: label}
		return nil
	}
	type plain Button
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Button(p)
	return nil
}

type Party struct {
	ID   string   `json:"id,omitempty"`
	Size []uint32 `json:"size,omitempty"` // [current, max]
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type Timestamps struct {
	Start uint64 `json:"start,omitempty"`
	End   uint64 `json:"end,omitempty"`
}

type Secrets struct {
	Join     string `json:"join,omitempty"`
	Spectate string `json:"spectate,omitempty"`
	Match    string `json:"match,omitempty"`
}

// Activity is the rich presence shown on the user's profile. Unset fields
// are omitted from the JSON.
type Activity struct {
	Type       *ActivityType `json:"type,omitempty"`
	State      string        `json:"state,omitempty"`
	Details    string        `json:"details,omitempty"`
	Instance   *bool         `json:"instance,omitempty"`
	Timestamps *Timestamps   `json:"timestamps,omitempty"`
	Assets     *Assets       `json:"assets,omitempty"`
	Party      *Party        `json:"party,omitempty"`
	Secrets    *Secrets      `json:"secrets,omitempty"`
	Buttons    []Button      `json:"buttons,omitempty"`
}

// UnmarshalJSON fills button URLs from metadata.button_urls, where Discord
// puts them when it echoes an activity.
func (a *Activity) UnmarshalJSON(data []byte) error {
	type plain Activity
	var aux struct {
		plain
		Metadata *struct {
			ButtonURLs []string `json:"button_urls"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Activity(aux.plain)
	if aux.Metadata != nil {
		for i, url := range aux.Metadata.ButtonURLs {
			if i < len(a.Buttons) && a.Buttons[i].URL == "" {
				a.Buttons[i].URL = url
			}
		}
	}
	return nil
}

// Clone returns a deep copy of a.
func (a Activity) Clone() Activity {
	out := a
	if a.Type != nil {
		t := *a.Type
		out.Type = &t
	}
	if a.Instance != nil {
		v := *a.Instance
		out.Instance = &v
	}
	if a.Timestamps != nil {
		ts := *a.Timestamps
		out.Timestamps = &ts
	}
	if a.Assets != nil {
		as := *a.Assets
		out.Assets = &as
	}
	if a.Party != nil {
		p := *a.Party
		if p.Size != nil {
			p.Size = append([]uint32(nil), p.Size...)
		}
		out.Party = &p
	}
	if a.Secrets != nil {
		sec := *a.Secrets
		out.Secrets = &sec
	}
	if a.Buttons != nil {
		out.Buttons = append([]Button(nil), a.Buttons...)
	}
	return out
}

func NewActivity() *Activity {
	return &Activity{}
}

func (a *Activity) WithType(t ActivityType) *Activity {
	a.Type = &t
	return a
}

func (a *Activity) WithState(s string) *Activity {
	a.State = s
	return a
}

func (a *Activity) WithDetails(d string) *Activity {
	a.Details = d
	return a
}

func (a *Activity) WithInstance(v bool) *Activity {
	a.Instance = &v
	return a
}

func (a *Activity) WithTimestamps(start, end uint64) *Activity {
	a.Timestamps = &Timestamps{Start: start, End: end}
	return a
}

func (a *Activity) WithAssets(assets Assets) *Activity {
	a.Assets = &assets
	return a
}

func (a *Activity) WithParty(id string, current, limit uint32) *Activity {
	a.Party = &Party{ID: id, Size: []uint32{current, limit}}
	return a
}

func (a *Activity) WithSecrets(s Secrets) *Activity {
	a.Secrets = &s
	return a
}

func (a *Activity) AppendButton(label, url string) *Activity {
	a.Buttons = append(a.Buttons, Button{Label: label, URL: url})
	return a
}

// IsEmpty reports whether no displayable field is set.
func (a Activity) IsEmpty() bool {
	return a.State == "" &&
		a.Details == "" &&
		a.Timestamps == nil &&
		a.Assets == nil &&
		a.Party == nil &&
		a.Secrets == nil &&
		len(a.Buttons) == 0
}

// Normalize returns a copy that Discord accepts: buttons are trimmed, kept
// only with an http(s) URL and capped at two, a sized party without an id
// gets a random one, and empty sub-objects are dropped.
func (a Activity) Normalize() Activity {
	out := a

	buttons := []Button{}
	for _, b := range a.Buttons {
		label := strings.TrimSpace(b.Label)
		url := strings.TrimSpace(b.URL)
		if label == "" || !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
			continue
		}
		buttons = append(buttons, Button{Label: label, URL: url})
		if len(buttons) == maxButtons {
			break
		}
	}
	out.Buttons = nil
	if len(buttons) > 0 {
		out.Buttons = buttons
	}

	if a.Party != nil {
		p := *a.Party
		if len(p.Size) == 2 && p.ID == "" {
			p.ID = uuid.NewString()
		}
		out.Party = &p
	}
	if a.Timestamps != nil && a.Timestamps.Start == 0 && a.Timestamps.End == 0 {
		out.Timestamps = nil
	}
	if a.Assets != nil && *a.Assets == (Assets{}) {
		out.Assets = nil
	}
	if a.Secrets != nil && *a.Secrets == (Secrets{}) {
		out.Secrets = nil
	}
	return out
}
