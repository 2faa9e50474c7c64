package thesportsdb

import (
	"strings"

	"github.com/bytedance/sonic"
)

// Event is one row of the events* endpoints. Numeric columns arrive as
// strings, numbers or null depending on the endpoint, so they are read as
// text.
type Event struct {
	IDEvent      text `json:"idEvent"`
	StrEvent     text `json:"strEvent"`
	StrHomeTeam  text `json:"strHomeTeam"`
	StrAwayTeam  text `json:"strAwayTeam"`
	StrTimestamp text `json:"strTimestamp"`
	DateEvent    text `json:"dateEvent"`
	StrTime      text `json:"strTime"`
	StrStatus    text `json:"strStatus"`
	IntHomeScore text `json:"intHomeScore"`
	IntAwayScore text `json:"intAwayScore"`
	StrRound     text `json:"strRound"`
	IntRound     text `json:"intRound"`
	StrGroup     text `json:"strGroup"`
	StrSeason    text `json:"strSeason"`
	IDLeague     text `json:"idLeague"`
}

type text string

func (t *text) UnmarshalJSON(raw []byte) error {
	value := strings.TrimSpace(string(raw))
	switch {
	case value == "" || value == "null":
		*t = ""
	case value[0] == '"':
		var s string
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = text(strings.TrimSpace(s))
	default:
		*t = text(value)
	}
	return nil
}

func (t text) String() string {
	return string(t)
}
