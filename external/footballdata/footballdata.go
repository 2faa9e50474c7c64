package footballdata

// Payload shapes of the football-data.org v4 matches endpoint. Only the
// fields the mapper reads are declared.

type Match struct {
	ID       int64  `json:"id"`
	UTCDate  string `json:"utcDate"`
	Status   string `json:"status"`
	Matchday *int   `json:"matchday"`
	Stage    string `json:"stage"`
	Group    string `json:"group"`
	HomeTeam Team   `json:"homeTeam"`
	AwayTeam Team   `json:"awayTeam"`
	Score    Score  `json:"score"`
}

type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
}

type Score struct {
	Winner      string `json:"winner"`
	Duration    string `json:"duration"`
	FullTime    Goals  `json:"fullTime"`
	HalfTime    Goals  `json:"halfTime"`
	RegularTime Goals  `json:"regularTime"`
	ExtraTime   Goals  `json:"extraTime"`
	Penalties   Goals  `json:"penalties"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
