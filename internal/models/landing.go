package models

type NavLink struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
}

type AdvisoryCrop struct {
	Crop  string `json:"crop"`
	Match int    `json:"match"`
	Note  string `json:"note"`
	Tone  Tone   `json:"tone"`
}

type Hero struct {
	Title          string       `json:"title"`
	Subtitle       string       `json:"subtitle"`
	Actions        []NavLink    `json:"actions"`
	Stats          []Stat       `json:"stats"`
	Recommendation AdvisoryCrop `json:"recommendation"`
}

type AdvisoryPreview struct {
	Conditions   []Stat         `json:"conditions"`
	WeatherAlert string         `json:"weatherAlert"`
	Crops        []AdvisoryCrop `json:"crops"`
	NextUpdate   string         `json:"nextUpdate"`
}

type About struct {
	Lead       string   `json:"lead"`
	Challenge  string   `json:"challenge"`
	Solution   string   `json:"solution"`
	Objectives []string `json:"objectives"`
}

type Footer struct {
	Tagline   string    `json:"tagline"`
	Links     []NavLink `json:"links"`
	Services  []string  `json:"services"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Copyright string    `json:"copyright"`
}

type Landing struct {
	Brand      string          `json:"brand"`
	Tagline    string          `json:"tagline"`
	Navigation []NavLink       `json:"navigation"`
	Hero       Hero            `json:"hero"`
	Features   []Feature       `json:"features"`
	Advisory   AdvisoryPreview `json:"advisory"`
	About      About           `json:"about"`
	Footer     Footer          `json:"footer"`
}
