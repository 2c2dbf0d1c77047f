package crm

// Payload is the CRM lead-creation body. Field names, including the
// "campaing_type" spelling, are fixed by the CRM.
type Payload struct {
	Name           string  `json:"name"`
	Email          *string `json:"email"`
	CountryCode    string  `json:"country_code"`
	Number         string  `json:"number"`
	TrackingLeadID string  `json:"tracking_lead_id"`
	Nationality    int     `json:"nationality"`
	SourceID       int     `json:"source_id"`
	ProjectID      int     `json:"project_id"`
	Digital        Digital `json:"Digital"`
	Utm            *Utm    `json:"Utm,omitempty"`
	IsMagnet       int     `json:"is_magnet,omitempty"`
	MagnetID       string  `json:"magnet_id,omitempty"`
}

type Digital struct {
	UserDevice      string  `json:"user_device"`
	UserBrowser     string  `json:"user_browser"`
	CampaignType    *string `json:"campaing_type"`
	LaunchName      string  `json:"launch_name"`
	ClientIPAddress string  `json:"client_ipaddress"`
	ClientPref      *string `json:"client_pref"`
}

type Utm struct {
	Medium  *string `json:"utm_medium"`
	Source  *string `json:"utm_source"`
	Content *string `json:"utm_content"`
	Term    *string `json:"utm_term"`
}

const (
	NationalityDomestic      = 1
	NationalityInternational = 2

	SourceChat   = 31
	SourceMagnet = 49

	// FallbackProjectID is used when no project id can be resolved.
	FallbackProjectID = 5796
)
