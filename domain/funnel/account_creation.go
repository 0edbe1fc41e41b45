package funnel

// AccountCreationFunnel is the registered name of the onboarding funnel
const AccountCreationFunnel = "account-creation"

// AccountCreationCounts is the single aggregate row behind the onboarding
// funnel, as produced by the SQL query and served by /api/funnel/account-creation.
type AccountCreationCounts struct {
	TotalAccounts     int64 `db:"total_accounts" json:"total_accounts"`
	StepBasicInfo     int64 `db:"step_basic_info" json:"step_basic_info"`
	StepHeadline      int64 `db:"step_headline" json:"step_headline"`
	StepLocation      int64 `db:"step_location" json:"step_location"`
	StepCompany       int64 `db:"step_company" json:"step_company"`
	StepLinkedIn      int64 `db:"step_linkedin" json:"step_linkedin"`
	StepFinderEnabled int64 `db:"step_finder_enabled" json:"step_finder_enabled"`
}

// Spec maps the counts onto the seven onboarding stages, totalled by account count
func (c AccountCreationCounts) Spec() Spec {
	total := float64(c.TotalAccounts)
	return Spec{
		Stages: []Stage{
			{Label: "Account Created", Value: total},
			{Label: "Basic Info", Value: float64(c.StepBasicInfo)},
			{Label: "Added Headline", Value: float64(c.StepHeadline)},
			{Label: "Added Location", Value: float64(c.StepLocation)},
			{Label: "Added Company", Value: float64(c.StepCompany)},
			{Label: "Linked LinkedIn", Value: float64(c.StepLinkedIn)},
			{Label: "Enabled Finder", Value: float64(c.StepFinderEnabled)},
		},
		Total: total,
	}
}
