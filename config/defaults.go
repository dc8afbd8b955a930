package config

import (
	"github.com/spf13/viper"
)

// Default source names. These are referenced by the default join path and by
// the persona computation, which needs the accounts and opportunities tables.
const (
	SourceTracking      = "tracking"
	SourceCampaigns     = "campaigns"
	SourceContacts      = "contacts"
	SourceAccounts      = "accounts"
	SourceOpportunities = "opportunities"
	SourceAddresses     = "addresses"
)

// SetDefaults configures default values for all configuration options.
// The source schemas mirror the CRM exports this pipeline was built against;
// the join path below is the currently believed bridge between the contact
// namespace and the account namespace and is expected to be overridden as
// that relationship is validated against real sample data.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", ".")
	v.SetDefault("output.dir", "TestOutput")
	v.SetDefault("output.pdf_report", true)

	v.SetDefault("database.path", "donorscope.db")

	v.SetDefault("input.sources", map[string]interface{}{
		SourceCampaigns: map[string]interface{}{
			"file":     "campaign_monitor_extract.csv",
			"required": []string{"Name", "wbsendit__Campaign_ID__c", "wbsendit__Num_Opens__c", "wbsendit__Num_Clicks__c"},
			"renames": map[string]string{
				"Name":                     "CAMPAIGN_NAME",
				"wbsendit__Campaign_ID__c": "CAMPAIGN_ID",
				"wbsendit__Num_Opens__c":   "NUM_OPENS",
				"wbsendit__Num_Clicks__c":  "NUM_CLICKS",
			},
		},
		SourceContacts: map[string]interface{}{
			"file":     "contact_extract.csv",
			"required": []string{"ID", "AccountId", "goldenapp__Gender__c", "npo02__LastCloseDate__c", "npo02__TotalOppAmount__c"},
			"renames": map[string]string{
				"AccountId":                "ACCOUNT_ID",
				"goldenapp__Gender__c":     "GENDER",
				"npo02__LastCloseDate__c":  "LAST_GIFT_DATE",
				"npo02__TotalOppAmount__c": "TOTAL_GIFTS",
			},
		},
		SourceTracking: map[string]interface{}{
			"file":     "email_tracking_extract.csv",
			"required": []string{"Name", "wbsendit__Campaign_ID__c", "wbsendit__Contact__c", "wbsendit__Activity__c"},
			"renames": map[string]string{
				"Name":                     "CAMPAIGN",
				"wbsendit__Campaign_ID__c": "CAMPAIGN_ID",
				"wbsendit__Contact__c":     "CONTACT",
				"wbsendit__Activity__c":    "ACTIVITY",
			},
		},
		SourceAccounts: map[string]interface{}{
			"file":     "d4g_account.csv",
			"required": []string{"Id", "npo02__LastCloseDate__c"},
			"renames":  map[string]string{},
		},
		SourceOpportunities: map[string]interface{}{
			"file":     "d4g_opportunity.csv",
			"required": []string{"Amount", "AccountId", "CloseDate"},
			"renames":  map[string]string{},
		},
		SourceAddresses: map[string]interface{}{
			"file":     "d4g_address.csv",
			"required": []string{"npsp__Household_Account__c", "npsp__MailingCity__c", "npsp__MailingState__c"},
			"renames": map[string]string{
				"npsp__MailingState__c": "STATE",
				"npsp__MailingCity__c":  "CITY",
			},
		},
	})

	// Default join path: campaign tracking rows → contacts → accounts.
	// Persona lookup is keyed by the account Id reached at the final hop.
	v.SetDefault("pipeline.source", SourceTracking)
	v.SetDefault("pipeline.hops", []map[string]interface{}{
		{
			"left":      SourceTracking,
			"left_key":  "CONTACT",
			"right":     SourceContacts,
			"right_key": "ID",
		},
		{
			"left":      SourceContacts,
			"left_key":  "ACCOUNT_ID",
			"right":     SourceAccounts,
			"right_key": "Id",
		},
	})
	v.SetDefault("pipeline.persona_key", "Id")

	// Persona thresholds, unchanged from the original segmentation rules
	v.SetDefault("persona.amount_threshold", 1000.0)
	v.SetDefault("persona.dormancy_max_years", 2)
	v.SetDefault("persona.reference_year", 0)
}
