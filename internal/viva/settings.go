// Package viva talks to the Viva Payments REST API.
//
// Every call is a RestRequest: a payload built from common optional fields plus
// request-specific ones, sent with HTTP Basic authentication to the sandbox or
// production host, and wrapped into a Response built from the parsed JSON body
// and the HTTP status code.
package viva

const (
	TestEndpoint = "https://demo.vivapayments.com"
	LiveEndpoint = "https://www.vivapayments.com"

	apiPath = "/api"
)

// Settings identifies the merchant account and which environment to talk to.
type Settings struct {
	MerchantID string
	// APIKey is the password half of the Basic auth pair.
	APIKey   string
	TestMode bool
}

// Parameters are the optional fields shared by every request.
// A nil field is sent as JSON null.
type Parameters struct {
	// RequestLang is the ISO language of the payment form. Viva assumes el-GR when absent.
	RequestLang *string
	// TransactionID is the merchant's own reference, sent as MerchantTrns.
	TransactionID *string
	// Description is shown to the customer, sent as CustomerTrns.
	Description *string
	// SourceCode selects the payment source configured in the merchant profile. Case-sensitive.
	SourceCode *string
}

// BaseEndpoint returns the host URL for the selected environment.
func BaseEndpoint(testMode bool) string {
	if testMode {
		return TestEndpoint
	}
	return LiveEndpoint
}

// ResolveEndpoint returns the API root for the selected environment.
func ResolveEndpoint(testMode bool) string {
	return BaseEndpoint(testMode) + apiPath
}

func String(v string) *string {
	return &v
}
