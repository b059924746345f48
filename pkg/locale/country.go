package locale

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2, as phonenumbers reports it
	Name            string
	CallingCode     int
	DefaultTimezone string // IANA zone e-ticket times are shown in
}

// Countries are the markets tickets are sold in.
var Countries = map[string]Country{
	"IN": {Code: "IN", Name: "India", CallingCode: 91, DefaultTimezone: "Asia/Kolkata"},
	"US": {Code: "US", Name: "United States", CallingCode: 1, DefaultTimezone: "America/New_York"},
	"GB": {Code: "GB", Name: "United Kingdom", CallingCode: 44, DefaultTimezone: "Europe/London"},
	"AE": {Code: "AE", Name: "United Arab Emirates", CallingCode: 971, DefaultTimezone: "Asia/Dubai"},
	"SG": {Code: "SG", Name: "Singapore", CallingCode: 65, DefaultTimezone: "Asia/Singapore"},
}
