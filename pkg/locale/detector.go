package locale

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/nyaruka/phonenumbers"
)

// InferCountryFromPhone resolves an E.164 number to one of Countries, or nil.
func InferCountryFromPhone(phone string) *Country {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return nil
	}
	country, ok := Countries[phonenumbers.GetRegionCodeForNumber(num)]
	if !ok {
		return nil
	}
	return &country
}

func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

// Location is the zone for phone's country. Unknown numbers give UTC.
func Location(phone string) *time.Location {
	loc, err := time.LoadLocation(InferTimezoneFromPhone(phone))
	if err != nil {
		return time.UTC
	}
	return loc
}
