//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID checks parsing never panics and accepted IDs round-trip.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)

		if err == nil {
			roundTrip, err2 := ParseUserID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}

		// Non-UTF8 input must be rejected
		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures every ID type shares one validation path.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errCase := ParseCaseID(input)
		_, errRequest := ParseCaseRequestID(input)
		_, errAccess := ParseAccessRequestID(input)
		_, errEvidence := ParseEvidenceID(input)
		_, errActivity := ParseActivityID(input)

		accepted := errUser == nil
		for _, err := range []error{errCase, errRequest, errAccess, errEvidence, errActivity} {
			if (err == nil) != accepted {
				t.Errorf("inconsistent parsing across ID types for %q", input)
			}
		}
	})
}
