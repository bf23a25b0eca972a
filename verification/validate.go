package verification

import (
	"regexp"
	"time"
)

var identityNumberRegexp = regexp.MustCompile(`^\d{11}$`)

// ValidateBVN reports whether the value is a well-formed Bank Verification
// Number, which is always exactly 11 digits.
func ValidateBVN(bvn string) bool {
	return identityNumberRegexp.MatchString(bvn)
}

// ValidateNIN reports whether the value is a well-formed National
// Identification Number, which is always exactly 11 digits.
func ValidateNIN(nin string) bool {
	return identityNumberRegexp.MatchString(nin)
}

// ValidateDOB reports whether the value is a real calendar date in
// YYYY-MM-DD form.
func ValidateDOB(dob string) bool {
	_, err := time.Parse("2006-01-02", dob)
	return err == nil
}
