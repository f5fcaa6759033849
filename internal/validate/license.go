package validate

import (
	"strings"
	"time"

	"github.com/medregistry/provider-cli/internal/model"
)

// licenseDateLayout is the fixed textual date format license documents
// carry ("Month DD, YYYY").
const licenseDateLayout = "January 2, 2006"

// activeStatus is the only license status that can lead to a PASS-class
// outcome.
const activeStatus = "ACTIVE"

// LicenseFromExtracted assembles the license sub-record from extracted
// document fields, probing alias keys. Returns nil when no component is
// present at all.
func LicenseFromExtracted(extracted map[string]any) *model.License {
	lic := &model.License{
		Number:     probeLicense(extracted, "number"),
		Status:     probeLicense(extracted, "status"),
		IssueDate:  probeLicense(extracted, "issue_date"),
		ExpiryDate: probeLicense(extracted, "expiry_date"),
		State:      model.LicenseUnknown,
	}
	if lic.Number == "" && lic.Status == "" && lic.IssueDate == "" && lic.ExpiryDate == "" {
		return nil
	}
	return lic
}

// CheckLicense runs the license validity state machine and records the
// derived state and expiry flag on the sub-record. Precedence: missing
// components, then status, then expiry. An unparsable expiry date is
// treated as expired; an unreadable expiry is never trusted as valid.
func CheckLicense(lic *model.License, now time.Time) model.LicenseState {
	if lic == nil {
		return model.LicenseUnknown
	}

	state := licenseState(lic, now)
	lic.State = state
	switch state {
	case model.LicenseExpired:
		expired := true
		lic.IsExpired = &expired
	case model.LicenseValid:
		expired := false
		lic.IsExpired = &expired
	default:
		lic.IsExpired = nil
	}
	return state
}

func licenseState(lic *model.License, now time.Time) model.LicenseState {
	if lic.Number == "" || lic.Status == "" || lic.IssueDate == "" || lic.ExpiryDate == "" {
		return model.LicenseIncomplete
	}
	if !strings.EqualFold(lic.Status, activeStatus) {
		return model.LicenseInvalidStatus
	}
	expiry, err := time.Parse(licenseDateLayout, lic.ExpiryDate)
	if err != nil {
		return model.LicenseExpired
	}
	if expiry.Before(now.Truncate(24 * time.Hour)) {
		return model.LicenseExpired
	}
	return model.LicenseValid
}
