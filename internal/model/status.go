package model

// ValidationStatus is the validation stage's own verdict, computed from
// overall confidence and missing fields.
type ValidationStatus string

const (
	ValidationPass         ValidationStatus = "PASS"
	ValidationPassWithGaps ValidationStatus = "PASS_WITH_GAPS"
	ValidationNeedsReview  ValidationStatus = "NEEDS_REVIEW"
	ValidationFail         ValidationStatus = "FAIL"
)

// IsPassClass reports whether the status qualifies the record for a
// VERIFIED outcome downstream.
func (s ValidationStatus) IsPassClass() bool {
	return s == ValidationPass || s == ValidationPassWithGaps
}

// LicenseState is the license validity checker's terminal state.
type LicenseState string

const (
	LicenseUnknown       LicenseState = "UNKNOWN"
	LicenseValid         LicenseState = "VALID"
	LicenseExpired       LicenseState = "EXPIRED"
	LicenseInvalidStatus LicenseState = "INVALID_STATUS"
	LicenseIncomplete    LicenseState = "INCOMPLETE"
)

// FinalStatus is the QA classifier's terminal state. It is recomputed
// deterministically from the record, never hand-edited.
type FinalStatus string

const (
	StatusVerified    FinalStatus = "VERIFIED"
	StatusNeedsReview FinalStatus = "NEEDS_REVIEW"
	StatusFailQA      FinalStatus = "FAIL_QA"
	StatusRejected    FinalStatus = "REJECTED"
)

// External signal source names.
const (
	SourceRegistry = "registry"
	SourceMaps     = "maps"
	SourceWebsite  = "website"
)
