package upload

import "strings"

// Backend document type codes.
const (
	TypeMedicalCertificate = "MEDICAL_CERTIFICATE"
	TypeOther              = "OTHER"
	TypeOfficialDocument   = "OFFICIAL_DOCUMENT"
	TypePersonalNote       = "PERSONAL_NOTE"
)

var typeCodes = map[string]string{
	"medical":  TypeMedicalCertificate,
	"other":    TypeOther,
	"official": TypeOfficialDocument,
	"note":     TypePersonalNote,
}

// TypeCode maps a user-facing type token to the backend enum value. An
// unrecognized token degrades to its uppercased form; an empty token
// defaults to OTHER. Never fails.
func TypeCode(s string) string {
	if s == "" {
		return TypeOther
	}
	if code, ok := typeCodes[strings.ToLower(s)]; ok {
		return code
	}
	return strings.ToUpper(s)
}
